package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// InfluxConfig は時系列ストアへの接続設定。
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// CloudinaryConfig は画像ホスティングの認証情報とアップロード先。
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Folder       string
}

// Enabled reports whether all credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                  string
	Influx                InfluxConfig
	Cloudinary            CloudinaryConfig
	ExternalURL           string
	SelfPingInterval      time.Duration
	SelfPingTimeout       time.Duration
	VerifyWindow          time.Duration
	RejectionWindow       time.Duration
	QuestionsFile         string
	StaticDir             string
	ImageMaxSide          int
	AllowedOrigins        []string
	Timezone              string
	ServerLog             *logrus.Logger
	MongoURI              string
	MongoDatabase         string
	FailedWriteCollection string
	Timeout               time.Duration
	JWTConfigs            []JWTConfig
	JWTAudience           string
}

// JournalEnabled reports whether failed writes should be persisted.
func (c Config) JournalEnabled() bool {
	return c.MongoURI != ""
}

// Load reads environment variables, optionally seeded from a .env file, and
// returns a fully populated Config.
func Load() (Config, error) {
	// .env が無い環境（本番）では環境変数のみを使う。
	_ = godotenv.Load()

	logger, err := newLogger(loggerSettings{
		Level:      envOrDefault("LOG_LEVEL", "info"),
		File:       strings.TrimSpace(os.Getenv("LOG_FILE")),
		MaxSize:    intOrDefault("LOG_FILE_MAX_SIZE", 10),
		MaxAge:     intOrDefault("LOG_FILE_MAX_AGE", 28),
		MaxBackups: intOrDefault("LOG_FILE_MAX_BACKUPS", 3),
	})
	if err != nil {
		return Config{}, err
	}

	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":" + envOrDefault("PORT", "5000")
	}

	token := strings.TrimSpace(os.Getenv("INFLUXDB_TOKEN"))
	if token == "" {
		return Config{}, errors.New("INFLUXDB_TOKEN must be configured")
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: strings.TrimSpace(os.Getenv("ADMIN_JWT_ISSUER")),
			Secret: []byte(secret),
		})
	}

	cfg := Config{
		Addr: addr,
		Influx: InfluxConfig{
			URL:    envOrDefault("INFLUXDB_URL", "https://us-east-1-1.aws.cloud2.influxdata.com"),
			Token:  token,
			Org:    envOrDefault("INFLUXDB_ORG", "Agri"),
			Bucket: envOrDefault("INFLUXDB_BUCKET", "smart_agri"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME")),
			APIKey:       strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY")),
			APISecret:    strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET")),
			UploadPreset: envOrDefault("CLOUDINARY_UPLOAD_PRESET", "smart_agri_preset"),
			Folder:       envOrDefault("CLOUDINARY_FOLDER", "smart_agri"),
		},
		ExternalURL:           strings.TrimRight(envOrDefault("RENDER_EXTERNAL_URL", "https://vimal-farm.onrender.com"), "/"),
		SelfPingInterval:      durationOrDefault("SELF_PING_INTERVAL", 5*time.Minute),
		SelfPingTimeout:       durationOrDefault("SELF_PING_TIMEOUT", 5*time.Second),
		VerifyWindow:          durationOrDefault("VERIFY_WINDOW", time.Minute),
		RejectionWindow:       durationOrDefault("REJECTION_WINDOW", time.Hour),
		QuestionsFile:         strings.TrimSpace(os.Getenv("QUESTIONS_FILE")),
		StaticDir:             envOrDefault("STATIC_DIR", "static"),
		ImageMaxSide:          intOrDefault("IMAGE_MAX_SIDE", 1920),
		AllowedOrigins:        parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		Timezone:              envOrDefault("TIMEZONE", "Asia/Kolkata"),
		ServerLog:             logger,
		MongoURI:              strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:         envOrDefault("MONGO_DB", "farm-tracker"),
		FailedWriteCollection: envOrDefault("FAILED_WRITE_COLLECTION", "failed_writes"),
		Timeout:               durationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		JWTConfigs:            jwtConfigs,
		JWTAudience:           strings.TrimSpace(os.Getenv("ADMIN_JWT_AUDIENCE")),
	}

	logger.WithFields(logrus.Fields{
		"addr":        cfg.Addr,
		"bucket":      cfg.Influx.Bucket,
		"org":         cfg.Influx.Org,
		"cloudinary":  cfg.Cloudinary.Enabled(),
		"journal":     cfg.JournalEnabled(),
		"externalURL": cfg.ExternalURL,
	}).Info("loaded config")

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
