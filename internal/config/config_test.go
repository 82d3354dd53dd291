package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadRequiresInfluxToken(t *testing.T) {
	t.Setenv("INFLUXDB_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Error("expected an error when INFLUXDB_TOKEN is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INFLUXDB_TOKEN", "token")
	for _, key := range []string{"PORT", "HTTP_ADDR", "INFLUXDB_ORG", "INFLUXDB_BUCKET", "MONGO_URI", "ADMIN_JWT_SECRET", "TIMEZONE", "LOG_LEVEL", "LOG_FILE", "API_ALLOWED_ORIGINS", "SELF_PING_INTERVAL", "IMAGE_MAX_SIDE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":5000" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.Influx.Org != "Agri" || cfg.Influx.Bucket != "smart_agri" {
		t.Errorf("unexpected influx config %+v", cfg.Influx)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("unexpected timezone %q", cfg.Timezone)
	}
	if cfg.SelfPingInterval != 5*time.Minute || cfg.SelfPingTimeout != 5*time.Second {
		t.Errorf("unexpected self-ping settings %s/%s", cfg.SelfPingInterval, cfg.SelfPingTimeout)
	}
	if cfg.ImageMaxSide != 1920 {
		t.Errorf("unexpected image max side %d", cfg.ImageMaxSide)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.JournalEnabled() || len(cfg.JWTConfigs) != 0 {
		t.Error("journal and admin auth must be disabled by default")
	}
	if cfg.Cloudinary.Enabled() {
		t.Error("cloudinary must be disabled without credentials")
	}
	if cfg.ServerLog.GetLevel() != logrus.InfoLevel {
		t.Errorf("unexpected log level %s", cfg.ServerLog.GetLevel())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INFLUXDB_TOKEN", "token")
	t.Setenv("PORT", "8080")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("VERIFY_WINDOW", "2m")
	t.Setenv("REJECTION_WINDOW", "not-a-duration")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ADMIN_JWT_SECRET", "secret")
	t.Setenv("ADMIN_JWT_ISSUER", "farm-admin")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "api.log"))
	t.Setenv("RENDER_EXTERNAL_URL", "https://farm.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.VerifyWindow != 2*time.Minute {
		t.Errorf("unexpected verify window %s", cfg.VerifyWindow)
	}
	if cfg.RejectionWindow != time.Hour {
		t.Errorf("invalid duration must fall back to default, got %s", cfg.RejectionWindow)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if !cfg.JournalEnabled() {
		t.Error("expected journal to be enabled")
	}
	if len(cfg.JWTConfigs) != 1 || cfg.JWTConfigs[0].Issuer != "farm-admin" {
		t.Errorf("unexpected jwt configs %+v", cfg.JWTConfigs)
	}
	if cfg.ServerLog.GetLevel() != logrus.DebugLevel {
		t.Errorf("unexpected log level %s", cfg.ServerLog.GetLevel())
	}
	if cfg.ExternalURL != "https://farm.example" {
		t.Errorf("unexpected external url %q", cfg.ExternalURL)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("INFLUXDB_TOKEN", "token")
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Error("expected an error for an invalid log level")
	}
}
