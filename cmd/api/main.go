package main

import (
	"context"
	"log"

	"github.com/sai-darshan-k/Vimal-Task/internal/config"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/registry"
	"github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/cloudinary"
	"github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/imageproc"
	"github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/influx"
	mongodoc "github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/mongo"
	"github.com/sai-darshan-k/Vimal-Task/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	logger := cfg.ServerLog

	questions, err := registry.Load(cfg.QuestionsFile)
	if err != nil {
		logger.Fatalf("質問テーブルの読み込みに失敗しました: %v", err)
	}
	logger.WithField("version", questions.Version()).Infof("question registry loaded: %v", questions.Names())

	points := influx.NewPointStore(influx.Config{
		URL:         cfg.Influx.URL,
		Token:       cfg.Influx.Token,
		Org:         cfg.Influx.Org,
		Bucket:      cfg.Influx.Bucket,
		Measurement: domain.Measurement,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Timeout)
	if err := points.Ping(pingCtx); err != nil {
		logger.WithError(err).Warn("InfluxDB に接続できません。書き込みは失敗する可能性があります")
	}
	cancelPing()

	deps := server.Dependencies{
		Registry: questions,
		Points:   points,
		Closers: []func(context.Context) error{func(context.Context) error {
			points.Close()
			return nil
		}},
	}

	if cfg.Cloudinary.Enabled() {
		images, err := cloudinary.NewImageStore(cloudinary.Config{
			CloudName:    cfg.Cloudinary.CloudName,
			APIKey:       cfg.Cloudinary.APIKey,
			APISecret:    cfg.Cloudinary.APISecret,
			UploadPreset: cfg.Cloudinary.UploadPreset,
			Folder:       cfg.Cloudinary.Folder,
		})
		if err != nil {
			logger.Fatalf("Cloudinary の初期化に失敗しました: %v", err)
		}
		deps.Images = images
	} else {
		logger.Warn("Cloudinary credentials are not set; image uploads will fail")
	}
	if cfg.ImageMaxSide > 0 {
		deps.Shrinker = imageproc.NewShrinker(cfg.ImageMaxSide)
	}

	if cfg.JournalEnabled() {
		client := connectMongo(cfg)
		journal := mongodoc.NewFailedWriteRepository(client.Database(cfg.MongoDatabase), cfg.FailedWriteCollection)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		if err := journal.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("failed write index could not be created")
		}
		cancel()
		deps.Journal = journal
		deps.Closers = append(deps.Closers, client.Disconnect)
	}

	app := server.New(cfg, deps)
	if err := app.Run(); err != nil {
		logger.Fatalf("サーバー起動に失敗: %v", err)
	}
}

func connectMongo(cfg config.Config) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	return client
}
