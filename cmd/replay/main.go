package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sai-darshan-k/Vimal-Task/internal/config"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/influx"
	mongodoc "github.com/sai-darshan-k/Vimal-Task/internal/infrastructure/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type replayOptions struct {
	envFile string
	limit   int
	dryRun  bool
	remove  bool
	timeout time.Duration
}

const (
	exitOK = iota
	exitSetup
	exitPartial
)

func main() {
	os.Exit(run(parseFlags()))
}

// run は再送を実行して終了コードを返す。os.Exit は main でのみ呼ぶ。
func run(opts replayOptions) int {
	if opts.envFile != "" {
		if err := godotenv.Overload(opts.envFile); err != nil {
			log.Printf("環境変数の読み込みに失敗しました: %v", err)
			return exitSetup
		}
	}
	cfg, err := config.Load()
	if err != nil {
		log.Printf("設定の読み込みに失敗しました: %v", err)
		return exitSetup
	}
	logger := cfg.ServerLog
	if cfg.MongoURI == "" {
		logger.Error("MONGO_URI が設定されていません")
		return exitSetup
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Errorf("MongoDB 接続に失敗しました: %v", err)
		return exitSetup
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("MongoDB 切断時にエラー")
		}
	}()

	journal := mongodoc.NewFailedWriteRepository(client.Database(cfg.MongoDatabase), cfg.FailedWriteCollection)
	if err := journal.EnsureIndexes(ctx); err != nil {
		logger.Errorf("インデックス作成に失敗しました: %v", err)
		return exitSetup
	}

	points := influx.NewPointStore(influx.Config{
		URL:         cfg.Influx.URL,
		Token:       cfg.Influx.Token,
		Org:         cfg.Influx.Org,
		Bucket:      cfg.Influx.Bucket,
		Measurement: domain.Measurement,
	})
	defer points.Close()

	result, err := application.NewReplayService(journal, points, logger).Replay(ctx, application.ReplayCommand{
		Limit:  opts.limit,
		DryRun: opts.dryRun,
		Remove: opts.remove,
	})
	if err != nil {
		logger.Errorf("再送に失敗しました: %v", err)
	} else {
		logger.Infof("再送完了: attempted=%d replayed=%d failed=%d skipped=%d",
			result.Attempted, result.Replayed, result.Failed, result.Skipped)
		if result.Failed > 0 {
			logger.Errorf("%d 件の再送に失敗しました", result.Failed)
		}
	}
	return exitCode(result, err)
}

func exitCode(result application.ReplayResult, err error) int {
	switch {
	case err != nil:
		return exitSetup
	case result.Failed > 0:
		return exitPartial
	default:
		return exitOK
	}
}

func parseFlags() replayOptions {
	var opts replayOptions
	flag.StringVar(&opts.envFile, "env", "", "追加で読み込む env ファイル (例: .env.production)")
	flag.IntVar(&opts.limit, "limit", 100, "再送する失敗書き込みの最大件数")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "InfluxDB へ書き込まずに対象のみ表示する")
	flag.BoolVar(&opts.remove, "delete", false, "再送に成功したエントリをジャーナルから削除する")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "全体のタイムアウト")
	flag.Parse()

	if opts.limit <= 0 {
		log.Fatal("limit は 1 以上を指定してください")
	}
	return opts
}
