package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerSettings struct {
	Level      string
	File       string
	MaxSize    int
	MaxAge     int
	MaxBackups int
}

// newLogger は stdout（と任意のローテーションファイル）へ書き出す logrus ロガーを作る。
func newLogger(settings loggerSettings) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(settings.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", settings.Level, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var out io.Writer = os.Stdout
	if settings.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    settings.MaxSize,
			MaxAge:     settings.MaxAge,
			MaxBackups: settings.MaxBackups,
		})
	}
	logger.SetOutput(out)
	return logger, nil
}
