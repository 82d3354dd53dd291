package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// KeepAlive は外部 URL の /healthz を定期的に叩き、ホスティング先のスリープを防ぐ。
// 失敗はログに残すだけでリクエスト処理には影響しない。
type KeepAlive struct {
	logger     logrus.FieldLogger
	scheduler  *cron.Cron
	httpClient *http.Client
	target     string
	interval   time.Duration
}

// KeepAliveConfig defines the self-ping schedule.
type KeepAliveConfig struct {
	Logger   logrus.FieldLogger
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
}

// NewKeepAlive returns a scheduler that is not yet running. A blank base URL
// or a non-positive interval disables it.
func NewKeepAlive(cfg KeepAliveConfig) *KeepAlive {
	base := normaliseBaseURL(cfg.BaseURL)
	if base == "" || cfg.Interval <= 0 {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KeepAlive{
		logger:     logger,
		scheduler:  cron.New(),
		httpClient: &http.Client{Timeout: timeout},
		target:     base + "/healthz",
		interval:   cfg.Interval,
	}
}

// Start registers the ping job and starts the scheduler.
func (k *KeepAlive) Start() error {
	if k == nil {
		return nil
	}
	spec := fmt.Sprintf("@every %s", k.interval)
	if _, err := k.scheduler.AddFunc(spec, func() { k.run(context.Background()) }); err != nil {
		return fmt.Errorf("self-ping schedule %q: %w", spec, err)
	}
	k.scheduler.Start()
	k.logger.WithFields(logrus.Fields{"target": k.target, "interval": k.interval}).Info("self-ping scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running ping to finish.
func (k *KeepAlive) Stop(ctx context.Context) {
	if k == nil {
		return
	}
	done := k.scheduler.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (k *KeepAlive) run(ctx context.Context) {
	if err := k.ping(ctx); err != nil {
		k.logger.WithError(err).Warn("self-ping failed")
		return
	}
	k.logger.Debug("self-ping succeeded")
}

func (k *KeepAlive) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.target, nil)
	if err != nil {
		return fmt.Errorf("self-ping request: %w", err)
	}

	res, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("self-ping: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return fmt.Errorf("self-ping: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
