package admin

import (
	"github.com/go-chi/chi/v5"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sirupsen/logrus"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger       logrus.FieldLogger
	failedWrites application.FailedWriteQueryService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger       logrus.FieldLogger
	FailedWrites application.FailedWriteQueryService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		logger:       logger,
		failedWrites: cfg.FailedWrites,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/failed_writes", h.failedWriteListHandler())
}
