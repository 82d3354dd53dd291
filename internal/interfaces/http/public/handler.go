package public

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
	"github.com/sirupsen/logrus"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger      logrus.FieldLogger
	submissions application.SubmissionService
	images      application.ImageService
	staticDir   string
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger      logrus.FieldLogger
	Submissions application.SubmissionService
	Images      application.ImageService
	StaticDir   string
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		logger:      logger,
		submissions: cfg.Submissions,
		images:      cfg.Images,
		staticDir:   cfg.StaticDir,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.indexHandler())
	r.Get("/static/*", h.staticHandler())
	r.Post("/upload_image", h.uploadImageHandler())
	r.Post("/save_responses", h.saveResponsesHandler())
	r.Get("/check_rejections", h.checkRejectionsHandler())
}

// decodeJSON は上限付きでリクエストボディを読み込む。
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	return render.DecodeJSON(http.MaxBytesReader(w, r.Body, limit), v)
}

// writeServiceError はユースケースのエラー種別から HTTP ステータスを決めて返す。
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.StatusFor(err)
	message := err.Error()
	if application.KindOf(err) == "" {
		message = "Server error: " + message
	}

	entry := h.logger.WithError(err).WithField("path", r.URL.Path)
	if status < http.StatusInternalServerError {
		entry.Warn("request rejected")
	} else {
		entry.Error("request failed")
	}
	common.WriteError(h.logger, w, status, message)
}
