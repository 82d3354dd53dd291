package admin

import (
	"net/http"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
)

type failedWriteListResponse struct {
	Items []domain.FailedWrite `json:"items"`
	Limit int                  `json:"limit"`
}

// failedWriteListHandler は検証できなかった書き込みを新しい順に返す。再送はオペレーターが行う。
func (h *Handler) failedWriteListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultFailedWriteLimit)

		items, err := h.failedWrites.Recent(r.Context(), limit)
		if err != nil {
			h.logger.WithError(err).Error("failed write listing failed")
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Failed to list failed writes")
			return
		}
		if items == nil {
			items = []domain.FailedWrite{}
		}

		admin, _ := common.AdminFromContext(r.Context())
		h.logger.WithField("admin", admin.Subject).WithField("count", len(items)).Debug("failed writes listed")

		common.WriteJSON(h.logger, w, http.StatusOK, failedWriteListResponse{Items: items, Limit: limit})
	}
}
