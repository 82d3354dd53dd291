package public

import (
	"fmt"
	"net/http"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
)

// saveResponsesHandler はアンケート回答を検証・エンコードし、時系列ストアへ書き込む。
func (h *Handler) saveResponsesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveResponsesRequest
		if err := decodeJSON(w, r, common.MaxSubmissionBody, &req); err != nil {
			h.logger.WithError(err).Warn("invalid save_responses payload")
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		score, err := req.healthScore()
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "crop_health_score must be a number")
			return
		}

		result, err := h.submissions.Save(r.Context(), application.SaveResponsesCommand{
			Date:        req.Date,
			SurveyType:  req.Type,
			Language:    req.Language,
			Responses:   req.Responses,
			HealthScore: score,
			Timestamp:   req.Timestamp,
		})
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, saveResponsesResponse{
			Message:        fmt.Sprintf("Responses saved successfully (%d records)", result.RecordsWritten),
			RecordsWritten: result.RecordsWritten,
		})
	}
}

// checkRejectionsHandler は直近 24 時間に拒否されたポイントを返す。
func (h *Handler) checkRejectionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rejections, err := h.submissions.Rejections(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("rejection feed query failed")
			common.WriteError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Failed to check rejections: %v", err))
			return
		}
		if rejections == nil {
			rejections = []domain.Rejection{}
		}
		common.WriteJSON(h.logger, w, http.StatusOK, rejectionsResponse{Rejections: rejections})
	}
}
