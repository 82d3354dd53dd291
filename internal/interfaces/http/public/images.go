package public

import (
	"net/http"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sai-darshan-k/Vimal-Task/internal/interfaces/http/common"
)

// uploadImageHandler は data URI 形式の写真を画像ストアへ中継し、公開 URL を返す。
func (h *Handler) uploadImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uploadImageRequest
		if err := decodeJSON(w, r, common.MaxImageRequestBody, &req); err != nil {
			h.logger.WithError(err).Warn("invalid upload_image payload")
			common.WriteError(h.logger, w, http.StatusBadRequest, "Missing image or question_id")
			return
		}

		url, err := h.images.Upload(r.Context(), application.UploadImageCommand{
			Image:      req.Image,
			QuestionID: string(req.QuestionID),
			Timestamp:  req.Timestamp,
		})
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, uploadImageResponse{ImageURL: url})
	}
}
