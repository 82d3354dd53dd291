package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/application"
	"github.com/sirupsen/logrus"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger logrus.FieldLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.WithError(err).Error("JSON エンコードに失敗")
	}
}

// WriteError writes the {"error": message} envelope used by every endpoint.
func WriteError(logger logrus.FieldLogger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, map[string]string{"error": message})
}

// StatusFor maps a use-case failure to its HTTP status code.
func StatusFor(err error) int {
	var appErr *application.Error
	if errors.As(err, &appErr) && appErr.IsClientError() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
