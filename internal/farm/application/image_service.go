package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var timestampSanitizer = strings.NewReplacer(":", "-", ".", "-")

// ImageServiceConfig defines the dependencies of the image relay.
type ImageServiceConfig struct {
	Store    ImageStore
	Shrinker ImageShrinker
	Folder   string
	Logger   logrus.FieldLogger
}

// NewImageService constructs the image relay use-case.
func NewImageService(cfg ImageServiceConfig) ImageService {
	s := &imageService{
		store:    cfg.Store,
		shrinker: cfg.Shrinker,
		folder:   strings.Trim(strings.TrimSpace(cfg.Folder), "/"),
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}

type imageService struct {
	store    ImageStore
	shrinker ImageShrinker
	folder   string
	logger   logrus.FieldLogger
}

func (s *imageService) Upload(ctx context.Context, cmd UploadImageCommand) (string, error) {
	if cmd.Image == "" || strings.TrimSpace(cmd.QuestionID) == "" {
		return "", newError(KindMalformedRequest, "Missing image or question_id", nil)
	}

	payload, ok := extractPayload(cmd.Image)
	if !ok {
		return "", newError(KindMalformedRequest, "Invalid base64 image data", nil)
	}

	dataURI := cmd.Image
	if s.shrinker != nil {
		shrunk, err := s.shrinker.Shrink(payload)
		if err != nil {
			s.logger.WithError(err).Debug("image left unchanged")
		} else {
			dataURI = "data:image/jpeg;base64," + shrunk
		}
	}

	timestamp := strings.TrimSpace(cmd.Timestamp)
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	publicID := BuildPublicID(s.folder, strings.TrimSpace(cmd.QuestionID), timestamp)

	if s.store == nil {
		return "", newError(KindUpstreamUploadFailure, "Failed to upload to Cloudinary: image store is not configured", nil)
	}
	url, err := s.store.Upload(ctx, dataURI, publicID)
	if err != nil {
		s.logger.WithError(err).WithField("public_id", publicID).Error("image upload failed")
		return "", newError(KindUpstreamUploadFailure, fmt.Sprintf("Failed to upload to Cloudinary: %v", err), err)
	}

	s.logger.WithField("url", url).Info("image uploaded")
	return url, nil
}

// BuildPublicID derives the storage key of an uploaded photo. Colons and dots
// in the timestamp are replaced so the key is safe as a path segment.
func BuildPublicID(folder, questionID, timestamp string) string {
	id := questionID + "_" + timestampSanitizer.Replace(timestamp)
	if folder == "" {
		return id
	}
	return folder + "/" + id
}

// extractPayload returns the base64 part of a data URI such as
// "data:image/jpeg;base64,<payload>".
func extractPayload(image string) (string, bool) {
	parts := strings.Split(image, ",")
	if len(parts) < 2 {
		return "", false
	}
	payload := strings.TrimSpace(parts[1])
	if payload == "" {
		return "", false
	}
	return payload, true
}
