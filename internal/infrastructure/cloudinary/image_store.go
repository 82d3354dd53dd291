package cloudinary

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultUploadPreset = "smart_agri_preset"

// Config holds the account settings of the hosted image service.
type Config struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Folder       string
}

// ImageStore implements application.ImageStore using Cloudinary.
type ImageStore struct {
	cld    *cloudinary.Cloudinary
	preset string
	folder string
}

// NewImageStore validates the credentials and builds an uploader.
func NewImageStore(cfg Config) (*ImageStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true

	preset := cfg.UploadPreset
	if preset == "" {
		preset = defaultUploadPreset
	}
	return &ImageStore{cld: cld, preset: preset, folder: cfg.Folder}, nil
}

// Upload sends the data URI and returns the HTTPS delivery URL.
func (s *ImageStore) Upload(ctx context.Context, dataURI, publicID string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		PublicID:     publicID,
		UploadPreset: s.preset,
		Folder:       s.folder,
	})
	if err != nil {
		return "", err
	}
	// API failures come back in the response body with a nil error.
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("upload response carried no secure_url")
	}
	return resp.SecureURL, nil
}
