package utils

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// PhotoFolder is where doctor profile photos are stored.
const PhotoFolder = "doctors"

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
}

// CloudinaryUploader stores doctor photos and returns their secure URL.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
}

// NewCloudinaryUploader initializes the Cloudinary client
func NewCloudinaryUploader(cfg CloudinaryConfig) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, preset: cfg.UploadPreset}, nil
}

// Upload accepts anything the Cloudinary SDK can read: a path, URL or io.Reader.
func (u *CloudinaryUploader) Upload(ctx context.Context, file interface{}, publicID string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         PhotoFolder,
		UploadPreset:   u.preset,
		Transformation: "c_thumb,w_200,h_200", // Resize profile pictures
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
