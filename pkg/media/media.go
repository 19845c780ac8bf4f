package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"skillex/pkg/logger"
)

// Store uploads and deletes user-supplied images.
type Store interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
	Delete(ctx context.Context, imageURL string)
}

// CloudinaryStore keeps avatars and listing images in Cloudinary. Deletes
// are best-effort.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
	log *logger.Logger
}

func NewCloudinaryStore(cloudinaryURL string, log *logger.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, log: log}, nil
}

// Upload stores the image under folder and returns its secure URL.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: uuid.New().String(),
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return result.SecureURL, nil
}

// Delete removes the image behind imageURL. Failures are logged and dropped;
// orphaned remote images are not reconciled.
func (s *CloudinaryStore) Delete(ctx context.Context, imageURL string) {
	publicID := publicIDFromURL(imageURL)
	if publicID == "" {
		return
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		s.log.Warn("Failed to delete remote image", "public_id", publicID, "error", err)
	}
}

// publicIDFromURL extracts "folder/name" from a Cloudinary delivery URL of
// the form .../upload/v123/folder/name.jpg.
func publicIDFromURL(imageURL string) string {
	parts := strings.Split(imageURL, "/upload/")
	if len(parts) != 2 {
		return ""
	}
	rest := parts[1]
	if idx := strings.Index(rest, "/"); idx >= 0 && strings.HasPrefix(rest, "v") {
		version := rest[1:idx]
		if version != "" && strings.Trim(version, "0123456789") == "" {
			rest = rest[idx+1:]
		}
	}
	ext := path.Ext(rest)
	return strings.TrimSuffix(rest, ext)
}

// NoopStore is used when Cloudinary is not configured and in tests.
type NoopStore struct{}

func (NoopStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	return "", fmt.Errorf("media storage is not configured")
}

func (NoopStore) Delete(ctx context.Context, imageURL string) {}
