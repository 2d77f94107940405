// Package images stores campground photos in object storage or on local disk.
package images

import (
	"context"
	"mime/multipart"
	"path"

	"github.com/google/uuid"

	"yelpcamp/internal/models"
	"yelpcamp/internal/telemetry"
)

// Store persists uploads and releases them by filename.
type Store interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (models.Image, error)
	Delete(ctx context.Context, filename string) error
}

// objectName returns a collision-free key under folder keeping ext.
func objectName(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

// UploadAll uploads files in order. On failure the ones already stored are released.
func UploadAll(ctx context.Context, s Store, files []*multipart.FileHeader, log telemetry.Logger) ([]models.Image, error) {
	out := make([]models.Image, 0, len(files))
	for _, fh := range files {
		img, err := s.Upload(ctx, fh)
		if err != nil {
			for _, done := range out {
				if derr := s.Delete(ctx, done.Filename); derr != nil {
					log.Warn("release partial upload failed", "filename", done.Filename, "err", derr)
				}
			}
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// DeleteAll releases every filename, logging failures and returning the first.
func DeleteAll(ctx context.Context, s Store, filenames []string, log telemetry.Logger) error {
	var first error
	for _, name := range filenames {
		if err := s.Delete(ctx, name); err != nil {
			log.Warn("release image failed", "filename", name, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
