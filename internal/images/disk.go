package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"yelpcamp/internal/filevalidation"
	"yelpcamp/internal/models"
	"yelpcamp/internal/validation"
)

// URLPrefix is where DiskStore images are served.
const URLPrefix = "/uploads/"

// DiskStore keeps images under a local directory for development.
type DiskStore struct {
	dir     string
	folder  string
	maxSize int64
}

func NewDiskStore(dir, folder string, maxSize int64) *DiskStore {
	return &DiskStore{dir: dir, folder: folder, maxSize: maxSize}
}

func (d *DiskStore) Upload(_ context.Context, fh *multipart.FileHeader) (models.Image, error) {
	img, err := filevalidation.OpenImage(fh, d.maxSize)
	if err != nil {
		return models.Image{}, err
	}
	defer img.Close()

	name := objectName(d.folder, img.Ext)
	full, err := validation.SanitizePath(d.dir, name)
	if err != nil {
		return models.Image{}, err
	}
	if _, err := filevalidation.SaveExclusive(img.Body, full, d.maxSize); err != nil {
		return models.Image{}, fmt.Errorf("save image: %w", err)
	}
	return models.Image{URL: URLPrefix + name, Filename: name}, nil
}

// Delete removes the file. Missing files are not an error.
func (d *DiskStore) Delete(_ context.Context, filename string) error {
	full, err := validation.SanitizePath(d.dir, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Handler serves stored files under URLPrefix without directory listings.
func (d *DiskStore) Handler() http.Handler {
	files := http.StripPrefix(URLPrefix, http.FileServer(http.Dir(d.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
