package filevalidation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"yelpcamp/internal/apperr"
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// CheckedImage is an upload that passed extension, size and content sniffing.
type CheckedImage struct {
	Ext         string
	ContentType string
	Size        int64
	Body        io.Reader
	closer      io.Closer
}

func (c *CheckedImage) Close() error { return c.closer.Close() }

// OpenImage validates fh as a jpeg or png no larger than maxSize and opens it.
// The returned body replays the sniffed prefix. Caller must Close.
func OpenImage(fh *multipart.FileHeader, maxSize int64) (*CheckedImage, error) {
	if maxSize > 0 && fh.Size > maxSize {
		return nil, apperr.Validation(fmt.Sprintf("%s: file too large", sanitizeFilename(fh.Filename)))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := imageTypes[ext]
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("%s: only jpg, jpeg and png images are allowed", sanitizeFilename(fh.Filename)))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	sniffed, head, err := DetectMIME(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sniff upload: %w", err)
	}
	if sniffed != want {
		f.Close()
		return nil, apperr.Validation(fmt.Sprintf("%s: content does not match extension", sanitizeFilename(fh.Filename)))
	}
	return &CheckedImage{
		Ext:         ext,
		ContentType: want,
		Size:        fh.Size,
		Body:        io.MultiReader(bytes.NewReader(head), f),
		closer:      f,
	}, nil
}

// DetectMIME detects MIME type from the first 512 bytes of data.
func DetectMIME(r io.Reader) (string, []byte, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	return http.DetectContentType(buf[:n]), buf[:n], nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\"", "_")
	name = strings.ReplaceAll(name, "\n", "_")
	name = strings.ReplaceAll(name, "\r", "_")
	return name
}
