package validation

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

// SanitizePath cleans target and ensures it stays within baseDir.
func SanitizePath(baseDir, target string) (string, error) {
	clean := filepath.Clean("/" + target)
	if strings.Contains(clean, "..") {
		return "", errors.New("invalid path segments")
	}
	base := filepath.Clean(baseDir)
	full := filepath.Join(base, clean)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", errors.New("path escapes base directory")
	}
	return full, nil
}

// LocalRedirect returns raw when it is a same-origin path, else fallback.
func LocalRedirect(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return raw
}

// ParseMultipart bounds a multipart form by total bytes and file count.
// Non-multipart bodies are parsed as urlencoded forms.
func ParseMultipart(r *http.Request, maxBytes int64, maxFiles int) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseForm()
	}
	if r.MultipartForm != nil {
		return countFiles(r, maxFiles)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return errors.New("invalid multipart form")
	}
	return countFiles(r, maxFiles)
}

func countFiles(r *http.Request, maxFiles int) error {
	count := 0
	for _, files := range r.MultipartForm.File {
		count += len(files)
	}
	if maxFiles > 0 && count > maxFiles {
		return errors.New("too many files")
	}
	return nil
}
