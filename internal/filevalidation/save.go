package filevalidation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveExclusive writes r to path, refusing to overwrite and to exceed maxBytes.
// It returns the SHA-256 of the stored bytes.
func SaveExclusive(r io.Reader, path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	lim := &io.LimitedReader{R: r, N: maxBytes + 1}
	h := sha256.New()
	written, err := io.Copy(io.MultiWriter(dst, h), lim)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("copy: %w", err)
	}
	if written > maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("file exceeds max size %d bytes", maxBytes)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
