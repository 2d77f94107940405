package crypto

import (
	crypto_rand "crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes; each derived key is bound to exactly one use.
const (
	PurposeSessionToken = "yelpcamp session token v1"
)

// RandomBytes returns cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := crypto_rand.Read(b); err != nil {
		return nil, fmt.Errorf("rand: %w", err)
	}
	return b, nil
}

// RandomString returns a URL-safe base64 encoded random string of n random bytes.
func RandomString(n int) (string, error) {
	b, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveKey uses HKDF-SHA256 to expand a secret into a purpose-bound key of outLen bytes.
func DeriveKey(secret, salt []byte, purpose string, outLen int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("hkdf: empty secret")
	}
	h := hkdf.New(sha256.New, secret, salt, []byte(purpose))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return out, nil
}
