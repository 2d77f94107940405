package secrets

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer keeps a secret such as SESSION_SECRET in locked, guarded memory.
type SecureBuffer struct {
	mu  sync.Mutex
	buf *memguard.LockedBuffer
}

// NewSecureBuffer copies data into protected memory and wipes the source slice.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("empty secret")
	}
	return &SecureBuffer{buf: memguard.NewBufferFromBytes(data)}, nil
}

// Use runs fn with the secret bytes. The slice must not escape fn.
func (s *SecureBuffer) Use(fn func(secret []byte) error) error {
	if s == nil {
		return errors.New("secret destroyed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return errors.New("secret destroyed")
	}
	return fn(s.buf.Bytes())
}

// Destroy wipes the buffer.
func (s *SecureBuffer) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
}

// Purge wipes every guarded buffer; call once at process exit.
func Purge() {
	memguard.Purge()
}
