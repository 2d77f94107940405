// Package session keeps per-client state server-side: the bound user, the
// post-login return path and one-shot flash messages.
package session

import (
	"context"
	"errors"
	"time"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// ErrNotFound is returned by stores for missing or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record keyed by the id in the signed cookie.
type Session struct {
	ID        string              `bson:"_id" json:"id"`
	UserID    string              `bson:"userId,omitempty" json:"userId,omitempty"`
	ReturnTo  string              `bson:"returnTo,omitempty" json:"returnTo,omitempty"`
	Flash     map[string][]string `bson:"flash,omitempty" json:"flash,omitempty"`
	ExpiresAt time.Time           `bson:"expiresAt" json:"expiresAt"`

	dirty bool
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// AddFlash queues a message shown on the next render.
func (s *Session) AddFlash(kind, msg string) {
	if s.Flash == nil {
		s.Flash = make(map[string][]string)
	}
	s.Flash[kind] = append(s.Flash[kind], msg)
	s.dirty = true
}

// PopFlash returns all queued messages and clears them.
func (s *Session) PopFlash() map[string][]string {
	if len(s.Flash) == 0 {
		return nil
	}
	out := s.Flash
	s.Flash = nil
	s.dirty = true
	return out
}

// SetUser binds an identity to the session.
func (s *Session) SetUser(userID string) {
	s.UserID = userID
	s.dirty = true
}

// ClearUser unbinds the identity.
func (s *Session) ClearUser() {
	if s.UserID == "" {
		return
	}
	s.UserID = ""
	s.dirty = true
}

// SetReturnTo remembers where to send the client after login.
func (s *Session) SetReturnTo(path string) {
	s.ReturnTo = path
	s.dirty = true
}

// TakeReturnTo returns the remembered path and clears it.
func (s *Session) TakeReturnTo() string {
	rt := s.ReturnTo
	if rt != "" {
		s.ReturnTo = ""
		s.dirty = true
	}
	return rt
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session. It is never nil: requests that
// bypassed the loader get a detached session that is not persisted.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
