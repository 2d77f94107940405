package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"yelpcamp/internal/telemetry"
)

// Tokens signs and verifies the session id carried by the cookie.
type Tokens interface {
	Sign(sid string) (string, error)
	Parse(ctx context.Context, token string) (string, error)
	TTL() time.Duration
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Manager loads the session before a handler runs and persists it afterwards.
type Manager struct {
	store  Store
	tokens Tokens
	cookie CookieConfig
	log    telemetry.Logger
	now    func() time.Time
}

func NewManager(store Store, tokens Tokens, cookie CookieConfig, log telemetry.Logger) *Manager {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return &Manager{store: store, tokens: tokens, cookie: cookie, log: log, now: time.Now}
}

// Load attaches the client's session to the request context. A missing or
// forged cookie starts a fresh session. Changes are saved after next returns.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.load(r)
		if err != nil {
			m.log.Error("session load failed", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if s.dirty {
			if err := m.setCookie(w, s.ID); err != nil {
				m.log.Error("session cookie failed", "err", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			// A fresh session is only worth storing once it holds something.
			s.dirty = false
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		if s.dirty {
			if err := m.Save(r.Context(), s); err != nil {
				m.log.Error("session save failed", "err", err, "sid_prefix", prefix(s.ID))
			}
		}
	})
}

// Save persists s and extends its lifetime.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	s.ExpiresAt = m.now().Add(m.tokens.TTL()).UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Renew moves the session to a new id, defeating fixation across login and logout.
// Must run before the response is written.
func (m *Manager) Renew(ctx context.Context, w http.ResponseWriter, s *Session) error {
	old := s.ID
	s.ID = uuid.NewString()
	s.dirty = true
	if err := m.setCookie(w, s.ID); err != nil {
		return err
	}
	if old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			m.log.Warn("delete renewed session failed", "err", err)
		}
	}
	return nil
}

func (m *Manager) load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return m.fresh(), nil
	}
	sid, err := m.tokens.Parse(r.Context(), c.Value)
	if err != nil {
		return m.fresh(), nil
	}
	s, err := m.store.Get(r.Context(), sid)
	if errors.Is(err, ErrNotFound) {
		// Signed by us but never stored or already expired: keep the id.
		return &Session{ID: sid}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (m *Manager) fresh() *Session {
	return &Session{ID: uuid.NewString(), dirty: true}
}

func (m *Manager) setCookie(w http.ResponseWriter, sid string) error {
	token, err := m.tokens.Sign(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    token,
		Path:     m.cookie.Path,
		MaxAge:   int(m.tokens.TTL().Seconds()),
		Expires:  m.now().Add(m.tokens.TTL()),
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
	return nil
}

func prefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
