package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	securecrypto "yelpcamp/internal/crypto"
)

// CSRF failures passed to CSRFConfig.OnError.
var (
	ErrCSRFOrigin   = errors.New("origin not allowed")
	ErrCSRFMissing  = errors.New("missing csrf token")
	ErrCSRFMismatch = errors.New("invalid csrf token")
)

// CSRFFormField is the hidden form input carrying the token.
const CSRFFormField = "_csrf"

// CSRFConfig defines cookie/header names and token settings.
type CSRFConfig struct {
	CookieName     string
	HeaderName     string
	Path           string
	MaxAge         time.Duration
	SameSite       http.SameSite
	Secure         bool
	TokenBytes     int
	ValidateOrigin bool
	AllowedHosts   []string
	// OnError renders a rejected request. Defaults to a plain 403.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultCSRFConfig returns defaults suited to server-rendered forms.
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName:     "csrf_token",
		HeaderName:     "X-CSRF-Token",
		Path:           "/",
		MaxAge:         12 * time.Hour,
		SameSite:       http.SameSiteLaxMode,
		TokenBytes:     32,
		ValidateOrigin: true,
	}
}

// CSRFMiddleware implements double-submit-cookie CSRF defense.
type CSRFMiddleware struct {
	cfg CSRFConfig
}

// NewCSRF constructs CSRFMiddleware with defaults merged.
func NewCSRF(cfg CSRFConfig) *CSRFMiddleware {
	def := DefaultCSRFConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.TokenBytes == 0 {
		cfg.TokenBytes = def.TokenBytes
	}
	if cfg.OnError == nil {
		cfg.OnError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusForbidden)
		}
	}
	return &CSRFMiddleware{cfg: cfg}
}

// Token returns the CSRF token for templates, empty when CSRF is off.
func Token(ctx context.Context) string {
	s, _ := ctx.Value(csrfTokenKey).(string)
	return s
}

// WithToken stores a token in ctx; used when CSRF is disabled and for tests.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey, token)
}

// Middleware enforces CSRF token checks on state-changing methods and exposes
// the current token through Token.
func (c *CSRFMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isSafeMethod(r.Method) {
			if err := c.Validate(r); err != nil {
				c.cfg.OnError(w, r, err)
				return
			}
		}
		token, err := c.ensureToken(w, r)
		if err != nil {
			c.cfg.OnError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
	})
}

// Validate compares the submitted token with the cookie.
func (c *CSRFMiddleware) Validate(r *http.Request) error {
	if isSafeMethod(r.Method) {
		return nil
	}
	if c.cfg.ValidateOrigin && !originAllowed(r, c.cfg.AllowedHosts) {
		return ErrCSRFOrigin
	}
	submitted := r.Header.Get(c.cfg.HeaderName)
	if submitted == "" {
		submitted = r.PostFormValue(CSRFFormField)
	}
	if submitted == "" {
		return ErrCSRFMissing
	}
	cookie, err := r.Cookie(c.cfg.CookieName)
	if err != nil {
		return ErrCSRFMissing
	}
	if !constantTimeEqual(submitted, cookie.Value) {
		return ErrCSRFMismatch
	}
	return nil
}

func (c *CSRFMiddleware) issueToken(w http.ResponseWriter) (string, error) {
	token, err := securecrypto.RandomString(c.cfg.TokenBytes)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    token,
		Path:     c.cfg.Path,
		MaxAge:   int(c.cfg.MaxAge.Seconds()),
		Secure:   c.cfg.Secure,
		HttpOnly: true,
		SameSite: c.cfg.SameSite,
	})
	return token, nil
}

func (c *CSRFMiddleware) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if ck, err := r.Cookie(c.cfg.CookieName); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return c.issueToken(w)
}

func isSafeMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// originAllowed checks Origin, falling back to Referer. Requests carrying
// neither are let through; the token check still applies.
func originAllowed(r *http.Request, allowedHosts []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
		if origin == "" {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if len(allowedHosts) > 0 {
		for _, h := range allowedHosts {
			if strings.EqualFold(host, h) {
				return true
			}
		}
		return false
	}
	reqHost := r.Host
	if h, _, ok := strings.Cut(reqHost, ":"); ok {
		reqHost = h
	}
	return strings.EqualFold(host, reqHost)
}
