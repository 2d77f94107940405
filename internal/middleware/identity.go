package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yelpcamp/internal/security"
	"yelpcamp/internal/session"
	"yelpcamp/internal/telemetry"
)

const (
	LoginPath      = "/login"
	MsgSignInFirst = "You must be signed in first!"
)

// ErrUnknownIdentity tells LoadIdentity that the session points at a vanished user.
var ErrUnknownIdentity = errors.New("unknown identity")

// IdentityResolver maps the session's user id to an identity.
type IdentityResolver func(ctx context.Context, userID string) (security.Identity, error)

// LoadIdentity binds the session's user to the request context.
// A session naming an unknown user is signed out. Any other lookup failure
// goes to fail; with a nil fail the request continues anonymously.
func LoadIdentity(resolve IdentityResolver, fail func(http.ResponseWriter, *http.Request, error), log telemetry.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s.UserID == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := resolve(r.Context(), s.UserID)
			switch {
			case errors.Is(err, ErrUnknownIdentity):
				s.ClearUser()
			case err != nil:
				log.Warn("resolve identity failed", "err", err, "request_id", GetRequestID(r.Context()))
				if fail != nil {
					fail(w, r, err)
					return
				}
			default:
				r = r.WithContext(security.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity lets authenticated requests through. Others have their path
// kept for after login, get an error flash and are redirected to the login page.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch security.Authenticate(r.Context()).(type) {
		case security.Authenticated:
			next.ServeHTTP(w, r)
		default:
			s := session.FromContext(r.Context())
			s.SetReturnTo(returnTarget(r))
			s.AddFlash(session.FlashError, MsgSignInFirst)
			http.Redirect(w, r, LoginPath, http.StatusFound)
		}
	})
}

// returnTarget is the page to come back to after login. Only GET targets can be
// replayed by a redirect; other methods fall back to a same-site Referer, then
// to the parent resource of the path.
func returnTarget(r *http.Request) string {
	if r.Method == http.MethodGet {
		return originalURI(r)
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && strings.EqualFold(ref.Host, r.Host) {
		return ref.RequestURI()
	}
	return parentPath(r.URL.Path)
}

// parentPath maps a form target onto the page that shows it:
// /campgrounds/1/reviews/2 and /campgrounds/1/reviews -> /campgrounds/1, /campgrounds/1 -> /campgrounds/1.
func parentPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) >= 2 && parts[0] == "campgrounds" {
		return "/campgrounds/" + parts[1]
	}
	if len(parts) >= 1 && parts[0] == "campgrounds" {
		return "/campgrounds"
	}
	return "/"
}

// originalURI is the request target as sent; routers may have rewritten r.URL.RawQuery.
func originalURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}
