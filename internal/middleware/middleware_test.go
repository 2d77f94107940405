package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelpcamp/internal/security"
	"yelpcamp/internal/session"
	"yelpcamp/internal/telemetry"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestRecoveryRendersThroughCallback(t *testing.T) {
	h := Recovery(telemetry.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Oh No, Something Went Wrong"))
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something Went Wrong")
}

func TestSecurityHeadersCSP(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(ContentSecurityPolicy("https://cdn.example"))(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "https://api.mapbox.com")
	assert.Contains(t, csp, "worker-src 'self' blob:")
	assert.Contains(t, csp, "https://cdn.example")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMethodOverride(t *testing.T) {
	var method string
	h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { method = r.Method }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/campgrounds/1?_method=DELETE", nil))
	assert.Equal(t, http.MethodDelete, method)

	req := httptest.NewRequest(http.MethodPost, "/campgrounds/1", strings.NewReader("_method=put&x=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "1", req.PostForm.Get("x"), "body remains readable")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x?_method=TRACE", nil))
	assert.Equal(t, http.MethodPost, method)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?_method=DELETE", nil))
	assert.Equal(t, http.MethodGet, method)
}

func TestCSRFDoubleSubmit(t *testing.T) {
	c := NewCSRF(CSRFConfig{})
	var token string
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = Token(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	post := func(form url.Values, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/campgrounds", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", "http://example.com")
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, post(url.Values{}, "").Code)
	assert.Equal(t, http.StatusForbidden, post(url.Values{CSRFFormField: {"wrong"}}, "").Code)
	assert.Equal(t, http.StatusOK, post(url.Values{CSRFFormField: {token}}, "").Code)
	assert.Equal(t, http.StatusOK, post(url.Values{}, token).Code)
}

func TestMethodOverrideKeepsFormTokenForCSRF(t *testing.T) {
	c := NewCSRF(CSRFConfig{})
	var method string
	h := MethodOverride(c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
	})))

	for _, m := range []string{http.MethodDelete, http.MethodPut} {
		req := httptest.NewRequest(http.MethodPost, "/campgrounds/1?_method="+m, strings.NewReader(CSRFFormField+"=tok"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, m)
		assert.Equal(t, m, method)
	}
}

func TestCSRFRejectsForeignOrigin(t *testing.T) {
	var got error
	cfg := DefaultCSRFConfig()
	cfg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusForbidden)
	}
	c := NewCSRF(cfg)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	c.Middleware(ok).ServeHTTP(httptest.NewRecorder(), req)
	assert.ErrorIs(t, got, ErrCSRFOrigin)
}

func TestRateLimiter(t *testing.T) {
	l := NewIPRateLimit(time.Minute, 2)
	now := time.Now()
	l.now = func() time.Time { return now }
	h := l.Limit(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	now = now.Add(time.Minute)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func withSession(r *http.Request, s *session.Session) *http.Request {
	return r.WithContext(session.WithSession(r.Context(), s))
}

func TestRequireIdentityRedirectsAndKeepsPath(t *testing.T) {
	s := &session.Session{ID: "s"}
	rec := httptest.NewRecorder()
	RequireIdentity(ok).ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil), s))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Equal(t, "/campgrounds/new", s.ReturnTo)
	assert.Equal(t, []string{MsgSignInFirst}, s.PopFlash()[session.FlashError])
}

func TestRequireIdentityForwardsAuthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req = req.WithContext(security.WithIdentity(req.Context(), security.Identity{ID: "u1", Username: "tim"}))
	rec := httptest.NewRecorder()
	RequireIdentity(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadIdentity(t *testing.T) {
	resolve := func(_ context.Context, id string) (security.Identity, error) {
		if id == "gone" {
			return security.Identity{}, ErrUnknownIdentity
		}
		return security.Identity{ID: id, Username: "tim"}, nil
	}
	var got security.Identity
	var found bool
	h := LoadIdentity(resolve, nil, telemetry.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = security.FromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodGet, "/", nil), &session.Session{UserID: "u1"}))
	assert.True(t, found)
	assert.Equal(t, "tim", got.Username)

	s := &session.Session{UserID: "gone"}
	h.ServeHTTP(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodGet, "/", nil), s))
	assert.False(t, found)
	assert.Empty(t, s.UserID)
}

func TestLoadIdentityLookupFailure(t *testing.T) {
	down := errors.New("connection refused")
	resolve := func(context.Context, string) (security.Identity, error) {
		return security.Identity{}, down
	}
	var failed error
	fail := func(w http.ResponseWriter, r *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusInternalServerError)
	}
	reached := false
	h := LoadIdentity(resolve, fail, telemetry.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	s := &session.Session{UserID: "u1"}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil), s))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.ErrorIs(t, failed, down)
	assert.False(t, reached)
	assert.Equal(t, "u1", s.UserID, "still signed in")
}

func TestRequireIdentityReturnToForForms(t *testing.T) {
	cases := []struct {
		name, method, target, referer, want string
	}{
		{"review post", http.MethodPost, "/campgrounds/64b0/reviews", "", "/campgrounds/64b0"},
		{"review delete", http.MethodDelete, "/campgrounds/64b0/reviews/64b1", "", "/campgrounds/64b0"},
		{"create", http.MethodPost, "/campgrounds", "", "/campgrounds"},
		{"same-site referer", http.MethodPost, "/campgrounds/64b0/reviews", "http://example.com/campgrounds/64b0?tab=reviews", "/campgrounds/64b0?tab=reviews"},
		{"foreign referer", http.MethodPost, "/campgrounds/64b0/reviews", "https://evil.example/x", "/campgrounds/64b0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "http://example.com"+tc.target, nil)
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			s := &session.Session{ID: "s"}
			rec := httptest.NewRecorder()
			RequireIdentity(ok).ServeHTTP(rec, withSession(req, s))
			assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			assert.Equal(t, tc.want, s.ReturnTo)
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	var denied bool
	var failed error
	guard := RequireOwnership(Ownership{
		Lookup: func(r *http.Request) (string, error) {
			if r.URL.Path == "/missing" {
				return "", errors.New("not found")
			}
			return "owner", nil
		},
		Deny: func(w http.ResponseWriter, r *http.Request) { denied = true },
		Fail: func(w http.ResponseWriter, r *http.Request, err error) { failed = err },
	})
	as := func(path, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, nil)
		req = req.WithContext(security.WithIdentity(req.Context(), security.Identity{ID: id}))
		rec := httptest.NewRecorder()
		guard(ok).ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, as("/c", "owner").Code)
	assert.False(t, denied)

	as("/c", "intruder")
	assert.True(t, denied)

	as("/missing", "owner")
	assert.Error(t, failed)
}

func TestWAFBlocksMatchingRule(t *testing.T) {
	w, err := NewWAF(`SecRuleEngine On
SecRule ARGS:q "@contains <script" "id:100,phase:1,deny,status:403"`, telemetry.NewNop())
	require.NoError(t, err)
	h := w.Middleware(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds?q=%3Cscript%3E", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds?q=pines", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogRequestRecordsStatus(t *testing.T) {
	h := LogRequest(telemetry.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
