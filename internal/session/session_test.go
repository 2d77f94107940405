package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelpcamp/internal/auth"
	"yelpcamp/internal/telemetry"
)

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	tokens, err := auth.NewSessionTokens([]byte("0123456789abcdef0123456789abcdef"), 7*24*time.Hour)
	require.NoError(t, err)
	store := NewMemoryStore()
	return NewManager(store, tokens, CookieConfig{Name: "session"}, telemetry.NewNop()), store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestFlashIsOneShot(t *testing.T) {
	s := &Session{ID: "x"}
	s.AddFlash(FlashSuccess, "Created new review!")
	s.AddFlash(FlashError, "nope")
	assert.True(t, s.Dirty())

	got := s.PopFlash()
	assert.Equal(t, []string{"Created new review!"}, got[FlashSuccess])
	assert.Equal(t, []string{"nope"}, got[FlashError])
	assert.Nil(t, s.PopFlash())
}

func TestReturnToIsTakenOnce(t *testing.T) {
	s := &Session{}
	s.SetReturnTo("/campgrounds/new")
	assert.Equal(t, "/campgrounds/new", s.TakeReturnTo())
	assert.Equal(t, "", s.TakeReturnTo())
}

func TestLoadIssuesCookieAndPersistsChanges(t *testing.T) {
	m, store := newManager(t)

	write := m.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).AddFlash(FlashSuccess, "welcome back!")
	}))
	rec := httptest.NewRecorder()
	write.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	c := sessionCookie(t, rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
	assert.Equal(t, 1, store.Len())

	var flashes map[string][]string
	read := m.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flashes = FromContext(r.Context()).PopFlash()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	read.ServeHTTP(rec, req)
	assert.Equal(t, []string{"welcome back!"}, flashes[FlashSuccess])
	assert.Nil(t, sessionCookie(t, rec), "existing session keeps its cookie")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	read.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, flashes, "flash shown once")
}

func TestUntouchedSessionIsNotStored(t *testing.T) {
	m, store := newManager(t)
	h := m.Load(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, sessionCookie(t, rec))
	assert.Equal(t, 0, store.Len())
}

func TestForgedCookieStartsFreshSession(t *testing.T) {
	m, _ := newManager(t)
	var sid string
	h := m.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = FromContext(r.Context()).ID
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, sid)
	assert.NotNil(t, sessionCookie(t, rec))
}

func TestRenewMovesSession(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()
	s := &Session{ID: "old", UserID: "u1"}
	require.NoError(t, m.Save(ctx, s))

	rec := httptest.NewRecorder()
	require.NoError(t, m.Renew(ctx, rec, s))
	assert.NotEqual(t, "old", s.ID)
	assert.True(t, s.Dirty())
	assert.NotNil(t, sessionCookie(t, rec))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &Session{ID: "a", ExpiresAt: time.Now().Add(-time.Minute)}))
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromContextWithoutLoader(t *testing.T) {
	s := FromContext(context.Background())
	require.NotNil(t, s)
	s.AddFlash(FlashError, "ignored")
}
