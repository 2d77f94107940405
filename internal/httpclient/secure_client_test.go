package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureClientBlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = New(time.Second).Do(req)
	assert.ErrorIs(t, err, ErrBlockedAddress)
}

func TestGetJSONReadsBodyAfterTimeoutWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"camp"}`))
	}))
	defer srv.Close()

	c := New(time.Second)
	c.Blocked = nil
	var out struct{ Name string }
	require.NoError(t, GetJSON(context.Background(), c, srv.URL, &out))
	assert.Equal(t, "camp", out.Name)
}

func TestGetJSONRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var out map[string]any
	err := GetJSON(context.Background(), srv.Client(), srv.URL, &out)
	assert.ErrorContains(t, err, "401")
}
