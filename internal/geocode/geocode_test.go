package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapboxForward(t *testing.T) {
	var gotPath, gotToken, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"type":"Point","coordinates":[-97.74,30.27]}}]}`))
	}))
	defer srv.Close()

	g, err := NewMapbox(srv.Client(), srv.URL, "tok").Forward(context.Background(), "Austin, Texas")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Point", g.Type)
	assert.Equal(t, []float64{-97.74, 30.27}, g.Coordinates)
	assert.Equal(t, "/geocoding/v5/mapbox.places/Austin, Texas.json", gotPath)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, "1", gotLimit)
}

func TestMapboxNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g, err := NewMapbox(srv.Client(), srv.URL, "tok").Forward(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestMapboxUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewMapbox(srv.Client(), srv.URL, "bad").Forward(context.Background(), "Austin")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	g, err := Noop{}.Forward(context.Background(), "Austin")
	assert.NoError(t, err)
	assert.Nil(t, g)
}
