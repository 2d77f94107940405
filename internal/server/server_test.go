package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelpcamp/internal/config"
	"yelpcamp/internal/telemetry"
)

func TestNewPlainHTTP(t *testing.T) {
	s := New(http.NotFoundHandler(), config.HTTPProperties{Addr: ":0", ReadTimeout: time.Second}, telemetry.NewNop())
	assert.False(t, s.TLS())
	assert.Equal(t, time.Second, s.srv.ReadTimeout)
}

func TestNewTLSWhenCertAndKeySet(t *testing.T) {
	s := New(http.NotFoundHandler(), config.HTTPProperties{TLSCertFile: "c.pem", TLSKeyFile: "k.pem"}, telemetry.NewNop())
	require.True(t, s.TLS())
	assert.Equal(t, uint16(0x0303), s.srv.TLSConfig.MinVersion)
	assert.True(t, s.srv.TLSConfig.SessionTicketsDisabled)
}

func TestRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), config.HTTPProperties{Addr: addr, ShutdownGrace: time.Second}, telemetry.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
