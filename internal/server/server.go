package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"yelpcamp/internal/config"
	"yelpcamp/internal/telemetry"
)

// Server owns the http.Server and its shutdown grace.
type Server struct {
	srv   *http.Server
	cert  string
	key   string
	grace time.Duration
	log   telemetry.Logger
}

// New builds an http.Server with the configured timeouts. Strict TLS applies only
// when both cert and key are set; plain HTTP is left for a fronting proxy.
func New(handler http.Handler, cfg config.HTTPProperties, log telemetry.Logger) *Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		srv.TLSConfig = tlsConfig()
	}
	return &Server{srv: srv, cert: cfg.TLSCertFile, key: cfg.TLSKeyFile, grace: cfg.ShutdownGrace, log: log}
}

// TLS reports whether the server terminates TLS itself.
func (s *Server) TLS() bool {
	return s.srv.TLSConfig != nil
}

// Handler exposes the wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then drains connections for the shutdown grace.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", s.srv.Addr, "tls", s.TLS())
		var err error
		if s.TLS() {
			err = s.srv.ListenAndServeTLS(s.cert, s.key)
		} else {
			err = s.srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "grace", s.grace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("graceful shutdown failed", "err", err)
		return err
	}
	return <-errCh
}

func tlsConfig() *tls.Config {
	return &tls.Config{
		MinVersion:       tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},
		SessionTicketsDisabled: true,
	}
}
