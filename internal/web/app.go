// Package web is the HTTP surface: routes, guards and the handlers that
// turn form posts into service calls and service results into pages.
package web

import (
	"net/http"

	"yelpcamp/internal/audit"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/services"
	"yelpcamp/internal/session"
	"yelpcamp/internal/telemetry"
	"yelpcamp/internal/validation"
	"yelpcamp/internal/views"
)

// Options are the request-level limits and page settings.
type Options struct {
	Production bool
	MapToken   string
	BodyLimit  int64
	// MaxUploadBytes bounds the in-memory part of a multipart form.
	MaxUploadBytes int64
	MaxFiles       int
	ImageHosts     []string
}

// Deps is everything the HTTP layer talks to. Only the services, views and sessions are required.
type Deps struct {
	Campgrounds *services.Campgrounds
	Reviews     *services.Reviews
	Users       *services.Users
	Validator   *validation.Validator
	Views       *views.Renderer
	Sessions    *session.Manager
	CSRF        *middleware.CSRFConfig
	WAF         *middleware.WAF
	AuthLimiter *middleware.RateLimiter
	GraphQL     http.Handler
	Uploads     http.Handler
	Audit       audit.Recorder
	Log         telemetry.Logger
	Options     Options
}

type App struct {
	campgrounds *services.Campgrounds
	reviews     *services.Reviews
	users       *services.Users
	validator   *validation.Validator
	views       *views.Renderer
	sessions    *session.Manager
	csrf        *middleware.CSRFMiddleware
	waf         *middleware.WAF
	authLimiter *middleware.RateLimiter
	graphql     http.Handler
	uploads     http.Handler
	audit       audit.Recorder
	log         telemetry.Logger
	opts        Options
}

func New(d Deps) *App {
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Options.BodyLimit <= 0 {
		d.Options.BodyLimit = 20 << 20
	}
	if d.Options.MaxUploadBytes <= 0 {
		d.Options.MaxUploadBytes = 32 << 20
	}
	app := &App{
		campgrounds: d.Campgrounds,
		reviews:     d.Reviews,
		users:       d.Users,
		validator:   d.Validator,
		views:       d.Views,
		sessions:    d.Sessions,
		waf:         d.WAF,
		authLimiter: d.AuthLimiter,
		graphql:     d.GraphQL,
		uploads:     d.Uploads,
		audit:       d.Audit,
		log:         d.Log,
		opts:        d.Options,
	}
	if d.CSRF != nil {
		cfg := *d.CSRF
		cfg.OnError = app.csrfFailed
		app.csrf = middleware.NewCSRF(cfg)
	}
	if app.authLimiter != nil {
		app.authLimiter.OnLimit = app.tooManyRequests
	}
	if app.waf != nil {
		app.waf.OnBlock = app.blocked
	}
	return app
}
