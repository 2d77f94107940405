package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/audit"
	"yelpcamp/internal/images"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/security"
	"yelpcamp/internal/services"
	"yelpcamp/internal/session"
	"yelpcamp/internal/views"
)

var errPanic = errors.New("panic while serving request")

// Routes wires every endpoint. Chains:
//   - standard: request id, recovery, logging, headers, body limit, optional WAF
//   - dynamic:  session, identity and CSRF for pages and forms
//   - protected: dynamic plus the identity guard
func (app *App) Routes() http.Handler {
	standard := alice.New(
		middleware.RequestID,
		middleware.Recovery(app.log, app.panicked),
		middleware.LogRequest(app.log),
		middleware.SecurityHeaders(middleware.ContentSecurityPolicy(app.opts.ImageHosts...)),
		middleware.BodyLimit(app.opts.BodyLimit),
	)
	if app.waf != nil {
		standard = standard.Append(app.waf.Middleware)
	}

	dynamic := alice.New(app.sessions.Load, middleware.LoadIdentity(app.resolveIdentity, app.renderError, app.log))
	if app.csrf != nil {
		dynamic = dynamic.Append(app.csrf.Middleware)
	}
	protected := dynamic.Append(middleware.RequireIdentity)
	owner := protected.Append(middleware.RequireOwnership(middleware.Ownership{
		Lookup: func(r *http.Request) (string, error) {
			return app.campgrounds.Owner(r.Context(), param(r, "id"))
		},
		Deny: app.denyCampground,
		Fail: func(w http.ResponseWriter, r *http.Request, err error) {
			app.fail(w, r, err, param(r, "id"))
		},
	}))
	reviewAuthor := protected.Append(middleware.RequireOwnership(middleware.Ownership{
		Lookup: func(r *http.Request) (string, error) {
			return app.reviews.Author(r.Context(), param(r, "reviewId"))
		},
		Deny: app.denyCampground,
		Fail: func(w http.ResponseWriter, r *http.Request, err error) {
			app.fail(w, r, err, param(r, "id"))
		},
	}))
	auth := dynamic
	if app.authLimiter != nil {
		auth = auth.Append(app.authLimiter.Limit)
	}

	mux := pat.New()
	mux.Get("/", dynamic.ThenFunc(app.home))
	mux.Get("/health", http.HandlerFunc(health))

	mux.Get("/campgrounds", dynamic.ThenFunc(app.campgroundIndex))
	mux.Get("/campgrounds/new", protected.ThenFunc(app.campgroundNew))
	mux.Post("/campgrounds", protected.ThenFunc(app.campgroundCreate))
	mux.Get("/campgrounds/:id", dynamic.ThenFunc(app.campgroundShow))
	mux.Get("/campgrounds/:id/edit", owner.ThenFunc(app.campgroundEdit))
	mux.Put("/campgrounds/:id", owner.ThenFunc(app.campgroundUpdate))
	mux.Patch("/campgrounds/:id", owner.ThenFunc(app.campgroundUpdate))
	mux.Del("/campgrounds/:id", owner.ThenFunc(app.campgroundDelete))

	mux.Post("/campgrounds/:id/reviews", protected.ThenFunc(app.reviewCreate))
	mux.Del("/campgrounds/:id/reviews/:reviewId", reviewAuthor.ThenFunc(app.reviewDelete))

	mux.Get("/register", dynamic.ThenFunc(app.registerForm))
	mux.Post("/register", auth.ThenFunc(app.register))
	mux.Get("/login", dynamic.ThenFunc(app.loginForm))
	mux.Post("/login", auth.ThenFunc(app.login))
	mux.Get("/logout", dynamic.ThenFunc(app.logout))

	mux.Get("/static/", http.StripPrefix("/static/", views.Static()))
	if app.uploads != nil {
		mux.Get(images.URLPrefix, app.uploads)
	}
	if app.graphql != nil {
		mux.Post("/graphql", app.graphql)
	}
	mux.NotFound = dynamic.ThenFunc(app.notFound)

	return standard.Then(middleware.MethodOverride(mux))
}

// param reads a pattern variable that pat placed in the query.
func param(r *http.Request, name string) string {
	return r.URL.Query().Get(":" + name)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (app *App) resolveIdentity(ctx context.Context, userID string) (security.Identity, error) {
	u, err := app.users.Get(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return security.Identity{}, middleware.ErrUnknownIdentity
	}
	if err != nil {
		return security.Identity{}, err
	}
	return security.Identity{ID: u.ID.Hex(), Username: u.Username}, nil
}

func (app *App) denyCampground(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	actor, _ := security.FromContext(r.Context())
	app.auditLog(audit.Event{Actor: actor.ID, Action: audit.ActionAccessDenied, Resource: r.Method + " " + r.URL.Path, Result: audit.ResultFailure})
	app.flashRedirect(w, r, session.FlashError, services.MsgNoPermission, campgroundPath(id))
}

func (app *App) auditLog(ev audit.Event) {
	if err := app.audit.Log(ev); err != nil {
		app.log.Warn("audit write failed", "action", ev.Action, "err", err)
	}
}
