package web

import (
	"net/http"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/security"
	"yelpcamp/internal/services"
	"yelpcamp/internal/session"
	"yelpcamp/internal/views"
)

const (
	MsgPageNotFound = "Page Not Found"
	MsgTooMany      = "Too many attempts, please try again later"
	MsgBadForm      = "Form expired, please reload the page and try again"
	MsgBlocked      = "Request blocked"
)

// page assembles the data every template sees and consumes the session's flash.
func (app *App) page(r *http.Request, title string, data any) views.Page {
	p := views.Page{
		Title:    title,
		CSRF:     middleware.Token(r.Context()),
		MapToken: app.opts.MapToken,
		Data:     data,
	}
	if id, ok := security.FromContext(r.Context()); ok {
		p.User = &id
	}
	flash := session.FromContext(r.Context()).PopFlash()
	p.Success = flash[session.FlashSuccess]
	p.Errors = flash[session.FlashError]
	return p
}

func (app *App) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := app.views.Render(w, status, name, app.page(r, title, data)); err != nil {
		app.renderError(w, r, apperr.Internal(err))
	}
}

// renderError is the funnel: every failure a handler cannot answer with a
// redirect ends up here as a rendered error page.
func (app *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	reqID := middleware.GetRequestID(r.Context())
	if status >= http.StatusInternalServerError {
		app.log.Error("request failed", "err", err, "request_id", reqID, "path", r.URL.Path)
	} else {
		app.log.Debug("request rejected", "err", err, "status", status, "request_id", reqID)
	}

	data := views.ErrorData{Status: status, Message: apperr.MessageOf(err)}
	if !app.opts.Production && status >= http.StatusInternalServerError {
		data.Detail = err.Error()
	}
	if rerr := app.views.Render(w, status, views.PageError, app.page(r, "Error", data)); rerr != nil {
		app.log.Error("error page failed", "err", rerr, "request_id", reqID)
		http.Error(w, data.Message, status)
	}
}

func (app *App) notFound(w http.ResponseWriter, r *http.Request) {
	app.renderError(w, r, apperr.NotFound(MsgPageNotFound))
}

func (app *App) panicked(w http.ResponseWriter, r *http.Request) {
	app.renderError(w, r, apperr.Internal(errPanic))
}

func (app *App) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	app.renderError(w, r, apperr.RateLimited(MsgTooMany))
}

func (app *App) csrfFailed(w http.ResponseWriter, r *http.Request, err error) {
	app.log.Warn("csrf rejected", "err", err, "request_id", middleware.GetRequestID(r.Context()), "ip", middleware.IPFromRequest(r))
	e := apperr.Forbidden(MsgBadForm)
	e.Err = err
	app.renderError(w, r, e)
}

func (app *App) blocked(w http.ResponseWriter, r *http.Request, status int) {
	app.renderError(w, r, &apperr.Error{Kind: apperr.KindForbidden, Status: status, Message: MsgBlocked})
}

// flashRedirect queues a flash and answers with a 302.
func (app *App) flashRedirect(w http.ResponseWriter, r *http.Request, kind, msg, to string) {
	session.FromContext(r.Context()).AddFlash(kind, msg)
	http.Redirect(w, r, to, http.StatusFound)
}

// fail answers service failures on campground routes. Missing campgrounds and
// denied mutations become flash redirects; the rest goes to the funnel.
func (app *App) fail(w http.ResponseWriter, r *http.Request, err error, campgroundID string) {
	switch {
	case apperr.Is(err, apperr.KindNotFound) && apperr.MessageOf(err) == services.MsgCampgroundNotFound:
		app.flashRedirect(w, r, session.FlashError, services.MsgCampgroundNotFound, "/campgrounds")
	case apperr.Is(err, apperr.KindForbidden):
		app.flashRedirect(w, r, session.FlashError, services.MsgNoPermission, campgroundPath(campgroundID))
	case apperr.Is(err, apperr.KindAuthRequired):
		app.flashRedirect(w, r, session.FlashError, middleware.MsgSignInFirst, middleware.LoginPath)
	default:
		app.renderError(w, r, err)
	}
}

func campgroundPath(id string) string {
	return "/campgrounds/" + id
}
