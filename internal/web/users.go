package web

import (
	"errors"
	"net/http"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/models"
	"yelpcamp/internal/security"
	"yelpcamp/internal/services"
	"yelpcamp/internal/session"
	"yelpcamp/internal/validation"
	"yelpcamp/internal/views"
)

const (
	MsgWelcome     = "Welcome to Yelp Camp!"
	MsgWelcomeBack = "welcome back!"
	MsgGoodbye     = "Goodbye!"

	registerPath = "/register"
	afterLogin   = "/campgrounds"
)

func (app *App) registerForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, views.PageRegister, "Register", nil)
}

func (app *App) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.renderError(w, r, apperr.Validation(err.Error()))
		return
	}
	in, out := app.validator.Register(r.PostForm)
	if invalid, ok := out.(validation.Invalid); ok {
		app.flashRedirect(w, r, session.FlashError, invalid.Message(), registerPath)
		return
	}
	u, err := app.users.Register(r.Context(), in)
	if apperr.Is(err, apperr.KindConflict) {
		app.flashRedirect(w, r, session.FlashError, apperr.MessageOf(err), registerPath)
		return
	}
	if err != nil {
		app.renderError(w, r, err)
		return
	}
	if err := app.signIn(w, r, u); err != nil {
		app.renderError(w, r, err)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgWelcome, afterLogin)
}

// loginForm keeps a local returnTo query parameter for after the login.
func (app *App) loginForm(w http.ResponseWriter, r *http.Request) {
	if rt := r.URL.Query().Get("returnTo"); rt != "" {
		if local := validation.LocalRedirect(rt, ""); local != "" {
			session.FromContext(r.Context()).SetReturnTo(local)
		}
	}
	app.render(w, r, http.StatusOK, views.PageLogin, "Login", nil)
}

func (app *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.renderError(w, r, apperr.Validation(err.Error()))
		return
	}
	in, out := app.validator.Login(r.PostForm)
	if _, ok := out.(validation.Invalid); ok {
		app.flashRedirect(w, r, session.FlashError, services.MsgBadCredentials, middleware.LoginPath)
		return
	}
	u, err := app.users.Authenticate(r.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		app.flashRedirect(w, r, session.FlashError, services.MsgBadCredentials, middleware.LoginPath)
		return
	}
	if err != nil {
		app.renderError(w, r, err)
		return
	}

	s := session.FromContext(r.Context())
	returnTo := validation.LocalRedirect(s.TakeReturnTo(), afterLogin)
	if err := app.signIn(w, r, u); err != nil {
		app.renderError(w, r, err)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgWelcomeBack, returnTo)
}

func (app *App) logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if id, ok := security.FromContext(r.Context()); ok {
		app.users.Logout(id.ID)
	}
	s.ClearUser()
	s.ReturnTo = ""
	if err := app.sessions.Renew(r.Context(), w, s); err != nil {
		app.renderError(w, r, apperr.Internal(err))
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgGoodbye, afterLogin)
}

// signIn rotates the session id and binds the user to it.
func (app *App) signIn(w http.ResponseWriter, r *http.Request, u *models.User) error {
	s := session.FromContext(r.Context())
	if err := app.sessions.Renew(r.Context(), w, s); err != nil {
		return apperr.Internal(err)
	}
	s.SetUser(u.ID.Hex())
	return nil
}
