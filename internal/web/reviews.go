package web

import (
	"net/http"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/security"
	"yelpcamp/internal/session"
	"yelpcamp/internal/validation"
)

const (
	MsgReviewCreated = "Created new review!"
	MsgReviewDeleted = "Successfully deleted review!"
)

func (app *App) reviewCreate(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	actor, _ := security.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		app.renderError(w, r, apperr.Validation(err.Error()))
		return
	}
	in, out := app.validator.Review(r.PostForm)
	if invalid, ok := out.(validation.Invalid); ok {
		app.renderError(w, r, invalid.Err())
		return
	}
	if _, err := app.reviews.Create(r.Context(), actor, id, in); err != nil {
		app.fail(w, r, err, id)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgReviewCreated, campgroundPath(id))
}

func (app *App) reviewDelete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	actor, _ := security.FromContext(r.Context())
	if err := app.reviews.Delete(r.Context(), actor, id, param(r, "reviewId")); err != nil {
		app.fail(w, r, err, id)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgReviewDeleted, campgroundPath(id))
}
