package web

import (
	"mime/multipart"
	"net/http"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/models"
	"yelpcamp/internal/security"
	"yelpcamp/internal/session"
	"yelpcamp/internal/validation"
	"yelpcamp/internal/views"
)

const (
	MsgCampgroundCreated = "Successfully made a new campground!"
	MsgCampgroundUpdated = "Successfully updated campground!"
	MsgCampgroundDeleted = "Successfully deleted campground!"

	imageField = "image"
)

// campgroundIndex is the data of the index page.
type campgroundIndex struct {
	Campgrounds []models.Campground
	Features    models.FeatureCollection
}

func (app *App) home(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, views.PageHome, "Home", nil)
}

func (app *App) campgroundIndex(w http.ResponseWriter, r *http.Request) {
	cs, err := app.campgrounds.List(r.Context())
	if err != nil {
		app.renderError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, views.PageCampgroundIndex, "All Campgrounds", campgroundIndex{
		Campgrounds: cs,
		Features:    models.NewFeatureCollection(cs),
	})
}

func (app *App) campgroundNew(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, views.PageCampgroundNew, "New Campground", nil)
}

func (app *App) campgroundCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := security.FromContext(r.Context())
	in, uploads, err := app.campgroundForm(r)
	if err != nil {
		app.renderError(w, r, err)
		return
	}
	c, err := app.campgrounds.Create(r.Context(), actor, in, uploads)
	if err != nil {
		app.fail(w, r, err, "")
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgCampgroundCreated, campgroundPath(c.ID.Hex()))
}

func (app *App) campgroundShow(w http.ResponseWriter, r *http.Request) {
	d, err := app.campgrounds.Detail(r.Context(), param(r, "id"))
	if err != nil {
		app.fail(w, r, err, "")
		return
	}
	app.render(w, r, http.StatusOK, views.PageCampgroundShow, d.Title, d)
}

func (app *App) campgroundEdit(w http.ResponseWriter, r *http.Request) {
	c, err := app.campgrounds.Get(r.Context(), param(r, "id"))
	if err != nil {
		app.fail(w, r, err, "")
		return
	}
	app.render(w, r, http.StatusOK, views.PageCampgroundEdit, "Edit Campground", c)
}

func (app *App) campgroundUpdate(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	actor, _ := security.FromContext(r.Context())
	in, uploads, err := app.campgroundForm(r)
	if err != nil {
		app.renderError(w, r, err)
		return
	}
	c, err := app.campgrounds.Update(r.Context(), actor, id, in, uploads)
	if err != nil {
		app.fail(w, r, err, id)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgCampgroundUpdated, campgroundPath(c.ID.Hex()))
}

func (app *App) campgroundDelete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	actor, _ := security.FromContext(r.Context())
	if err := app.campgrounds.Delete(r.Context(), actor, id); err != nil {
		app.fail(w, r, err, id)
		return
	}
	app.flashRedirect(w, r, session.FlashSuccess, MsgCampgroundDeleted, "/campgrounds")
}

// campgroundForm parses a create or edit form, urlencoded or multipart, and
// validates it. Every violated field is reported in one 400.
func (app *App) campgroundForm(r *http.Request) (validation.CampgroundInput, []*multipart.FileHeader, error) {
	if err := validation.ParseMultipart(r, app.opts.MaxUploadBytes, app.opts.MaxFiles); err != nil {
		return validation.CampgroundInput{}, nil, apperr.Validation(err.Error())
	}
	in, out := app.validator.Campground(r.PostForm)
	if invalid, ok := out.(validation.Invalid); ok {
		return in, nil, invalid.Err()
	}
	var uploads []*multipart.FileHeader
	if r.MultipartForm != nil {
		uploads = r.MultipartForm.File[imageField]
	}
	return in, uploads, nil
}
