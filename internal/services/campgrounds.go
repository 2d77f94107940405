package services

import (
	"context"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/audit"
	"yelpcamp/internal/geocode"
	"yelpcamp/internal/images"
	"yelpcamp/internal/models"
	"yelpcamp/internal/security"
	"yelpcamp/internal/store"
	"yelpcamp/internal/telemetry"
	"yelpcamp/internal/validation"
)

// Campgrounds manages listings with their images and reviews.
type Campgrounds struct {
	campgrounds store.Campgrounds
	reviews     store.Reviews
	users       store.Users
	images      images.Store
	geocoder    geocode.Geocoder
	audit       audit.Recorder
	log         telemetry.Logger
}

type CampgroundDeps struct {
	Campgrounds store.Campgrounds
	Reviews     store.Reviews
	Users       store.Users
	Images      images.Store
	Geocoder    geocode.Geocoder
	Audit       audit.Recorder
	Log         telemetry.Logger
}

func NewCampgrounds(d CampgroundDeps) *Campgrounds {
	if d.Geocoder == nil {
		d.Geocoder = geocode.Noop{}
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	return &Campgrounds{
		campgrounds: d.Campgrounds,
		reviews:     d.Reviews,
		users:       d.Users,
		images:      d.Images,
		geocoder:    d.Geocoder,
		audit:       d.Audit,
		log:         d.Log,
	}
}

func (s *Campgrounds) List(ctx context.Context) ([]models.Campground, error) {
	cs, err := s.campgrounds.List(ctx)
	if err != nil {
		return nil, translate(err, "", "list campgrounds")
	}
	return cs, nil
}

// Get loads one campground; a malformed or unknown id is a not-found failure.
func (s *Campgrounds) Get(ctx context.Context, id string) (*models.Campground, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, translate(err, MsgCampgroundNotFound, "get campground")
	}
	c, err := s.campgrounds.Get(ctx, oid)
	if err != nil {
		return nil, translate(err, MsgCampgroundNotFound, "get campground")
	}
	return c, nil
}

// Owner returns the author id of a campground, for the ownership guard.
func (s *Campgrounds) Owner(ctx context.Context, id string) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Author.Hex(), nil
}

// Detail resolves the author and reviews of a campground for its show page.
func (s *Campgrounds) Detail(ctx context.Context, id string) (*models.CampgroundDetail, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByIDs(ctx, c.Reviews)
	if err != nil {
		return nil, translate(err, "", "list reviews")
	}
	ids := make([]primitive.ObjectID, 0, len(reviews)+1)
	ids = append(ids, c.Author)
	for _, r := range reviews {
		ids = append(ids, r.Author)
	}
	names, err := s.AuthorNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	d := &models.CampgroundDetail{Campground: *c, AuthorName: names[c.Author]}
	for _, r := range reviews {
		d.Reviews = append(d.Reviews, models.AuthoredReview{Review: r, AuthorName: names[r.Author]})
	}
	return d, nil
}

// AuthorNames maps user ids to usernames. Unknown ids are absent from the result.
func (s *Campgrounds) AuthorNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "", "list users")
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

// Create geocodes the location, stores the uploads and inserts the campground
// with actor as its permanent author.
func (s *Campgrounds) Create(ctx context.Context, actor security.Identity, in validation.CampgroundInput, uploads []*multipart.FileHeader) (*models.Campground, error) {
	author, err := store.ParseID(actor.ID)
	if err != nil {
		return nil, apperr.AuthRequired("You must be signed in first!")
	}
	geometry, _ := s.locate(ctx, in.Location)
	imgs, err := images.UploadAll(ctx, s.images, uploads, s.log)
	if err != nil {
		return nil, uploadError(err)
	}
	c := &models.Campground{
		Title:       in.Title,
		Price:       *in.Price,
		Description: in.Description,
		Location:    in.Location,
		Geometry:    geometry,
		Images:      imgs,
		Author:      author,
		Reviews:     []primitive.ObjectID{},
	}
	if err := s.campgrounds.Insert(ctx, c); err != nil {
		s.release(ctx, imgs)
		return nil, translate(err, "", "insert campground")
	}
	s.record(actor, audit.ActionCampgroundCreate, c.ID.Hex())
	s.log.Info("campground created", "id", c.ID.Hex(), "author", actor.ID, "images", len(imgs))
	return c, nil
}

// Update merges the validated fields, appends uploads and releases the images
// named in in.DeleteImages. Only the author may update.
func (s *Campgrounds) Update(ctx context.Context, actor security.Identity, id string, in validation.CampgroundInput, uploads []*multipart.FileHeader) (*models.Campground, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.OwnedBy(actor.ID) {
		s.deny(actor, id)
		return nil, apperr.Forbidden(MsgNoPermission)
	}

	geometry := current.Geometry
	if in.Location != current.Location {
		if g, err := s.locate(ctx, in.Location); err == nil {
			geometry = g
		}
	}
	added, err := images.UploadAll(ctx, s.images, uploads, s.log)
	if err != nil {
		return nil, uploadError(err)
	}
	updated, err := s.campgrounds.Update(ctx, current.ID, store.CampgroundEdit{
		Title:       in.Title,
		Price:       *in.Price,
		Description: in.Description,
		Location:    in.Location,
		Geometry:    geometry,
		AddImages:   added,
	})
	if err != nil {
		s.release(ctx, added)
		return nil, translate(err, MsgCampgroundNotFound, "update campground")
	}

	if drop := ownedFilenames(updated.Images, in.DeleteImages); len(drop) > 0 {
		_ = images.DeleteAll(ctx, s.images, drop, s.log)
		if err := s.campgrounds.PullImages(ctx, updated.ID, drop); err != nil {
			return nil, translate(err, MsgCampgroundNotFound, "pull images")
		}
		updated.Images = withoutFilenames(updated.Images, drop)
	}
	s.record(actor, audit.ActionCampgroundUpdate, updated.ID.Hex())
	return updated, nil
}

// Delete releases the stored images, deletes the reviews, then the campground.
// The steps are not atomic: a failure part way leaves the earlier steps applied.
func (s *Campgrounds) Delete(ctx context.Context, actor security.Identity, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !c.OwnedBy(actor.ID) {
		s.deny(actor, id)
		return apperr.Forbidden(MsgNoPermission)
	}
	s.release(ctx, c.Images)
	n, err := s.reviews.DeleteMany(ctx, c.Reviews)
	if err != nil {
		return translate(err, "", "delete reviews")
	}
	if err := s.campgrounds.Delete(ctx, c.ID); err != nil {
		return translate(err, MsgCampgroundNotFound, "delete campground")
	}
	s.record(actor, audit.ActionCampgroundDelete, c.ID.Hex())
	s.log.Info("campground deleted", "id", c.ID.Hex(), "reviews", n, "images", len(c.Images))
	return nil
}

func (s *Campgrounds) locate(ctx context.Context, location string) (*models.Geometry, error) {
	g, err := s.geocoder.Forward(ctx, location)
	if err != nil {
		s.log.Warn("geocode failed", "location", location, "err", err)
		return nil, err
	}
	return g, nil
}

func (s *Campgrounds) release(ctx context.Context, imgs []models.Image) {
	names := make([]string, 0, len(imgs))
	for _, img := range imgs {
		names = append(names, img.Filename)
	}
	_ = images.DeleteAll(ctx, s.images, names, s.log)
}

func (s *Campgrounds) record(actor security.Identity, action, resource string) {
	if err := s.audit.Log(audit.Event{Actor: actor.ID, Action: action, Resource: resource}); err != nil {
		s.log.Warn("audit write failed", "action", action, "err", err)
	}
}

func (s *Campgrounds) deny(actor security.Identity, resource string) {
	if err := s.audit.Log(audit.Event{Actor: actor.ID, Action: audit.ActionAccessDenied, Resource: resource, Result: audit.ResultFailure}); err != nil {
		s.log.Warn("audit write failed", "err", err)
	}
}

func uploadError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(err)
}

// ownedFilenames keeps only requested filenames that belong to the campground.
func ownedFilenames(imgs []models.Image, requested []string) []string {
	have := make(map[string]struct{}, len(imgs))
	for _, img := range imgs {
		have[img.Filename] = struct{}{}
	}
	var out []string
	for _, f := range requested {
		if _, ok := have[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func withoutFilenames(imgs []models.Image, drop []string) []models.Image {
	gone := make(map[string]struct{}, len(drop))
	for _, f := range drop {
		gone[f] = struct{}{}
	}
	kept := make([]models.Image, 0, len(imgs))
	for _, img := range imgs {
		if _, ok := gone[img.Filename]; !ok {
			kept = append(kept, img)
		}
	}
	return kept
}
