// Package store declares the persistence contracts for campgrounds, reviews and users.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DuplicateError names the unique field that collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "duplicate " + e.Field }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// CampgroundEdit carries the mutable fields of an update. Author and reviews are never edited.
type CampgroundEdit struct {
	Title       string
	Price       float64
	Description string
	Location    string
	Geometry    *models.Geometry
	AddImages   []models.Image
}

// CampgroundReader is the read side, enough for rendering and the GraphQL API.
type CampgroundReader interface {
	List(ctx context.Context) ([]models.Campground, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Campground, error)
}

type Campgrounds interface {
	CampgroundReader
	Insert(ctx context.Context, c *models.Campground) error
	Update(ctx context.Context, id primitive.ObjectID, edit CampgroundEdit) (*models.Campground, error)
	PullImages(ctx context.Context, id primitive.ObjectID, filenames []string) error
	PushReview(ctx context.Context, id, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, id, reviewID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
}

type Reviews interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error)
	Insert(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteAll(ctx context.Context) error
}

type Users interface {
	Insert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// ParseID converts a route parameter into an ObjectID, mapping garbage to ErrNotFound.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}
