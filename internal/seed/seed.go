// Package seed fills an empty database with sample campgrounds owned by one user.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/models"
	"yelpcamp/internal/store"
	"yelpcamp/internal/telemetry"
	"yelpcamp/internal/validation"
)

// Owners is satisfied by services.Users.
type Owners interface {
	Ensure(ctx context.Context, in validation.RegisterInput) (*models.User, error)
}

type Options struct {
	Count    int
	Owner    string
	Email    string
	Password string
}

type Seeder struct {
	owners      Owners
	campgrounds store.Campgrounds
	reviews     store.Reviews
	log         telemetry.Logger
	rng         *rand.Rand
	now         func() time.Time
}

func New(owners Owners, campgrounds store.Campgrounds, reviews store.Reviews, log telemetry.Logger) *Seeder {
	return &Seeder{
		owners:      owners,
		campgrounds: campgrounds,
		reviews:     reviews,
		log:         log,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:         time.Now,
	}
}

// Run replaces every campground and review with opts.Count generated campgrounds.
func (s *Seeder) Run(ctx context.Context, opts Options) (int, error) {
	if opts.Count <= 0 {
		return 0, errors.New("seed: count must be positive")
	}
	if opts.Owner == "" || opts.Password == "" {
		return 0, errors.New("seed: owner and password are required")
	}
	if opts.Email == "" {
		opts.Email = opts.Owner + "@yelpcamp.local"
	}
	owner, err := s.owners.Ensure(ctx, validation.RegisterInput{Username: opts.Owner, Email: opts.Email, Password: opts.Password})
	if err != nil {
		return 0, fmt.Errorf("seed: ensure owner: %w", err)
	}
	if err := s.reviews.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("seed: clear reviews: %w", err)
	}
	if err := s.campgrounds.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("seed: clear campgrounds: %w", err)
	}
	for i := 0; i < opts.Count; i++ {
		c := s.campground(owner.ID)
		if err := s.campgrounds.Insert(ctx, c); err != nil {
			return i, fmt.Errorf("seed: insert campground %d: %w", i, err)
		}
	}
	s.log.Info("seeded campgrounds", "count", opts.Count, "owner", opts.Owner)
	return opts.Count, nil
}

func (s *Seeder) campground(author primitive.ObjectID) *models.Campground {
	loc := cities[s.rng.IntN(len(cities))]
	first := s.rng.IntN(len(sampleImages))
	second := (first + 1 + s.rng.IntN(len(sampleImages)-1)) % len(sampleImages)
	return &models.Campground{
		Title:       descriptors[s.rng.IntN(len(descriptors))] + " " + places[s.rng.IntN(len(places))],
		Price:       float64(10 + s.rng.IntN(20)),
		Description: lorem,
		Location:    loc.Name + ", " + loc.State,
		Geometry:    models.Point(loc.Longitude, loc.Latitude),
		Images: []models.Image{
			{URL: sampleImages[first], Filename: fmt.Sprintf("seed/%d", first)},
			{URL: sampleImages[second], Filename: fmt.Sprintf("seed/%d", second)},
		},
		Author:    author,
		Reviews:   []primitive.ObjectID{},
		CreatedAt: s.now().UTC(),
	}
}
