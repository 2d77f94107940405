// Package memstore keeps campgrounds, reviews and users in process memory.
// It backs tests and `SESSION_STORE=memory` development runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/models"
	"yelpcamp/internal/store"
)

type state struct {
	mu          sync.RWMutex
	campgrounds map[primitive.ObjectID]models.Campground
	reviews     map[primitive.ObjectID]models.Review
	users       map[primitive.ObjectID]models.User
	now         func() time.Time
}

// Store groups the three in-memory repositories over one shared state.
type Store struct {
	st *state
}

// New returns an empty store.
func New() *Store {
	return &Store{st: &state{
		campgrounds: make(map[primitive.ObjectID]models.Campground),
		reviews:     make(map[primitive.ObjectID]models.Review),
		users:       make(map[primitive.ObjectID]models.User),
		now:         time.Now,
	}}
}

func (s *Store) Campgrounds() *Campgrounds { return &Campgrounds{st: s.st} }
func (s *Store) Reviews() *Reviews         { return &Reviews{st: s.st} }
func (s *Store) Users() *Users             { return &Users{st: s.st} }

var (
	_ store.Campgrounds = (*Campgrounds)(nil)
	_ store.Reviews     = (*Reviews)(nil)
	_ store.Users       = (*Users)(nil)
)

type Campgrounds struct{ st *state }

func (c *Campgrounds) List(_ context.Context) ([]models.Campground, error) {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	out := make([]models.Campground, 0, len(c.st.campgrounds))
	for _, cg := range c.st.campgrounds {
		out = append(out, cloneCampground(cg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (c *Campgrounds) Get(_ context.Context, id primitive.ObjectID) (*models.Campground, error) {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	cg, ok := c.st.campgrounds[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneCampground(cg)
	return &out, nil
}

func (c *Campgrounds) Insert(_ context.Context, cg *models.Campground) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if cg.ID.IsZero() {
		cg.ID = primitive.NewObjectID()
	}
	if cg.CreatedAt.IsZero() {
		cg.CreatedAt = c.st.now().UTC()
	}
	c.st.campgrounds[cg.ID] = cloneCampground(*cg)
	return nil
}

func (c *Campgrounds) Update(_ context.Context, id primitive.ObjectID, edit store.CampgroundEdit) (*models.Campground, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	cg, ok := c.st.campgrounds[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cg.Title = edit.Title
	cg.Price = edit.Price
	cg.Description = edit.Description
	cg.Location = edit.Location
	cg.Geometry = edit.Geometry
	cg.Images = append(append([]models.Image(nil), cg.Images...), edit.AddImages...)
	c.st.campgrounds[id] = cg
	out := cloneCampground(cg)
	return &out, nil
}

func (c *Campgrounds) PullImages(_ context.Context, id primitive.ObjectID, filenames []string) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	cg, ok := c.st.campgrounds[id]
	if !ok {
		return store.ErrNotFound
	}
	drop := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		drop[f] = struct{}{}
	}
	kept := make([]models.Image, 0, len(cg.Images))
	for _, img := range cg.Images {
		if _, gone := drop[img.Filename]; !gone {
			kept = append(kept, img)
		}
	}
	cg.Images = kept
	c.st.campgrounds[id] = cg
	return nil
}

func (c *Campgrounds) PushReview(_ context.Context, id, reviewID primitive.ObjectID) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	cg, ok := c.st.campgrounds[id]
	if !ok {
		return store.ErrNotFound
	}
	cg.Reviews = append(append([]primitive.ObjectID(nil), cg.Reviews...), reviewID)
	c.st.campgrounds[id] = cg
	return nil
}

func (c *Campgrounds) PullReview(_ context.Context, id, reviewID primitive.ObjectID) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	cg, ok := c.st.campgrounds[id]
	if !ok {
		return store.ErrNotFound
	}
	kept := make([]primitive.ObjectID, 0, len(cg.Reviews))
	for _, r := range cg.Reviews {
		if r != reviewID {
			kept = append(kept, r)
		}
	}
	cg.Reviews = kept
	c.st.campgrounds[id] = cg
	return nil
}

func (c *Campgrounds) Delete(_ context.Context, id primitive.ObjectID) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if _, ok := c.st.campgrounds[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.st.campgrounds, id)
	return nil
}

func (c *Campgrounds) DeleteAll(_ context.Context) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.campgrounds = make(map[primitive.ObjectID]models.Campground)
	return nil
}

type Reviews struct{ st *state }

func (r *Reviews) Get(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	rv, ok := r.st.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rv, nil
}

// ListByIDs returns the reviews that still exist, in the order of ids.
func (r *Reviews) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	out := make([]models.Review, 0, len(ids))
	for _, id := range ids {
		if rv, ok := r.st.reviews[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *Reviews) Insert(_ context.Context, rv *models.Review) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if rv.ID.IsZero() {
		rv.ID = primitive.NewObjectID()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = r.st.now().UTC()
	}
	r.st.reviews[rv.ID] = *rv
	return nil
}

func (r *Reviews) Delete(_ context.Context, id primitive.ObjectID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.reviews[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.st.reviews, id)
	return nil
}

func (r *Reviews) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.st.reviews[id]; ok {
			delete(r.st.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *Reviews) DeleteAll(_ context.Context) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.reviews = make(map[primitive.ObjectID]models.Review)
	return nil
}

type Users struct{ st *state }

// Insert enforces the same case-insensitive uniqueness as the Mongo indexes.
func (u *Users) Insert(_ context.Context, usr *models.User) error {
	u.st.mu.Lock()
	defer u.st.mu.Unlock()
	for _, existing := range u.st.users {
		if strings.EqualFold(existing.Username, usr.Username) {
			return &store.DuplicateError{Field: "username"}
		}
		if strings.EqualFold(existing.Email, usr.Email) {
			return &store.DuplicateError{Field: "email"}
		}
	}
	if usr.ID.IsZero() {
		usr.ID = primitive.NewObjectID()
	}
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = u.st.now().UTC()
	}
	u.st.users[usr.ID] = *usr
	return nil
}

func (u *Users) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u.st.mu.RLock()
	defer u.st.mu.RUnlock()
	usr, ok := u.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &usr, nil
}

func (u *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u.st.mu.RLock()
	defer u.st.mu.RUnlock()
	for _, usr := range u.st.users {
		if strings.EqualFold(usr.Username, username) {
			out := usr
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *Users) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	u.st.mu.RLock()
	defer u.st.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if usr, ok := u.st.users[id]; ok {
			out = append(out, usr)
		}
	}
	return out, nil
}

func cloneCampground(c models.Campground) models.Campground {
	c.Images = append([]models.Image(nil), c.Images...)
	c.Reviews = append([]primitive.ObjectID(nil), c.Reviews...)
	if c.Geometry != nil {
		g := *c.Geometry
		g.Coordinates = append([]float64(nil), g.Coordinates...)
		c.Geometry = &g
	}
	return c
}
