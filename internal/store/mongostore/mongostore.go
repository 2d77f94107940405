// Package mongostore implements the store contracts on MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yelpcamp/internal/models"
	"yelpcamp/internal/persistence"
	"yelpcamp/internal/store"
)

const (
	campgroundsCollection = "campgrounds"
	reviewsCollection     = "reviews"
	usersCollection       = "users"

	usernameIndex = "username_unique"
	emailIndex    = "email_unique"
)

var (
	_ store.Campgrounds = (*Campgrounds)(nil)
	_ store.Reviews     = (*Reviews)(nil)
	_ store.Users       = (*Users)(nil)
)

// caseInsensitive matches usernames and emails regardless of case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// EnsureIndexes creates the unique user indexes. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *persistence.Client) error {
	ctx, cancel := db.Ctx(ctx)
	defer cancel()
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(usernameIndex).SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true).SetCollation(caseInsensitive),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type Campgrounds struct {
	db   *persistence.Client
	coll *mongo.Collection
}

func NewCampgrounds(db *persistence.Client) *Campgrounds {
	return &Campgrounds{db: db, coll: db.Collection(campgroundsCollection)}
}

func (c *Campgrounds) List(ctx context.Context) ([]models.Campground, error) {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find campgrounds: %w", err)
	}
	out := []models.Campground{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode campgrounds: %w", err)
	}
	return out, nil
}

func (c *Campgrounds) Get(ctx context.Context, id primitive.ObjectID) (*models.Campground, error) {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	var cg models.Campground
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&cg); err != nil {
		return nil, notFound(err, "find campground")
	}
	return &cg, nil
}

func (c *Campgrounds) Insert(ctx context.Context, cg *models.Campground) error {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	if cg.ID.IsZero() {
		cg.ID = primitive.NewObjectID()
	}
	if cg.CreatedAt.IsZero() {
		cg.CreatedAt = time.Now().UTC()
	}
	if cg.Images == nil {
		cg.Images = []models.Image{}
	}
	if cg.Reviews == nil {
		cg.Reviews = []primitive.ObjectID{}
	}
	if _, err := c.coll.InsertOne(ctx, cg); err != nil {
		return fmt.Errorf("insert campground: %w", err)
	}
	return nil
}

// Update sets the editable fields and appends new images in one document write.
func (c *Campgrounds) Update(ctx context.Context, id primitive.ObjectID, edit store.CampgroundEdit) (*models.Campground, error) {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	set := bson.M{
		"title":       edit.Title,
		"price":       edit.Price,
		"description": edit.Description,
		"location":    edit.Location,
	}
	update := bson.M{"$set": set}
	if edit.Geometry != nil {
		set["geometry"] = edit.Geometry
	} else {
		update["$unset"] = bson.M{"geometry": ""}
	}
	if len(edit.AddImages) > 0 {
		update["$push"] = bson.M{"images": bson.M{"$each": edit.AddImages}}
	}
	var cg models.Campground
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&cg)
	if err != nil {
		return nil, notFound(err, "update campground")
	}
	return &cg, nil
}

func (c *Campgrounds) PullImages(ctx context.Context, id primitive.ObjectID, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}
	return c.updateOne(ctx, id, bson.M{"$pull": bson.M{"images": bson.M{"filename": bson.M{"$in": filenames}}}}, "pull images")
}

func (c *Campgrounds) PushReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	return c.updateOne(ctx, id, bson.M{"$push": bson.M{"reviews": reviewID}}, "push review")
}

func (c *Campgrounds) PullReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	return c.updateOne(ctx, id, bson.M{"$pull": bson.M{"reviews": reviewID}}, "pull review")
}

func (c *Campgrounds) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete campground: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Campgrounds) DeleteAll(ctx context.Context) error {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	if _, err := c.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete campgrounds: %w", err)
	}
	return nil
}

func (c *Campgrounds) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M, op string) error {
	ctx, cancel := c.db.Ctx(ctx)
	defer cancel()
	res, err := c.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type Reviews struct {
	db   *persistence.Client
	coll *mongo.Collection
}

func NewReviews(db *persistence.Client) *Reviews {
	return &Reviews{db: db, coll: db.Collection(reviewsCollection)}
}

func (r *Reviews) Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	var rv models.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rv); err != nil {
		return nil, notFound(err, "find review")
	}
	return &rv, nil
}

// ListByIDs returns existing reviews in the order of ids.
func (r *Reviews) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	if len(ids) == 0 {
		return []models.Review{}, nil
	}
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	var found []models.Review
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Review, len(found))
	for _, rv := range found {
		byID[rv.ID] = rv
	}
	out := make([]models.Review, 0, len(found))
	for _, id := range ids {
		if rv, ok := byID[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *Reviews) Insert(ctx context.Context, rv *models.Review) error {
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	if rv.ID.IsZero() {
		rv.ID = primitive.NewObjectID()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, rv); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *Reviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Reviews) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *Reviews) DeleteAll(ctx context.Context) error {
	ctx, cancel := r.db.Ctx(ctx)
	defer cancel()
	if _, err := r.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	return nil
}

type Users struct {
	db   *persistence.Client
	coll *mongo.Collection
}

func NewUsers(db *persistence.Client) *Users {
	return &Users{db: db, coll: db.Collection(usersCollection)}
}

func (u *Users) Insert(ctx context.Context, usr *models.User) error {
	ctx, cancel := u.db.Ctx(ctx)
	defer cancel()
	if usr.ID.IsZero() {
		usr.ID = primitive.NewObjectID()
	}
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	if _, err := u.coll.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateField(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (u *Users) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := u.db.Ctx(ctx)
	defer cancel()
	var usr models.User
	if err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&usr); err != nil {
		return nil, notFound(err, "find user")
	}
	return &usr, nil
}

func (u *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := u.db.Ctx(ctx)
	defer cancel()
	var usr models.User
	err := u.coll.FindOne(ctx, bson.M{"username": username}, options.FindOne().SetCollation(caseInsensitive)).Decode(&usr)
	if err != nil {
		return nil, notFound(err, "find user")
	}
	return &usr, nil
}

func (u *Users) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	ctx, cancel := u.db.Ctx(ctx)
	defer cancel()
	cur, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func duplicateField(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, emailIndex):
		return &store.DuplicateError{Field: "email"}
	default:
		return &store.DuplicateError{Field: "username"}
	}
}
