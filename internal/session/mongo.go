package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yelpcamp/internal/persistence"
)

const sessionsCollection = "sessions"

// MongoStore keeps sessions in a collection whose TTL index expires them.
type MongoStore struct {
	db   *persistence.Client
	coll *mongo.Collection
}

func NewMongoStore(db *persistence.Client) *MongoStore {
	return &MongoStore{db: db, coll: db.Collection(sessionsCollection)}
}

// EnsureIndexes creates the expiry index; documents vanish once expiresAt passes.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := m.db.Ctx(ctx)
	defer cancel()
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("session_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := m.db.Ctx(ctx)
	defer cancel()
	var s Session
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	// The TTL monitor runs about once a minute.
	if s.expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MongoStore) Save(ctx context.Context, s *Session) error {
	ctx, cancel := m.db.Ctx(ctx)
	defer cancel()
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := m.db.Ctx(ctx)
	defer cancel()
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
