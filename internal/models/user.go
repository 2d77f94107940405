package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity. Hash is an encoded argon2id digest.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Hash      string             `bson:"hash" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
