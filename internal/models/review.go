package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rated comment on one campground.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Rating    int                `bson:"rating" json:"rating"`
	Body      string             `bson:"body" json:"body"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// WrittenBy reports whether userID (hex) authored the review.
func (r *Review) WrittenBy(userID string) bool {
	return userID != "" && r.Author.Hex() == userID
}

// AuthoredReview pairs a review with its author's username.
type AuthoredReview struct {
	Review
	AuthorName string
}
