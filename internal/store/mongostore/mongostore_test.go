package mongostore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"yelpcamp/internal/store"
)

func TestNotFoundMapping(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments, "find"), store.ErrNotFound)

	other := errors.New("connection reset")
	err := notFound(other, "find campground")
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "find campground")
}

func TestDuplicateFieldFromIndexName(t *testing.T) {
	var dup *store.DuplicateError

	err := duplicateField(errors.New("E11000 duplicate key error collection: yelp-camp.users index: email_unique dup key"))
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	err = duplicateField(errors.New("E11000 duplicate key error collection: yelp-camp.users index: username_unique dup key"))
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}
