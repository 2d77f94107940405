// Package services holds the campground, review and user state transitions.
// Handlers call services; services call stores and external collaborators.
package services

import (
	"errors"
	"fmt"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/store"
)

// User-visible messages shared with the web layer.
const (
	MsgCampgroundNotFound = "Cannot find that campground!"
	MsgReviewNotFound     = "Review not found"
	MsgNoPermission       = "You do not have permission to do that!"
	MsgBadCredentials     = "Password or username is incorrect"
)

// translate maps store sentinels to apperr kinds, wrapping everything else as internal.
func translate(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		nf := apperr.NotFound(notFoundMsg)
		nf.Err = err
		return nf
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
