package services

import (
	"context"
	"slices"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/audit"
	"yelpcamp/internal/models"
	"yelpcamp/internal/security"
	"yelpcamp/internal/store"
	"yelpcamp/internal/telemetry"
	"yelpcamp/internal/validation"
)

// Reviews manages reviews attached to campgrounds.
type Reviews struct {
	campgrounds store.Campgrounds
	reviews     store.Reviews
	audit       audit.Recorder
	log         telemetry.Logger
}

func NewReviews(campgrounds store.Campgrounds, reviews store.Reviews, rec audit.Recorder, log telemetry.Logger) *Reviews {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Reviews{campgrounds: campgrounds, reviews: reviews, audit: rec, log: log}
}

// Create inserts a review by actor and appends it to the campground.
func (s *Reviews) Create(ctx context.Context, actor security.Identity, campgroundID string, in validation.ReviewInput) (*models.Review, error) {
	author, err := store.ParseID(actor.ID)
	if err != nil {
		return nil, apperr.AuthRequired("You must be signed in first!")
	}
	cid, err := store.ParseID(campgroundID)
	if err != nil {
		return nil, translate(err, MsgCampgroundNotFound, "create review")
	}
	if _, err := s.campgrounds.Get(ctx, cid); err != nil {
		return nil, translate(err, MsgCampgroundNotFound, "create review")
	}
	r := &models.Review{Rating: *in.Rating, Body: in.Body, Author: author}
	if err := s.reviews.Insert(ctx, r); err != nil {
		return nil, translate(err, "", "insert review")
	}
	if err := s.campgrounds.PushReview(ctx, cid, r.ID); err != nil {
		if derr := s.reviews.Delete(ctx, r.ID); derr != nil {
			s.log.Warn("orphaned review", "review", r.ID.Hex(), "err", derr)
		}
		return nil, translate(err, MsgCampgroundNotFound, "push review")
	}
	s.record(actor, audit.ActionReviewCreate, r.ID.Hex(), audit.ResultSuccess)
	return r, nil
}

// Author returns the author id of a review, for the authorship guard.
func (s *Reviews) Author(ctx context.Context, reviewID string) (string, error) {
	r, err := s.get(ctx, reviewID)
	if err != nil {
		return "", err
	}
	return r.Author.Hex(), nil
}

// Delete pulls the review from its campground and deletes it. Only the author may
// delete, and only through the campground that lists the review.
func (s *Reviews) Delete(ctx context.Context, actor security.Identity, campgroundID, reviewID string) error {
	r, err := s.get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.WrittenBy(actor.ID) {
		s.record(actor, audit.ActionAccessDenied, reviewID, audit.ResultFailure)
		return apperr.Forbidden(MsgNoPermission)
	}
	cid, err := store.ParseID(campgroundID)
	if err != nil {
		return translate(err, MsgCampgroundNotFound, "delete review")
	}
	c, err := s.campgrounds.Get(ctx, cid)
	if err != nil {
		return translate(err, MsgCampgroundNotFound, "delete review")
	}
	if !slices.Contains(c.Reviews, r.ID) {
		return apperr.NotFound(MsgReviewNotFound)
	}
	if err := s.campgrounds.PullReview(ctx, cid, r.ID); err != nil {
		return translate(err, MsgCampgroundNotFound, "pull review")
	}
	if err := s.reviews.Delete(ctx, r.ID); err != nil {
		return translate(err, MsgReviewNotFound, "delete review")
	}
	s.record(actor, audit.ActionReviewDelete, reviewID, audit.ResultSuccess)
	return nil
}

func (s *Reviews) get(ctx context.Context, reviewID string) (*models.Review, error) {
	rid, err := store.ParseID(reviewID)
	if err != nil {
		return nil, translate(err, MsgReviewNotFound, "get review")
	}
	r, err := s.reviews.Get(ctx, rid)
	if err != nil {
		return nil, translate(err, MsgReviewNotFound, "get review")
	}
	return r, nil
}

func (s *Reviews) record(actor security.Identity, action, resource, result string) {
	if err := s.audit.Log(audit.Event{Actor: actor.ID, Action: action, Resource: resource, Result: result}); err != nil {
		s.log.Warn("audit write failed", "action", action, "err", err)
	}
}
