package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/audit"
	"yelpcamp/internal/models"
	"yelpcamp/internal/store"
	"yelpcamp/internal/telemetry"
	"yelpcamp/internal/validation"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New(MsgBadCredentials)

// PasswordHasher is satisfied by auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Users registers and authenticates identities.
type Users struct {
	users  store.Users
	hasher PasswordHasher
	audit  audit.Recorder
	log    telemetry.Logger

	dummyOnce sync.Once
	dummy     string
}

func NewUsers(users store.Users, hasher PasswordHasher, rec audit.Recorder, log telemetry.Logger) *Users {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Users{users: users, hasher: hasher, audit: rec, log: log}
}

// Register hashes the password and inserts the user. Duplicate usernames or
// emails are conflicts carrying a user-visible message.
func (s *Users) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &models.User{Username: in.Username, Email: strings.ToLower(in.Email), Hash: hash}
	if err := s.users.Insert(ctx, u); err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return nil, apperr.Conflict("A user with the given "+dup.Field+" is already registered", err)
		}
		return nil, translate(err, "", "insert user")
	}
	s.record(u.ID.Hex(), audit.ActionRegister, audit.ResultSuccess, nil)
	return u, nil
}

// Authenticate returns the user whose password matches, or ErrInvalidCredentials.
func (s *Users) Authenticate(ctx context.Context, in validation.LoginInput) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same hashing work as a real check.
		_, _ = s.hasher.Verify(in.Password, s.dummyHash())
		s.record("", audit.ActionLoginFailed, audit.ResultFailure, map[string]string{"username": in.Username})
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, translate(err, "", "get user")
	}
	ok, err := s.hasher.Verify(in.Password, u.Hash)
	if err != nil {
		s.log.Error("stored hash unreadable", "user", u.ID.Hex(), "err", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.record(u.ID.Hex(), audit.ActionLoginFailed, audit.ResultFailure, nil)
		return nil, ErrInvalidCredentials
	}
	s.record(u.ID.Hex(), audit.ActionLogin, audit.ResultSuccess, nil)
	return u, nil
}

// Get loads a user by hex id.
func (s *Users) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, translate(err, "User not found", "get user")
	}
	u, err := s.users.Get(ctx, oid)
	if err != nil {
		return nil, translate(err, "User not found", "get user")
	}
	return u, nil
}

// Ensure returns the named user, registering it first when missing.
func (s *Users) Ensure(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, in.Username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, translate(err, "", "get user")
	}
	return s.Register(ctx, in)
}

// Logout records the end of a signed-in session.
func (s *Users) Logout(userID string) {
	s.record(userID, audit.ActionLogout, audit.ResultSuccess, nil)
}

func (s *Users) dummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.log.Warn("dummy hash failed", "err", err)
		}
		s.dummy = h
	})
	return s.dummy
}

func (s *Users) record(actor, action, result string, meta map[string]string) {
	if err := s.audit.Log(audit.Event{Actor: actor, Action: action, Result: result, Metadata: meta}); err != nil {
		s.log.Warn("audit write failed", "action", action, "err", err)
	}
}
