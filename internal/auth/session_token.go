package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionIssuer   = "yelpcamp"
	sessionAudience = "yelpcamp-web"
)

// SessionTokens signs the session id carried in the session cookie.
// The token holds no user data; the session record lives server-side.
type SessionTokens struct {
	key       []byte
	ttl       time.Duration
	now       func() time.Time
	validator JWTValidator
}

// NewSessionTokens builds a signer/validator over a derived HMAC key.
func NewSessionTokens(key []byte, ttl time.Duration) (*SessionTokens, error) {
	if len(key) < 32 {
		return nil, errors.New("session token key must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	k := append([]byte(nil), key...)
	return &SessionTokens{
		key: k,
		ttl: ttl,
		now: time.Now,
		validator: JWTValidator{
			Issuer:            sessionIssuer,
			Audiences:         []string{sessionAudience},
			Algorithms:        []string{jwt.SigningMethodHS256.Alg()},
			KeyFunc:           HMACKeyFunc(k),
			ClockSkew:         30 * time.Second,
			RequireExpiration: true,
			RequireSubject:    true,
		},
	}, nil
}

// TTL is the lifetime of issued tokens.
func (t *SessionTokens) TTL() time.Duration { return t.ttl }

// Sign issues a token for the session id.
func (t *SessionTokens) Sign(sid string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sid,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns the session id it carries.
func (t *SessionTokens) Parse(ctx context.Context, token string) (string, error) {
	claims, err := t.validator.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	sid, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("session token subject: %w", err)
	}
	return sid, nil
}
