package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTValidator validates HMAC-signed JWTs with issuer/audience/alg whitelists and clock skew.
type JWTValidator struct {
	Issuer            string
	Audiences         []string
	Algorithms        []string
	KeyFunc           jwt.Keyfunc
	ClockSkew         time.Duration
	RequireExpiration bool
	RequireSubject    bool
}

// Validate parses and validates a token string, returning its claims when valid.
func (v JWTValidator) Validate(_ context.Context, tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.Algorithms),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.ClockSkew),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.RequireExpiration {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, v.KeyFunc)
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if tok.Method.Alg() == jwt.SigningMethodNone.Alg() {
		return nil, errors.New("none algorithm not allowed")
	}
	if len(v.Audiences) > 0 && !audContains(claims, v.Audiences) {
		return nil, errors.New("invalid audience")
	}
	if v.RequireSubject {
		sub, err := claims.GetSubject()
		if err != nil || strings.TrimSpace(sub) == "" {
			return nil, errors.New("subject required")
		}
	}
	return claims, nil
}

func audContains(claims jwt.MapClaims, allowed []string) bool {
	aud, err := claims.GetAudience()
	if err != nil {
		return false
	}
	for _, a := range aud {
		for _, want := range allowed {
			if a == want {
				return true
			}
		}
	}
	return false
}

// HMACKeyFunc returns a Keyfunc that only accepts HMAC-signed tokens.
func HMACKeyFunc(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}
}
