package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastHasher() PasswordHasher {
	p := DefaultArgon2()
	p.Memory = 8 * 1024
	return PasswordHasher{Params: p}
}

func TestPasswordRoundTrip(t *testing.T) {
	h := fastHasher()
	encoded, err := h.Hash("monkey")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=4$"))

	ok, err := h.Verify("monkey", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("donkey", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := h.Hash("monkey")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other, "salts must differ")
}

func TestVerifyMalformed(t *testing.T) {
	h := fastHasher()
	for _, bad := range []string{"", "plaintext", "$argon2i$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=19$m=x$AA$AA"} {
		ok, err := h.Verify("pw", bad)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestSessionTokens(t *testing.T) {
	tokens, err := NewSessionTokens(testKey, time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Sign("sid-123")
	require.NoError(t, err)

	sid, err := tokens.Parse(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)
}

func TestSessionTokensRejects(t *testing.T) {
	tokens, err := NewSessionTokens(testKey, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		signed, err := tokens.Sign("sid")
		require.NoError(t, err)
		tokens.now = time.Now
		_, err = tokens.Parse(context.Background(), signed)
		assert.Error(t, err)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewSessionTokens([]byte("fedcba9876543210fedcba9876543210"), time.Hour)
		require.NoError(t, err)
		signed, err := other.Sign("sid")
		require.NoError(t, err)
		_, err = tokens.Parse(context.Background(), signed)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "sid", "iss": "yelpcamp"})
		signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(context.Background(), signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse(context.Background(), "not.a.jwt")
		assert.Error(t, err)
	})
}

func TestNewSessionTokensValidation(t *testing.T) {
	_, err := NewSessionTokens([]byte("short"), time.Hour)
	assert.Error(t, err)
	_, err = NewSessionTokens(testKey, 0)
	assert.Error(t, err)
}
