package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		out := Authenticate(context.Background())
		un, ok := out.(Unauthenticated)
		require.True(t, ok)
		assert.Equal(t, ReasonNoSession, un.Reason)
	})

	t.Run("blank identity is not an identity", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{Username: "ghost"})
		_, ok := Authenticate(ctx).(Unauthenticated)
		assert.True(t, ok)
	})

	t.Run("bound identity", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{ID: "64b7f0c2a1b2c3d4e5f60718", Username: "colt"})
		auth, ok := Authenticate(ctx).(Authenticated)
		require.True(t, ok)
		assert.Equal(t, "colt", auth.Identity.Username)
	})
}
