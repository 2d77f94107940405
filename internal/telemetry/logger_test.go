package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("loud", false)
	require.Error(t, err)

	l, err := NewLogger("debug", true)
	require.NoError(t, err)
	l.Debug("ready")
}

func TestLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "test")

	l.Info("campground created", "id", "abc")
	l.Redact("session secret loaded", "secret")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "campground created", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["id"])
	assert.Equal(t, "test", entries[0].ContextMap()["component"])
	assert.Equal(t, "[REDACTED]", entries[1].ContextMap()["secret"])
}

func TestZeroLoggerIsSafe(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() { l.Error("nothing configured") })
}
