package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)) }

	require.NoError(t, l.Log(Event{Actor: "u1", Action: ActionCampgroundCreate, Resource: "c1"}))
	require.NoError(t, l.Log(Event{Action: ActionLoginFailed, Result: ResultFailure}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var ev Event
	require.NoError(t, json.Unmarshal(lines[0], &ev))
	assert.Equal(t, ActionCampgroundCreate, ev.Action)
	assert.Equal(t, ResultSuccess, ev.Result)
	assert.Equal(t, time.UTC, ev.Time.Location())
	assert.Equal(t, 2, ev.Time.Hour())
}

func TestOpen(t *testing.T) {
	rec, closer, err := Open("")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, rec)
	assert.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "audit.log")
	rec, closer, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, rec.Log(Event{Action: ActionLogout}))
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"action":"user.logout"`)
}
