package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Actions recorded by the app.
const (
	ActionRegister         = "user.register"
	ActionLogin            = "user.login"
	ActionLoginFailed      = "user.login_failed"
	ActionLogout           = "user.logout"
	ActionCampgroundCreate = "campground.create"
	ActionCampgroundUpdate = "campground.update"
	ActionCampgroundDelete = "campground.delete"
	ActionReviewCreate     = "review.create"
	ActionReviewDelete     = "review.delete"
	ActionAccessDenied     = "access.denied"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Event represents a security-relevant action for audit logging.
type Event struct {
	Time          time.Time         `json:"time"`
	Actor         string            `json:"actor,omitempty"`
	Action        string            `json:"action"`
	Resource      string            `json:"resource,omitempty"`
	Result        string            `json:"result"`
	IP            string            `json:"ip,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// Recorder accepts audit events. Implementations must be safe for concurrent use.
type Recorder interface {
	Log(ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Log(Event) error { return nil }

// Logger writes audit events in JSON lines.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger initializes an audit logger writing to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Open returns a recorder for dest: "" disables auditing, "-" is stdout,
// anything else is a file opened for append. The closer is never nil.
func Open(dest string) (Recorder, io.Closer, error) {
	switch dest {
	case "":
		return Nop{}, io.NopCloser(nil), nil
	case "-":
		return NewLogger(os.Stdout), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return NewLogger(f), f, nil
}

// Log writes an audit event; caller must redact PII in metadata.
func (l *Logger) Log(ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = l.now()
	}
	ev.Time = ev.Time.UTC()
	if ev.Result == "" {
		ev.Result = ResultSuccess
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(b, '\n'))
	return err
}
