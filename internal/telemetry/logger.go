package telemetry

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger with the key-value call shape used across the app.
type Logger struct {
	s *zap.SugaredLogger
}

// NewLogger builds a production JSON logger, or a console logger when development is set.
func NewLogger(level string, development bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	z, err := cfg.Build()
	if err != nil {
		return Logger{}, fmt.Errorf("build logger: %w", err)
	}
	return Logger{s: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything; used by tests.
func NewNop() Logger {
	return Logger{s: zap.NewNop().Sugar()}
}

// FromZap adapts an existing zap logger.
func FromZap(z *zap.Logger) Logger {
	return Logger{s: z.Sugar()}
}

// With returns a child logger carrying the given key-value pairs.
func (l Logger) With(kv ...any) Logger {
	return Logger{s: l.sugar().With(kv...)}
}

// Debug logs verbose diagnostics.
func (l Logger) Debug(msg string, kv ...any) {
	l.sugar().Debugw(msg, kv...)
}

// Info logs informational messages with key-value style.
func (l Logger) Info(msg string, kv ...any) {
	l.sugar().Infow(msg, kv...)
}

// Warn logs recoverable problems.
func (l Logger) Warn(msg string, kv ...any) {
	l.sugar().Warnw(msg, kv...)
}

// Error logs errors without leaking sensitive payloads.
func (l Logger) Error(msg string, kv ...any) {
	l.sugar().Errorw(msg, kv...)
}

// Redact logs that a sensitive value was withheld under the given key.
func (l Logger) Redact(msg, key string) {
	l.sugar().Infow(msg, key, "[REDACTED]")
}

// Sync flushes buffered entries.
func (l Logger) Sync() error {
	return l.sugar().Sync()
}

func (l Logger) sugar() *zap.SugaredLogger {
	if l.s == nil {
		return zap.NewNop().Sugar()
	}
	return l.s
}
