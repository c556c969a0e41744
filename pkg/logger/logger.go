package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const (
	// RequestIDKey carries the request id set by the HTTP middleware
	RequestIDKey contextKey = "request_id"
	// UserEmailKey carries the authenticated user's email
	UserEmailKey contextKey = "user_email"
)

// contextFields lists the context values WithContext copies onto a logger
var contextFields = []contextKey{RequestIDKey, UserEmailKey}

// Logger is a structured logger wrapper around slog
type Logger struct {
	*slog.Logger
}

// New creates a logger for env. LOG_FORMAT=json and LOG_LEVEL override the
// environment's defaults.
func New(env string, output io.Writer) *Logger {
	l := NewWithFormat(env, os.Getenv("LOG_FORMAT"), output)
	if lvl, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
		l = newLogger(output, env == "production" || os.Getenv("LOG_FORMAT") == "json", lvl)
	}
	return l
}

// NewWithFormat creates a logger with an explicit format. Production always
// logs JSON at info; everything else logs at debug, as text unless
// logFormat is "json".
func NewWithFormat(env, logFormat string, output io.Writer) *Logger {
	if env == "production" {
		return newLogger(output, true, slog.LevelInfo)
	}
	return newLogger(output, logFormat == "json", slog.LevelDebug)
}

// NewDefault creates a logger writing to stderr, so command output on
// stdout stays clean.
func NewDefault(env string) *Logger {
	return New(env, os.Stderr)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newLogger(output io.Writer, json bool, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = slog.NewTextHandler(output, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// replaceAttr renders times as RFC3339 and trims sources to file:line
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			a.Value = slog.StringValue(filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
		}
	}
	return a
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// WithContext copies the request id and user email from ctx, when present
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var args []any
	for _, key := range contextFields {
		if v := ctx.Value(key); v != nil {
			args = append(args, string(key), v)
		}
	}
	if len(args) == 0 {
		return l
	}
	return &Logger{Logger: l.With(args...)}
}

// WithFields creates a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// WithField creates a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// Component tags the logger with the name of the subsystem using it.
func (l *Logger) Component(name string) *Logger {
	return l.WithField("component", name)
}

// WithError adds the error's message as the "error" field
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}
