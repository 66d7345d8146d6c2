// Package logging defines the structured logger shared by the server, the
// consistency engine and the operator tooling.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Warn(ctx, "dangling reference", "collection", "users", "ref", id.Hex())
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is used for best-effort steps that failed without failing the operation.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// New builds a slog-backed Logger writing to stdout. format is "json" or "text".
func New(level, format string) Logger {
	return NewWriter(os.Stdout, level, format)
}

func NewWriter(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return FromSlog(slog.New(h))
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() Logger {
	return FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// FromSlog adapts an existing slog logger, e.g. one with a custom handler.
func FromSlog(l *slog.Logger) Logger {
	return slogLogger{sl: l}
}

type slogLogger struct {
	sl *slog.Logger
}

func (l slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.Log(ctx, slog.LevelDebug, msg, args...)
}

func (l slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.Log(ctx, slog.LevelInfo, msg, args...)
}

func (l slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.Log(ctx, slog.LevelWarn, msg, args...)
}

func (l slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.Log(ctx, slog.LevelError, msg, args...)
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{sl: l.sl.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
