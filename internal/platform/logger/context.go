package logger

import (
	"context"
	"log/slog"
)

// loggerKey is the private context key under which a logger travels.
type loggerKey struct{}

// WithLogger returns a copy of ctx carrying the given logger. Code further
// down the call chain retrieves it with FromContext, so operation-scoped
// attributes follow the work they describe.
// Panics if log is nil; passing a nil logger is always a programming error.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		panic("logger: WithLogger called with nil logger")
	}
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the logger carried by ctx, or the process default
// logger when ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault returns the logger carried by ctx, or the given
// fallback when ctx is nil or carries none.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx == nil {
		return fallback
	}
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return fallback
}
