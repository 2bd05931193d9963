// Package ctxlog threads a *slog.Logger through a context.Context so that
// deeply nested calls (a fragment resolving another fragment resolving
// another) can log without every function signature growing a logger
// parameter.
package ctxlog

import (
	"context"
	"log/slog"
)

type key struct{}

var loggerKey = key{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger embedded in ctx. Unlike an application's
// own internal context (which can assume its own startup code always calls
// WithLogger first), this engine is a library: callers that never set up a
// logger still get one, the slog default, rather than a panic.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
