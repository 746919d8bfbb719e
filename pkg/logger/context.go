package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying a child logger with the fields attached.
// Repeated calls accumulate fields.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// WithTrace tags the context logger with the request trace id so every log
// line downstream of the middleware carries it.
func WithTrace(ctx context.Context, traceID string) context.Context {
	return With(ctx, "trace_id", traceID)
}

// From returns the context logger, falling back to the process logger when
// the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
