// Package requestctx carries the per-request correlation id through the
// context so handlers, log lines, and response envelopes reference the
// same id without threading it explicitly.
package requestctx

import "context"

type requestIDKey struct{}

// WithRequestID returns a child context carrying the correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the correlation id, or "" when no middleware set one.
func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}
