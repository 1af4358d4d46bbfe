package api

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a correlation identifier to ctx. The [Client]
// sends it as the X-Request-ID header instead of generating a fresh one,
// which lets a caller correlate the original request and its post-refresh
// replay.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the correlation identifier attached by
// [WithRequestID], or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
