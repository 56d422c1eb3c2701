package goAuthClient

import "context"

type requestIDContextKey struct{}
type retriedContextKey struct{}
type recoveryDisabledContextKey struct{}

// WithRequestID attaches a request ID to ctx. The transport sends it as
// X-Request-ID and reuses it for the retry. Without one, a UUID is generated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the ID set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// WithoutRecovery marks requests made with ctx as exempt from 401 recovery. A 401
// is returned to the caller as is and no refresh is attempted.
func WithoutRecovery(ctx context.Context) context.Context {
	return context.WithValue(ctx, recoveryDisabledContextKey{}, true)
}

func recoveryDisabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(recoveryDisabledContextKey{}).(bool)
	return v
}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedContextKey{}, true)
}

// retried reports whether the request already used its one recovery attempt.
func retried(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(retriedContextKey{}).(bool)
	return v
}
