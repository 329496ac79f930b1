// Package requestcontext carries per-request values across layers without
// coupling services to the HTTP transport.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey struct{}
	callerKey    struct{}
	nowKey       struct{}
)

// WithRequestID stores the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithCaller stores the authenticated calling service (token subject).
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// Caller returns the authenticated calling service, or "" when absent.
func Caller(ctx context.Context) string {
	v, _ := ctx.Value(callerKey{}).(string)
	return v
}

// WithNow pins the request clock. Tests use it to make timestamps deterministic.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, now)
}

// Now returns the pinned request time, or time.Now when none was set.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}
