// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	actorIDKey     struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyActorID     = actorIDKey{}
)

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ActorID retrieves the authenticated administrative actor from the context.
// Empty when the request is unauthenticated.
func ActorID(ctx context.Context) string {
	if actor, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return actor
	}
	return ""
}

// WithActorID injects an administrative actor ID into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
