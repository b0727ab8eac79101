package testutil

import (
	"context"
	"time"

	"medfund/pkg/requestcontext"
)

// FixedTime is the deterministic "now" used across tests.
var FixedTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// Context returns a context carrying a fixed request time and ID, matching
// what the middleware chain installs in production.
func Context() context.Context {
	ctx := requestcontext.WithTime(context.Background(), FixedTime)
	return requestcontext.WithRequestID(ctx, "test-request")
}

// ContextAt returns a test context with a specific request time.
func ContextAt(now time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	return requestcontext.WithRequestID(ctx, "test-request")
}
