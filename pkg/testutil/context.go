package testutil

import (
	"context"
	"time"

	"paylane/pkg/requestcontext"
)

// FrozenTime is the default deterministic instant used across the test
// suites: a Saturday, so weekday-sensitive schedule tests read naturally.
var FrozenTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Context returns a background context with the frozen clock injected.
func Context() context.Context {
	return requestcontext.WithTime(context.Background(), FrozenTime)
}

// ContextAt returns a background context with a specific clock instant.
func ContextAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
