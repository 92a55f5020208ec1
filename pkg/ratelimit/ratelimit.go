// Package ratelimit implements sliding-window request accounting shared by
// the HTTP rate-limit middleware.
package ratelimit

import (
	"context"
	"time"
)

// Entry is the outcome of recording one hit.
type Entry struct {
	// ID identifies the recorded hit so it can be forgotten later.
	ID string
	// Count is the number of hits inside the window, this one included.
	Count int
	// ResetAt is when the oldest hit in the window falls out of it.
	ResetAt time.Time
}

// Store records hits per key over a sliding window.
type Store interface {
	Record(ctx context.Context, key string, now time.Time, window time.Duration) (Entry, error)
	Forget(ctx context.Context, key, id string) error
}
