package app

import (
	"context"
	"math/rand"
	"time"
)

// Default retry configuration values.
const (
	DefaultWriteAttempts  = 3
	DefaultBackoffInitial = 50 * time.Millisecond
	DefaultBackoffMax     = 2 * time.Second
)

// RetryPolicy controls how storage calls are retried.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int

	// Initial is the wait before the first retry.
	Initial time.Duration

	// Max caps the wait between retries.
	Max time.Duration
}

// DefaultRetryPolicy returns three attempts with 50ms..2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: DefaultWriteAttempts,
		Initial:  DefaultBackoffInitial,
		Max:      DefaultBackoffMax,
	}
}

// withDefaults fills zero fields. Attempts below two are raised to two so
// that a failed write is always retried at least once.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts < 2 {
		p.Attempts = 2
	}
	if p.Initial <= 0 {
		p.Initial = DefaultBackoffInitial
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	return p
}

// backoff implements exponential backoff with jitter.
type backoff struct {
	max     time.Duration
	current time.Duration
}

// newBackoff creates a new backoff with the given initial and max durations.
func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		max:     max,
		current: initial,
	}
}

// Wait blocks for the current backoff duration and increases it.
// Returns the context error if ctx ends first.
func (b *backoff) Wait(ctx context.Context) error {
	// Add jitter: ±20%
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	sleep := time.Duration(float64(b.current) + jitter)

	timer := time.NewTimer(sleep)
	defer timer.Stop()

	// Increase for next time
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
