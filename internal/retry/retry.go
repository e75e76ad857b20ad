// Package retry implements a small, reusable retry-with-backoff policy for
// calls to external collaborators. Any operation can opt in by wrapping the
// call in Do; the policy is deliberately generic so the assistant client and
// future collaborators share one implementation.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried: the total attempt cap and the
// delay before the second attempt. The delay doubles after every failure
// (1s, 2s, 4s, ...).
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
}

// Do runs fn until it succeeds, the attempt cap is reached, or ctx is
// cancelled. It returns the last result on success and the final failure
// otherwise. Context cancellation during a backoff wait aborts immediately
// with ctx.Err().
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	delay := p.BaseDelay

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
