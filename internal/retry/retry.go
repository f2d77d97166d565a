// Package retry runs an operation under a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff returns the wait before the next attempt, given the number of the
// attempt that just failed (1-based).
type Backoff func(failedAttempt int) time.Duration

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff computes waits between attempts. Nil means no wait.
	Backoff Backoff

	// IsRetryable decides whether a failed attempt may be retried.
	// Nil retries every error except context cancellation.
	IsRetryable func(error) bool

	// Sleep waits between attempts. Nil uses SleepContext.
	Sleep Sleeper
}

// Do calls op until it succeeds, returns a non-retryable error, or the
// policy runs out of attempts. op receives the 1-based attempt number.
// The last error is returned unchanged.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	attempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for i := range attempts {
		attempt := i + 1
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !p.retryable(err) {
			return err
		}

		// Last attempt, no point waiting.
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}

	return lastErr
}

func (p Policy) retryable(err error) bool {
	if p.IsRetryable != nil {
		return p.IsRetryable(err)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Linear waits base multiplied by the number of the failed attempt:
// base, 2*base, 3*base, ...
func Linear(base time.Duration) Backoff {
	return func(failedAttempt int) time.Duration {
		return base * time.Duration(failedAttempt)
	}
}

// Constant waits d between every attempt.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Exponential grows the wait by multiplier per attempt, capped at maxWait,
// with ±20% jitter.
func Exponential(initial, maxWait time.Duration, multiplier float64) Backoff {
	return func(failedAttempt int) time.Duration {
		wait := float64(initial) * math.Pow(multiplier, float64(failedAttempt-1))
		if wait > float64(maxWait) {
			wait = float64(maxWait)
		}

		jitter := wait * 0.2 * (2*rand.Float64() - 1)
		wait += jitter

		if wait < 0 {
			wait = 0
		}
		return time.Duration(wait)
	}
}

// SleepContext waits for d, returning ctx.Err() if ctx ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
