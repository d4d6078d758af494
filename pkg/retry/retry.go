// Package retry implements bounded exponential-backoff retries and a circuit
// breaker. The two are independent wrappers and compose by nesting.
package retry

import (
	"context"
	"time"
)

// Policy controls the retry loop. A zero MaxRetries means the operation runs
// exactly once.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

// DefaultPolicy matches the scraper defaults: 3 retries, 2s base delay,
// factor 2, capped at 60s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		BaseDelay:     2 * time.Second,
		BackoffFactor: 2,
		MaxDelay:      60 * time.Second,
	}
}

// Delay returns the backoff delay applied before re-attempt number
// attempt+1 (attempt is zero-based).
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffFactor
	}
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && delay > max {
		delay = max
	}
	return time.Duration(delay)
}

// Do runs op up to MaxRetries+1 times, sleeping per the policy between
// attempts. onError, if non-nil, is invoked for every failed attempt with the
// zero-based attempt number. The last error is returned once attempts are
// exhausted. A cancelled context interrupts the backoff wait and aborts the
// loop with ctx.Err().
func Do(ctx context.Context, policy Policy, op func() error, onError func(err error, attempt int)) error {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.Delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if onError != nil {
			onError(lastErr, attempt)
		}
	}
	return lastErr
}
