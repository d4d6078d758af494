// Package ratelimit provides a per-minute token budget on top of the
// request-level limiting done with golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget. Wait blocks until the
// requested amount fits into the current minute window.
type TokenLimiter struct {
	mu        sync.Mutex
	capacity  int
	remaining int
	resetAt   time.Time
	now       func() time.Time
}

// NewTokenLimiter creates a limiter with the given per-minute capacity.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		capacity:  tokensPerMinute,
		remaining: tokensPerMinute,
		resetAt:   time.Now().Add(time.Minute),
		now:       time.Now,
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked()
	return l.remaining
}

// Wait blocks until tokens can be spent or ctx is done. Requests larger than
// the capacity are allowed once per window rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.refreshLocked()
		if tokens >= l.capacity {
			if l.remaining == l.capacity {
				l.remaining = 0
				l.mu.Unlock()
				return nil
			}
		} else if tokens <= l.remaining {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.resetAt)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *TokenLimiter) refreshLocked() {
	if !l.now().Before(l.resetAt) {
		l.remaining = l.capacity
		l.resetAt = l.now().Add(time.Minute)
	}
}
