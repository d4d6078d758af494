package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:    maxRetries,
		BaseDelay:     time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	recorded := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls <= 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error, int) { recorded++ })

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 3, recorded)
}

func TestDoExhaustsRetries(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	recorded := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		return boom
	}, func(error, int) { recorded++ })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, recorded)
}

func TestDoContextCancelInterruptsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := Policy{MaxRetries: 5, BaseDelay: time.Hour, BackoffFactor: 2, MaxDelay: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, policy, func() error {
		calls++
		return errors.New("always")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyDelayCapped(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, BackoffFactor: 2, MaxDelay: 60 * time.Second}
	assert.Equal(t, 2*time.Second, p.Delay(0))
	assert.Equal(t, 4*time.Second, p.Delay(1))
	assert.Equal(t, 60*time.Second, p.Delay(10))
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(3, 50*time.Millisecond)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	}

	// Open: the wrapped op must not run.
	invoked := false
	err := cb.Call(func() error { invoked = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)

	// After the recovery timeout a trial call is allowed; success closes.
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, cb.Call(func() error { return nil }))
	require.NoError(t, cb.Call(func() error { return nil }))
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}
