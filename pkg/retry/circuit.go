package retry

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Call while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// CircuitBreaker short-circuits calls after repeated consecutive failures.
// After failureThreshold failures it opens for recoveryTimeout, then allows a
// single trial call: success closes the circuit, failure reopens it.
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	recoveryTimeout  time.Duration
	failureCount     int
	lastFailure      time.Time
	state            circuitState
	now              func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            circuitClosed,
		now:              time.Now,
	}
}

// Call runs op through the breaker. While open it returns ErrCircuitOpen
// without invoking op.
func (cb *CircuitBreaker) Call(op func() error) error {
	cb.mu.Lock()
	if cb.state == circuitOpen {
		if cb.now().Sub(cb.lastFailure) < cb.recoveryTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = circuitHalfOpen
	}
	cb.mu.Unlock()

	err := op()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failureCount++
		cb.lastFailure = cb.now()
		if cb.state == circuitHalfOpen || cb.failureCount >= cb.failureThreshold {
			cb.state = circuitOpen
		}
		return err
	}
	cb.failureCount = 0
	cb.state = circuitClosed
	return nil
}
