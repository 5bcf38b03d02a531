package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while the breaker is rejecting calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// CircuitBreaker guards an outbound dependency. It trips open after a run
// of consecutive failures, rejects calls for a cooldown, then lets a single
// probe through. There is no retry behavior here: a rejected or failed call
// surfaces immediately to the caller.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	cooldown    time.Duration

	mutex    sync.Mutex
	state    BreakerState
	failures uint32
	openedAt time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		state:       BreakerClosed,
	}
}

// Execute runs req unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, req func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req()
	cb.afterRequest(err == nil)
	return err
}

// State returns the current state, advancing open → half-open when the
// cooldown has elapsed.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.currentState(time.Now()) == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if success {
		cb.failures = 0
		cb.state = BreakerClosed
		return
	}

	cb.failures++
	if cb.state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = BreakerOpen
		cb.openedAt = time.Now()
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	if cb.state == BreakerOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = BreakerHalfOpen
	}
	return cb.state
}
