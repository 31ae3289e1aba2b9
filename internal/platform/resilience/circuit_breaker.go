package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Allow while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker trips after a run of consecutive failures and, once the
// open window has elapsed, admits a bounded number of probe calls before
// closing again.
type CircuitBreaker struct {
	mu    sync.Mutex
	clock func() time.Time

	threshold   int
	openWindow  time.Duration
	probeBudget int

	state     CircuitState
	failures  int
	trippedAt time.Time
	probes    int
	probeWins int
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	})

	return &CircuitBreaker{
		clock:       time.Now,
		threshold:   cfg.FailureThreshold,
		openWindow:  cfg.OpenTimeout,
		probeBudget: cfg.HalfOpenMaxReq,
		state:       CircuitStateClosed,
	}
}

// Allow reports whether a call may proceed. In the half-open state at most
// probeBudget calls are in flight at once.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.clock().Sub(b.trippedAt) < b.openWindow {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probes = 0
		b.probeWins = 0
	}

	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.probeBudget {
			return ErrCircuitOpen
		}
		b.probes++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.probeDone()
		b.probeWins++
		if b.probeWins >= b.probeBudget && b.probes == 0 {
			b.state = CircuitStateClosed
			b.failures = 0
			b.trippedAt = time.Time{}
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		b.probeDone()
		b.trip()
	case CircuitStateOpen:
		// A failure while open restarts the window.
		b.trippedAt = b.clock()
	}
}

// State reports the effective state, accounting for an elapsed open window.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.clock().Sub(b.trippedAt) >= b.openWindow {
		return CircuitStateHalfOpen
	}

	return b.state
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.trippedAt = b.clock()
	b.probes = 0
	b.probeWins = 0
}

func (b *CircuitBreaker) probeDone() {
	if b.probes > 0 {
		b.probes--
	}
}
