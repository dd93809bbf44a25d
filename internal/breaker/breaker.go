// Package breaker implements a circuit breaker guarding calls to a failing
// downstream dependency. After a configured number of consecutive failures
// the circuit opens and calls fail fast without touching the dependency;
// after a cooldown a single probe call is let through to test recovery.
//
// The breaker holds no global state and performs no logging, retries or
// alerting of its own. It is constructed explicitly at bootstrap and
// injected wherever it is needed; retry policy, if any, belongs to the
// caller.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute when the circuit is open and the cooldown
// has not yet elapsed. The wrapped operation is not invoked in that case.
var ErrOpen = errors.New("circuit breaker is open")

// State is the current position of the breaker's state machine.
type State int

const (
	// StateClosed means calls pass through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected immediately.
	StateOpen
	// StateHalfOpen means a single probe call is in flight.
	StateHalfOpen
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Default settings, matching the persistence layer's needs.
const (
	DefaultFailureThreshold = 5
	DefaultCooldown         = 60 * time.Second
)

// Breaker is a mutex-guarded circuit breaker. The failure counter, state
// and last-failure timestamp always change together under the same lock,
// so two concurrent failing calls cannot observe or produce a torn
// transition.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time

	threshold int
	cooldown  time.Duration
	now       func() time.Time // injectable for tests
}

// New creates a Breaker in the closed state. Non-positive threshold or
// cooldown fall back to the defaults.
func New(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// State returns the breaker's current state. Note that an open circuit
// whose cooldown has elapsed still reports StateOpen until the next call
// attempt; the open to half-open transition is evaluated lazily.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Execute runs op under the breaker's protection. If the circuit is open
// and the cooldown has not elapsed, it returns ErrOpen without invoking
// op. Otherwise op runs and its error, if any, is passed through
// unchanged after the state machine has been updated.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	probe, err := b.allow()
	if err != nil {
		return err
	}

	opErr := op(ctx)
	b.record(probe, opErr == nil)
	return opErr
}

// allow decides whether a call may proceed. It returns whether the call is
// the half-open probe, or ErrOpen when the call must be rejected.
func (b *Breaker) allow() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return false, nil
	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.cooldown {
			// Cooldown elapsed: this call becomes the single probe.
			b.state = StateHalfOpen
			return true, nil
		}
		return false, ErrOpen
	case StateHalfOpen:
		// Another probe is already in flight.
		return false, ErrOpen
	default:
		return false, ErrOpen
	}
}

// record applies the transition rules after a call completes.
func (b *Breaker) record(probe, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		// Only the half-open probe may close an opened circuit. A success
		// from a call admitted while closed that completes after concurrent
		// failures opened the circuit is stale and must not short-circuit
		// the probe.
		switch {
		case probe:
			b.state = StateClosed
			b.failures = 0
		case b.state == StateClosed:
			b.failures = 0
		}
		return
	}

	b.lastFailure = b.now()
	if probe {
		// Failed probe: back to open, counter already at or above the
		// threshold, cooldown clock restarted.
		b.state = StateOpen
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.state = StateOpen
	}
}
