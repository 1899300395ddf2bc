// Package circuitbreaker stops calling a failing dependency for a cool-down
// period after a run of consecutive failures.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State is the breaker's position.
type State int

const (
	Closed   State = iota // calls pass through
	Open                  // calls are rejected without running
	HalfOpen              // a single probe call is in flight
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned instead of running the call while the breaker
// is open or while another caller holds the half-open probe.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker counts consecutive failures of the calls it wraps.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	openedAt     time.Time

	// now and isFailure are replaceable for tests and callers that
	// want to ignore some errors (e.g. caller cancellation).
	now       func() time.Time
	isFailure func(error) bool
}

// Option customises a Breaker.
type Option func(*Breaker)

// WithFailurePredicate decides which errors count against the breaker.
// Errors for which pred returns false are passed back without being
// counted.
func WithFailurePredicate(pred func(error) bool) Option {
	return func(b *Breaker) { b.isFailure = pred }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New returns a closed Breaker that opens after maxFailures consecutive
// failures and lets one probe through once resetTimeout has passed.
func New(maxFailures int, resetTimeout time.Duration, opts ...Option) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	b := &Breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		isFailure:    func(err error) bool { return err != nil },
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.acquire(); err != nil {
		return err
	}
	err := fn()
	b.release(err)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return ErrCircuitOpen
		}
		b.state = HalfOpen
	case HalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

func (b *Breaker) release(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && b.isFailure(err) {
		b.failures++
		if b.state == HalfOpen || b.failures >= b.maxFailures {
			b.state = Open
			b.openedAt = b.now()
		}
		return
	}
	if err != nil {
		// Not counted.  A half-open probe that proved nothing hands the
		// probe slot to the next caller.
		if b.state == HalfOpen {
			b.state = Open
		}
		return
	}
	b.failures = 0
	b.state = Closed
}

// State returns the breaker's current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
