package breaker

import (
	"sync"
	"time"
)

// State of a per-key circuit.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF-OPEN"
)

const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 300 * time.Second
)

type circuit struct {
	failures    int
	state       State
	lastFailure time.Time
	probeStart  time.Time
}

// Breaker tracks consecutive failures per source key and gates calls to
// persistently failing sources. Keys are fully independent.
type Breaker struct {
	mu               sync.Mutex
	failureThreshold int
	recoveryTimeout  time.Duration
	circuits         map[string]*circuit
	now              func() time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failure count that opens a circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithRecoveryTimeout sets the cooldown before an open circuit allows a probe.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.recoveryTimeout = d
		}
	}
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: DefaultFailureThreshold,
		recoveryTimeout:  DefaultRecoveryTimeout,
		circuits:         make(map[string]*circuit),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsAvailable reports whether a call to the named source may proceed.
// An open circuit transitions to HALF-OPEN once the recovery timeout has
// elapsed and admits exactly one probe; further callers are rejected until
// the probe reports back. A probe that never reports within the recovery
// timeout is considered lost and another is admitted.
func (b *Breaker) IsAvailable(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[key]
	if !ok || c.state == StateClosed {
		return true
	}

	if c.state == StateOpen && b.now().Sub(c.lastFailure) > b.recoveryTimeout {
		c.state = StateHalfOpen
		c.probeStart = b.now()
		return true
	}

	if c.state == StateHalfOpen && b.now().Sub(c.probeStart) > b.recoveryTimeout {
		c.probeStart = b.now()
		return true
	}

	// HALF-OPEN admits a single probe at a time.
	return false
}

// ReportFailure records a failed call. The circuit opens once the failure
// count reaches the threshold; a failed half-open probe re-opens it.
func (b *Breaker) ReportFailure(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[key]
	if !ok {
		c = &circuit{state: StateClosed}
		b.circuits[key] = c
	}
	c.failures++
	c.probeStart = time.Time{}
	if c.failures >= b.failureThreshold {
		c.state = StateOpen
		c.lastFailure = b.now()
	}
}

// ReportSuccess resets the failure count and closes the circuit regardless
// of its prior state.
func (b *Breaker) ReportSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[key]
	if !ok {
		c = &circuit{}
		b.circuits[key] = c
	}
	c.failures = 0
	c.state = StateClosed
	c.probeStart = time.Time{}
}

// CurrentState returns the circuit state for a key. Unknown keys are CLOSED.
func (b *Breaker) CurrentState(key string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[key]; ok {
		return c.state
	}
	return StateClosed
}
