// Package circuit is a minimal circuit breaker for outbound collaborators.
// Consecutive failures open the circuit; after a cooldown one probe is let
// through, and a success closes it again.
package circuit

import (
	"sync"
	"time"
)

// Breaker tracks consecutive failures against a threshold.
type Breaker struct {
	mu sync.RWMutex

	name      string
	threshold int
	cooldown  time.Duration

	failures  int
	openUntil time.Time
	isOpen    bool
}

const (
	defaultThreshold = 5
	defaultCooldown  = time.Minute
)

// New creates a Breaker. Non-positive threshold or cooldown fall back to
// the defaults.
func New(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown}
}

// Name identifies the protected collaborator in logs and metrics.
func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may proceed. An open circuit whose cooldown
// has elapsed transitions to half-open and admits the caller as a probe.
func (b *Breaker) Allow() bool {
	b.mu.RLock()
	if !b.isOpen {
		b.mu.RUnlock()
		return true
	}
	expired := time.Now().After(b.openUntil)
	b.mu.RUnlock()

	if !expired {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isOpen && time.Now().After(b.openUntil) {
		b.isOpen = false
		b.failures = 0
	}
	return !b.isOpen
}

// RecordSuccess closes the circuit and clears the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.isOpen = false
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// It returns true when this call opened the circuit.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold && !b.isOpen {
		b.isOpen = true
		b.openUntil = time.Now().Add(b.cooldown)
		return true
	}
	if b.isOpen {
		b.openUntil = time.Now().Add(b.cooldown)
	}
	return false
}

// IsOpen reports whether the circuit is currently open.
func (b *Breaker) IsOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isOpen
}

// Reset manually closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.isOpen = false
}
