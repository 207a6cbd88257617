// Package safepoint implements the collector's cooperative quiescence
// gate. Every barrier-invoking mutator operation brackets its critical
// section with Enter/Exit; mark termination waits for the gate to drain
// to zero in-flight sections before concluding no barrier work remains,
// instead of relying on signal-based preemption or thread registration.
package safepoint

import (
	"runtime"
	"sync/atomic"
)

// Gate tracks in-flight barrier-invoking critical sections.
type Gate struct {
	active int64
}

// NewGate creates an empty quiescence gate.
func NewGate() *Gate { return &Gate{} }

// Enter announces the start of a barrier-invoking operation (an edge
// write, a handle count change). Every Enter must be paired with a
// deferred Exit.
func (g *Gate) Enter() { atomic.AddInt64(&g.active, 1) }

// Exit announces the end of a barrier-invoking operation.
func (g *Gate) Exit() { atomic.AddInt64(&g.active, -1) }

// Quiesce blocks until no mutator is mid-barrier, or stop is closed.
// This is the collector's only stop-the-world-equivalent phase, and in
// practice resolves in microseconds: mutators never hold the gate open
// across a blocking operation, only across the handful of atomic
// instructions a barrier needs.
func (g *Gate) Quiesce(stop <-chan struct{}) {
	for atomic.LoadInt64(&g.active) > 0 {
		select {
		case <-stop:
			return
		default:
			runtime.Gosched()
		}
	}
}
