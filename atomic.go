package gogc

import (
	"sync/atomic"

	"github.com/orizon-lang/gogc/internal/registry"
)

// AtomicGc is a lock-free, atomically-swappable managed edge, the
// collector's write barrier primitive. Storing a handle into an
// AtomicGc always demotes it to Internal (the slot, not the caller,
// now owns the rooted contribution); loading or swapping a handle back
// out always promotes it to Rooted, since it is now reachable from a
// non-managed location again (the caller's local variable).
type AtomicGc[T any] struct {
	ptr atomic.Pointer[registry.Record]
}

// NewAtomicGc creates an atomic edge initialized to v, demoting v to
// Internal.
func NewAtomicGc[T any](v Gc[T]) *AtomicGc[T] {
	a := &AtomicGc[T]{}
	a.ptr.Store(v.rec)
	demote(v)

	return a
}

// Load returns a Rooted handle to the current target.
func (a *AtomicGc[T]) Load() Gc[T] {
	rec := a.ptr.Load()
	if rec == nil {
		return Gc[T]{}
	}

	rec.IncHandleCount()

	return Gc[T]{rec: rec, role: rootedRole}
}

// Store replaces the target with v, running the insertion barrier on
// v's record before the store becomes observable to other goroutines,
// and demoting v to Internal. The previous target's rooted count is
// untouched: spec.md's barrier leaves it to the next mark pass to
// discover the old target is no longer reachable through this edge.
func (a *AtomicGc[T]) Store(v Gc[T]) {
	c := currentCollector()
	gate := c.Gate()

	gate.Enter()
	defer gate.Exit()

	c.Barrier(v.rec)
	a.ptr.Store(v.rec)
	demote(v)
}

// Swap replaces the target with v and returns the previous target as
// a Rooted handle, running the insertion barrier on v's record first.
func (a *AtomicGc[T]) Swap(v Gc[T]) Gc[T] {
	c := currentCollector()
	gate := c.Gate()

	gate.Enter()
	defer gate.Exit()

	c.Barrier(v.rec)
	old := a.ptr.Swap(v.rec)
	demote(v)

	if old == nil {
		return Gc[T]{}
	}

	old.IncHandleCount()

	return Gc[T]{rec: old, role: rootedRole}
}

// CompareAndSwap atomically replaces the target with newHandle if it
// currently equals oldHandle, running the insertion barrier on
// newHandle's record first. Reports whether the swap happened.
func (a *AtomicGc[T]) CompareAndSwap(oldHandle, newHandle Gc[T]) bool {
	c := currentCollector()
	gate := c.Gate()

	gate.Enter()
	defer gate.Exit()

	c.Barrier(newHandle.rec)

	if !a.ptr.CompareAndSwap(oldHandle.rec, newHandle.rec) {
		return false
	}

	demote(newHandle)

	return true
}

// demote converts a handle that has just been written into an
// AtomicGc slot to the Internal role, decrementing h if it was Rooted.
// The caller's copy of the handle must not be used again after this —
// ownership moved into the slot, the same discipline Rust's Gc<T>
// enforces statically and this module documents instead.
func demote[T any](g Gc[T]) {
	if g.rec != nil && g.role == rootedRole {
		g.rec.DecHandleCount()
	}
}
