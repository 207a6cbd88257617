package gogc

import (
	"github.com/orizon-lang/gogc/internal/gcerrors"
	"github.com/orizon-lang/gogc/internal/registry"
)

// Destroyer is implemented by payload types that need cleanup once
// their record becomes unreachable. Destroy runs exactly once, on a
// background destructor goroutine, after the record has been swept —
// never while any Gc[T] or Guard[T] referencing it could still observe
// it as Live.
type Destroyer interface {
	Destroy()
}

// role fixes whether a handle counts toward its record's rooted handle
// count h. The role is decided once, at construction, and only changes
// through the explicit IntoInternal/IntoRooted conversions.
type role uint8

const (
	rootedRole role = iota
	internalRole
)

// Gc is a smart pointer to a managed payload of type T. The zero value
// is not a valid handle; obtain one from New, Clone, or an AtomicGc.
type Gc[T any] struct {
	rec  *registry.Record
	role role
}

func (g Gc[T]) gcRecord() *registry.Record { return g.rec }

// New allocates a managed payload and returns a Rooted handle to it
// with h = 1. If v implements Scan, the collector traces its outgoing
// edges every mark pass; if v implements Destroyer, Destroy runs once
// the record becomes unreachable. New fails with
// gcerrors.ErrCapacityExhausted once Options.MaxAllocations records are
// already tracked; a zero MaxAllocations (the default) never fails
// this way.
//
// Whether v needs to implement Scan is decided by a plain type
// assertion, same cost on every call: Go has no mechanism to reject a
// payload type whose author forgot to implement Scan on a field that
// holds a managed edge, so a missing Scan is silently treated as "no
// outgoing edges" rather than rejected at allocation time.
func New[T any](v T) (Gc[T], error) {
	c := currentCollector()

	if !c.ReserveSlot() {
		return Gc[T]{}, gcerrors.ErrCapacityExhausted
	}

	epoch := c.CurrentEpoch()

	var scanFn func(report func(*registry.Record))
	if s, ok := any(v).(Scan); ok {
		scanFn = func(report func(*registry.Record)) {
			s.Scan(scannerFunc(func(h AnyHandle) {
				if h == nil {
					return
				}

				if rec := h.gcRecord(); rec != nil {
					report(rec)
				}
			}))
		}
	}

	var destroyFn func()
	if d, ok := any(v).(Destroyer); ok {
		destroyFn = d.Destroy
	}

	rec := registry.NewRecord(v, epoch, scanFn, destroyFn)
	c.Table().Insert(rec)
	c.RecordAllocation()

	return Gc[T]{rec: rec, role: rootedRole}, nil
}

// Clone returns another handle to the same record with the same role.
// A Rooted clone increments h; an Internal clone leaves h untouched.
func (g Gc[T]) Clone() Gc[T] {
	if g.rec == nil {
		return Gc[T]{}
	}

	gate := currentCollector().Gate()
	gate.Enter()
	defer gate.Exit()

	if g.role == rootedRole {
		g.rec.IncHandleCount()
	}

	return Gc[T]{rec: g.rec, role: g.role}
}

// Drop releases this handle. Go has no destructors, so callers that
// want deterministic unrooting call Drop explicitly, typically via
// defer. A Rooted drop decrements h; an Internal handle's lifetime is
// owned by its containing payload's Scan/write-barrier machinery, not
// by caller Drop calls, so Drop is a no-op for it.
func (g Gc[T]) Drop() {
	if g.rec == nil || g.role != rootedRole {
		return
	}

	gate := currentCollector().Gate()
	gate.Enter()
	defer gate.Exit()

	g.rec.DecHandleCount()
}

// IntoInternal converts a Rooted handle into an Internal one,
// decrementing h. Intended for Scan-aware containers installing a
// handle into their own storage.
func (g Gc[T]) IntoInternal() Gc[T] {
	if g.rec == nil || g.role == internalRole {
		return Gc[T]{rec: g.rec, role: internalRole}
	}

	g.rec.DecHandleCount()

	return Gc[T]{rec: g.rec, role: internalRole}
}

// IntoRooted converts an Internal handle into a Rooted one,
// incrementing h. Intended for code pulling a handle back out of
// managed storage onto a non-managed location (a local variable, a
// plain slice, etc).
func (g Gc[T]) IntoRooted() Gc[T] {
	if g.rec == nil || g.role == rootedRole {
		return Gc[T]{rec: g.rec, role: rootedRole}
	}

	g.rec.IncHandleCount()

	return Gc[T]{rec: g.rec, role: rootedRole}
}

// IsRooted reports whether this handle currently counts toward h.
func (g Gc[T]) IsRooted() bool { return g.role == rootedRole }

// Valid reports whether g was ever assigned a record (the zero value
// of Gc[T] is not Valid).
func (g Gc[T]) Valid() bool { return g.rec != nil }

// Get acquires a Guard granting read access to the payload. It fails
// with ErrAccessAfterDrop if the record has already been swept or
// dropped — only reachable if a handle outlives its record, e.g. one
// read out of a payload from inside its own destructor.
func (g Gc[T]) Get() (Guard[T], error) {
	if g.rec == nil {
		return Guard[T]{}, gcerrors.ErrAccessAfterDrop
	}

	g.rec.Pin()

	if g.rec.State() != registry.Live {
		g.rec.Unpin()
		return Guard[T]{}, gcerrors.ErrAccessAfterDrop
	}

	v, _ := g.rec.Payload().(T)

	return Guard[T]{rec: g.rec, val: v}, nil
}
