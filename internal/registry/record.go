// Package registry holds the process-wide allocation record table: the
// per-object header (mark epoch, handle count, state, scan/destroy
// thunks) and the sharded table that makes every live record
// discoverable to the collector.
package registry

import "sync/atomic"

// ID stably identifies a Record for the lifetime of the table entry.
// Unlike a native allocator, Go values are not address-stable, so the
// table assigns a monotonic id rather than keying off a pointer.
type ID uint64

// State is the lifecycle stage of a Record, matching the Live -> Swept
// -> Dropped machine exactly.
type State int32

const (
	Live State = iota
	Swept
	Dropped
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Swept:
		return "swept"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Record is the collector-owned header for one managed allocation. The
// payload itself is held as an any so the table can be monomorphic over
// every Gc[T] instantiation.
type Record struct {
	id ID

	payload any

	// scan enumerates the outgoing handles of payload into the
	// supplied callback. nil means the payload carries no managed
	// edges (the Scan no-op case).
	scan func(report func(target *Record))

	// destroy runs exactly once on the Swept -> Dropped transition.
	destroy func()

	markEpoch   uint64
	handleCount int64
	pinCount    int32
	state       int32
}

// NewRecord builds a record for payload, wiring the scan/destroy
// thunks the caller derived for its concrete type. epoch is the mark
// epoch to stamp it with at construction (the write-barrier equivalent
// of "a freshly allocated object is implicitly live").
func NewRecord(payload any, epoch uint64, scan func(report func(target *Record)), destroy func()) *Record {
	r := &Record{
		payload:     payload,
		scan:        scan,
		destroy:     destroy,
		markEpoch:   epoch,
		handleCount: 1,
		state:       int32(Live),
	}

	return r
}

// ID returns the record's stable identifier, valid only once it has
// been inserted into a Table.
func (r *Record) ID() ID { return r.id }

// Payload returns the boxed payload value. Safe to call whenever the
// record's state is Live; callers are responsible for checking state
// (Guard does this for handles).
func (r *Record) Payload() any { return r.payload }

// State returns the current lifecycle state.
func (r *Record) State() State { return State(atomic.LoadInt32(&r.state)) }

// CompareAndSwapState is exposed for the collector's sweep pass, which
// is the sole writer of post-construction state transitions.
func (r *Record) CompareAndSwapState(old, new State) bool {
	return atomic.CompareAndSwapInt32(&r.state, int32(old), int32(new))
}

// HandleCount returns the current rooted handle count h.
func (r *Record) HandleCount() int64 { return atomic.LoadInt64(&r.handleCount) }

// IncHandleCount bumps h on a rooted clone or a promotion to Rooted
// (NewRecord itself starts h at 1 without calling it).
func (r *Record) IncHandleCount() int64 { return atomic.AddInt64(&r.handleCount, 1) }

// DecHandleCount drops h on a rooted drop or role conversion.
func (r *Record) DecHandleCount() int64 { return atomic.AddInt64(&r.handleCount, -1) }

// MarkEpoch returns the epoch this record was last marked at.
func (r *Record) MarkEpoch() uint64 { return atomic.LoadUint64(&r.markEpoch) }

// TryMark CASes the mark epoch from any value older than epoch to
// epoch, returning true if this call performed the transition (i.e.
// the record was not already marked for this cycle).
func (r *Record) TryMark(epoch uint64) bool {
	for {
		cur := atomic.LoadUint64(&r.markEpoch)
		if cur >= epoch {
			return false
		}

		if atomic.CompareAndSwapUint64(&r.markEpoch, cur, epoch) {
			return true
		}
	}
}

// Pin increments the guard pin count, preventing sweep from reclaiming
// the record while any guard is live.
func (r *Record) Pin() { atomic.AddInt32(&r.pinCount, 1) }

// Unpin releases a guard's pin.
func (r *Record) Unpin() { atomic.AddInt32(&r.pinCount, -1) }

// Pinned reports whether any guard currently holds the record.
func (r *Record) Pinned() bool { return atomic.LoadInt32(&r.pinCount) > 0 }

// Scan reports every outgoing handle of the payload to report. A nil
// scan thunk means the payload carries no managed edges.
func (r *Record) Scan(report func(target *Record)) {
	if r.scan != nil {
		r.scan(report)
	}
}

// Destroy runs the record's destructor thunk. Callers (the finalize
// queue) are responsible for isolating panics.
func (r *Record) Destroy() {
	if r.destroy != nil {
		r.destroy()
	}
}
