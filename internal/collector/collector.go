// Package collector implements the tracing mark-sweep driver: trigger
// policy, concurrent mark, mark termination, sweep, and handoff to the
// background destructor queue.
package collector

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/orizon-lang/gogc/internal/finalize"
	"github.com/orizon-lang/gogc/internal/gclog"
	"github.com/orizon-lang/gogc/internal/registry"
	"github.com/orizon-lang/gogc/internal/safepoint"
	"github.com/orizon-lang/gogc/internal/worklist"
)

// Options configures a Collector.
type Options struct {
	Logger        *gclog.Logger
	Workers       int // destructor pool size, see finalize.Options
	WorklistDepth int

	// MaxAllocations caps the number of records the registry will hold
	// at once. Zero means unbounded. Once at capacity, ReserveSlot
	// refuses new allocations until sweep frees a slot.
	MaxAllocations int
}

// Collector owns the registry, the mark worklist, the quiescence gate,
// and the destructor queue for one process-wide collection domain. The
// library exposes exactly one instance; see the root package's
// lazily-started singleton.
type Collector struct {
	table    *registry.Table
	deque    *worklist.Deque
	gate     *safepoint.Gate
	finalize *finalize.Queue
	trig     *trigger
	log      *gclog.Logger

	epoch      uint64 // atomic
	markActive int32  // atomic bool

	maxAllocations int64
	allocCount     int64 // atomic, see ReserveSlot/ReleaseSlot

	cycleMu   sync.Mutex
	inFlight  *cycleResult
	cyclesRun int64
}

type cycleResult struct {
	done chan struct{}
}

// New creates a Collector. It does not start any background work
// beyond the destructor pool; mark cycles run synchronously inside
// Collect.
func New(opts Options) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = gclog.Default
	}

	c := &Collector{
		table:          registry.NewTable(),
		deque:          worklist.New(opts.WorklistDepth),
		gate:           safepoint.NewGate(),
		trig:           newTrigger(),
		log:            logger,
		maxAllocations: int64(opts.MaxAllocations),
	}
	c.finalize = finalize.New(finalize.Options{Workers: opts.Workers, Logger: logger})

	return c
}

// Table exposes the allocation registry to the handle package.
func (c *Collector) Table() *registry.Table { return c.table }

// Gate exposes the quiescence gate so barrier-invoking handle
// operations can bracket their critical sections.
func (c *Collector) Gate() *safepoint.Gate { return c.gate }

// CurrentEpoch returns the mark epoch in effect right now.
func (c *Collector) CurrentEpoch() uint64 { return atomic.LoadUint64(&c.epoch) }

// MarkActive reports whether a mark phase is currently running, the
// condition under which AtomicGc's insertion barrier must fire.
func (c *Collector) MarkActive() bool { return atomic.LoadInt32(&c.markActive) != 0 }

// Barrier marks target for the current epoch if a mark phase is
// active, implementing the Dijkstra-style insertion barrier. It is a
// no-op outside an active mark phase (the elision spec.md flags as a
// performance-only choice).
func (c *Collector) Barrier(target *registry.Record) {
	if !c.MarkActive() || target == nil {
		return
	}

	epoch := c.CurrentEpoch()
	if target.TryMark(epoch) {
		c.deque.Push(target)
	}
}

// RecordAllocation tells the trigger policy a new record was inserted
// and, if the threshold is crossed, kicks off a cycle without blocking
// the caller.
func (c *Collector) RecordAllocation() {
	if c.trig.RecordAllocation() {
		go c.Collect()
	}
}

// NumTracked returns the number of records currently in the registry.
func (c *Collector) NumTracked() int { return c.table.Len() }

// ReserveSlot reserves one allocation slot against Options.MaxAllocations,
// reporting false if the registry is already at capacity. A reservation
// must be matched by a later ReleaseSlot once the record it backs is
// removed from the table, whether or not the allocation proceeds.
func (c *Collector) ReserveSlot() bool {
	if c.maxAllocations <= 0 {
		atomic.AddInt64(&c.allocCount, 1)
		return true
	}

	for {
		cur := atomic.LoadInt64(&c.allocCount)
		if cur >= c.maxAllocations {
			return false
		}

		if atomic.CompareAndSwapInt64(&c.allocCount, cur, cur+1) {
			return true
		}
	}
}

// ReleaseSlot returns a slot reserved by ReserveSlot, called once a
// record leaves the table for good.
func (c *Collector) ReleaseSlot() {
	atomic.AddInt64(&c.allocCount, -1)
}

// NumActiveHandles returns the sum of h across every Live record,
// which spec.md's property 6 requires to equal the number of Rooted
// handle instances.
func (c *Collector) NumActiveHandles() int {
	total := int64(0)
	c.table.ForEach(func(r *registry.Record) {
		if r.State() == registry.Live {
			total += r.HandleCount()
		}
	})

	return int(total)
}

// Collect runs one full mark-sweep cycle, blocking until it completes.
// Overlapping calls coalesce onto the in-flight cycle's result: every
// caller observes the same cycle's outcome rather than each triggering
// its own pass, per spec.md's Open Question resolution.
func (c *Collector) Collect() {
	c.cycleMu.Lock()
	if c.inFlight != nil {
		done := c.inFlight.done
		c.cycleMu.Unlock()
		<-done

		return
	}

	res := &cycleResult{done: make(chan struct{})}
	c.inFlight = res
	c.cycleMu.Unlock()

	c.runCycle()

	c.cycleMu.Lock()
	c.inFlight = nil
	c.cycleMu.Unlock()
	close(res.done)
}

func (c *Collector) runCycle() {
	// 2. Epoch bump with a release fence: the store itself is the
	// fence mutators' barrier path acquires via CurrentEpoch/MarkActive.
	epoch := atomic.AddUint64(&c.epoch, 1)
	atomic.StoreInt32(&c.markActive, 1)

	defer atomic.StoreInt32(&c.markActive, 0)

	// 3. Root enumeration: anything with h > 0 is a root.
	c.table.ForEach(func(r *registry.Record) {
		if r.HandleCount() > 0 && r.TryMark(epoch) {
			c.deque.Push(r)
		}
	})

	// 4. Concurrent mark.
	c.drainWorklist(epoch)

	// 5. Mark termination: worklist empty and quiescence confirmed,
	// re-checked in a small loop since a quiesced mutator may have
	// pushed new work via the barrier in the interim.
	stop := make(chan struct{})
	for {
		c.gate.Quiesce(stop)
		if c.deque.Empty() {
			break
		}

		c.drainWorklist(epoch)
	}

	// 6. Sweep.
	var survived, reclaimed int64

	var wg sync.WaitGroup

	c.table.ForEach(func(r *registry.Record) {
		if r.State() != registry.Live {
			return
		}

		if r.MarkEpoch() >= epoch {
			survived++
			return
		}

		if r.HandleCount() > 0 {
			// Resurrected: a rooted clone observed during mark kept h
			// positive even though the scan pass never reached it
			// this cycle (e.g. it was rooted after enumeration). Treat
			// it as live rather than reclaiming a reachable object.
			survived++
			return
		}

		if r.Pinned() {
			// A Guard is outstanding. Existence of any guard pins the
			// payload against destruction even if the collector deems
			// it unreachable mid-scope; defer reclamation to the next
			// cycle.
			survived++
			return
		}

		if !r.CompareAndSwapState(registry.Live, registry.Swept) {
			return
		}

		reclaimed++

		rec := r
		wg.Add(1)
		c.finalize.Enqueue(finalize.Item{
			Record:     rec,
			PreDestroy: func() bool { return rec.HandleCount() == 0 && !rec.Pinned() },
			Done:       func(skipped bool) { c.recycle(rec, skipped); wg.Done() },
		})
	})

	// 7. Recycle: block until the destructor queue has drained exactly
	// the items this cycle produced. Only one cycle is ever in flight
	// at a time (Collect coalesces overlapping callers), so every item
	// the queue completes while this wait is outstanding belongs to
	// this cycle.
	wg.Wait()

	c.trig.Reset(survived, reclaimed)
	atomic.AddInt64(&c.cyclesRun, 1)
}

// recycle finishes step 7 for one swept record: either it is truly
// unreachable and transitions to Dropped and leaves the registry, or
// PreDestroy vetoed the run because something resurrected it first, in
// which case it reverts to Live.
func (c *Collector) recycle(r *registry.Record, skipped bool) {
	if skipped {
		c.log.WithFields(gclog.Fields{"record": r.ID()},
			"record resurrected before destruction, skipped")
		r.CompareAndSwapState(registry.Swept, registry.Live)

		return
	}

	r.CompareAndSwapState(registry.Swept, registry.Dropped)
	c.table.Remove(r.ID())
	c.ReleaseSlot()
}

func (c *Collector) drainWorklist(epoch uint64) {
	for {
		r, ok := c.deque.TryPop()
		if !ok {
			return
		}

		r.Scan(func(target *registry.Record) {
			if target == nil {
				return
			}

			if target.TryMark(epoch) {
				c.deque.Push(target)
			}
		})
	}
}

// PendingFinalization reports how many swept records are still queued
// for the destructor pool, used by RunWithCleanup's drain loop. A record
// whose destructor a worker is already running is not counted.
func (c *Collector) PendingFinalization() int {
	return c.finalize.Len()
}

// Shutdown drains the destructor queue and joins its workers.
func (c *Collector) Shutdown(ctx context.Context) error {
	return c.finalize.Shutdown(ctx)
}
