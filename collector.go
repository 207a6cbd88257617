package gogc

import (
	"context"
	"sync"

	"github.com/orizon-lang/gogc/internal/collector"
)

var (
	instanceMu sync.Mutex
	instance   *collector.Collector
	lastOpts   Options
)

// currentCollector returns the process-wide collector, starting it
// with default Options on first use.
func currentCollector() *collector.Collector {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = collector.New(lastOpts.toCollectorOptions())
	}

	return instance
}

// Start configures and lazily starts the process-wide collector. If
// the collector has already started (by an earlier Start or by the
// first allocation), Start has no effect: the Options the running
// instance started with stay in force — this module exposes exactly one
// collector instance per process, by design.
func Start(opts Options) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		lastOpts = opts
		instance = collector.New(opts.toCollectorOptions())
	}
}

// Collect forces one full mark-sweep cycle and blocks until it
// completes. Overlapping calls from other goroutines coalesce onto the
// same in-flight cycle.
func Collect() {
	currentCollector().Collect()
}

// RunWithCleanup runs f, then repeatedly collects until the registry
// reports no tracked allocations and no pending destructor work, or
// Options.MaxCleanupCycles iterations have run — whichever comes
// first, so a destructor that keeps creating fresh garbage (S4) cannot
// loop forever.
func RunWithCleanup(f func()) {
	f()

	c := currentCollector()
	max := lastOpts.maxCleanupCycles()

	for i := 0; i < max; i++ {
		c.Collect()

		if c.NumTracked() == 0 && c.PendingFinalization() == 0 {
			return
		}
	}
}

// NumberOfTrackedAllocations returns the number of allocation records
// currently known to the registry, live or awaiting destruction.
func NumberOfTrackedAllocations() int {
	return currentCollector().NumTracked()
}

// NumberOfActiveHandles returns the sum of h across every Live record,
// equal to the number of Rooted handle instances currently alive.
func NumberOfActiveHandles() int {
	return currentCollector().NumActiveHandles()
}

// Shutdown drains the destructor queue and joins its workers, bounded
// by ctx. Intended for tests and short-lived host processes that want
// a clean exit; most long-running programs never call it.
func Shutdown(ctx context.Context) error {
	return currentCollector().Shutdown(ctx)
}
