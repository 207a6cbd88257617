package gogc

import (
	"io"

	"github.com/orizon-lang/gogc/internal/collector"
	"github.com/orizon-lang/gogc/internal/gclog"
)

// Options configures the process-wide collector. Pass Options to Start
// before the first allocation; once the collector has started, later
// calls to Start are ignored, matching spec's "do not expose multiple
// collector instances".
type Options struct {
	// DestructorWorkers sizes the background destructor pool. Zero
	// picks GOMAXPROCS(0)/2, floored at 1.
	DestructorWorkers int

	// WorklistCapacity sizes the mark worklist's initial backing
	// buffer; the worklist grows past it as needed, so it is not a
	// bound. Zero picks a generous default.
	WorklistCapacity int

	// LogOutput receives structured diagnostics (destructor panics,
	// resurrection events). Defaults to os.Stderr.
	LogOutput io.Writer

	// MaxCleanupCycles bounds RunWithCleanup's drain loop so a
	// pathological destructor chain cannot loop forever. Zero picks 8.
	MaxCleanupCycles int

	// MaxAllocations caps the number of records the registry will hold
	// at once. Zero means unbounded. Once at capacity, New returns
	// gcerrors.ErrCapacityExhausted until sweep frees a slot.
	MaxAllocations int
}

func (o Options) toCollectorOptions() collector.Options {
	var logger *gclog.Logger
	if o.LogOutput != nil {
		logger = gclog.New(o.LogOutput)
	}

	return collector.Options{
		Logger:         logger,
		Workers:        o.DestructorWorkers,
		WorklistDepth:  o.WorklistCapacity,
		MaxAllocations: o.MaxAllocations,
	}
}

func (o Options) maxCleanupCycles() int {
	if o.MaxCleanupCycles <= 0 {
		return 8
	}

	return o.MaxCleanupCycles
}
