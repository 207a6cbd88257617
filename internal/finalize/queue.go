// Package finalize runs destructor thunks off the collector's mark/sweep
// path, in a small fixed pool of worker goroutines managed with
// golang.org/x/sync/errgroup, isolating a panicking destructor from the
// rest of the program.
package finalize

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/gogc/internal/gclog"
	"github.com/orizon-lang/gogc/internal/registry"
)

// Item is one pending destruction: a record that has transitioned to
// Swept and its destructor thunk.
//
// PreDestroy, if set, is re-checked immediately before the destructor
// runs and must return true for the destructor to proceed; this closes
// the race window between a sweep decision and the destructor actually
// running, during which a destructor on another record could have
// resurrected this one.
//
// Done, if set, runs on the worker goroutine right after the
// destructor has run (or been vetoed), reporting whether it was
// skipped. Running it inline, rather than publishing to a results
// channel a separate goroutine drains, keeps the queue's own buffering
// independent of how many items one sweep pass produces.
type Item struct {
	Record     *registry.Record
	PreDestroy func() bool
	Done       func(skipped bool)
}

// Queue drains Items on a fixed worker pool. Destructors run with no
// collector lock held; a panicking destructor is recovered and logged,
// never propagated.
type Queue struct {
	items    chan Item
	log      *gclog.Logger
	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc
}

// Options configures the destructor pool.
type Options struct {
	Workers int
	Logger  *gclog.Logger
}

// New creates and starts a Queue. Call Shutdown to join its workers.
func New(opts Options) *Queue {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0) / 2
		if workers < 1 {
			workers = 1
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = gclog.Default
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	q := &Queue{
		items:    make(chan Item, 4096),
		log:      logger,
		group:    g,
		groupCtx: gctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		g.Go(q.worker)
	}

	return q
}

func (q *Queue) worker() error {
	for {
		select {
		case <-q.groupCtx.Done():
			return nil
		case item, ok := <-q.items:
			if !ok {
				return nil
			}

			q.run(item)
		}
	}
}

// run invokes item's destructor with panic isolation: a panicking
// destructor is logged and the queue continues, matching the
// DestructorPanic error kind.
func (q *Queue) run(item Item) {
	skipped := false

	defer func() {
		if r := recover(); r != nil {
			q.log.WithFields(gclog.Fields{"record": item.Record.ID(), "panic": r},
				"destructor panicked, isolating")
		}

		if item.Done != nil {
			item.Done(skipped)
		}
	}()

	if item.PreDestroy != nil && !item.PreDestroy() {
		skipped = true
		return
	}

	item.Record.Destroy()
}

// Enqueue submits item for destruction. Blocks if the queue is full,
// applying natural backpressure on the collector's sweep pass.
func (q *Queue) Enqueue(item Item) {
	q.items <- item
}

// Len reports the number of items currently queued, used by
// RunWithCleanup to decide whether another cleanup cycle is needed.
func (q *Queue) Len() int {
	return len(q.items)
}

// Shutdown stops accepting new work, waits for in-flight destructors
// to finish (bounded by ctx), and joins the worker goroutines.
func (q *Queue) Shutdown(ctx context.Context) error {
	close(q.items)

	waitErr := make(chan error, 1)
	go func() { waitErr <- q.group.Wait() }()

	select {
	case err := <-waitErr:
		q.cancel()
		return err
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}
