// Package worklist implements the collector's mark worklist: a
// producer/consumer pool of grey records shared between the collector
// goroutine and mutator write barriers. It is modeled on the two-buffer
// producer/consumer abstraction used by tracing collectors to keep
// barrier-side pushes cheap and contention-free, adapted here to a
// mutex-guarded growable slice since this module has no access to
// runtime-internal work buffers and root enumeration must be able to
// push an unbounded number of records before the collector goroutine
// ever drains any of them.
package worklist

import (
	"sync"

	"github.com/orizon-lang/gogc/internal/registry"
)

// Deque is a multi-producer multi-consumer, growable queue of grey
// records backed by a mutex-guarded slice.
type Deque struct {
	mu    sync.Mutex
	items []*registry.Record
}

// New creates a Deque with room for capacity pending records before its
// backing slice grows. capacity only sizes the initial allocation; it
// never bounds how much work the worklist can hold, so a Push can never
// block regardless of how many records root enumeration stages ahead
// of the collector goroutine's first drain.
func New(capacity int) *Deque {
	if capacity <= 0 {
		capacity = 1024
	}

	return &Deque{items: make([]*registry.Record, 0, capacity)}
}

// Push enqueues a grey record for scanning. Never blocks.
func (d *Deque) Push(r *registry.Record) {
	d.mu.Lock()
	d.items = append(d.items, r)
	d.mu.Unlock()
}

// TryPop removes one record without blocking, reporting false if the
// worklist is currently empty.
func (d *Deque) TryPop() (*registry.Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.items)
	if n == 0 {
		return nil, false
	}

	r := d.items[n-1]
	d.items[n-1] = nil
	d.items = d.items[:n-1]

	return r, true
}

// Empty reports whether the worklist has no pending items at the
// moment of the call. Racy by nature (a concurrent Push can land
// immediately after), which is why mark termination additionally
// requires the safepoint quiescence handshake before concluding the
// worklist will stay empty.
func (d *Deque) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.items) == 0
}
