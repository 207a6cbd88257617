// Package collections provides a couple of Scan-aware container types,
// the way a GC library ships a Vec<Gc<T>> wrapper so callers composing
// their own Scan implementations are not the first to hit the
// composition rules. These are examples of Scan implementations, not
// infrastructure the collector itself depends on.
package collections

import (
	"sync"

	"github.com/orizon-lang/gogc"
)

// Vec holds a slice of handles as Internal references: appending a
// Rooted handle converts it to Internal, and the container's Scan
// reports every element once per mark pass. Every method locks a
// private mutex, mirroring the registry table's shard locking, since a
// Vec's Scan runs on the collector goroutine while mutator goroutines
// may concurrently Push or RemoveAt on the very same instance.
type Vec[T any] struct {
	mu    sync.RWMutex
	items []gogc.Gc[T]
}

// NewVec creates an empty Vec.
func NewVec[T any]() *Vec[T] {
	return &Vec[T]{}
}

// Push appends h, converting it to an Internal handle owned by the
// Vec. The caller's copy of h must not be used again afterward.
func (v *Vec[T]) Push(h gogc.Gc[T]) {
	internal := h.IntoInternal()

	v.mu.Lock()
	v.items = append(v.items, internal)
	v.mu.Unlock()
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.items)
}

// At returns a Rooted copy of the handle at index i, so callers can use
// it outside the Vec's own managed lifetime.
func (v *Vec[T]) At(i int) gogc.Gc[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.items[i].Clone().IntoRooted()
}

// RemoveAt removes the element at index i, dropping its Internal
// handle.
func (v *Vec[T]) RemoveAt(i int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items[i].Drop()
	v.items = append(v.items[:i], v.items[i+1:]...)
}

// Scan reports every element to s, satisfying gogc.Scan.
func (v *Vec[T]) Scan(s gogc.Scanner) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, h := range v.items {
		s.ScanRef(h)
	}
}
