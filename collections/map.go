package collections

import (
	"sync"

	"github.com/orizon-lang/gogc"
)

// Map holds Gc-valued entries keyed by a non-managed, comparable key
// (Go map keys must be comparable, so keys themselves cannot be Gc
// handles with cyclic payloads — only values are managed edges here).
// Every method locks a private mutex, mirroring the registry table's
// shard locking: Go's native map fatally crashes on a concurrent
// read/write pair, and a Map's Scan runs on the collector goroutine
// while mutator goroutines may concurrently Set or Delete on the same
// instance.
type Map[K comparable, T any] struct {
	mu      sync.RWMutex
	entries map[K]gogc.Gc[T]
}

// NewMap creates an empty Map.
func NewMap[K comparable, T any]() *Map[K, T] {
	return &Map[K, T]{entries: make(map[K]gogc.Gc[T])}
}

// Set installs h under key, converting it to Internal. Any previous
// value at key is dropped (a no-op for an Internal handle, matching
// Vec.RemoveAt).
func (m *Map[K, T]) Set(key K, h gogc.Gc[T]) {
	internal := h.IntoInternal()

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		old.Drop()
	}

	m.entries[key] = internal
}

// Get returns a Rooted copy of the value at key, if present.
func (m *Map[K, T]) Get(key K) (gogc.Gc[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.entries[key]
	if !ok {
		return gogc.Gc[T]{}, false
	}

	return h.Clone().IntoRooted(), true
}

// Delete removes key, dropping its Internal handle.
func (m *Map[K, T]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		old.Drop()
		delete(m.entries, key)
	}
}

// Len returns the number of entries.
func (m *Map[K, T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Scan reports every value to s, satisfying gogc.Scan.
func (m *Map[K, T]) Scan(s gogc.Scanner) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.entries {
		s.ScanRef(h)
	}
}
