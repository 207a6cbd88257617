package collections_test

import (
	"sync/atomic"
	"testing"

	"github.com/orizon-lang/gogc"
	"github.com/orizon-lang/gogc/collections"
)

// mapContainer wraps a Map and implements Scan, the map analogue of
// container in vec_test.go.
type mapContainer struct {
	entries *collections.Map[string, *leaf]
}

func (c *mapContainer) Scan(s gogc.Scanner) { c.entries.Scan(s) }

func TestMapSetGetDelete(t *testing.T) {
	var destroyed int32

	root := mustNew(t, &mapContainer{entries: collections.NewMap[string, *leaf]()})

	guard, err := root.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m := guard.Value().entries
	m.Set("a", mustNew(t, &leaf{destroyed: &destroyed}))
	m.Set("b", mustNew(t, &leaf{destroyed: &destroyed}))
	guard.Release()

	if got := m.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	h, ok := m.Get("a")
	if !ok {
		t.Fatalf("Get(a): not found")
	}
	if !h.IsRooted() {
		t.Fatalf("Get returned a non-Rooted handle")
	}
	g, err := h.Get()
	if err != nil {
		t.Fatalf("Get(a).Get: %v", err)
	}
	g.Release()
	h.Drop()

	m.Delete("a")

	if got := m.Len(); got != 1 {
		t.Fatalf("Len after Delete = %d, want 1", got)
	}

	if _, ok := m.Get("a"); ok {
		t.Fatalf("Get(a) after Delete: found, want not found")
	}

	root.Drop()
	gogc.Collect()

	if got := atomic.LoadInt32(&destroyed); got != 2 {
		t.Fatalf("destroyed = %d, want 2 (both entries, via root teardown)", got)
	}
}

func TestMapScanKeepsValuesReachable(t *testing.T) {
	var destroyed int32

	root := mustNew(t, &mapContainer{entries: collections.NewMap[string, *leaf]()})

	guard, err := root.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	guard.Value().entries.Set("x", mustNew(t, &leaf{destroyed: &destroyed}))
	guard.Release()

	for i := 0; i < 5; i++ {
		gogc.Collect()
	}

	if got := atomic.LoadInt32(&destroyed); got != 0 {
		t.Fatalf("destroyed = %d, want 0 while still reachable from root", got)
	}

	root.Drop()
	gogc.Collect()

	if got := atomic.LoadInt32(&destroyed); got != 1 {
		t.Fatalf("destroyed = %d, want 1 after dropping root", got)
	}
}
