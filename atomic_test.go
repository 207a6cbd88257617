package gogc_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orizon-lang/gogc"
)

// mkSelfCycle builds a two-node cycle (a -> b -> a) with no Rooted
// handle of its own and returns a single Rooted handle to its head,
// suitable for installing as the only root keeping the cycle alive.
func mkSelfCycle(t *testing.T, name string, destroyed *int32) gogc.Gc[*node] {
	t.Helper()

	a := mustNew(t, newNode(name+"-a", destroyed))
	b := mustNew(t, newNode(name+"-b", destroyed))

	withNode(t, a, func(n *node) { n.addEdge(b.Clone()) })
	withNode(t, b, func(n *node) { n.addEdge(a.Clone()) })

	b.Drop()

	return a
}

// TestAtomicGcSwapUnderMark is scenario S6: an AtomicGc field is
// repeatedly swapped between two independent cycles while a background
// goroutine continuously runs Collect. Whichever cycle is currently
// referenced must remain reachable throughout, and dropping the field's
// last reference at the end must let both cycles reach zero.
func TestAtomicGcSwapUnderMark(t *testing.T) {
	var destroyed int32

	cyc1 := mkSelfCycle(t, "cyc1", &destroyed)
	cyc2 := mkSelfCycle(t, "cyc2", &destroyed)

	field := gogc.NewAtomicGc(cyc1.Clone())

	stop := make(chan struct{})
	var collecting sync.WaitGroup
	collecting.Add(1)

	go func() {
		defer collecting.Done()
		for {
			select {
			case <-stop:
				return
			default:
				gogc.Collect()
				time.Sleep(time.Microsecond)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			field.Swap(cyc1.Clone()).Drop()
		} else {
			field.Swap(cyc2.Clone()).Drop()
		}

		current := field.Load()
		guard, err := current.Get()
		if err != nil {
			close(stop)
			collecting.Wait()
			t.Fatalf("iteration %d: currently-referenced cycle is unreachable: %v", i, err)
		}
		guard.Release()
		current.Drop()
	}

	close(stop)
	collecting.Wait()

	field.Load().Drop()
	cyc1.Drop()
	cyc2.Drop()

	for i := 0; i < 8; i++ {
		gogc.Collect()
	}

	if got := atomic.LoadInt32(&destroyed); got != 4 {
		t.Fatalf("destroyed = %d, want 4 (both cycles fully reclaimed)", got)
	}
}
