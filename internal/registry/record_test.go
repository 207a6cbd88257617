package registry_test

import (
	"testing"

	"github.com/orizon-lang/gogc/internal/registry"
)

func TestRecordHandleCounting(t *testing.T) {
	r := registry.NewRecord("v", 0, nil, nil)

	if got := r.HandleCount(); got != 1 {
		t.Fatalf("HandleCount at construction = %d, want 1", got)
	}

	r.IncHandleCount()
	if got := r.HandleCount(); got != 2 {
		t.Fatalf("HandleCount after Inc = %d, want 2", got)
	}

	r.DecHandleCount()
	r.DecHandleCount()
	if got := r.HandleCount(); got != 0 {
		t.Fatalf("HandleCount after two Dec = %d, want 0", got)
	}
}

func TestRecordTryMarkOnlyOnce(t *testing.T) {
	r := registry.NewRecord("v", 0, nil, nil)

	if !r.TryMark(1) {
		t.Fatalf("first TryMark(1) = false, want true")
	}

	if r.TryMark(1) {
		t.Fatalf("second TryMark(1) = true, want false (already marked this epoch)")
	}

	if got := r.MarkEpoch(); got != 1 {
		t.Fatalf("MarkEpoch = %d, want 1", got)
	}

	if !r.TryMark(2) {
		t.Fatalf("TryMark(2) after TryMark(1) = false, want true")
	}
}

func TestRecordPinPreventsNothingButIsObservable(t *testing.T) {
	r := registry.NewRecord("v", 0, nil, nil)

	if r.Pinned() {
		t.Fatalf("fresh record reports Pinned = true")
	}

	r.Pin()
	if !r.Pinned() {
		t.Fatalf("Pinned = false after Pin")
	}

	r.Pin()
	r.Unpin()
	if !r.Pinned() {
		t.Fatalf("Pinned = false after one Unpin with two outstanding Pins")
	}

	r.Unpin()
	if r.Pinned() {
		t.Fatalf("Pinned = true after matching Unpin calls")
	}
}

func TestRecordStateTransitions(t *testing.T) {
	r := registry.NewRecord("v", 0, nil, nil)

	if got := r.State(); got != registry.Live {
		t.Fatalf("initial State = %v, want Live", got)
	}

	if !r.CompareAndSwapState(registry.Live, registry.Swept) {
		t.Fatalf("CompareAndSwapState(Live, Swept) = false, want true")
	}

	if r.CompareAndSwapState(registry.Live, registry.Swept) {
		t.Fatalf("CompareAndSwapState(Live, Swept) from Swept state = true, want false")
	}

	if !r.CompareAndSwapState(registry.Swept, registry.Dropped) {
		t.Fatalf("CompareAndSwapState(Swept, Dropped) = false, want true")
	}
}

func TestRecordScanAndDestroyThunks(t *testing.T) {
	var reported []*registry.Record

	target := registry.NewRecord("target", 0, nil, nil)
	r := registry.NewRecord("v", 0, func(report func(*registry.Record)) {
		report(target)
	}, nil)

	r.Scan(func(t *registry.Record) { reported = append(reported, t) })

	if len(reported) != 1 || reported[0] != target {
		t.Fatalf("Scan reported %v, want [target]", reported)
	}

	destroyed := false
	d := registry.NewRecord("d", 0, nil, func() { destroyed = true })
	d.Destroy()

	if !destroyed {
		t.Fatalf("Destroy did not run the destroy thunk")
	}

	// A nil scan/destroy thunk must not panic.
	registry.NewRecord("leaf", 0, nil, nil).Scan(func(*registry.Record) {})
	registry.NewRecord("leaf", 0, nil, nil).Destroy()
}
