package gogc_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/orizon-lang/gogc"
	"github.com/orizon-lang/gogc/internal/gcerrors"
)

func TestGetAfterDropReturnsAccessAfterDrop(t *testing.T) {
	var destroyed int32

	h := mustNew(t, newNode("solo", &destroyed))
	h.Drop()
	gogc.Collect()

	_, err := h.Get()
	if !errors.Is(err, gcerrors.ErrAccessAfterDrop) {
		t.Fatalf("Get after drop and collect: err = %v, want ErrAccessAfterDrop", err)
	}
}

func TestCloneIncrementsRootedCount(t *testing.T) {
	var destroyed int32

	before := gogc.NumberOfActiveHandles()

	h := mustNew(t, newNode("a", &destroyed))
	clone := h.Clone()

	if got := gogc.NumberOfActiveHandles() - before; got != 2 {
		t.Fatalf("active handles delta after Clone = %d, want 2", got)
	}

	clone.Drop()
	h.Drop()
	gogc.Collect()
}

func TestIntoInternalThenIntoRootedRoundTrips(t *testing.T) {
	var destroyed int32

	before := gogc.NumberOfActiveHandles()

	h := mustNew(t, newNode("a", &destroyed))
	internal := h.IntoInternal()

	if got := gogc.NumberOfActiveHandles() - before; got != 0 {
		t.Fatalf("active handles delta after IntoInternal = %d, want 0", got)
	}

	if internal.IsRooted() {
		t.Fatalf("handle converted IntoInternal reports IsRooted = true")
	}

	rooted := internal.IntoRooted()

	if !rooted.IsRooted() {
		t.Fatalf("handle converted IntoRooted reports IsRooted = false")
	}

	if got := gogc.NumberOfActiveHandles() - before; got != 1 {
		t.Fatalf("active handles delta after IntoRooted = %d, want 1", got)
	}

	rooted.Drop()
	gogc.Collect()
}

func TestZeroValueHandleIsInvalid(t *testing.T) {
	var zero gogc.Gc[*node]

	if zero.Valid() {
		t.Fatalf("zero value Gc reports Valid = true")
	}

	if _, err := zero.Get(); err == nil {
		t.Fatalf("Get on zero value: want error, got nil")
	}

	// Drop and Clone on the zero value must not panic.
	zero.Drop()
	_ = zero.Clone()
}
