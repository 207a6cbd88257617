package gogc

import "github.com/orizon-lang/gogc/internal/registry"

// AnyHandle is implemented by every Gc[T] instantiation. It erases the
// element type so a Scan implementation can report heterogeneous
// outgoing edges to a Scanner without the collector needing a vtable
// per concrete T. The interface's single method is unexported, so only
// this package's Gc[T] can satisfy it — user code cannot fabricate a
// handle that was never allocated through New.
type AnyHandle interface {
	gcRecord() *registry.Record
}

// Scanner receives each outgoing handle a Scan implementation reports.
// Scan implementations must not descend into the target themselves;
// the collector controls descent.
type Scanner interface {
	ScanRef(h AnyHandle)
}

// Scan is implemented by any payload type that holds outgoing managed
// edges. The collector calls Scan once per mark pass; it must report
// every Internal handle transitively present in the receiver's memory
// image exactly once, must not allocate, clone, or drop any handle, and
// for compound types should delegate field by field in a fixed order.
//
// A type that holds no Gc edges needs no Scan method at all: the
// collector treats such payloads as scan-free, the Go equivalent of
// spec's "primitive leaf types implement scan as a no-op".
type Scan interface {
	Scan(s Scanner)
}

// scannerFunc adapts a plain function to the Scanner interface, the
// form New uses internally to bridge a payload's Scan call into the
// registry's record-reporting callback.
type scannerFunc func(AnyHandle)

func (f scannerFunc) ScanRef(h AnyHandle) { f(h) }
