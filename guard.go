package gogc

import "github.com/orizon-lang/gogc/internal/registry"

// Guard is a scoped, read-only accessor for a payload, acquired from a
// handle's Get. While any Guard for a record is outstanding, the
// collector may mark it but will not sweep, destruct, or otherwise
// invalidate its payload. Release on every exit path; a deferred
// Release right after a successful Get is the idiomatic pattern.
type Guard[T any] struct {
	rec *registry.Record
	val T
}

// Value returns the guarded payload. For interior-mutable payloads
// (types wrapping their own synchronization, e.g. an AtomicGc field or
// a mutex-guarded field) mutation through Value is safe because it
// goes through that payload's own synchronization; Value itself never
// offers write access to the outer T.
func (g Guard[T]) Value() T { return g.val }

// Release ends the guard's scope, unpinning its record. Calling
// Release more than once, or on a zero Guard, is a safe no-op.
func (g *Guard[T]) Release() {
	if g.rec == nil {
		return
	}

	g.rec.Unpin()
	g.rec = nil
}
