// Package gogc provides Gc[T], a reference-counted smart pointer that
// additionally tolerates cyclic ownership graphs by detecting and
// reclaiming unreachable cycles with a background concurrent tracing
// collector.
//
// A Gc[T] behaves like a shared pointer: New allocates, Clone shares,
// Drop releases. Unlike a plain refcount, a cycle of Gc values with no
// external Rooted handle is still reclaimed, by the collector's
// periodic mark-sweep pass rather than by the refcount reaching zero.
//
// Types stored in a Gc[T] that themselves hold outgoing Gc edges must
// implement Scan so the collector can trace them; see the Scan and
// Scanner documentation. Types with no managed edges need not implement
// anything.
package gogc
