package registry

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// defaultShardCount mirrors the teacher's striped concurrent map default.
const defaultShardCount = 32

// Table is a sharded registry of every live Record; Insert locks only
// the id counter and the one target shard.
// It is grounded on the same striped-map design used elsewhere in this
// codebase's concurrency helpers, adapted to key on a monotonic id
// instead of an address.
type Table struct {
	shards []tableShard
	nextID uint64
	mu     sync.Mutex // guards nextID only
}

// tableShard pads its mutex and map header away from neighboring
// shards' cache lines; every mark pass and every mutator's Insert/Get
// hammers these fields from goroutines that otherwise share nothing,
// so false sharing between adjacent shards is the dominant cost at
// high shard counts.
type tableShard struct {
	mu      sync.RWMutex
	records map[ID]*Record
	_       cpu.CacheLinePad
}

// NewTable creates a Table with the default shard count.
func NewTable() *Table {
	return NewTableWithShards(defaultShardCount)
}

// NewTableWithShards creates a Table with an explicit shard count,
// mainly useful for tests that want to exercise shard boundaries.
func NewTableWithShards(shardCount int) *Table {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}

	shards := make([]tableShard, shardCount)
	for i := range shards {
		shards[i].records = make(map[ID]*Record)
	}

	return &Table{shards: shards}
}

func (t *Table) shardFor(id ID) *tableShard {
	return &t.shards[uint64(id)%uint64(len(t.shards))]
}

// Insert assigns r a fresh id, publishes it into its shard, and
// returns the id. Safe to call concurrently with ForEach and other
// Inserts; a mark pass in progress may not see r until its next
// snapshot, if r's shard was already visited (the caller is responsible for stamping r's mark
// epoch so that omission never reads as "not yet marked but should be
// swept").
func (t *Table) Insert(r *Record) ID {
	t.mu.Lock()
	t.nextID++
	id := ID(t.nextID)
	t.mu.Unlock()

	r.id = id

	s := t.shardFor(id)
	s.mu.Lock()
	s.records[id] = r
	s.mu.Unlock()

	return id
}

// Remove deletes id from the table. Called once a record has reached
// Dropped and its destructor has run.
func (t *Table) Remove(id ID) {
	s := t.shardFor(id)
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

// Get returns the record for id, if still present.
func (t *Table) Get(id ID) (*Record, bool) {
	s := t.shardFor(id)
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()

	return r, ok
}

// Len returns the number of tracked records at the moment of the call.
func (t *Table) Len() int {
	n := 0

	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.records)
		s.mu.RUnlock()
	}

	return n
}

// ForEach snapshot-iterates every record at the moment each shard is
// visited. Each shard is copied under its own RLock before the
// callback runs over it, so a concurrent Insert or Remove on a shard
// that has not yet been visited is reflected, and one already visited
// is simply missed for this pass — both are safe for the collector,
// which never needs a single global-consistent snapshot, only a
// superset-of-roots guarantee per spec.
func (t *Table) ForEach(f func(*Record)) {
	for i := range t.shards {
		s := &t.shards[i]

		s.mu.RLock()
		snapshot := make([]*Record, 0, len(s.records))
		for _, r := range s.records {
			snapshot = append(snapshot, r)
		}
		s.mu.RUnlock()

		for _, r := range snapshot {
			f(r)
		}
	}
}
