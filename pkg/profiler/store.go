package profiler

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// store holds one goroutine's private measurements against one profiler.
//
// Only the owning goroutine records into a store, so the mutex is
// uncontended on the hot path; it exists so that the aggregator can copy
// a store without ever observing a half-applied block update. Stores are
// created lazily on first recording and never removed, even after the
// goroutine exits: historical data must survive goroutine teardown so
// that aggregation stays possible. Memory therefore grows with
// goroutines × blocks, which is accepted at the target scale.
type store struct {
	goroutineID int64

	mu     sync.Mutex
	tracks map[int][]Block
}

func newStore(gid int64) *store {
	return &store{
		goroutineID: gid,
		tracks:      make(map[int][]Block),
	}
}

// record applies one measurement. Called only by the owning goroutine.
func (s *store) record(trackIdx, blockIdx int, durationNS uint64) {
	s.mu.Lock()
	blocks := s.tracks[trackIdx]
	if blockIdx >= len(blocks) {
		grown := make([]Block, blockIdx+1)
		copy(grown, blocks)
		blocks = grown
		s.tracks[trackIdx] = blocks
	}
	blocks[blockIdx].record(durationNS)
	s.mu.Unlock()
}

// snapshotInto merges the store's blocks into dst under the store mutex,
// so concurrent recordings by the owner never tear a 4-field update.
// dst maps track index to a block slice already sized for every
// registered block of that track.
func (s *store) snapshotInto(dst map[int][]Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for trackIdx, blocks := range s.tracks {
		merged, ok := dst[trackIdx]
		if !ok {
			continue
		}
		for i := range blocks {
			if i >= len(merged) {
				break
			}
			merged[i].merge(&blocks[i])
		}
	}
}

// storeRegistry maps goroutine ids to their stores for one profiler.
//
// Reads are lock-free: the map is published through an atomic pointer
// and extended copy-on-write under the mutex. This is the bottom of the
// engine's lock hierarchy; no other engine lock is taken while holding it.
type storeRegistry struct {
	mu     sync.Mutex
	stores atomic.Pointer[map[int64]*store]
}

func newStoreRegistry() *storeRegistry {
	r := &storeRegistry{}
	m := make(map[int64]*store)
	r.stores.Store(&m)
	return r
}

// get returns the calling goroutine's store, creating and registering it
// on first use. The lock is taken at most once per (goroutine, profiler)
// pair.
func (r *storeRegistry) get() *store {
	gid := goid.Get()
	if s, ok := (*r.stores.Load())[gid]; ok {
		return s
	}
	return r.create(gid)
}

func (r *storeRegistry) create(gid int64) *store {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.stores.Load()
	if s, ok := cur[gid]; ok {
		return s
	}

	s := newStore(gid)
	next := make(map[int64]*store, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[gid] = s
	r.stores.Store(&next)
	return s
}

// snapshot returns the current set of stores. The returned slice is a
// private copy; store contents are read later under each store's mutex.
func (r *storeRegistry) snapshot() []*store {
	cur := *r.stores.Load()
	out := make([]*store, 0, len(cur))
	for _, s := range cur {
		out = append(out, s)
	}
	return out
}

func (r *storeRegistry) len() int {
	return len(*r.stores.Load())
}
