package profiler

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// callSiteKey identifies one instrumentation point: a source location
// within a track of a specific profiler. The declared block name is not
// part of the key; registering a different name for the same location is
// a programming error and fails loudly (see resolve).
type callSiteKey struct {
	profilerID uint64
	trackIdx   int
	file       string
	line       int
}

type callSiteEntry struct {
	blockIdx int
	name     string
}

// callSiteCache maps call sites to their allocated block index.
//
// The read path is lock-free: the current map is published through an
// atomic pointer and never mutated in place. Registration copies the map
// under the cache mutex, re-checks for a concurrent winner, allocates the
// block, and publishes the extended copy. Entries are never removed.
//
// Lock order: the cache mutex may acquire a profiler's allocation mutex
// (block allocation); never the registry mutex.
type callSiteCache struct {
	mu      sync.Mutex
	entries atomic.Pointer[map[callSiteKey]callSiteEntry]
}

var globalCallSites = newCallSiteCache()

func newCallSiteCache() *callSiteCache {
	c := &callSiteCache{}
	m := make(map[callSiteKey]callSiteEntry)
	c.entries.Store(&m)
	return c
}

func (c *callSiteCache) lookup(key callSiteKey) (callSiteEntry, bool) {
	e, ok := (*c.entries.Load())[key]
	return e, ok
}

// resolve returns the block index allocated for the call site, registering
// the site on first use. Exactly one block index is ever allocated per
// distinct call site per profiler, regardless of how many goroutines reach
// the site simultaneously. An inconsistent re-registration (same location,
// different declared name) returns an error instead of silently
// overwriting.
func (c *callSiteCache) resolve(p *Profiler, trackIdx int, file string, line int, name string) (int, error) {
	key := callSiteKey{profilerID: p.id, trackIdx: trackIdx, file: file, line: line}
	if e, ok := c.lookup(key); ok {
		if e.name != name {
			return 0, errors.Errorf(
				"call site %s:%d (track %d) already registered as %q, cannot re-register as %q",
				file, line, trackIdx, e.name, name)
		}
		return e.blockIdx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have registered the site while we waited.
	cur := *c.entries.Load()
	if e, ok := cur[key]; ok {
		if e.name != name {
			return 0, errors.Errorf(
				"call site %s:%d (track %d) already registered as %q, cannot re-register as %q",
				file, line, trackIdx, e.name, name)
		}
		return e.blockIdx, nil
	}

	blockIdx := p.registerBlock(trackIdx, name, file, line)

	next := make(map[callSiteKey]callSiteEntry, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[key] = callSiteEntry{blockIdx: blockIdx, name: name}
	c.entries.Store(&next)
	return blockIdx, nil
}

func (c *callSiteCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[callSiteKey]callSiteEntry)
	c.entries.Store(&m)
}

func (c *callSiteCache) len() int {
	return len(*c.entries.Load())
}
