package profiler

import (
	"sync"
	"weak"

	"go.uber.org/atomic"
)

// globalEnabled is the process-wide gate. It defaults to enabled and is
// consulted before any call-site resolution or recording.
var globalEnabled = atomic.NewBool(true)

// SetGlobalEnabled toggles profiling for every profiler in the process.
// The toggle is a plain flag write: recordings already past the gate may
// still land, which is acceptable for statistics counters.
func SetGlobalEnabled(enabled bool) {
	globalEnabled.Store(enabled)
}

// IsGlobalEnabled reports whether process-wide profiling is enabled.
func IsGlobalEnabled() bool {
	return globalEnabled.Load()
}

// registry assigns each profiler a unique id at construction and keeps a
// weak back-reference to every live profiler for bookkeeping. It is not
// on the hot path. Lock order: this lock is the top of the hierarchy and
// is never acquired while holding any other engine lock.
type registry struct {
	mu        sync.Mutex
	nextID    uint64
	profilers map[uint64]weak.Pointer[Profiler]
}

var globalRegistry = &registry{
	profilers: make(map[uint64]weak.Pointer[Profiler]),
}

func (r *registry) register(p *Profiler) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.profilers[id] = weak.Make(p)
	r.sweepLocked()
	return id
}

// sweepLocked drops entries whose profiler has been collected, so a
// process that creates many short-lived profilers does not grow the
// registry without bound.
func (r *registry) sweepLocked() {
	for id, wp := range r.profilers {
		if wp.Value() == nil {
			delete(r.profilers, id)
		}
	}
}

func (r *registry) live() []*Profiler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Profiler, 0, len(r.profilers))
	for _, wp := range r.profilers {
		if p := wp.Value(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profilers = make(map[uint64]weak.Pointer[Profiler])
}

// LiveProfilers returns the profilers currently registered and not yet
// collected. Intended for diagnostics and tests.
func LiveProfilers() []*Profiler {
	return globalRegistry.live()
}

// ClearGlobalState resets the profiler registry, the call-site cache and
// the process-wide gate. It exists for test harnesses only: profilers
// created before the call keep working, but their cached call sites are
// forgotten and will be re-registered on next use.
func ClearGlobalState() {
	globalRegistry.clear()
	globalCallSites.clear()
	globalEnabled.Store(true)
}
