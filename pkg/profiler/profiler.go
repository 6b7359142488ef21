// Package profiler implements an explicit-instrumentation profiling
// engine. Callers mark code regions ("blocks") with a track index and a
// name; the engine records hit counts and total/min/max durations per
// block, grouped into named tracks. Recording is near lock-free: each
// goroutine writes to its own store, and aggregation merges all stores
// into an immutable Results snapshot.
//
// Three independent gates control recording: the process-wide gate
// (SetGlobalEnabled), the per-track gate (SetTrackEnabled) and the
// per-instance gate (Start/Stop). All default to enabled. When any gate
// is off the instrumented code still runs; only the measurement is
// skipped.
package profiler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	uatomic "go.uber.org/atomic"

	"github.com/stichotrope/stichotrope/pkg/timing"
)

// Profiler is the durable root of one profiling domain. It is safe for
// concurrent use by any number of goroutines.
type Profiler struct {
	id      uint64
	name    string
	started *uatomic.Bool
	logger  log.Logger

	// mu guards track creation, track names and block allocation.
	// Lock order: the call-site cache mutex may be held when mu is
	// acquired (block allocation during registration); mu is never
	// held while taking the cache or registry mutex.
	mu     sync.Mutex
	tracks atomic.Pointer[map[int]*trackMeta]

	stores *storeRegistry
}

// Option customizes a Profiler at construction.
type Option func(*Profiler)

// WithLogger sets the logger used for non-fatal diagnostics. The default
// is a nop logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithStopped constructs the profiler with the instance gate off, so no
// recording happens until Start is called.
func WithStopped() Option {
	return func(p *Profiler) {
		p.started.Store(false)
	}
}

// New creates a named profiler, registered in the process-wide registry
// and started by default.
func New(name string, opts ...Option) *Profiler {
	p := &Profiler{
		name:    name,
		started: uatomic.NewBool(true),
		logger:  log.NewNopLogger(),
		stores:  newStoreRegistry(),
	}
	m := make(map[int]*trackMeta)
	p.tracks.Store(&m)
	for _, opt := range opts {
		opt(p)
	}
	p.id = globalRegistry.register(p)
	return p
}

// ID returns the unique id assigned at construction.
func (p *Profiler) ID() uint64 { return p.id }

// Name returns the profiler's display name.
func (p *Profiler) Name() string { return p.name }

// Start enables the instance gate. Profilers are started by default.
func (p *Profiler) Start() { p.started.Store(true) }

// Stop disables the instance gate. Instrumented code keeps running;
// measurements are dropped until Start.
func (p *Profiler) Stop() { p.started.Store(false) }

// IsStarted reports the instance gate.
func (p *Profiler) IsStarted() bool { return p.started.Load() }

// SetTrackName assigns a display name to a track, creating the track if
// it does not exist yet.
func (p *Profiler) SetTrackName(trackIdx int, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trackLocked(trackIdx).name = name
}

// TrackName returns the track's display name, deriving a default for
// tracks that were never named.
func (p *Profiler) TrackName(trackIdx int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tm, ok := (*p.tracks.Load())[trackIdx]; ok {
		return tm.displayName()
	}
	return DefaultTrackName(trackIdx)
}

// SetTrackEnabled toggles the per-track gate, creating the track if it
// does not exist yet. Like the other gates this is eventual: recordings
// racing the toggle may still land.
func (p *Profiler) SetTrackEnabled(trackIdx int, enabled bool) {
	p.mu.Lock()
	tm := p.trackLocked(trackIdx)
	p.mu.Unlock()
	tm.enabled.Store(enabled)
}

// IsTrackEnabled reports the per-track gate. Tracks that have never been
// registered or named default to enabled.
func (p *Profiler) IsTrackEnabled(trackIdx int) bool {
	if tm, ok := (*p.tracks.Load())[trackIdx]; ok {
		return tm.enabled.Load()
	}
	return true
}

// trackLocked returns the track metadata for trackIdx, creating and
// publishing it on first use. Caller must hold p.mu.
func (p *Profiler) trackLocked(trackIdx int) *trackMeta {
	cur := *p.tracks.Load()
	if tm, ok := cur[trackIdx]; ok {
		return tm
	}
	tm := newTrackMeta(trackIdx)
	next := make(map[int]*trackMeta, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[trackIdx] = tm
	p.tracks.Store(&next)
	return tm
}

// registerBlock allocates the next block index within the track. Called
// from the call-site cache with the cache mutex held; tracks are created
// implicitly for unknown indices.
func (p *Profiler) registerBlock(trackIdx int, name, file string, line int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	tm := p.trackLocked(trackIdx)
	idx := len(tm.blocks)
	tm.blocks = append(tm.blocks, blockMeta{name: name, file: file, line: line})
	level.Debug(p.logger).Log("msg", "registered block",
		"track", trackIdx, "block", idx, "name", name, "site", file, "line", line)
	return idx
}

// registerNamedBlock returns the index of the named block within the
// track, allocating it on first registration. Explicit sites resolve by
// name rather than by source location, so the same block can be
// registered from a loop or from several places in the code.
func (p *Profiler) registerNamedBlock(trackIdx int, name, file string, line int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	tm := p.trackLocked(trackIdx)
	for i, bm := range tm.blocks {
		if bm.name == name {
			return i
		}
	}
	idx := len(tm.blocks)
	tm.blocks = append(tm.blocks, blockMeta{name: name, file: file, line: line})
	level.Debug(p.logger).Log("msg", "registered block",
		"track", trackIdx, "block", idx, "name", name, "site", file, "line", line)
	return idx
}

// record applies one measurement to the calling goroutine's store. All
// gates must have been checked by the caller.
func (p *Profiler) record(trackIdx, blockIdx int, durationNS int64) {
	if durationNS < 0 {
		durationNS = 0
	}
	p.stores.get().record(trackIdx, blockIdx, uint64(durationNS))
}

// Results merges every goroutine's measurements into an immutable
// snapshot. It may run concurrently with ongoing recordings: the result
// is a best-effort snapshot, not a consistent cut across goroutines, but
// no block is ever observed with a half-applied update and hit counts
// never decrease between successive calls.
func (p *Profiler) Results() *Results {
	capturedAt := time.Now()

	// Seed merged tracks from the registered metadata so that blocks
	// with zero hits still appear, with zero-valued statistics.
	p.mu.Lock()
	meta := *p.tracks.Load()
	tracks := make(map[int]*Track, len(meta))
	merged := make(map[int][]Block, len(meta))
	for idx, tm := range meta {
		blocks := make([]Block, len(tm.blocks))
		for i, bm := range tm.blocks {
			blocks[i] = Block{Name: bm.name, File: bm.file, Line: bm.line}
		}
		tracks[idx] = &Track{
			Index:   idx,
			Name:    tm.displayName(),
			Enabled: tm.enabled.Load(),
			Blocks:  blocks,
		}
		merged[idx] = blocks
	}
	p.mu.Unlock()

	// Sequential merge over the store list. The list itself is read
	// lock-free; each store is copied under its own micro-mutex only.
	for _, s := range p.stores.snapshot() {
		s.snapshotInto(merged)
	}

	return &Results{
		ProfilerName: p.name,
		CapturedAt:   capturedAt,
		Tracks:       tracks,
	}
}

// StoreCount reports how many goroutines have recorded against this
// profiler. Intended for diagnostics and tests.
func (p *Profiler) StoreCount() int {
	return p.stores.len()
}

// now is a package-local alias so the hot path reads tightly.
func now() int64 { return timing.Now() }
