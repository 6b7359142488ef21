package profiler

import (
	"runtime"
	"sync/atomic"
)

// Span is an in-progress scoped measurement. The zero value is inert:
// End on a Span whose gates were closed at Begin is a no-op.
type Span struct {
	p        *Profiler
	trackIdx int
	blockIdx int
	start    int64
	active   bool
}

// Begin opens a scoped region on the given track. The call site is the
// caller's source line; the first execution registers it, subsequent
// executions resolve through the lock-free call-site cache. End the span
// on every exit path, typically:
//
//	defer p.Begin(1, "query_users").End()
//
// Declaring two different block names on the same source line of the same
// track is a programming error and panics.
func (p *Profiler) Begin(trackIdx int, name string) Span {
	if !IsGlobalEnabled() {
		return Span{}
	}
	file, line := callerLocation(1)
	blockIdx, err := globalCallSites.resolve(p, trackIdx, file, line, name)
	if err != nil {
		panic(err)
	}
	if !p.IsTrackEnabled(trackIdx) || !p.started.Load() {
		return Span{}
	}
	return Span{p: p, trackIdx: trackIdx, blockIdx: blockIdx, start: now(), active: true}
}

// End records the elapsed time for the span. It records on every exit
// path it runs on, including panic unwinding when deferred.
func (s Span) End() {
	if !s.active {
		return
	}
	s.p.record(s.trackIdx, s.blockIdx, now()-s.start)
}

// Do runs fn as a timed block on the given track. The measurement is
// recorded even if fn panics.
func (p *Profiler) Do(trackIdx int, name string, fn func()) {
	if !IsGlobalEnabled() {
		fn()
		return
	}
	file, line := callerLocation(1)
	blockIdx, err := globalCallSites.resolve(p, trackIdx, file, line, name)
	if err != nil {
		panic(err)
	}
	if !p.IsTrackEnabled(trackIdx) || !p.started.Load() {
		fn()
		return
	}
	start := now()
	defer func() {
		p.record(trackIdx, blockIdx, now()-start)
	}()
	fn()
}

// Wrap returns fn instrumented as a block on the given track. If name is
// empty it is derived from fn's declared name. The call site is the wrap
// location; registration happens on the first invocation that passes the
// process-wide gate, so wrapping is free when profiling is disabled for
// the whole process. The returned function is safe for concurrent use.
func (p *Profiler) Wrap(trackIdx int, name string, fn func()) func() {
	file, line := callerLocation(1)
	if name == "" {
		name = funcName(fn)
	}
	// Holds blockIdx+1 once resolved; resolve is idempotent, so racing
	// first calls all store the same value.
	var cached atomic.Int64
	return func() {
		if !IsGlobalEnabled() {
			fn()
			return
		}
		blockIdx := int(cached.Load()) - 1
		if blockIdx < 0 {
			idx, err := globalCallSites.resolve(p, trackIdx, file, line, name)
			if err != nil {
				panic(err)
			}
			cached.Store(int64(idx) + 1)
			blockIdx = idx
		}
		if !p.IsTrackEnabled(trackIdx) || !p.started.Load() {
			fn()
			return
		}
		start := now()
		defer func() {
			p.record(trackIdx, blockIdx, now()-start)
		}()
		fn()
	}
}

// WrapErr is Wrap for functions returning an error.
func (p *Profiler) WrapErr(trackIdx int, name string, fn func() error) func() error {
	file, line := callerLocation(1)
	if name == "" {
		name = funcName(fn)
	}
	var cached atomic.Int64
	return func() error {
		if !IsGlobalEnabled() {
			return fn()
		}
		blockIdx := int(cached.Load()) - 1
		if blockIdx < 0 {
			idx, err := globalCallSites.resolve(p, trackIdx, file, line, name)
			if err != nil {
				panic(err)
			}
			cached.Store(int64(idx) + 1)
			blockIdx = idx
		}
		if !p.IsTrackEnabled(trackIdx) || !p.started.Load() {
			return fn()
		}
		start := now()
		defer func() {
			p.record(trackIdx, blockIdx, now()-start)
		}()
		return fn()
	}
}

func callerLocation(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
