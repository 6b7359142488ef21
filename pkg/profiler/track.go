package profiler

import (
	"fmt"

	"go.uber.org/atomic"
)

// Track is a merged view of one logical category of blocks, as produced
// by Results. Blocks are indexed by their stable per-track block index.
type Track struct {
	Index   int     `json:"track_idx"`
	Name    string  `json:"track_name"`
	Enabled bool    `json:"enabled"`
	Blocks  []Block `json:"blocks"`
}

// TotalTimeNS returns the sum of the total times of all blocks in the track.
func (t *Track) TotalTimeNS() uint64 {
	var sum uint64
	for i := range t.Blocks {
		sum += t.Blocks[i].TotalTimeNS
	}
	return sum
}

// TotalHits returns the sum of the hit counts of all blocks in the track.
func (t *Track) TotalHits() uint64 {
	var sum uint64
	for i := range t.Blocks {
		sum += t.Blocks[i].HitCount
	}
	return sum
}

func (t *Track) String() string {
	return fmt.Sprintf("track %d %q: blocks=%d hits=%d total=%dns",
		t.Index, t.Name, len(t.Blocks), t.TotalHits(), t.TotalTimeNS())
}

// DefaultTrackName is the display name given to tracks that were never
// named explicitly.
func DefaultTrackName(idx int) string {
	return fmt.Sprintf("Track %d", idx)
}

// trackMeta is the profiler's mutable per-track state. The enabled gate
// is read on every recording attempt without any lock; name and blocks
// are guarded by the profiler mutex.
type trackMeta struct {
	index   int
	enabled atomic.Bool

	// Guarded by Profiler.mu. Entries are append-only and immutable
	// once added, so holders of a block index may read them freely.
	name   string
	blocks []blockMeta
}

// blockMeta is the immutable identity of a registered block.
type blockMeta struct {
	name string
	file string
	line int
}

func newTrackMeta(idx int) *trackMeta {
	tm := &trackMeta{index: idx}
	tm.enabled.Store(true)
	return tm
}

func (tm *trackMeta) displayName() string {
	if tm.name == "" {
		return DefaultTrackName(tm.index)
	}
	return tm.name
}
