package profiler

import (
	"fmt"
	"sort"
	"time"
)

// Results is an immutable snapshot of a profiler's merged measurements.
// Recordings that happen after the snapshot never modify it.
type Results struct {
	ProfilerName string         `json:"profiler_name"`
	CapturedAt   time.Time      `json:"captured_at"`
	Tracks       map[int]*Track `json:"tracks"`
}

// Track returns the merged track at idx, or nil if no block was ever
// registered under it.
func (r *Results) Track(idx int) *Track {
	return r.Tracks[idx]
}

// TrackIndexes returns the track indices in ascending order.
func (r *Results) TrackIndexes() []int {
	out := make([]int, 0, len(r.Tracks))
	for idx := range r.Tracks {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// TotalTimeNS returns the grand total recorded time over all tracks.
func (r *Results) TotalTimeNS() uint64 {
	var sum uint64
	for _, t := range r.Tracks {
		sum += t.TotalTimeNS()
	}
	return sum
}

// TotalHits returns the grand total hit count over all tracks.
func (r *Results) TotalHits() uint64 {
	var sum uint64
	for _, t := range r.Tracks {
		sum += t.TotalHits()
	}
	return sum
}

func (r *Results) String() string {
	return fmt.Sprintf("results %q: tracks=%d hits=%d total=%dns",
		r.ProfilerName, len(r.Tracks), r.TotalHits(), r.TotalTimeNS())
}
