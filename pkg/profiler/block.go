package profiler

import "fmt"

// Block holds the accumulated statistics of one instrumented code region.
// Within a live profiler each goroutine owns a private copy that only it
// writes to; Results returns merged copies that are never mutated again.
type Block struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`

	HitCount    uint64 `json:"hit_count"`
	TotalTimeNS uint64 `json:"total_time_ns"`
	MinTimeNS   uint64 `json:"min_time_ns"`
	MaxTimeNS   uint64 `json:"max_time_ns"`
}

// AvgTimeNS returns the mean recorded duration, or 0 if the block was
// never hit.
func (b *Block) AvgTimeNS() float64 {
	if b.HitCount == 0 {
		return 0
	}
	return float64(b.TotalTimeNS) / float64(b.HitCount)
}

func (b *Block) record(durationNS uint64) {
	b.HitCount++
	b.TotalTimeNS += durationNS
	if b.HitCount == 1 || durationNS < b.MinTimeNS {
		b.MinTimeNS = durationNS
	}
	if durationNS > b.MaxTimeNS {
		b.MaxTimeNS = durationNS
	}
}

// merge folds other into b. Blocks with zero hits contribute nothing:
// in particular their zero MinTimeNS must not become the merged minimum.
func (b *Block) merge(other *Block) {
	if other.HitCount == 0 {
		return
	}
	if b.HitCount == 0 || other.MinTimeNS < b.MinTimeNS {
		b.MinTimeNS = other.MinTimeNS
	}
	if other.MaxTimeNS > b.MaxTimeNS {
		b.MaxTimeNS = other.MaxTimeNS
	}
	b.HitCount += other.HitCount
	b.TotalTimeNS += other.TotalTimeNS
}

func (b *Block) String() string {
	return fmt.Sprintf("%s (%s:%d): hits=%d total=%dns min=%dns max=%dns",
		b.Name, b.File, b.Line, b.HitCount, b.TotalTimeNS, b.MinTimeNS, b.MaxTimeNS)
}
