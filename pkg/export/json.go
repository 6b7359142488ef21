package export

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/stichotrope/stichotrope/pkg/profiler"
)

type jsonResults struct {
	ProfilerName string      `json:"profiler_name"`
	CapturedAt   time.Time   `json:"captured_at"`
	TotalTimeNS  uint64      `json:"total_time_ns"`
	TotalHits    uint64      `json:"total_hits"`
	Tracks       []jsonTrack `json:"tracks"`
}

type jsonTrack struct {
	TrackIdx    int         `json:"track_idx"`
	TrackName   string      `json:"track_name"`
	TotalTimeNS uint64      `json:"total_time_ns"`
	TotalHits   uint64      `json:"total_hits"`
	Blocks      []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Name        string  `json:"name"`
	File        string  `json:"file"`
	Line        int     `json:"line"`
	HitCount    uint64  `json:"hit_count"`
	TotalTimeNS uint64  `json:"total_time_ns"`
	AvgTimeNS   float64 `json:"avg_time_ns"`
	MinTimeNS   uint64  `json:"min_time_ns"`
	MaxTimeNS   uint64  `json:"max_time_ns"`
	PctTrack    float64 `json:"pct_track"`
	PctTotal    float64 `json:"pct_total"`
}

// WriteJSON writes the snapshot as an indented JSON document with tracks
// in ascending index order.
func WriteJSON(w io.Writer, r *profiler.Results) error {
	doc := jsonResults{
		ProfilerName: r.ProfilerName,
		CapturedAt:   r.CapturedAt,
		TotalTimeNS:  r.TotalTimeNS(),
		TotalHits:    r.TotalHits(),
		Tracks:       make([]jsonTrack, 0, len(r.Tracks)),
	}

	for _, idx := range r.TrackIndexes() {
		track := r.Track(idx)
		trackTotal := track.TotalTimeNS()
		jt := jsonTrack{
			TrackIdx:    idx,
			TrackName:   track.Name,
			TotalTimeNS: trackTotal,
			TotalHits:   track.TotalHits(),
			Blocks:      make([]jsonBlock, 0, len(track.Blocks)),
		}
		for i := range track.Blocks {
			b := &track.Blocks[i]
			jt.Blocks = append(jt.Blocks, jsonBlock{
				Name:        b.Name,
				File:        b.File,
				Line:        b.Line,
				HitCount:    b.HitCount,
				TotalTimeNS: b.TotalTimeNS,
				AvgTimeNS:   b.AvgTimeNS(),
				MinTimeNS:   b.MinTimeNS,
				MaxTimeNS:   b.MaxTimeNS,
				PctTrack:    pct(b.TotalTimeNS, trackTotal),
				PctTotal:    pct(b.TotalTimeNS, doc.TotalTimeNS),
			})
		}
		doc.Tracks = append(doc.Tracks, jt)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "encode json")
}

// WriteJSONFile renders the snapshot to a file.
func WriteJSONFile(path string, r *profiler.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteJSON(f, r); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
