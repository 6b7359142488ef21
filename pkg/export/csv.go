package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/stichotrope/stichotrope/pkg/profiler"
)

// csvHeader matches the CppProfiler export format column for column.
var csvHeader = []string{
	"Track", "Block Name", "Hit Count", "Total Time (ns)",
	"Avg Time (ns)", "Min Time (ns)", "Max Time (ns)", "% Track", "% Total",
}

// WriteCSV writes one row per registered block, tracks in ascending index
// order, blocks in block-index order.
func WriteCSV(w io.Writer, r *profiler.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	grandTotal := r.TotalTimeNS()
	for _, idx := range r.TrackIndexes() {
		track := r.Track(idx)
		trackTotal := track.TotalTimeNS()
		for i := range track.Blocks {
			b := &track.Blocks[i]
			row := []string{
				track.Name,
				b.Name,
				strconv.FormatUint(b.HitCount, 10),
				strconv.FormatUint(b.TotalTimeNS, 10),
				strconv.FormatFloat(b.AvgTimeNS(), 'f', 2, 64),
				strconv.FormatUint(b.MinTimeNS, 10),
				strconv.FormatUint(b.MaxTimeNS, 10),
				strconv.FormatFloat(pct(b.TotalTimeNS, trackTotal), 'f', 2, 64),
				strconv.FormatFloat(pct(b.TotalTimeNS, grandTotal), 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "write csv row")
			}
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteCSVFile renders the snapshot to a file.
func WriteCSVFile(path string, r *profiler.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteCSV(f, r); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
