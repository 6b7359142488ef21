package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/stichotrope/stichotrope/pkg/profiler"
)

// PrintResults renders the snapshot as one table per track, with
// human-readable durations.
func PrintResults(w io.Writer, r *profiler.Results) error {
	if _, err := fmt.Fprintf(w, "Profiler: %s\n", r.ProfilerName); err != nil {
		return errors.Wrap(err, "print header")
	}

	grandTotal := r.TotalTimeNS()
	for _, idx := range r.TrackIndexes() {
		track := r.Track(idx)
		trackTotal := track.TotalTimeNS()

		fmt.Fprintf(w, "\n%s (%s, %d hits)\n",
			track.Name, FormatDuration(float64(trackTotal)), track.TotalHits())

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Block", "Hits", "Total", "Avg", "Min", "Max", "% Track", "% Total"})
		table.SetAutoFormatHeaders(false)
		table.SetBorder(false)

		for i := range track.Blocks {
			b := &track.Blocks[i]
			table.Append([]string{
				b.Name,
				strconv.FormatUint(b.HitCount, 10),
				FormatDuration(float64(b.TotalTimeNS)),
				FormatDuration(b.AvgTimeNS()),
				FormatDuration(float64(b.MinTimeNS)),
				FormatDuration(float64(b.MaxTimeNS)),
				strconv.FormatFloat(pct(b.TotalTimeNS, trackTotal), 'f', 1, 64),
				strconv.FormatFloat(pct(b.TotalTimeNS, grandTotal), 'f', 1, 64),
			})
		}
		table.Render()
	}

	_, err := fmt.Fprintf(w, "\nTotal: %s over %d hits\n",
		FormatDuration(float64(grandTotal)), r.TotalHits())
	return errors.Wrap(err, "print footer")
}
