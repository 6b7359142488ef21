package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stichotrope/stichotrope/pkg/profiler"
)

func sampleResults(t *testing.T) *profiler.Results {
	t.Helper()
	p := profiler.New("ExportTest")
	p.SetTrackName(0, "Request Handling")
	p.SetTrackName(1, "Database")
	p.SetTrackName(2, "Business Logic")

	handle := p.Wrap(0, "handle_request", func() {
		p.Do(1, "query_users", func() {})
		p.Do(1, "query_products", func() {})
		p.Do(2, "process_data", func() {})
	})
	for i := 0; i < 5; i++ {
		handle()
	}
	return p.Results()
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults(t)))

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Track", "Block Name", "Hit Count", "Total Time (ns)",
		"Avg Time (ns)", "Min Time (ns)", "Max Time (ns)", "% Track", "% Total",
	}, rows[0])

	// One wrapped function plus three inner blocks.
	require.Len(t, rows, 5)
	for _, row := range rows[1:] {
		hits, err := strconv.Atoi(row[2])
		require.NoError(t, err)
		assert.Equal(t, 5, hits)

		pctTrack, err := strconv.ParseFloat(row[7], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pctTrack, 0.0)
		assert.LessOrEqual(t, pctTrack, 100.0)

		pctTotal, err := strconv.ParseFloat(row[8], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pctTotal, 0.0)
		assert.LessOrEqual(t, pctTotal, 100.0)
	}
}

func TestWriteCSVEmptyResults(t *testing.T) {
	p := profiler.New("EmptyExport")
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p.Results()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1) // header only
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSVFile(path, sampleResults(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Track,Block Name,Hit Count"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults(t)))

	var doc struct {
		ProfilerName string `json:"profiler_name"`
		TotalHits    uint64 `json:"total_hits"`
		Tracks       []struct {
			TrackIdx  int    `json:"track_idx"`
			TrackName string `json:"track_name"`
			Blocks    []struct {
				Name      string  `json:"name"`
				File      string  `json:"file"`
				Line      int     `json:"line"`
				HitCount  uint64  `json:"hit_count"`
				AvgTimeNS float64 `json:"avg_time_ns"`
				PctTotal  float64 `json:"pct_total"`
			} `json:"blocks"`
		} `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "ExportTest", doc.ProfilerName)
	assert.Equal(t, uint64(20), doc.TotalHits)
	require.Len(t, doc.Tracks, 3)
	assert.Equal(t, []int{doc.Tracks[0].TrackIdx, doc.Tracks[1].TrackIdx, doc.Tracks[2].TrackIdx}, []int{0, 1, 2})
	assert.Equal(t, "Database", doc.Tracks[1].TrackName)
	require.Len(t, doc.Tracks[1].Blocks, 2)
	for _, b := range doc.Tracks[1].Blocks {
		assert.NotEmpty(t, b.Name)
		assert.NotEmpty(t, b.File)
		assert.Greater(t, b.Line, 0)
		assert.Equal(t, uint64(5), b.HitCount)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSONFile(path, sampleResults(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintResults(&buf, sampleResults(t)))

	out := buf.String()
	assert.Contains(t, out, "Profiler: ExportTest")
	assert.Contains(t, out, "Request Handling")
	assert.Contains(t, out, "Database")
	assert.Contains(t, out, "query_users")
	assert.Contains(t, out, "Total:")
}

func TestFormatDuration(t *testing.T) {
	for _, tc := range []struct {
		ns   float64
		want string
	}{
		{500, "500 ns"},
		{1_500, "1.50 µs"},
		{1_500_000, "1.50 ms"},
		{1_500_000_000, "1.50 s"},
	} {
		assert.Equal(t, tc.want, FormatDuration(tc.ns))
	}
}

func TestPctZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, pct(0, 0))
	assert.Equal(t, 0.0, pct(5, 0))
	assert.Equal(t, 50.0, pct(1, 2))
}
