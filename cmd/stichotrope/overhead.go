package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log/level"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/stichotrope/stichotrope/pkg/export"
	"github.com/stichotrope/stichotrope/pkg/profiler"
	"github.com/stichotrope/stichotrope/pkg/stats"
	"github.com/stichotrope/stichotrope/pkg/timing"
)

type overheadParams struct {
	iterations int
	rounds     int
}

func addOverheadParams(cmd *kingpin.CmdClause, params *overheadParams) {
	cmd.Flag("iterations", "Clock calls / records per round.").Default("100000").IntVar(&params.iterations)
	cmd.Flag("rounds", "Rounds used for the distribution summary.").Default("20").IntVar(&params.rounds)
}

func runOverhead(params *overheadParams) error {
	clock := make([]float64, 0, params.rounds)
	for i := 0; i < params.rounds; i++ {
		clock = append(clock, timing.MeasureOverhead(params.iterations))
	}

	p := profiler.New("overhead")
	site, err := p.NewSite(0, "noop")
	if err != nil {
		return err
	}
	record := make([]float64, 0, params.rounds)
	for i := 0; i < params.rounds; i++ {
		start := timing.Now()
		for j := 0; j < params.iterations; j++ {
			site.Start().Stop()
		}
		record = append(record, float64(timing.Since(start))/float64(params.iterations))
	}

	// Disabled path: only the gate reads remain.
	p.Stop()
	disabled := make([]float64, 0, params.rounds)
	for i := 0; i < params.rounds; i++ {
		start := timing.Now()
		for j := 0; j < params.iterations; j++ {
			site.Start().Stop()
		}
		disabled = append(disabled, float64(timing.Since(start))/float64(params.iterations))
	}

	level.Info(logger).Log("msg", "overhead measured",
		"iterations", params.iterations, "rounds", params.rounds)

	printSummary("clock (ns/call)", stats.Summarize(clock))
	printSummary("record enabled (ns/op)", stats.Summarize(record))
	printSummary("record disabled (ns/op)", stats.Summarize(disabled))
	return nil
}

func printSummary(name string, s stats.Summary) {
	fmt.Fprintf(os.Stdout, "%-24s mean=%s median=%s min=%s max=%s stddev=%.1f p99=%s\n",
		name,
		export.FormatDuration(s.Mean),
		export.FormatDuration(s.Median),
		export.FormatDuration(s.Min),
		export.FormatDuration(s.Max),
		s.StdDev,
		export.FormatDuration(s.P99))
}
