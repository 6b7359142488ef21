package main

import (
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/alecthomas/kingpin.v2"
)

var cfg struct {
	verbose bool
	bench   benchParams
	ovh     overheadParams
}

var logger = log.NewLogfmtLogger(os.Stderr)

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Benchmark and demo harness for the stichotrope profiling engine.").UsageWriter(os.Stdout)
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("false").BoolVar(&cfg.verbose)

	benchCmd := app.Command("bench", "Run a synthetic instrumented workload and report profiling results.")
	addBenchParams(benchCmd, &cfg.bench)

	overheadCmd := app.Command("overhead", "Measure the clock and per-record overhead of the engine.")
	addOverheadParams(overheadCmd, &cfg.ovh)

	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	var err error
	switch parsedCmd {
	case benchCmd.FullCommand():
		err = runBench(&cfg.bench)
	case overheadCmd.FullCommand():
		err = runOverhead(&cfg.ovh)
	}
	if err != nil {
		level.Error(logger).Log("msg", "command failed", "err", err)
		os.Exit(1)
	}
}
