package main

import (
	"os"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"

	"github.com/stichotrope/stichotrope/pkg/export"
	"github.com/stichotrope/stichotrope/pkg/profiler"
	"github.com/stichotrope/stichotrope/pkg/timing"
)

type benchParams struct {
	configPath string
	goroutines int
	iterations int
	csvPath    string
	jsonPath   string
}

func addBenchParams(cmd *kingpin.CmdClause, params *benchParams) {
	cmd.Flag("config", "YAML workload description. Flags override its goroutine/iteration counts.").StringVar(&params.configPath)
	cmd.Flag("goroutines", "Number of concurrent workers.").Default("8").IntVar(&params.goroutines)
	cmd.Flag("iterations", "Iterations per worker.").Default("1000").IntVar(&params.iterations)
	cmd.Flag("csv", "Write results to a CSV file.").StringVar(&params.csvPath)
	cmd.Flag("json", "Write results to a JSON file.").StringVar(&params.jsonPath)
}

// workload describes the synthetic blocks the bench command executes.
type workload struct {
	Goroutines int             `yaml:"goroutines"`
	Iterations int             `yaml:"iterations"`
	Tracks     []workloadTrack `yaml:"tracks"`
}

type workloadTrack struct {
	Index  int             `yaml:"index"`
	Name   string          `yaml:"name"`
	Blocks []workloadBlock `yaml:"blocks"`
}

type workloadBlock struct {
	Name   string `yaml:"name"`
	SpinNS int64  `yaml:"spin_ns"`
}

func defaultWorkload() workload {
	return workload{
		Tracks: []workloadTrack{
			{Index: 0, Name: "Request Handling", Blocks: []workloadBlock{
				{Name: "handle_request", SpinNS: 2000},
			}},
			{Index: 1, Name: "Database", Blocks: []workloadBlock{
				{Name: "query_users", SpinNS: 5000},
				{Name: "query_products", SpinNS: 3000},
			}},
			{Index: 2, Name: "Business Logic", Blocks: []workloadBlock{
				{Name: "process_data", SpinNS: 1000},
			}},
		},
	}
}

func loadWorkload(params *benchParams) (workload, error) {
	w := defaultWorkload()
	if params.configPath != "" {
		raw, err := os.ReadFile(params.configPath)
		if err != nil {
			return w, errors.Wrap(err, "read workload config")
		}
		if err := yaml.Unmarshal(raw, &w); err != nil {
			return w, errors.Wrap(err, "parse workload config")
		}
	}
	if w.Goroutines <= 0 {
		w.Goroutines = params.goroutines
	}
	if w.Iterations <= 0 {
		w.Iterations = params.iterations
	}
	return w, nil
}

func runBench(params *benchParams) error {
	w, err := loadWorkload(params)
	if err != nil {
		return err
	}

	p := profiler.New("bench", profiler.WithLogger(logger))
	type site struct {
		handle *profiler.Site
		spin   time.Duration
	}
	var sites []site
	for _, t := range w.Tracks {
		p.SetTrackName(t.Index, t.Name)
		for _, b := range t.Blocks {
			h, err := p.NewSite(t.Index, b.Name)
			if err != nil {
				return err
			}
			sites = append(sites, site{handle: h, spin: time.Duration(b.SpinNS)})
		}
	}

	level.Info(logger).Log("msg", "running workload",
		"goroutines", w.Goroutines, "iterations", w.Iterations, "blocks", len(sites))

	start := timing.Now()
	var wg sync.WaitGroup
	for g := 0; g < w.Goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < w.Iterations; i++ {
				for _, s := range sites {
					t := s.handle.Start()
					spin(s.spin)
					t.Stop()
				}
			}
		}()
	}
	wg.Wait()
	workNS := timing.Since(start)

	aggStart := timing.Now()
	results := p.Results()
	aggNS := timing.Since(aggStart)

	level.Info(logger).Log("msg", "workload finished",
		"wall", time.Duration(workNS), "aggregation", time.Duration(aggNS),
		"goroutine_stores", p.StoreCount())

	if err := export.PrintResults(os.Stdout, results); err != nil {
		return err
	}
	if params.csvPath != "" {
		if err := export.WriteCSVFile(params.csvPath, results); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote csv", "path", params.csvPath)
	}
	if params.jsonPath != "" {
		if err := export.WriteJSONFile(params.jsonPath, results); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote json", "path", params.jsonPath)
	}
	return nil
}

// spin busy-waits so block durations stay comparable across schedulers,
// unlike time.Sleep which rounds up to the timer granularity.
func spin(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := timing.Now() + int64(d)
	for timing.Now() < deadline {
	}
}
