package export

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stichotrope/stichotrope/pkg/profiler"
)

// Collector exposes a live profiler's merged statistics as Prometheus
// metrics. Each Collect takes a fresh Results snapshot, so scrapes are
// consistent per block and cheap relative to typical scrape intervals.
type Collector struct {
	p *profiler.Profiler

	hits  *prometheus.Desc
	total *prometheus.Desc
	min   *prometheus.Desc
	max   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for p, registerable in any Prometheus
// registry.
func NewCollector(p *profiler.Profiler) *Collector {
	labels := []string{"profiler", "track", "block"}
	return &Collector{
		p: p,
		hits: prometheus.NewDesc(
			"stichotrope_block_hits_total",
			"Completed timed executions of the block.",
			labels, nil),
		total: prometheus.NewDesc(
			"stichotrope_block_time_ns_total",
			"Total recorded time of the block in nanoseconds.",
			labels, nil),
		min: prometheus.NewDesc(
			"stichotrope_block_min_time_ns",
			"Minimum recorded time of the block in nanoseconds.",
			labels, nil),
		max: prometheus.NewDesc(
			"stichotrope_block_max_time_ns",
			"Maximum recorded time of the block in nanoseconds.",
			labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.total
	ch <- c.min
	ch <- c.max
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	r := c.p.Results()
	for _, idx := range r.TrackIndexes() {
		track := r.Track(idx)
		trackLabel := strconv.Itoa(idx)
		for i := range track.Blocks {
			b := &track.Blocks[i]
			if b.HitCount == 0 {
				continue
			}
			ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue,
				float64(b.HitCount), r.ProfilerName, trackLabel, b.Name)
			ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue,
				float64(b.TotalTimeNS), r.ProfilerName, trackLabel, b.Name)
			ch <- prometheus.MustNewConstMetric(c.min, prometheus.GaugeValue,
				float64(b.MinTimeNS), r.ProfilerName, trackLabel, b.Name)
			ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue,
				float64(b.MaxTimeNS), r.ProfilerName, trackLabel, b.Name)
		}
	}
}
