// Package export renders Results snapshots as CSV, JSON, console tables
// and Prometheus metrics. It consumes snapshots only and never touches
// the engine's internals.
package export

import "fmt"

// FormatDuration renders a nanosecond count at a human scale:
// "500 ns", "1.50 µs", "1.50 ms", "1.50 s".
func FormatDuration(ns float64) string {
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%.0f ns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.2f µs", ns/1_000)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2f ms", ns/1_000_000)
	default:
		return fmt.Sprintf("%.2f s", ns/1_000_000_000)
	}
}

func pct(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
