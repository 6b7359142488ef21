// Package timing provides the monotonic nanosecond clock used by the
// profiling engine, plus a helper to measure the cost of the clock itself.
package timing

import "time"

// All timestamps are nanoseconds elapsed since process start. Reading
// time.Since on a fixed base uses only the monotonic clock reading, so
// wall-clock adjustments never affect recorded durations.
var base = time.Now()

// Now returns the current monotonic timestamp in nanoseconds.
func Now() int64 {
	return int64(time.Since(base))
}

// Since returns the nanoseconds elapsed since a timestamp obtained from Now.
func Since(start int64) int64 {
	return Now() - start
}

// MeasureOverhead estimates the mean per-call cost of Now, in nanoseconds,
// by timing the given number of back-to-back calls. Useful for judging
// whether recorded durations are dominated by the clock itself.
func MeasureOverhead(iterations int) float64 {
	if iterations <= 0 {
		iterations = 1
	}
	start := Now()
	for i := 0; i < iterations; i++ {
		_ = Now()
	}
	return float64(Since(start)) / float64(iterations)
}
