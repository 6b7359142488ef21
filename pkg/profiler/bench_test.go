package profiler

import (
	"sync"
	"testing"
)

func BenchmarkSiteStartStop(b *testing.B) {
	p := New("bench")
	site := p.MustSite(0, "noop")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		site.Start().Stop()
	}
}

func BenchmarkSiteStartStopDisabled(b *testing.B) {
	p := New("bench")
	site := p.MustSite(0, "noop")
	p.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		site.Start().Stop()
	}
}

func BenchmarkSpanCallSiteLookup(b *testing.B) {
	p := New("bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Begin(0, "cached").End()
	}
}

func BenchmarkRecordParallel(b *testing.B) {
	p := New("bench")
	site := p.MustSite(0, "noop")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			site.Start().Stop()
		}
	})
}

func BenchmarkResults(b *testing.B) {
	p := New("bench")
	site := p.MustSite(0, "noop")

	// Populate 100 goroutine stores, the target aggregation scale.
	var wg sync.WaitGroup
	for g := 0; g < 100; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				site.Start().Stop()
			}
		}()
	}
	wg.Wait()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Results()
	}
}
