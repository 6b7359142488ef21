package profiler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSiteResolveOnce(t *testing.T) {
	p := New("CallSiteTest")

	idx, err := globalCallSites.resolve(p, 0, "site_test.go", 42, "block_a")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := globalCallSites.resolve(p, 0, "site_test.go", 42, "block_a")
		require.NoError(t, err)
		assert.Equal(t, idx, again)
	}
}

func TestCallSiteDistinctSitesGetDistinctBlocks(t *testing.T) {
	p := New("CallSiteDistinct")

	a, err := globalCallSites.resolve(p, 0, "site_test.go", 10, "block_a")
	require.NoError(t, err)
	b, err := globalCallSites.resolve(p, 0, "site_test.go", 20, "block_b")
	require.NoError(t, err)
	c, err := globalCallSites.resolve(p, 1, "site_test.go", 10, "block_a")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// Block indices are per track, so the same location under another
	// track allocates that track's first slot.
	assert.Equal(t, 0, c)
}

func TestCallSiteInconsistentNameFailsLoudly(t *testing.T) {
	p := New("CallSiteCollision")

	_, err := globalCallSites.resolve(p, 0, "site_test.go", 7, "original")
	require.NoError(t, err)

	_, err = globalCallSites.resolve(p, 0, "site_test.go", 7, "imposter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "original")
	assert.Contains(t, err.Error(), "imposter")
}

func TestCallSiteSeparatePerProfiler(t *testing.T) {
	p1 := New("CacheP1")
	p2 := New("CacheP2")

	a, err := globalCallSites.resolve(p1, 0, "site_test.go", 5, "shared")
	require.NoError(t, err)
	b, err := globalCallSites.resolve(p2, 0, "site_test.go", 5, "shared")
	require.NoError(t, err)

	// Same location, different profilers: each gets its own allocation.
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, b)
	assert.Len(t, p1.Results().Track(0).Blocks, 1)
	assert.Len(t, p2.Results().Track(0).Blocks, 1)
}

func TestCallSiteConcurrentFirstUse(t *testing.T) {
	p := New("CallSiteRace")

	const workers = 32
	indices := make([]int, workers)
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			start.Wait()
			idx, err := globalCallSites.resolve(p, 0, "race_test.go", 99, "contested")
			assert.NoError(t, err)
			indices[w] = idx
		}(w)
	}
	start.Done()
	wg.Wait()

	for _, idx := range indices {
		assert.Equal(t, indices[0], idx)
	}
	// Exactly one block allocated despite concurrent first use.
	assert.Len(t, p.Results().Track(0).Blocks, 1)
}

func TestCallSiteConcurrentDistinctSites(t *testing.T) {
	p := New("CallSiteManySites")

	const sites = 64
	var wg sync.WaitGroup
	for i := 0; i < sites; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := globalCallSites.resolve(p, 0, fmt.Sprintf("file_%d.go", i), i, "blk")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, p.Results().Track(0).Blocks, sites)
}
