package profiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearGlobalState(t *testing.T) {
	t.Cleanup(func() { SetGlobalEnabled(true) })

	p := New("ClearTest")
	fn := p.Wrap(0, "blk", func() {})
	fn()
	SetGlobalEnabled(false)

	require.NotEmpty(t, LiveProfilers())
	require.NotZero(t, globalCallSites.len())

	ClearGlobalState()

	assert.Empty(t, LiveProfilers())
	assert.Zero(t, globalCallSites.len())
	assert.True(t, IsGlobalEnabled())

	// Profilers created before the clear keep working; their call sites
	// are simply registered anew on next use.
	fn()
	assert.NotEmpty(t, p.Results().Tracks)
}

func TestRegistryAssignsIncreasingIDs(t *testing.T) {
	a := New("First")
	b := New("Second")
	assert.Greater(t, b.ID(), a.ID())
}

func TestRegistryNamesPreserved(t *testing.T) {
	p := New("MyApp")
	assert.Equal(t, "MyApp", p.Name())
}
