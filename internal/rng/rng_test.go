package rng

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameStreams(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.For(SubsystemRouter).Int63(), b.For(SubsystemRouter).Int63())
	}
}

func TestSubsystemsAreIsolated(t *testing.T) {
	a := New(42)
	b := New(42)

	// Draining one subsystem must not shift another.
	for i := 0; i < 100; i++ {
		a.For(SubsystemTraffic).Float64()
	}
	assert.Equal(t, a.For(SubsystemPartition).Int63(), b.For(SubsystemPartition).Int63())
	assert.NotEqual(t, New(42).For(SubsystemRouter).Int63(), New(42).For(SubsystemTopology).Int63())
}

func TestForIsCached(t *testing.T) {
	p := New(7)
	assert.Same(t, p.For(SubsystemPlacement), p.For(SubsystemPlacement))
	assert.Equal(t, int64(7), p.Seed())
}

func TestZeroSeedIsReplaced(t *testing.T) {
	assert.NotZero(t, New(0).Seed())
}

func TestUniformBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := Uniform(r, 0.9, 1.1)
		require.GreaterOrEqual(t, v, 0.9)
		require.Less(t, v, 1.1)
	}
}

func TestWeightedIndex(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	assert.Equal(t, -1, WeightedIndex(r, nil))
	assert.Equal(t, -1, WeightedIndex(r, []float64{0, 0}))

	for i := 0; i < 100; i++ {
		require.Equal(t, 1, WeightedIndex(r, []float64{0, 5, 0}))
	}

	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		counts[WeightedIndex(r, []float64{1, 3})]++
	}
	assert.InDelta(t, 0.75, float64(counts[1])/10000, 0.03)
}
