package initwfn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

// backingFor applies the scheme with the given seed to a single weight
// shape and returns the sampled backing slice
func backingFor(t *testing.T, w *InitWFn, seed uint64,
	shape ...int) []float64 {
	t.Helper()

	out := w.InitWFn(seed)(tensor.Float64, shape...)
	backing, ok := out.([]float64)
	require.True(t, ok)
	require.Equal(t, tensor.Shape(shape).TotalSize(), len(backing))

	return backing
}

func TestSameSeedSameWeights(t *testing.T) {
	glorotU, err := NewGlorotU(1.0)
	require.NoError(t, err)
	glorotN, err := NewGlorotN(1.0)
	require.NoError(t, err)
	heU, err := NewHeU(1.0)
	require.NoError(t, err)
	heN, err := NewHeN(1.0)
	require.NoError(t, err)

	for _, w := range []*InitWFn{glorotU, glorotN, heU, heN} {
		first := backingFor(t, w, 17, 4, 8)
		second := backingFor(t, w, 17, 4, 8)

		assert.Equal(t, first, second, "%v weights differ across "+
			"identically seeded draws", w.Type)
	}
}

func TestDifferentSeedDifferentWeights(t *testing.T) {
	w, err := NewGlorotU(1.0)
	require.NoError(t, err)

	first := backingFor(t, w, 17, 4, 8)
	second := backingFor(t, w, 18, 4, 8)

	assert.NotEqual(t, first, second)
}

func TestSeededStreamIsConsumed(t *testing.T) {
	// Two draws from one InitWFn must continue the stream, not restart
	// it, otherwise every network in an agent would share weights.
	w, err := NewGlorotU(1.0)
	require.NoError(t, err)

	init := w.InitWFn(17)
	first := init(tensor.Float64, 4, 8).([]float64)
	second := init(tensor.Float64, 4, 8).([]float64)

	assert.NotEqual(t, first, second)
}

func TestUniformWeightsWithinLimit(t *testing.T) {
	const gain = 1.5
	fanIn, fanOut := 6.0, 10.0

	glorotU, err := NewGlorotU(gain)
	require.NoError(t, err)
	heU, err := NewHeU(gain)
	require.NoError(t, err)

	glorotLimit := gain * math.Sqrt(6.0/(fanIn+fanOut))
	for _, v := range backingFor(t, glorotU, 29, 6, 10) {
		assert.LessOrEqual(t, math.Abs(v), glorotLimit)
	}

	heLimit := gain * math.Sqrt(6.0/fanIn)
	for _, v := range backingFor(t, heU, 29, 6, 10) {
		assert.LessOrEqual(t, math.Abs(v), heLimit)
	}
}

func TestZeroesIgnoresSeed(t *testing.T) {
	w, err := NewZeroes()
	require.NoError(t, err)

	for _, v := range backingFor(t, w, 31, 4, 8) {
		assert.Zero(t, v)
	}
}
