package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantSchedule(t *testing.T) {
	for _, step := range []int{0, 1, 1000000} {
		value, err := Value("0.2", step)
		require.NoError(t, err)
		assert.Equal(t, 0.2, value)
	}
}

func TestLinearSchedule(t *testing.T) {
	spec := "linear(1.0,0.1,100)"

	value, err := Value(spec, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, value, 1e-12)

	value, err = Value(spec, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, value, 1e-12)

	value, err = Value(spec, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, value, 1e-12)

	// Past the annealing horizon the final value is held
	value, err = Value(spec, 100000)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, value, 1e-12)
}

func TestMalformedSchedule(t *testing.T) {
	for _, spec := range []string{
		"exp(1.0,0.1,100)",
		"linear(1.0,0.1)",
		"linear(a,b,c)",
		"",
	} {
		_, err := Value(spec, 0)
		assert.Error(t, err, "spec %q should not parse", spec)
	}
}
