package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/goskill/timestep"
)

const (
	testFeatureSize = 3
	testActionSize  = 2
	testSkillSize   = 4
)

// fillTransition returns a transition whose state, action, and next
// state are filled with a constant so that sampled batches can be
// traced back to the transitions they came from
func fillTransition(fill float64, skillIndex int) timestep.Transition {
	state := make([]float64, testFeatureSize)
	nextState := make([]float64, testFeatureSize)
	for i := range state {
		state[i] = fill
		nextState[i] = fill + 0.5
	}
	action := make([]float64, testActionSize)
	for i := range action {
		action[i] = fill
	}
	skill := mat.NewVecDense(testSkillSize, nil)
	skill.SetVec(skillIndex, 1.0)

	return timestep.Transition{
		State:     mat.NewVecDense(testFeatureSize, state),
		Action:    mat.NewVecDense(testActionSize, action),
		Reward:    fill,
		Discount:  0.99,
		NextState: mat.NewVecDense(testFeatureSize, nextState),
		Skill:     skill,
	}
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer, err := New(NewFifoSelector(2), 2, 4, testFeatureSize,
		testActionSize, testSkillSize)
	require.NoError(t, err)

	_, _, _, _, _, _, err = buffer.Sample()
	require.Error(t, err)
	assert.True(t, IsEmptyBuffer(err))
	assert.False(t, IsInsufficientSamples(err))
}

func TestSampleInsufficientSamples(t *testing.T) {
	buffer, err := New(NewFifoSelector(2), 3, 4, testFeatureSize,
		testActionSize, testSkillSize)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(fillTransition(1.0, 0)))

	_, _, _, _, _, _, err = buffer.Sample()
	require.Error(t, err)
	assert.True(t, IsInsufficientSamples(err))
	assert.False(t, IsEmptyBuffer(err))
}

func TestFifoSampleReturnsOldest(t *testing.T) {
	buffer, err := New(NewFifoSelector(2), 2, 4, testFeatureSize,
		testActionSize, testSkillSize)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(fillTransition(1.0, 0)))
	require.NoError(t, buffer.Add(fillTransition(2.0, 1)))
	require.NoError(t, buffer.Add(fillTransition(3.0, 2)))

	state, action, reward, discount, nextState, skill, err := buffer.Sample()
	require.NoError(t, err)

	assert.Equal(t, []float64{1.0, 1.0, 1.0, 2.0, 2.0, 2.0}, state)
	assert.Equal(t, []float64{1.0, 1.0, 2.0, 2.0}, action)
	assert.Equal(t, []float64{1.0, 2.0}, reward)
	assert.Equal(t, []float64{0.99, 0.99}, discount)
	assert.Equal(t, []float64{1.5, 1.5, 1.5, 2.5, 2.5, 2.5}, nextState)
	assert.Equal(t, []float64{
		1.0, 0.0, 0.0, 0.0,
		0.0, 1.0, 0.0, 0.0,
	}, skill)
}

func TestOverwritesOldestWhenFull(t *testing.T) {
	buffer, err := New(NewFifoSelector(2), 2, 2, testFeatureSize,
		testActionSize, testSkillSize)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(fillTransition(1.0, 0)))
	require.NoError(t, buffer.Add(fillTransition(2.0, 1)))
	require.NoError(t, buffer.Add(fillTransition(3.0, 2)))

	assert.Equal(t, 2, buffer.Capacity())

	state, _, reward, _, _, _, err := buffer.Sample()
	require.NoError(t, err)

	// The transition with fill 1.0 was overwritten
	assert.Equal(t, []float64{2.0, 2.0, 2.0, 3.0, 3.0, 3.0}, state)
	assert.Equal(t, []float64{2.0, 3.0}, reward)
}

func TestUniformSampleShapes(t *testing.T) {
	const batchSize = 4
	buffer, err := New(NewUniformSelector(batchSize, 14), batchSize, 10,
		testFeatureSize, testActionSize, testSkillSize)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, buffer.Add(fillTransition(float64(i), i%testSkillSize)))
	}

	state, action, reward, discount, nextState, skill, err := buffer.Sample()
	require.NoError(t, err)

	assert.Len(t, state, batchSize*testFeatureSize)
	assert.Len(t, action, batchSize*testActionSize)
	assert.Len(t, reward, batchSize)
	assert.Len(t, discount, batchSize)
	assert.Len(t, nextState, batchSize*testFeatureSize)
	assert.Len(t, skill, batchSize*testSkillSize)

	// Every sampled skill row must still be one-hot
	for i := 0; i < batchSize; i++ {
		row := skill[i*testSkillSize : (i+1)*testSkillSize]
		var sum float64
		for _, entry := range row {
			assert.Contains(t, []float64{0.0, 1.0}, entry)
			sum += entry
		}
		assert.Equal(t, 1.0, sum)
	}
}

func TestNewRejectsSmallMinCapacity(t *testing.T) {
	// A min capacity below the batch size would let Sample run with
	// fewer stored transitions than a batch holds, zero-padding the
	// returned batch
	_, err := New(NewFifoSelector(4), 2, 10, testFeatureSize,
		testActionSize, testSkillSize)
	assert.Error(t, err)

	_, err = New(NewUniformSelector(4, 14), 2, 10, testFeatureSize,
		testActionSize, testSkillSize)
	assert.Error(t, err)

	_, err = New(NewFifoSelector(4), 4, 10, testFeatureSize,
		testActionSize, testSkillSize)
	assert.NoError(t, err)
}

func TestAddInvalidShapes(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), 1, 4, testFeatureSize,
		testActionSize, testSkillSize)
	require.NoError(t, err)

	transition := fillTransition(1.0, 0)
	transition.Skill = mat.NewVecDense(testSkillSize+1, nil)
	assert.Error(t, buffer.Add(transition))

	transition = fillTransition(1.0, 0)
	transition.State = mat.NewVecDense(testFeatureSize+2, nil)
	assert.Error(t, buffer.Add(transition))
}
