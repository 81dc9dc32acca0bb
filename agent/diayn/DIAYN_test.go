package diayn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"sfneuman.com/goskill/agent/ddpg"
	"sfneuman.com/goskill/expreplay"
	"sfneuman.com/goskill/initwfn"
	"sfneuman.com/goskill/timestep"
)

const (
	testRawObsDim = 6
	testActionDim = 2
	testBatchSize = 8
)

func newTestConfig(t *testing.T, skillDim int) Config {
	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)

	return Config{
		Config: ddpg.Config{
			HiddenDim:        32,
			TrunkDim:         16,
			Lr:               1e-3,
			BatchSize:        testBatchSize,
			CriticTargetTau:  0.05,
			StddevSchedule:   "0.2",
			StddevClip:       0.3,
			NumExplSteps:     4,
			UpdateEverySteps: 2,
			UpdateEncoder:    false,
			InitWFn:          init,
			RecordMetrics:    true,
		},
		SkillDim: skillDim,
	}
}

func newTestAgent(t *testing.T, skillDim int, seed int64) *DIAYN {
	a, err := New(newTestConfig(t, skillDim), testRawObsDim, testActionDim,
		seed)
	require.NoError(t, err)
	return a
}

func randomObs(rng *rand.Rand) *mat.VecDense {
	obs := make([]float64, testRawObsDim)
	for i := range obs {
		obs[i] = rng.NormFloat64()
	}
	return mat.NewVecDense(testRawObsDim, obs)
}

// randomAugBatch builds a batch of augmented observations: random raw
// observations with random one-hot skill labels appended
func randomAugBatch(rng *rand.Rand, skillDim int) []float64 {
	obsDim := testRawObsDim + skillDim
	batch := make([]float64, testBatchSize*obsDim)
	for i := 0; i < testBatchSize; i++ {
		row := batch[i*obsDim : (i+1)*obsDim]
		for j := 0; j < testRawObsDim; j++ {
			row[j] = rng.NormFloat64()
		}
		row[testRawObsDim+rng.Intn(skillDim)] = 1.0
	}
	return batch
}

func cloneNodeValues(nodes G.Nodes) [][]float64 {
	values := make([][]float64, len(nodes))
	for i, node := range nodes {
		data := node.Value().Data().([]float64)
		values[i] = append([]float64{}, data...)
	}
	return values
}

func nodeValuesEqual(before [][]float64, nodes G.Nodes) bool {
	for i, node := range nodes {
		data := node.Value().Data().([]float64)
		if len(data) != len(before[i]) {
			return false
		}
		for j := range data {
			if data[j] != before[i][j] {
				return false
			}
		}
	}
	return true
}

func TestSelectActionSkillOneHot(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, skillDim := range []int{1, 4, 8} {
		a := newTestAgent(t, skillDim, 1)

		for i := 0; i < 10; i++ {
			a.SelectAction(randomObs(rng), nil, 100, false)

			skill := a.CurrentMeta()["skill"]
			require.Equal(t, skillDim, skill.Len())

			var sum float64
			for j := 0; j < skill.Len(); j++ {
				entry := skill.AtVec(j)
				assert.Contains(t, []float64{0.0, 1.0}, entry)
				sum += entry
			}
			assert.Equal(t, 1.0, sum)
		}
	}
}

func TestAugmentedObservationRoundTrip(t *testing.T) {
	const skillDim = 4
	obsDim := testRawObsDim + skillDim
	rng := rand.New(rand.NewSource(2))

	a := newTestAgent(t, skillDim, 2)

	obs := make([]float64, testBatchSize*testRawObsDim)
	for i := range obs {
		obs[i] = rng.NormFloat64()
	}
	skills := make([]float64, testBatchSize*skillDim)
	for i := 0; i < testBatchSize; i++ {
		skills[i*skillDim+rng.Intn(skillDim)] = 1.0
	}

	aug, err := a.Base().AugAndEncode(obs, skills)
	require.NoError(t, err)
	require.Len(t, aug, testBatchSize*obsDim)

	// The skill label occupies the trailing columns of each row, and
	// splitting a row into its portions and re-concatenating them
	// reproduces the row exactly
	for i := 0; i < testBatchSize; i++ {
		row := aug[i*obsDim : (i+1)*obsDim]
		assert.Equal(t, skills[i*skillDim:(i+1)*skillDim],
			row[testRawObsDim:])

		rejoined := append(append([]float64{}, row[:testRawObsDim]...),
			row[testRawObsDim:]...)
		assert.Equal(t, row, rejoined)
	}
}

func TestSelectActionEvalDeterministic(t *testing.T) {
	// A single skill removes the one stochastic path that remains in
	// evaluation mode, the categorical skill draw
	a := newTestAgent(t, 1, 3)
	obs := randomObs(rand.New(rand.NewSource(3)))

	first := a.SelectAction(obs, nil, 50, true)
	second := a.SelectAction(obs, nil, 50, true)

	assert.Equal(t, first.RawVector().Data, second.RawVector().Data)
}

func TestSelectActionSeedReproducible(t *testing.T) {
	const skillDim = 4

	first := newTestAgent(t, skillDim, 7)
	second := newTestAgent(t, skillDim, 7)

	obsRNG1 := rand.New(rand.NewSource(4))
	obsRNG2 := rand.New(rand.NewSource(4))

	for i := 0; i < 5; i++ {
		step := 100 + i
		actionA := first.SelectAction(randomObs(obsRNG1), nil, step, false)
		actionB := second.SelectAction(randomObs(obsRNG2), nil, step, false)
		assert.Equal(t, actionA.RawVector().Data, actionB.RawVector().Data)
	}
}

func TestActionsWithinBounds(t *testing.T) {
	a := newTestAgent(t, 4, 5)
	rng := rand.New(rand.NewSource(5))

	// Warmup steps draw uniformly from [-1, 1]
	for step := 0; step < 4; step++ {
		action := a.SelectAction(randomObs(rng), nil, step, false)
		for i := 0; i < action.Len(); i++ {
			assert.GreaterOrEqual(t, action.AtVec(i), -1.0)
			assert.LessOrEqual(t, action.AtVec(i), 1.0)
		}
	}

	// Post-warmup stochastic actions remain bounded
	for step := 4; step < 10; step++ {
		action := a.SelectAction(randomObs(rng), nil, step, false)
		for i := 0; i < action.Len(); i++ {
			assert.GreaterOrEqual(t, action.AtVec(i), -1.0)
			assert.LessOrEqual(t, action.AtVec(i), 1.0)
		}
	}
}

func TestControllerUpdateLeavesCriticUnchanged(t *testing.T) {
	const skillDim = 4
	a := newTestAgent(t, skillDim, 6)
	rng := rand.New(rand.NewSource(6))

	augObs := randomAugBatch(rng, skillDim)

	criticBefore := cloneNodeValues(a.Base().CriticLearnables())
	predictorBefore := cloneNodeValues(a.predictorTrain.Learnables())

	_, err := a.updateActorAndController(augObs, 2)
	require.NoError(t, err)

	assert.True(t, nodeValuesEqual(criticBefore, a.Base().CriticLearnables()),
		"critic parameters must be bit-identical across an actor and "+
			"controller update")
	assert.False(t, nodeValuesEqual(predictorBefore,
		a.predictorTrain.Learnables()),
		"skill predictor parameters must change on a non-degenerate batch")
}

func TestInitFromCopiesParameters(t *testing.T) {
	const skillDim = 4

	source := newTestAgent(t, skillDim, 8)

	target := newTestAgent(t, skillDim, 9)
	require.NoError(t, target.InitFrom(source, true))

	assert.True(t, nodeValuesEqual(
		cloneNodeValues(source.Base().EncoderLearnables()),
		target.Base().EncoderLearnables()))
	assert.True(t, nodeValuesEqual(
		cloneNodeValues(source.Base().ActorLearnables()),
		target.Base().ActorLearnables()))
	assert.True(t, nodeValuesEqual(
		cloneNodeValues(source.predictorTrain.Learnables()),
		target.predictorTrain.Learnables()))
	assert.True(t, nodeValuesEqual(
		cloneNodeValues(source.Base().CriticTrunkLearnables()),
		target.Base().CriticTrunkLearnables()))

	// The critic heads are never transplanted
	assert.False(t, nodeValuesEqual(
		cloneNodeValues(source.Base().CriticLearnables()),
		target.Base().CriticLearnables()))

	// Without the critic flag the trunk keeps its own weights
	target = newTestAgent(t, skillDim, 10)
	require.NoError(t, target.InitFrom(source, false))

	assert.False(t, nodeValuesEqual(
		cloneNodeValues(source.Base().CriticTrunkLearnables()),
		target.Base().CriticTrunkLearnables()))
	assert.True(t, nodeValuesEqual(
		cloneNodeValues(source.Base().ActorLearnables()),
		target.Base().ActorLearnables()))
}

func TestInitFromRejectsMismatchedAgents(t *testing.T) {
	target := newTestAgent(t, 4, 11)
	source := newTestAgent(t, 8, 12)

	assert.Error(t, target.InitFrom(source, false))
}

func TestUpdateEndToEnd(t *testing.T) {
	const skillDim = 8
	a := newTestAgent(t, skillDim, 13)
	rng := rand.New(rand.NewSource(13))

	replay, err := expreplay.New(
		expreplay.NewUniformSelector(testBatchSize, 13),
		testBatchSize, 100, testRawObsDim, testActionDim, skillDim,
	)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		state := make([]float64, testRawObsDim)
		nextState := make([]float64, testRawObsDim)
		for j := range state {
			state[j] = rng.NormFloat64()
			nextState[j] = rng.NormFloat64()
		}
		action := make([]float64, testActionDim)
		for j := range action {
			action[j] = rng.Float64()*2.0 - 1.0
		}
		skill := mat.NewVecDense(skillDim, nil)
		skill.SetVec(rng.Intn(skillDim), 1.0)

		require.NoError(t, replay.Add(timestep.Transition{
			State:     mat.NewVecDense(testRawObsDim, state),
			Action:    mat.NewVecDense(testActionDim, action),
			Reward:    rng.NormFloat64(),
			Discount:  0.99,
			NextState: mat.NewVecDense(testRawObsDim, nextState),
			Skill:     skill,
		}))
	}

	expectedKeys := []string{
		"actor_loss", "actor_logprob", "actor_ent", "diayn_loss",
		"critic_loss", "critic_q1", "critic_q2", "critic_target_q",
		"extr_reward", "batch_reward",
	}

	for step := 1; step <= 100; step++ {
		metrics, err := a.Update(replay, step)
		require.NoError(t, err)

		if step%2 != 0 {
			assert.Empty(t, metrics)
			continue
		}

		for _, key := range expectedKeys {
			value, ok := metrics[key]
			require.True(t, ok, "missing metric %v at step %v", key, step)
			assert.False(t, math.IsNaN(value),
				"metric %v is NaN at step %v", key, step)
		}
	}
}
