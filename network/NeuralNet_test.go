package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func newTestMLP(t *testing.T, batch int) *MultiHeadMLP {
	g := G.NewGraph()
	net, err := NewMultiHeadMLP(4, batch, 2, g, []int{8}, []bool{true},
		[]*Activation{ReLU()}, TanH(), G.GlorotU(1.0), "Test")
	require.NoError(t, err)
	return net
}

func TestMultiHeadMLPForwardShape(t *testing.T) {
	const batch = 3
	net := newTestMLP(t, batch)
	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()

	input := make([]float64, batch*net.Features())
	for i := range input {
		input[i] = float64(i) * 0.1
	}
	require.NoError(t, net.SetInput(input))
	require.NoError(t, vm.RunAll())
	defer vm.Reset()

	out := net.Output().Data().([]float64)
	assert.Len(t, out, batch*net.Outputs())

	// The final tanh bounds every output
	for _, value := range out {
		assert.Greater(t, value, -1.0)
		assert.Less(t, value, 1.0)
	}
}

func TestMultiHeadMLPInvalidInput(t *testing.T) {
	net := newTestMLP(t, 2)
	assert.Error(t, net.SetInput(make([]float64, 3)))
}

func TestSetCopiesWeights(t *testing.T) {
	source := newTestMLP(t, 2)
	dest := newTestMLP(t, 2)

	require.NoError(t, Set(dest, source))

	sourceNodes := source.Learnables()
	destNodes := dest.Learnables()
	require.Equal(t, len(sourceNodes), len(destNodes))

	for i := range sourceNodes {
		assert.Equal(t, sourceNodes[i].Value().Data(),
			destNodes[i].Value().Data())
	}
}

func TestPolyakMovesWeightsToward(t *testing.T) {
	const tau = 0.25
	source := newTestMLP(t, 2)
	dest := newTestMLP(t, 2)

	destBefore := make([][]float64, len(dest.Learnables()))
	for i, node := range dest.Learnables() {
		data := node.Value().Data().([]float64)
		destBefore[i] = append([]float64{}, data...)
	}

	require.NoError(t, Polyak(dest, source, tau))

	for i, node := range dest.Learnables() {
		after := node.Value().Data().([]float64)
		sourceData := source.Learnables()[i].Value().Data().([]float64)
		for j := range after {
			expected := (1-tau)*destBefore[i][j] + tau*sourceData[j]
			assert.InDelta(t, expected, after[j], 1e-12)
		}
	}
}

func TestTwinQForward(t *testing.T) {
	const (
		batch     = 2
		obsDim    = 5
		actionDim = 2
	)
	g := G.NewGraph()
	critic, err := NewTwinQ(obsDim, actionDim, batch, 4, 8, g,
		G.GlorotU(1.0), "Test")
	require.NoError(t, err)

	// One trunk layer and two three-layer heads, each with weights
	// and biases
	assert.Len(t, critic.TrunkLearnables(), 2)
	assert.Len(t, critic.Learnables(), 14)

	vm := G.NewTapeMachine(g)
	defer vm.Close()

	obs := make([]float64, batch*obsDim)
	actions := make([]float64, batch*actionDim)
	for i := range obs {
		obs[i] = 0.1 * float64(i)
	}
	for i := range actions {
		actions[i] = -0.2 * float64(i)
	}
	require.NoError(t, critic.SetObservations(obs))
	require.NoError(t, critic.SetActions(actions))
	require.NoError(t, vm.RunAll())
	defer vm.Reset()

	assert.Len(t, critic.Q1().Data().([]float64), batch)
	assert.Len(t, critic.Q2().Data().([]float64), batch)
}

func TestMinimum(t *testing.T) {
	g := G.NewGraph()
	a := G.NewMatrix(g, tensor.Float64, G.WithShape(2, 2),
		G.WithName("A"), G.WithInit(G.Zeroes()))
	b := G.NewMatrix(g, tensor.Float64, G.WithShape(2, 2),
		G.WithName("B"), G.WithInit(G.Zeroes()))

	m, err := Minimum(a, b)
	require.NoError(t, err)

	var value G.Value
	G.Read(m, &value)

	vm := G.NewTapeMachine(g)
	defer vm.Close()

	aTensor := tensor.New(
		tensor.WithBacking([]float64{1.0, -2.0, 0.5, 3.0}),
		tensor.WithShape(2, 2),
	)
	bTensor := tensor.New(
		tensor.WithBacking([]float64{0.0, -1.0, 0.75, -3.0}),
		tensor.WithShape(2, 2),
	)
	require.NoError(t, G.Let(a, aTensor))
	require.NoError(t, G.Let(b, bTensor))
	require.NoError(t, vm.RunAll())
	defer vm.Reset()

	assert.Equal(t, []float64{0.0, -2.0, 0.5, -3.0},
		value.Data().([]float64))
}
