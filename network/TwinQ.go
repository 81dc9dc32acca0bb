package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// TwinQ implements a double-headed action-value function approximator.
// A shared trunk embeds the observation, after which two independent
// heads each predict a scalar action value for the (observation,
// action) input pair. Using the elementwise minimum of the two heads
// as the value estimate curbs the overestimation bias of a single
// bootstrapped critic.
//
// The trunk's learnable nodes are separately addressable so that only
// the trunk can be transplanted between agents, leaving the heads to
// be learned from scratch.
type TwinQ struct {
	g      *G.ExprGraph
	trunk  []Layer
	q1Head []Layer
	q2Head []Layer

	obs    *G.Node
	action *G.Node

	q1 *G.Node
	q2 *G.Node

	q1Val G.Value
	q2Val G.Value

	batchSize int
	obsDim    int
	actionDim int

	learnables      G.Nodes
	trunkLearnables G.Nodes
	model           []G.ValueGrad
}

// NewTwinQ creates and returns a new TwinQ critic with its own
// observation and action input nodes on graph g.
func NewTwinQ(obsDim, actionDim, batch, trunkDim, hiddenDim int,
	g *G.ExprGraph, init G.InitWFn, prefix string) (*TwinQ, error) {

	obs := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, obsDim),
		G.WithName(prefix+"Obs"),
		G.WithInit(G.Zeroes()),
	)
	action := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, actionDim),
		G.WithName(prefix+"Action"),
		G.WithInit(G.Zeroes()),
	)

	return NewTwinQFromInput(obs, action, obsDim, actionDim, trunkDim,
		hiddenDim, init, prefix)
}

// NewTwinQFromInput returns a new TwinQ critic that reads observations
// and actions from specific, existing nodes of a computational graph.
// The action node may be the output of another network on the same
// graph, which lets an actor's loss flow through the critic without
// the critic owning the action input.
func NewTwinQFromInput(obs, action *G.Node, obsDim, actionDim, trunkDim,
	hiddenDim int, init G.InitWFn, prefix string) (*TwinQ, error) {

	if obs.Graph() != action.Graph() {
		return nil, fmt.Errorf("newTwinQ: observation and action must " +
			"share a graph")
	}
	if !obs.IsMatrix() || !action.IsMatrix() {
		return nil, fmt.Errorf("newTwinQ: inputs must be matrices")
	}
	if obs.Shape()[0] != action.Shape()[0] {
		return nil, fmt.Errorf("newTwinQ: observation and action batch "+
			"sizes differ\n\twant(%v)\n\thave(%v)", obs.Shape()[0],
			action.Shape()[0])
	}

	g := obs.Graph()
	batch := obs.Shape()[0]

	trunk := addFCLayers(
		g,
		[]int{trunkDim},
		[]bool{true},
		[]*Activation{TanH()},
		init,
		obsDim,
		prefix+"Trunk",
	)

	h, err := fwdLayers(trunk, obs)
	if err != nil {
		return nil, fmt.Errorf("newTwinQ: could not embed observation: %v",
			err)
	}
	joined := G.Must(G.Concat(1, h, action))

	headSizes := []int{hiddenDim, hiddenDim, 1}
	headBiases := []bool{true, true, true}
	headActivations := []*Activation{ReLU(), ReLU(), Identity()}

	q1Head := addFCLayers(g, headSizes, headBiases, headActivations, init,
		trunkDim+actionDim, prefix+"Q1")
	q2Head := addFCLayers(g, headSizes, headBiases, headActivations, init,
		trunkDim+actionDim, prefix+"Q2")

	q1, err := fwdLayers(q1Head, joined)
	if err != nil {
		return nil, fmt.Errorf("newTwinQ: could not compute first head: %v",
			err)
	}
	q2, err := fwdLayers(q2Head, joined)
	if err != nil {
		return nil, fmt.Errorf("newTwinQ: could not compute second head: %v",
			err)
	}

	critic := TwinQ{
		g:         g,
		trunk:     trunk,
		q1Head:    q1Head,
		q2Head:    q2Head,
		obs:       obs,
		action:    action,
		q1:        q1,
		q2:        q2,
		batchSize: batch,
		obsDim:    obsDim,
		actionDim: actionDim,
	}
	G.Read(critic.q1, &critic.q1Val)
	G.Read(critic.q2, &critic.q2Val)

	return &critic, nil
}

// Graph returns the computational graph of the TwinQ
func (t *TwinQ) Graph() *G.ExprGraph {
	return t.g
}

// BatchSize returns the number of rows in a batch of inputs
func (t *TwinQ) BatchSize() int {
	return t.batchSize
}

// Features returns the total number of input features of a single
// (observation, action) pair
func (t *TwinQ) Features() int {
	return t.obsDim + t.actionDim
}

// SetObservations sets the observation input node before running the
// forward pass
func (t *TwinQ) SetObservations(obs []float64) error {
	if len(obs) != t.obsDim*t.batchSize {
		return fmt.Errorf("setObservations: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", t.obsDim*t.batchSize, len(obs))
	}
	obsTensor := tensor.New(
		tensor.WithBacking(obs),
		tensor.WithShape(t.batchSize, t.obsDim),
	)
	return G.Let(t.obs, obsTensor)
}

// SetActions sets the action input node before running the forward
// pass
func (t *TwinQ) SetActions(actions []float64) error {
	if len(actions) != t.actionDim*t.batchSize {
		return fmt.Errorf("setActions: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", t.actionDim*t.batchSize,
			len(actions))
	}
	actionTensor := tensor.New(
		tensor.WithBacking(actions),
		tensor.WithShape(t.batchSize, t.actionDim),
	)
	return G.Let(t.action, actionTensor)
}

// SetInput sets both input nodes from a single row-major batch where
// each row is an observation concatenated with an action.
func (t *TwinQ) SetInput(input []float64) error {
	if len(input) != t.Features()*t.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", t.Features()*t.batchSize, len(input))
	}

	obs := make([]float64, 0, t.obsDim*t.batchSize)
	actions := make([]float64, 0, t.actionDim*t.batchSize)
	for i := 0; i < t.batchSize; i++ {
		row := input[i*t.Features() : (i+1)*t.Features()]
		obs = append(obs, row[:t.obsDim]...)
		actions = append(actions, row[t.obsDim:]...)
	}

	if err := t.SetObservations(obs); err != nil {
		return err
	}
	return t.SetActions(actions)
}

// Q1Node returns the prediction node of the first head
func (t *TwinQ) Q1Node() *G.Node {
	return t.q1
}

// Q2Node returns the prediction node of the second head
func (t *TwinQ) Q2Node() *G.Node {
	return t.q2
}

// Q1 returns the value predicted by the first head on the last run of
// the network's VM
func (t *TwinQ) Q1() G.Value {
	return t.q1Val
}

// Q2 returns the value predicted by the second head on the last run of
// the network's VM
func (t *TwinQ) Q2() G.Value {
	return t.q2Val
}

// Learnables returns the learnable nodes of the TwinQ, trunk first
func (t *TwinQ) Learnables() G.Nodes {
	// Lazy instantiation
	if t.learnables == nil {
		t.learnables = append(append(layerLearnables(t.trunk),
			layerLearnables(t.q1Head)...), layerLearnables(t.q2Head)...)
	}
	return t.learnables
}

// TrunkLearnables returns only the learnable nodes of the shared
// observation trunk
func (t *TwinQ) TrunkLearnables() G.Nodes {
	if t.trunkLearnables == nil {
		t.trunkLearnables = layerLearnables(t.trunk)
	}
	return t.trunkLearnables
}

// Model returns the learnable nodes with their gradients
func (t *TwinQ) Model() []G.ValueGrad {
	// Lazy instantiation
	if t.model == nil {
		t.model = make([]G.ValueGrad, 0, len(t.Learnables()))
		for _, node := range t.Learnables() {
			t.model = append(t.model, node)
		}
	}
	return t.model
}

// Minimum adds nodes computing the elementwise minimum of a and b to
// their computational graph. Gorgonia has no binary elementwise min,
// so the identity min(a, b) = ((a + b) - |a - b|) / 2 is used.
func Minimum(a, b *G.Node) (*G.Node, error) {
	sum, err := G.Add(a, b)
	if err != nil {
		return nil, fmt.Errorf("minimum: %v", err)
	}
	diff, err := G.Sub(a, b)
	if err != nil {
		return nil, fmt.Errorf("minimum: %v", err)
	}
	gap, err := G.Abs(diff)
	if err != nil {
		return nil, fmt.Errorf("minimum: %v", err)
	}
	spread, err := G.Sub(sum, gap)
	if err != nil {
		return nil, fmt.Errorf("minimum: %v", err)
	}
	half := G.NewConstant(0.5)
	return G.HadamardProd(spread, half)
}
