package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MultiHeadMLP implements a multi-layered perceptron with multiple
// output nodes, one for each value that should be predicted.
type MultiHeadMLP struct {
	g      *G.ExprGraph
	layers []Layer
	input  *G.Node

	numOutputs int
	numInputs  int
	batchSize  int

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMultiHeadMLP creates and returns a new multi-layered perceptron
// on its own input node. The graph parameter g is populated with the
// MLP.
//
// The MLP has a number of layers equal to len(hiddenSizes) + 1. A
// final layer with a bias unit is always added so that, given any
// input, the network produces outputs values. The final layer uses
// the final activation, which permits bounded outputs (e.g. tanh for
// an actor) as well as unnormalized logits (identity). The init
// parameter determines the weight initialization scheme, applied
// uniformly to all weight matrices.
func NewMultiHeadMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*Activation,
	final *Activation, init G.InitWFn, prefix string) (*MultiHeadMLP, error) {

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, features),
		G.WithName(prefix+"Input"),
		G.WithInit(G.Zeroes()),
	)

	return NewMultiHeadMLPFromInput(input, features, outputs, hiddenSizes,
		biases, activations, final, init, prefix)
}

// NewMultiHeadMLPFromInput returns a new MLP that reads from a
// specific, existing node of a computational graph. This allows a
// network's forward pass to consume the output of another network on
// the same graph, e.g. a critic evaluating actions produced by an
// actor. The features parameter must equal the column dimension of
// the input node.
func NewMultiHeadMLPFromInput(input *G.Node, features, outputs int,
	hiddenSizes []int, biases []bool, activations []*Activation,
	final *Activation, init G.InitWFn, prefix string) (*MultiHeadMLP, error) {

	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("newMultiHeadMLP: invalid number of "+
			"activations\n\twant(%d)\n\thave(%d)", len(hiddenSizes),
			len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("newMultiHeadMLP: invalid number of biases"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(biases))
	}
	if !input.IsMatrix() {
		return nil, fmt.Errorf("newMultiHeadMLP: input must be a matrix")
	}
	if cols := input.Shape()[1]; cols != features {
		return nil, fmt.Errorf("newMultiHeadMLP: invalid input width"+
			"\n\twant(%v)\n\thave(%v)", features, cols)
	}

	batch := input.Shape()[0]

	// Add a final layer so that the network always predicts outputs
	// values. Copy the caller's slices so the append cannot alias.
	sizes := append(append([]int{}, hiddenSizes...), outputs)
	withBias := append(append([]bool{}, biases...), true)
	acts := append(append([]*Activation{}, activations...), final)

	layers := addFCLayers(input.Graph(), sizes, withBias, acts, init,
		features, prefix)

	network := MultiHeadMLP{
		g:          input.Graph(),
		layers:     layers,
		input:      input,
		numOutputs: outputs,
		numInputs:  features,
		batchSize:  batch,
	}

	prediction, err := fwdLayers(layers, input)
	if err != nil {
		return nil, fmt.Errorf("newMultiHeadMLP: could not compute "+
			"forward pass: %v", err)
	}
	network.prediction = prediction
	G.Read(network.prediction, &network.predVal)

	return &network, nil
}

// Graph returns the computational graph of the MultiHeadMLP
func (e *MultiHeadMLP) Graph() *G.ExprGraph {
	return e.g
}

// BatchSize returns the number of rows in a batch of inputs to the
// network
func (e *MultiHeadMLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single observation
// vector that the network takes as input.
func (e *MultiHeadMLP) Features() int {
	return e.numInputs
}

// Outputs returns the number of outputs from the network
func (e *MultiHeadMLP) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass.
func (e *MultiHeadMLP) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Learnables returns the learnable nodes in a MultiHeadMLP
func (e *MultiHeadMLP) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		e.learnables = layerLearnables(e.layers)
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients.
func (e *MultiHeadMLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		e.model = make([]G.ValueGrad, 0, len(e.Learnables()))
		for _, node := range e.Learnables() {
			e.model = append(e.model, node)
		}
	}
	return e.model
}

// Prediction returns the node of the computational graph that stores
// the output of the MultiHeadMLP
func (e *MultiHeadMLP) Prediction() *G.Node {
	return e.prediction
}

// Output returns the output of the MultiHeadMLP's last forward pass.
// The network's VM must have been run for the output to be valid.
func (e *MultiHeadMLP) Output() G.Value {
	return e.predVal
}
