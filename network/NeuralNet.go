// Package network implements neural network function approximators
// using Gorgonia.
//
// Networks in this package only populate a gorgonia.ExprGraph with
// their forward pass. They hold no virtual machine of their own: an
// external VM runs the graph, after which the network's Output()
// holds the prediction. Training code adds loss nodes to the same
// graph and steps a Gorgonia Solver over the network's Model().
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is the interface satisfied by all function approximators
// in this package.
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	SetInput([]float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
}

// Set sets the weights of dest to be equal to the weights of source.
// The networks must have identical architectures.
func Set(dest, source NeuralNet) error {
	return SetNodes(dest.Learnables(), source.Learnables())
}

// SetNodes copies the values of the source nodes into the dest nodes
// by value. It is used both for whole-network copies and for partial
// copies such as transplanting only a critic's trunk.
func SetNodes(dest, source G.Nodes) error {
	if len(dest) != len(source) {
		return fmt.Errorf("setNodes: invalid number of learnables"+
			"\n\twant(%v)\n\thave(%v)", len(dest), len(source))
	}

	for i := range dest {
		value, ok := source[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("setNodes: learnable %v does not hold a "+
				"dense tensor", source[i].Name())
		}
		err := G.Let(dest[i], value.Clone().(*tensor.Dense))
		if err != nil {
			return fmt.Errorf("setNodes: could not set learnable %v: %v",
				dest[i].Name(), err)
		}
	}
	return nil
}

// Polyak sets the weights of dest to be a Polyak average between its
// existing weights and the weights of source:
//
//	dest <- (1 - tau) * dest + tau * source
func Polyak(dest, source NeuralNet, tau float64) error {
	destNodes := dest.Learnables()
	sourceNodes := source.Learnables()
	if len(destNodes) != len(sourceNodes) {
		return fmt.Errorf("polyak: invalid number of learnables"+
			"\n\twant(%v)\n\thave(%v)", len(destNodes), len(sourceNodes))
	}

	for i := range destNodes {
		weights := destNodes[i].Value().(*tensor.Dense)
		sourceWeights := sourceNodes[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return err
		}

		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return err
		}

		newWeights, err := weights.Add(sourceWeights)
		if err != nil {
			return err
		}

		err = G.Let(destNodes[i], newWeights)
		if err != nil {
			return err
		}
	}
	return nil
}
