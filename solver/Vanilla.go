package solver

import G "gorgonia.org/gorgonia"

// VanillaConfig holds the hyperparameters of plain stochastic
// gradient descent
type VanillaConfig struct {
	StepSize float64
	Batch    int
}

// NewVanilla returns a plain stochastic gradient descent Solver
func NewVanilla(stepSize float64, batchSize int) (*Solver, error) {
	return newSolver(Vanilla, VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
	})
}

// Create returns the Gorgonia vanilla solver the VanillaConfig
// describes
func (v VanillaConfig) Create() G.Solver {
	return G.NewVanillaSolver(
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	)
}

// ValidType reports whether t names the solver family this Config
// builds
func (v VanillaConfig) ValidType(t Type) bool {
	return t == Vanilla
}
