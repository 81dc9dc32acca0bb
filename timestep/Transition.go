package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together a single transition between states,
// labelled with the skill that was active when the transition was
// generated. The skill label is stored as a one-hot vector and is the
// label later used to train a skill-inference network, so it records
// the skill logged at rollout time rather than a freshly sampled one.
type Transition struct {
	State     mat.Vector
	Action    mat.Vector
	Reward    float64
	Discount  float64
	NextState mat.Vector
	Skill     mat.Vector
}

// NewTransition constructs a Transition from two adjacent timesteps,
// the action that joined them, and the one-hot skill label active when
// the action was selected.
func NewTransition(step TimeStep, action mat.Vector, nextStep TimeStep,
	skill mat.Vector) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		Discount:  nextStep.Discount,
		NextState: nextStep.Observation,
		Skill:     skill,
	}
}
