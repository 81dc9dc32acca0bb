// Package timestep implements the unit of agent-environment
// interaction: single environment steps and the skill-labelled
// transitions stored in replay.
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType records where in an episode a TimeStep falls
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep is one step of environment interaction: the observation
// seen, the reward and discount that produced it, and its position in
// the episode.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
}

// New returns the TimeStep with the given contents
func New(t StepType, reward, discount float64, obs mat.Vector,
	number int) TimeStep {
	return TimeStep{
		stepType:    t,
		Reward:      reward,
		Discount:    discount,
		Observation: obs,
		Number:      number,
	}
}

// First reports whether the step opened its episode
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid reports whether the step fell in the middle of its episode
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last reports whether the step closed its episode
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	return fmt.Sprintf("TimeStep | Type: %v | Reward: %.2f | "+
		"Discount: %.2f | Step Number: %v",
		t.stepType, t.Reward, t.Discount, t.Number)
}
