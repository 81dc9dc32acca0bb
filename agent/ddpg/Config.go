package ddpg

import (
	"fmt"

	"sfneuman.com/goskill/initwfn"
	"sfneuman.com/goskill/utils/schedule"
)

// Config implements a configuration of the DDPG capability set
type Config struct {
	// HiddenDim is the width of the hidden layers of the actor and of
	// the critic heads
	HiddenDim int

	// TrunkDim is the width of the critic's shared observation trunk
	TrunkDim int

	// Lr is the learning rate of the actor and critic Adam solvers
	Lr float64

	// BatchSize is the number of transitions consumed by each update
	BatchSize int

	// CriticTargetTau weights the Polyak average moving the target
	// critic toward the live critic
	CriticTargetTau float64

	// StddevSchedule describes the annealing of the exploration noise
	// scale, e.g. "0.2" or "linear(1.0,0.1,500000)"
	StddevSchedule string

	// StddevClip bounds the scaled exploration noise used during
	// training updates
	StddevClip float64

	// NumExplSteps is the number of initial steps during which actions
	// are drawn uniformly randomly instead of from the policy
	NumExplSteps int

	// UpdateEverySteps is the update cadence: updates run only on
	// steps that are multiples of this value
	UpdateEverySteps int

	// UpdateEncoder determines whether the observation encoder may
	// receive gradients from downstream losses
	UpdateEncoder bool

	// InitWFn is the weight initialization scheme, applied uniformly
	// to all weight matrices
	InitWFn *initwfn.InitWFn

	// RecordMetrics toggles per-update training telemetry
	RecordMetrics bool
}

// Validate returns an error describing whether or not the Config is
// valid
func (c Config) Validate() error {
	if c.HiddenDim <= 0 {
		return fmt.Errorf("validate: HiddenDim must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.HiddenDim)
	}
	if c.TrunkDim <= 0 {
		return fmt.Errorf("validate: TrunkDim must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.TrunkDim)
	}
	if c.Lr <= 0 {
		return fmt.Errorf("validate: Lr must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.Lr)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("validate: BatchSize must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.BatchSize)
	}
	if c.CriticTargetTau <= 0 || c.CriticTargetTau > 1 {
		return fmt.Errorf("validate: CriticTargetTau must be in (0, 1]"+
			"\n\thave(%v)", c.CriticTargetTau)
	}
	if err := schedule.Validate(c.StddevSchedule); err != nil {
		return fmt.Errorf("validate: invalid StddevSchedule: %v", err)
	}
	if c.StddevClip <= 0 {
		return fmt.Errorf("validate: StddevClip must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", c.StddevClip)
	}
	if c.NumExplSteps < 0 {
		return fmt.Errorf("validate: NumExplSteps must be >= 0"+
			"\n\thave(%v)", c.NumExplSteps)
	}
	if c.UpdateEverySteps <= 0 {
		return fmt.Errorf("validate: UpdateEverySteps must be > 0"+
			"\n\thave(%v)", c.UpdateEverySteps)
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initialization scheme given")
	}
	return nil
}
