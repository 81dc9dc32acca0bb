package diayn

import (
	"fmt"

	"sfneuman.com/goskill/agent"
	"sfneuman.com/goskill/agent/ddpg"
	"sfneuman.com/goskill/spec"
)

// Config implements a configuration of the DIAYN skill-discovery
// agent. The embedded actor-critic configuration is consumed
// unchanged by the underlying capability set.
type Config struct {
	ddpg.Config

	// SkillDim is the number of discrete skills
	SkillDim int

	// UpdateSkillEverySteps and DiaynScale are carried so that
	// configuration files for the wider agent family deserialize
	// without loss. This variant resamples its skill on every action
	// selection and trains the critic on unscaled task reward, so
	// neither field is consulted.
	UpdateSkillEverySteps int
	DiaynScale            float64
}

// Validate returns an error describing whether or not the Config is
// valid
func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.SkillDim < 1 {
		return fmt.Errorf("validate: SkillDim must be >= 1 \n\twant(>=1)"+
			"\n\thave(%v)", c.SkillDim)
	}
	return nil
}

// CreateAgent creates the DIAYN agent that the Config describes
func (c Config) CreateAgent(obsSpec, actionSpec spec.Environment,
	seed int64) (agent.MetaAgent, error) {
	if obsSpec.Type != spec.Observation {
		return nil, fmt.Errorf("createAgent: invalid observation spec type"+
			"\n\twant(%v)\n\thave(%v)", spec.Observation, obsSpec.Type)
	}
	if actionSpec.Type != spec.Action {
		return nil, fmt.Errorf("createAgent: invalid action spec type"+
			"\n\twant(%v)\n\thave(%v)", spec.Action, actionSpec.Type)
	}

	return New(c, obsSpec.Shape.Len(), actionSpec.Shape.Len(), seed)
}
