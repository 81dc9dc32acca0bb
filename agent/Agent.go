// Package agent describes the interfaces that agents must implement
// to interact with outer training loops.
package agent

import (
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/goskill/expreplay"
	"sfneuman.com/goskill/spec"
)

// Meta holds the named meta-variables an agent produced while
// selecting its latest action, e.g. the skill a skill-discovery agent
// was following. Outer loops store these alongside observations and
// actions and hand them back on later calls, but an agent is free to
// ignore what it is handed and consult its own internal state instead.
type Meta map[string]*mat.VecDense

// MetaAgent is the interface of agents that select actions conditioned
// on meta-variables and learn from replayed experience.
type MetaAgent interface {
	// SelectAction returns the action to take in the argument
	// observation. When evalMode is true, action selection is
	// deterministic.
	SelectAction(obs mat.Vector, meta Meta, step int,
		evalMode bool) *mat.VecDense

	// Update performs a single training update from experience sampled
	// out of the argument replay buffer, returning the training
	// metrics recorded during the update. An empty map with a nil
	// error means the update was legally skipped.
	Update(replay expreplay.ExperienceReplayer, step int) (map[string]float64,
		error)

	// InitFrom transplants the weights of another agent of the same
	// concrete type into this agent
	InitFrom(other MetaAgent, initCritic bool) error

	// MetaSpecs returns descriptors for each meta-variable the agent
	// produces during action selection
	MetaSpecs() []spec.Meta

	// CurrentMeta returns a copy of the agent's current meta-variables
	CurrentMeta() Meta
}

// Config represents a configuration from which an agent can be
// constructed
type Config interface {
	// CreateAgent creates the agent that the Config describes
	CreateAgent(obsSpec, actionSpec spec.Environment,
		seed int64) (MetaAgent, error)

	// Validate returns an error describing whether or not the Config
	// is valid
	Validate() error
}
