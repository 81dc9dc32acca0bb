// Package ddpg implements a DDPG-style actor-critic over augmented
// observations. The package provides the capability set consumed by
// skill-discovery controllers: an observation encoder, a behaviour
// actor, a twin critic with its Polyak-averaged target, and the critic
// and actor update rules. It is not itself a complete agent; action
// selection and the per-step orchestration live in the packages that
// compose it.
package ddpg

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"sfneuman.com/goskill/network"
	"sfneuman.com/goskill/solver"
	"sfneuman.com/goskill/utils/floatutils"
	"sfneuman.com/goskill/utils/schedule"
)

// DDPG holds the networks, solvers, and update rules of the
// actor-critic. Each loss lives on its own computational graph with
// its own virtual machine:
//
//	behaviour graph: batch-1 actor used for action selection
//	encoder graphs:  batch-1 and batch-N copies of the encoder
//	actor graph:     batch-N actor, a frozen copy of the critic, and
//	                 the actor loss -mean(min(Q1, Q2))
//	critic graph:    batch-N twin critic and its Bellman regression
//	                 loss against an externally computed target
//	target graph:    batch-N copy of the actor and the target critic,
//	                 producing the bootstrap value for the critic loss
//
// The canonical parameters are those of actorTrain, criticTrain, and
// encoderBatch; all other networks are copies that are re-synced after
// each solver step.
type DDPG struct {
	rawObsDim int
	obsDim    int
	actionDim int
	batchSize int

	encoder     *network.MultiHeadMLP
	encoderVM   G.VM
	encoderB    *network.MultiHeadMLP
	encoderBVM  G.VM

	behaviour   *network.MultiHeadMLP
	behaviourVM G.VM

	actorTrain   *network.MultiHeadMLP
	criticEval   *network.TwinQ
	actorNoise   *G.Node
	actorQVal    G.Value
	actorLossVal G.Value
	actorVM      G.VM
	actorSolver  *solver.Solver

	criticTrain   *network.TwinQ
	criticTargets *G.Node
	criticLossVal G.Value
	criticVM      G.VM
	criticSolver  *solver.Solver

	actorEval    *network.MultiHeadMLP
	targetObs    *G.Node
	targetNoise  *G.Node
	criticTarget *network.TwinQ
	targetQVal   G.Value
	targetVM     G.VM

	tau              float64
	stddevSchedule   string
	stddevClip       float64
	numExplSteps     int
	updateEverySteps int
	updateEncoder    bool
	recordMetrics    bool

	noiseDist   distuv.Normal
	uniformDist distuv.Uniform
}

// New returns a new DDPG capability set. The rawObsDim parameter is
// the width of unencoded observations, obsDim the width of the
// augmented observations consumed by the actor and critic. Since the
// augmentation appends information to the encoded observation, obsDim
// must strictly exceed rawObsDim.
func New(c Config, rawObsDim, obsDim, actionDim int,
	seed int64) (*DDPG, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if rawObsDim <= 0 || actionDim <= 0 {
		return nil, fmt.Errorf("new: dimensions must be > 0 \n\thave("+
			"rawObsDim=%v, actionDim=%v)", rawObsDim, actionDim)
	}
	if obsDim <= rawObsDim {
		return nil, fmt.Errorf("new: augmented width must exceed raw "+
			"width\n\twant(> %v)\n\thave(%v)", rawObsDim, obsDim)
	}

	init := c.InitWFn.InitWFn(uint64(seed))
	batch := c.BatchSize

	d := &DDPG{
		rawObsDim:        rawObsDim,
		obsDim:           obsDim,
		actionDim:        actionDim,
		batchSize:        batch,
		tau:              c.CriticTargetTau,
		stddevSchedule:   c.StddevSchedule,
		stddevClip:       c.StddevClip,
		numExplSteps:     c.NumExplSteps,
		updateEverySteps: c.UpdateEverySteps,
		updateEncoder:    c.UpdateEncoder,
		recordMetrics:    c.RecordMetrics,
	}

	src := rand.NewSource(uint64(seed))
	d.noiseDist = distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: src}
	d.uniformDist = distuv.Uniform{Min: -1.0, Max: 1.0, Src: src}

	var err error

	// Encoder copies: a batch-1 copy for action selection and the
	// canonical batch-N copy for updates
	gEnc := G.NewGraph()
	d.encoder, err = network.NewMultiHeadMLP(rawObsDim, 1, rawObsDim, gEnc,
		[]int{}, []bool{}, []*network.Activation{}, network.Identity(),
		init, "Encoder")
	if err != nil {
		return nil, fmt.Errorf("new: could not create encoder: %v", err)
	}
	d.encoderVM = G.NewTapeMachine(gEnc)

	gEncB := G.NewGraph()
	d.encoderB, err = network.NewMultiHeadMLP(rawObsDim, batch, rawObsDim,
		gEncB, []int{}, []bool{}, []*network.Activation{},
		network.Identity(), init, "Encoder")
	if err != nil {
		return nil, fmt.Errorf("new: could not create batch encoder: %v", err)
	}
	d.encoderBVM = G.NewTapeMachine(gEncB)

	// Behaviour actor
	gBehaviour := G.NewGraph()
	d.behaviour, err = network.NewMultiHeadMLP(obsDim, 1, actionDim,
		gBehaviour, []int{c.HiddenDim, c.HiddenDim}, []bool{true, true},
		[]*network.Activation{network.ReLU(), network.ReLU()},
		network.TanH(), init, "Actor")
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour actor: %v",
			err)
	}
	d.behaviourVM = G.NewTapeMachine(gBehaviour)

	// Actor loss graph. The critic copy on this graph is never
	// stepped; it is re-synced from the live critic before each actor
	// update so that gradients flow through it into the actor alone.
	gActor := G.NewGraph()
	actorObs := G.NewMatrix(
		gActor,
		tensor.Float64,
		G.WithShape(batch, obsDim),
		G.WithName("ActorObs"),
		G.WithInit(G.Zeroes()),
	)
	d.actorTrain, err = network.NewMultiHeadMLPFromInput(actorObs, obsDim,
		actionDim, []int{c.HiddenDim, c.HiddenDim}, []bool{true, true},
		[]*network.Activation{network.ReLU(), network.ReLU()},
		network.TanH(), init, "Actor")
	if err != nil {
		return nil, fmt.Errorf("new: could not create training actor: %v",
			err)
	}
	d.actorNoise = G.NewMatrix(
		gActor,
		tensor.Float64,
		G.WithShape(batch, actionDim),
		G.WithName("ActorNoise"),
		G.WithInit(G.Zeroes()),
	)
	sampledAction := G.Must(G.Add(d.actorTrain.Prediction(), d.actorNoise))

	d.criticEval, err = network.NewTwinQFromInput(actorObs, sampledAction,
		obsDim, actionDim, c.TrunkDim, c.HiddenDim, init, "CriticEval")
	if err != nil {
		return nil, fmt.Errorf("new: could not create evaluation critic: %v",
			err)
	}
	minQ, err := network.Minimum(d.criticEval.Q1Node(), d.criticEval.Q2Node())
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor loss: %v", err)
	}
	G.Read(minQ, &d.actorQVal)
	actorLoss := G.Must(G.Neg(G.Must(G.Mean(minQ))))
	G.Read(actorLoss, &d.actorLossVal)

	if _, err = G.Grad(actorLoss, d.actorTrain.Learnables()...); err != nil {
		return nil, fmt.Errorf("new: could not compute actor gradient: %v",
			err)
	}
	d.actorVM = G.NewTapeMachine(
		gActor,
		G.BindDualValues(d.actorTrain.Learnables()...),
	)
	d.actorSolver, err = solver.NewDefaultAdam(c.Lr, batch)
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor solver: %v", err)
	}

	// Critic regression graph
	gCritic := G.NewGraph()
	d.criticTrain, err = network.NewTwinQ(obsDim, actionDim, batch,
		c.TrunkDim, c.HiddenDim, gCritic, init, "Critic")
	if err != nil {
		return nil, fmt.Errorf("new: could not create critic: %v", err)
	}
	d.criticTargets = G.NewMatrix(
		gCritic,
		tensor.Float64,
		G.WithShape(batch, 1),
		G.WithName("CriticTargets"),
		G.WithInit(G.Zeroes()),
	)
	q1Loss := G.Must(G.Mean(G.Must(G.Square(
		G.Must(G.Sub(d.criticTrain.Q1Node(), d.criticTargets)),
	))))
	q2Loss := G.Must(G.Mean(G.Must(G.Square(
		G.Must(G.Sub(d.criticTrain.Q2Node(), d.criticTargets)),
	))))
	criticLoss := G.Must(G.Add(q1Loss, q2Loss))
	G.Read(criticLoss, &d.criticLossVal)

	if _, err = G.Grad(criticLoss, d.criticTrain.Learnables()...); err != nil {
		return nil, fmt.Errorf("new: could not compute critic gradient: %v",
			err)
	}
	d.criticVM = G.NewTapeMachine(
		gCritic,
		G.BindDualValues(d.criticTrain.Learnables()...),
	)
	d.criticSolver, err = solver.NewDefaultAdam(c.Lr, batch)
	if err != nil {
		return nil, fmt.Errorf("new: could not create critic solver: %v", err)
	}

	// Bootstrap graph: the live actor proposes the next action, the
	// target critic scores it. No gradients flow here.
	gTarget := G.NewGraph()
	d.targetObs = G.NewMatrix(
		gTarget,
		tensor.Float64,
		G.WithShape(batch, obsDim),
		G.WithName("TargetObs"),
		G.WithInit(G.Zeroes()),
	)
	d.actorEval, err = network.NewMultiHeadMLPFromInput(d.targetObs, obsDim,
		actionDim, []int{c.HiddenDim, c.HiddenDim}, []bool{true, true},
		[]*network.Activation{network.ReLU(), network.ReLU()},
		network.TanH(), init, "Actor")
	if err != nil {
		return nil, fmt.Errorf("new: could not create bootstrap actor: %v",
			err)
	}
	d.targetNoise = G.NewMatrix(
		gTarget,
		tensor.Float64,
		G.WithShape(batch, actionDim),
		G.WithName("TargetNoise"),
		G.WithInit(G.Zeroes()),
	)
	nextAction := G.Must(G.Add(d.actorEval.Prediction(), d.targetNoise))
	nextAction, err = clipNode(nextAction, -1.0, 1.0)
	if err != nil {
		return nil, fmt.Errorf("new: could not clip bootstrap action: %v",
			err)
	}
	d.criticTarget, err = network.NewTwinQFromInput(d.targetObs, nextAction,
		obsDim, actionDim, c.TrunkDim, c.HiddenDim, init, "CriticTarget")
	if err != nil {
		return nil, fmt.Errorf("new: could not create target critic: %v", err)
	}
	targetMinQ, err := network.Minimum(d.criticTarget.Q1Node(),
		d.criticTarget.Q2Node())
	if err != nil {
		return nil, fmt.Errorf("new: could not create bootstrap value: %v",
			err)
	}
	G.Read(targetMinQ, &d.targetQVal)
	d.targetVM = G.NewTapeMachine(gTarget)

	// All non-canonical copies start equal to their canonical network
	for _, sync := range []struct{ dest, source network.NeuralNet }{
		{d.encoder, d.encoderB},
		{d.behaviour, d.actorTrain},
		{d.actorEval, d.actorTrain},
		{d.criticEval, d.criticTrain},
		{d.criticTarget, d.criticTrain},
	} {
		if err := network.Set(sync.dest, sync.source); err != nil {
			return nil, fmt.Errorf("new: could not sync networks: %v", err)
		}
	}

	return d, nil
}

// RawObsDim returns the width of unencoded observations
func (d *DDPG) RawObsDim() int { return d.rawObsDim }

// ObsDim returns the width of augmented observations
func (d *DDPG) ObsDim() int { return d.obsDim }

// ActionDim returns the width of action vectors
func (d *DDPG) ActionDim() int { return d.actionDim }

// BatchSize returns the number of transitions consumed per update
func (d *DDPG) BatchSize() int { return d.batchSize }

// NumExplSteps returns the length of the uniform exploration phase
func (d *DDPG) NumExplSteps() int { return d.numExplSteps }

// UpdateEverySteps returns the update cadence
func (d *DDPG) UpdateEverySteps() int { return d.updateEverySteps }

// UpdateEncoder returns whether the encoder may receive gradients from
// downstream losses
func (d *DDPG) UpdateEncoder() bool { return d.updateEncoder }

// RecordMetrics returns whether training telemetry is recorded
func (d *DDPG) RecordMetrics() bool { return d.recordMetrics }

// Stddev evaluates the exploration noise scale at the argument
// timestep
func (d *DDPG) Stddev(step int) float64 {
	return schedule.MustValue(d.stddevSchedule, step)
}

// SampleNoise draws rows x actionDim Gaussian action noise scaled by
// the schedule value at step. When clip is true the scaled noise is
// bounded elementwise, which is the behaviour required inside training
// updates; rollout-time sampling leaves the noise unbounded.
func (d *DDPG) SampleNoise(rows, step int, clip bool) []float64 {
	stddev := d.Stddev(step)
	noise := make([]float64, rows*d.actionDim)
	for i := range noise {
		noise[i] = d.noiseDist.Rand() * stddev
		if clip {
			noise[i] = floatutils.Clip(noise[i], -d.stddevClip, d.stddevClip)
		}
	}
	return noise
}

// UniformActions draws a single action uniformly from [-1, 1] in each
// dimension
func (d *DDPG) UniformActions() []float64 {
	action := make([]float64, d.actionDim)
	for i := range action {
		action[i] = d.uniformDist.Rand()
	}
	return action
}

// Encode embeds a single raw observation
func (d *DDPG) Encode(rawObs []float64) ([]float64, error) {
	if err := d.encoder.SetInput(rawObs); err != nil {
		return nil, fmt.Errorf("encode: %v", err)
	}
	if err := d.encoderVM.RunAll(); err != nil {
		return nil, fmt.Errorf("encode: could not run encoder: %v", err)
	}
	defer d.encoderVM.Reset()

	out := d.encoder.Output().Data().([]float64)
	embedding := make([]float64, len(out))
	copy(embedding, out)
	return embedding, nil
}

// EncodeBatch embeds a batch of raw observations. The embeddings are
// returned as plain values with no attached gradient information, so
// downstream losses cannot reach the encoder parameters through them.
func (d *DDPG) EncodeBatch(rawObs []float64) ([]float64, error) {
	if err := d.encoderB.SetInput(rawObs); err != nil {
		return nil, fmt.Errorf("encodeBatch: %v", err)
	}
	if err := d.encoderBVM.RunAll(); err != nil {
		return nil, fmt.Errorf("encodeBatch: could not run encoder: %v", err)
	}
	defer d.encoderBVM.Reset()

	out := d.encoderB.Output().Data().([]float64)
	embeddings := make([]float64, len(out))
	copy(embeddings, out)
	return embeddings, nil
}

// AugAndEncode embeds a batch of raw observations and appends the
// corresponding row of tail to each embedding. The tail rows must have
// width obsDim - rawObsDim so that each augmented row has width
// obsDim.
func (d *DDPG) AugAndEncode(rawObs, tail []float64) ([]float64, error) {
	tailDim := d.obsDim - d.rawObsDim
	if len(tail) != d.batchSize*tailDim {
		return nil, fmt.Errorf("augAndEncode: invalid tail size"+
			"\n\twant(%v)\n\thave(%v)", d.batchSize*tailDim, len(tail))
	}

	embeddings, err := d.EncodeBatch(rawObs)
	if err != nil {
		return nil, fmt.Errorf("augAndEncode: %v", err)
	}

	augmented := make([]float64, d.batchSize*d.obsDim)
	for i := 0; i < d.batchSize; i++ {
		copy(augmented[i*d.obsDim:], embeddings[i*d.rawObsDim:(i+1)*d.rawObsDim])
		copy(augmented[i*d.obsDim+d.rawObsDim:], tail[i*tailDim:(i+1)*tailDim])
	}
	return augmented, nil
}

// ActorMean returns the mean of the behaviour policy's action
// distribution in a single augmented observation
func (d *DDPG) ActorMean(augObs []float64) ([]float64, error) {
	if err := d.behaviour.SetInput(augObs); err != nil {
		return nil, fmt.Errorf("actorMean: %v", err)
	}
	if err := d.behaviourVM.RunAll(); err != nil {
		return nil, fmt.Errorf("actorMean: could not run actor: %v", err)
	}
	defer d.behaviourVM.Reset()

	out := d.behaviour.Output().Data().([]float64)
	mean := make([]float64, len(out))
	copy(mean, out)
	return mean, nil
}

// UpdateCritic performs one Bellman regression step on the live
// critic. The obs and nextObs parameters are batches of augmented
// observations in row-major order. Returned alongside the metrics is
// nothing else; the bootstrap target r + discount * min(Q1', Q2') is
// computed with the live actor proposing the next action and the
// target critic scoring it.
func (d *DDPG) UpdateCritic(obs, action, reward, discount,
	nextObs []float64, step int) (map[string]float64, error) {
	metrics := make(map[string]float64)

	// Bootstrap values from the target networks
	noise := d.SampleNoise(d.batchSize, step, true)
	noiseTensor := tensor.New(
		tensor.WithBacking(noise),
		tensor.WithShape(d.batchSize, d.actionDim),
	)
	obsTensor := tensor.New(
		tensor.WithBacking(nextObs),
		tensor.WithShape(d.batchSize, d.obsDim),
	)
	if err := G.Let(d.targetObs, obsTensor); err != nil {
		return nil, fmt.Errorf("updateCritic: %v", err)
	}
	if err := G.Let(d.targetNoise, noiseTensor); err != nil {
		return nil, fmt.Errorf("updateCritic: %v", err)
	}
	if err := d.targetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("updateCritic: could not run target "+
			"networks: %v", err)
	}
	bootstrap := d.targetQVal.Data().([]float64)

	targets := make([]float64, d.batchSize)
	for i := range targets {
		targets[i] = reward[i] + discount[i]*bootstrap[i]
	}
	d.targetVM.Reset()

	// Regression step on the live critic
	if err := d.criticTrain.SetObservations(obs); err != nil {
		return nil, fmt.Errorf("updateCritic: %v", err)
	}
	if err := d.criticTrain.SetActions(action); err != nil {
		return nil, fmt.Errorf("updateCritic: %v", err)
	}
	targetTensor := tensor.New(
		tensor.WithBacking(targets),
		tensor.WithShape(d.batchSize, 1),
	)
	if err := G.Let(d.criticTargets, targetTensor); err != nil {
		return nil, fmt.Errorf("updateCritic: %v", err)
	}
	if err := d.criticVM.RunAll(); err != nil {
		return nil, fmt.Errorf("updateCritic: could not run critic: %v", err)
	}

	if d.recordMetrics {
		metrics["critic_loss"] = d.criticLossVal.Data().(float64)
		metrics["critic_q1"] = floatutils.Mean(
			d.criticTrain.Q1().Data().([]float64))
		metrics["critic_q2"] = floatutils.Mean(
			d.criticTrain.Q2().Data().([]float64))
		metrics["critic_target_q"] = floatutils.Mean(targets)
	}

	if err := d.criticSolver.Step(d.criticTrain.Model()); err != nil {
		return nil, fmt.Errorf("updateCritic: could not step solver: %v", err)
	}
	d.criticVM.Reset()

	return metrics, nil
}

// UpdateActor performs one policy gradient step on the actor using the
// loss -mean(min(Q1, Q2)) at actions sampled from the policy in the
// argument batch of augmented observations. The per-transition
// pessimistic values are returned as plain numbers so that callers can
// reuse them as an advantage signal without touching the actor's
// computation graph.
func (d *DDPG) UpdateActor(augObs []float64, step int) (map[string]float64,
	[]float64, error) {
	metrics := make(map[string]float64)

	// The critic copy on the actor graph holds the live critic's
	// current weights during the forward and backward pass but is
	// never stepped
	if err := network.Set(d.criticEval, d.criticTrain); err != nil {
		return nil, nil, fmt.Errorf("updateActor: could not sync critic: %v",
			err)
	}

	stddev := d.Stddev(step)
	noise := d.SampleNoise(d.batchSize, step, true)
	noiseTensor := tensor.New(
		tensor.WithBacking(noise),
		tensor.WithShape(d.batchSize, d.actionDim),
	)

	if err := d.actorTrain.SetInput(augObs); err != nil {
		return nil, nil, fmt.Errorf("updateActor: %v", err)
	}
	if err := G.Let(d.actorNoise, noiseTensor); err != nil {
		return nil, nil, fmt.Errorf("updateActor: %v", err)
	}
	if err := d.actorVM.RunAll(); err != nil {
		return nil, nil, fmt.Errorf("updateActor: could not run actor: %v",
			err)
	}

	qData := d.actorQVal.Data().([]float64)
	q := make([]float64, len(qData))
	copy(q, qData)

	if d.recordMetrics {
		metrics["actor_loss"] = d.actorLossVal.Data().(float64)
		metrics["actor_logprob"] = meanLogProb(noise, stddev, d.actionDim)
		metrics["actor_ent"] = gaussianEntropy(stddev, d.actionDim)
	}

	if err := d.actorSolver.Step(d.actorTrain.Model()); err != nil {
		return nil, nil, fmt.Errorf("updateActor: could not step solver: %v",
			err)
	}
	d.actorVM.Reset()

	// Propagate the new actor weights to its copies
	if err := network.Set(d.behaviour, d.actorTrain); err != nil {
		return nil, nil, fmt.Errorf("updateActor: could not sync behaviour "+
			"actor: %v", err)
	}
	if err := network.Set(d.actorEval, d.actorTrain); err != nil {
		return nil, nil, fmt.Errorf("updateActor: could not sync bootstrap "+
			"actor: %v", err)
	}

	return metrics, q, nil
}

// PolyakCriticTarget moves the target critic toward the live critic
func (d *DDPG) PolyakCriticTarget() error {
	return network.Polyak(d.criticTarget, d.criticTrain, d.tau)
}

// InitFrom transplants the parameters of another DDPG capability set
// into this one. The encoder and actor are always copied; the critic's
// observation trunk is copied only when initCritic is set, leaving the
// critic heads and the target critic untouched.
func (d *DDPG) InitFrom(other *DDPG, initCritic bool) error {
	if err := network.Set(d.encoderB, other.encoderB); err != nil {
		return fmt.Errorf("initFrom: could not copy encoder: %v", err)
	}
	if err := network.Set(d.encoder, d.encoderB); err != nil {
		return fmt.Errorf("initFrom: could not sync encoder: %v", err)
	}

	if err := network.Set(d.actorTrain, other.actorTrain); err != nil {
		return fmt.Errorf("initFrom: could not copy actor: %v", err)
	}
	if err := network.Set(d.behaviour, d.actorTrain); err != nil {
		return fmt.Errorf("initFrom: could not sync behaviour actor: %v", err)
	}
	if err := network.Set(d.actorEval, d.actorTrain); err != nil {
		return fmt.Errorf("initFrom: could not sync bootstrap actor: %v", err)
	}

	if initCritic {
		err := network.SetNodes(
			d.criticTrain.TrunkLearnables(),
			other.criticTrain.TrunkLearnables(),
		)
		if err != nil {
			return fmt.Errorf("initFrom: could not copy critic trunk: %v",
				err)
		}
	}
	return nil
}

// CriticLearnables exposes the live critic's learnable nodes for
// parameter inspection
func (d *DDPG) CriticLearnables() G.Nodes {
	return d.criticTrain.Learnables()
}

// CriticTrunkLearnables exposes the learnable nodes of the live
// critic's observation trunk
func (d *DDPG) CriticTrunkLearnables() G.Nodes {
	return d.criticTrain.TrunkLearnables()
}

// ActorLearnables exposes the live actor's learnable nodes for
// parameter inspection
func (d *DDPG) ActorLearnables() G.Nodes {
	return d.actorTrain.Learnables()
}

// EncoderLearnables exposes the canonical encoder's learnable nodes
// for parameter inspection
func (d *DDPG) EncoderLearnables() G.Nodes {
	return d.encoderB.Learnables()
}

// clipNode adds nodes clipping each element of node to [min, max].
// Composed from the elementwise minimum identity, since max(a, c) =
// -min(-a, -c).
func clipNode(node *G.Node, min, max float64) (*G.Node, error) {
	upper, err := network.Minimum(node, G.NewConstant(max))
	if err != nil {
		return nil, err
	}
	negated, err := G.Neg(upper)
	if err != nil {
		return nil, err
	}
	lowered, err := network.Minimum(negated, G.NewConstant(-min))
	if err != nil {
		return nil, err
	}
	return G.Neg(lowered)
}

// meanLogProb computes the mean over a batch of the log density of the
// sampled Gaussian action noise, summed over action dimensions
func meanLogProb(noise []float64, stddev float64, actionDim int) float64 {
	variance := stddev * stddev
	var total float64
	for _, eps := range noise {
		total += -0.5*math.Log(2.0*math.Pi*variance) -
			eps*eps/(2.0*variance)
	}
	return total / float64(len(noise)/actionDim)
}

// gaussianEntropy computes the entropy of an isotropic Gaussian action
// distribution with the argument scale, summed over action dimensions
func gaussianEntropy(stddev float64, actionDim int) float64 {
	return float64(actionDim) * 0.5 *
		math.Log(2.0*math.Pi*math.E*stddev*stddev)
}
