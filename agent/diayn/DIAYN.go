// Package diayn implements a DIAYN-style skill-discovery agent with a
// value-weighted controller. A skill-inference network predicts which
// of a fixed set of discrete skills produced an observation; actions
// are selected by an actor conditioned on the observation concatenated
// with the sampled skill one-hot vector; and the skill predictor is
// trained with a REINFORCE-style loss weighted by a critic-derived
// advantage, pushing the predictor toward skill labels that correlate
// with above-average value.
//
// The agent composes the actor-critic capability set of the ddpg
// package rather than extending it; the only networks owned here are
// the skill predictor and its training copy.
package diayn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"sfneuman.com/goskill/agent"
	"sfneuman.com/goskill/agent/ddpg"
	"sfneuman.com/goskill/expreplay"
	"sfneuman.com/goskill/network"
	"sfneuman.com/goskill/solver"
	"sfneuman.com/goskill/spec"
	"sfneuman.com/goskill/utils/floatutils"
)

// DIAYN implements the skill-discovery agent
type DIAYN struct {
	base *ddpg.DDPG

	skillDim  int
	rawObsDim int
	obsDim    int
	actionDim int
	batchSize int

	// Batch-1 predictor used during action selection
	predictor   *network.MultiHeadMLP
	predictorVM G.VM

	// Controller training graph
	predictorTrain *network.MultiHeadMLP
	ctrlLabels     *G.Node
	ctrlAdvantage  *G.Node
	ctrlLossVal    G.Value
	ctrlVM         G.VM
	ctrlSolver     *solver.Solver

	src         rand.Source
	currentMeta *mat.VecDense
}

// New returns a new DIAYN agent. The rawObsDim parameter is the width
// of environment observations; the actor and critic consume augmented
// observations of width rawObsDim + SkillDim.
func New(c Config, rawObsDim, actionDim int, seed int64) (*DIAYN, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	base, err := ddpg.New(c.Config, rawObsDim, rawObsDim+c.SkillDim,
		actionDim, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor-critic: %v", err)
	}

	// Offset from the actor-critic's stream so the predictor does not
	// replay the same weight draws
	init := c.InitWFn.InitWFn(uint64(seed) + 2)
	batch := c.BatchSize

	d := &DIAYN{
		base:      base,
		skillDim:  c.SkillDim,
		rawObsDim: rawObsDim,
		obsDim:    rawObsDim + c.SkillDim,
		actionDim: actionDim,
		batchSize: batch,
		src:       rand.NewSource(uint64(seed) + 1),
	}

	// Skill inference operates on raw observation space, not on the
	// learned embedding
	gPred := G.NewGraph()
	d.predictor, err = network.NewMultiHeadMLP(rawObsDim, 1, c.SkillDim,
		gPred, []int{c.HiddenDim, c.HiddenDim}, []bool{true, true},
		[]*network.Activation{network.ReLU(), network.ReLU()},
		network.Identity(), init, "SkillPredictor")
	if err != nil {
		return nil, fmt.Errorf("new: could not create skill predictor: %v",
			err)
	}
	d.predictorVM = G.NewTapeMachine(gPred)

	// Controller loss: -mean(advantage * log p(label)), where the
	// advantage enters as a plain input so that the critic that
	// produced it receives no gradient
	gCtrl := G.NewGraph()
	ctrlObs := G.NewMatrix(
		gCtrl,
		tensor.Float64,
		G.WithShape(batch, rawObsDim),
		G.WithName("ControllerObs"),
		G.WithInit(G.Zeroes()),
	)
	d.predictorTrain, err = network.NewMultiHeadMLPFromInput(ctrlObs,
		rawObsDim, c.SkillDim, []int{c.HiddenDim, c.HiddenDim},
		[]bool{true, true},
		[]*network.Activation{network.ReLU(), network.ReLU()},
		network.Identity(), init, "SkillPredictor")
	if err != nil {
		return nil, fmt.Errorf("new: could not create training predictor: "+
			"%v", err)
	}
	d.ctrlLabels = G.NewMatrix(
		gCtrl,
		tensor.Float64,
		G.WithShape(batch, c.SkillDim),
		G.WithName("ControllerLabels"),
		G.WithInit(G.Zeroes()),
	)
	d.ctrlAdvantage = G.NewVector(
		gCtrl,
		tensor.Float64,
		G.WithShape(batch),
		G.WithName("ControllerAdvantage"),
		G.WithInit(G.Zeroes()),
	)

	probs := G.Must(G.SoftMax(d.predictorTrain.Prediction(), 1))
	logProbs := G.Must(G.Log(probs))
	chosen := G.Must(G.Sum(G.Must(G.HadamardProd(logProbs, d.ctrlLabels)), 1))
	weighted := G.Must(G.HadamardProd(chosen, d.ctrlAdvantage))
	ctrlLoss := G.Must(G.Neg(G.Must(G.Mean(weighted))))
	G.Read(ctrlLoss, &d.ctrlLossVal)

	_, err = G.Grad(ctrlLoss, d.predictorTrain.Learnables()...)
	if err != nil {
		return nil, fmt.Errorf("new: could not compute controller "+
			"gradient: %v", err)
	}
	d.ctrlVM = G.NewTapeMachine(
		gCtrl,
		G.BindDualValues(d.predictorTrain.Learnables()...),
	)
	d.ctrlSolver, err = solver.NewDefaultAdam(c.Lr, batch)
	if err != nil {
		return nil, fmt.Errorf("new: could not create controller solver: "+
			"%v", err)
	}

	if err := network.Set(d.predictor, d.predictorTrain); err != nil {
		return nil, fmt.Errorf("new: could not sync predictors: %v", err)
	}

	d.currentMeta = mat.NewVecDense(c.SkillDim, nil)
	d.currentMeta.SetVec(0, 1.0)

	return d, nil
}

// SelectAction returns the action to take in the argument observation.
// A fresh skill is sampled from the predictor's categorical
// distribution on every call and unconditionally overwrites the
// caller-supplied meta: the meta argument is accepted for interface
// compatibility with the wider agent family but is intentionally
// ignored. When evalMode is true the policy mean is returned;
// otherwise Gaussian noise at the scheduled scale is added, and during
// the exploration warmup the action is replaced with a uniform draw
// from [-1, 1].
func (d *DIAYN) SelectAction(obs mat.Vector, _ agent.Meta, step int,
	evalMode bool) *mat.VecDense {
	if obs.Len() != d.rawObsDim {
		panic(fmt.Sprintf("selectAction: invalid observation size"+
			"\n\twant(%v)\n\thave(%v)", d.rawObsDim, obs.Len()))
	}

	rawObs := make([]float64, d.rawObsDim)
	for i := range rawObs {
		rawObs[i] = obs.AtVec(i)
	}

	h, err := d.base.Encode(rawObs)
	if err != nil {
		panic(fmt.Sprintf("selectAction: could not encode observation: %v",
			err))
	}

	skill := d.sampleSkill(rawObs)
	d.currentMeta = skill

	augObs := make([]float64, 0, d.obsDim)
	augObs = append(augObs, h...)
	augObs = append(augObs, skill.RawVector().Data...)

	mu, err := d.base.ActorMean(augObs)
	if err != nil {
		panic(fmt.Sprintf("selectAction: could not run actor: %v", err))
	}
	if evalMode {
		return mat.NewVecDense(d.actionDim, mu)
	}

	noise := d.base.SampleNoise(1, step, false)
	action := make([]float64, d.actionDim)
	for i := range action {
		action[i] = mu[i] + noise[i]
	}
	floatutils.ClipSlice(action, -1.0, 1.0)

	if step < d.base.NumExplSteps() {
		action = d.base.UniformActions()
	}
	return mat.NewVecDense(d.actionDim, action)
}

// sampleSkill runs the skill predictor on a raw observation and draws
// a one-hot skill from the resulting categorical distribution
func (d *DIAYN) sampleSkill(rawObs []float64) *mat.VecDense {
	if err := d.predictor.SetInput(rawObs); err != nil {
		panic(fmt.Sprintf("sampleSkill: %v", err))
	}
	if err := d.predictorVM.RunAll(); err != nil {
		panic(fmt.Sprintf("sampleSkill: could not run predictor: %v", err))
	}
	logits := d.predictor.Output().Data().([]float64)
	probs := floatutils.Softmax(logits)
	d.predictorVM.Reset()

	dist := distuv.NewCategorical(probs, d.src)
	index := int(dist.Rand())

	skill := mat.NewVecDense(d.skillDim, nil)
	skill.SetVec(index, 1.0)
	return skill
}

// Update performs one full training step: sample a batch, encode and
// augment its observations with the logged skill labels, update the
// critic, update the actor and controller, then soft-update the target
// critic. The update is skipped, returning empty metrics, when step is
// off-cadence or the replay buffer cannot yet provide a batch.
func (d *DIAYN) Update(replay expreplay.ExperienceReplayer,
	step int) (map[string]float64, error) {
	metrics := make(map[string]float64)

	if step%d.base.UpdateEverySteps() != 0 {
		return metrics, nil
	}

	obs, action, reward, discount, nextObs, skill, err := replay.Sample()
	if err != nil {
		if expreplay.IsEmptyBuffer(err) ||
			expreplay.IsInsufficientSamples(err) {
			return metrics, nil
		}
		return nil, fmt.Errorf("update: could not sample batch: %v", err)
	}

	if d.base.RecordMetrics() {
		// The critic trains on unscaled task reward, so the extrinsic
		// and batch reward telemetry coincide
		metrics["extr_reward"] = floatutils.Mean(reward)
		metrics["batch_reward"] = floatutils.Mean(reward)
	}

	augObs, err := d.base.AugAndEncode(obs, skill)
	if err != nil {
		return nil, fmt.Errorf("update: could not augment observations: %v",
			err)
	}
	augNextObs, err := d.base.AugAndEncode(nextObs, skill)
	if err != nil {
		return nil, fmt.Errorf("update: could not augment next "+
			"observations: %v", err)
	}

	criticMetrics, err := d.base.UpdateCritic(augObs, action, reward,
		discount, augNextObs, step)
	if err != nil {
		return nil, fmt.Errorf("update: %v", err)
	}

	acMetrics, err := d.updateActorAndController(augObs, step)
	if err != nil {
		return nil, fmt.Errorf("update: %v", err)
	}

	if err := d.base.PolyakCriticTarget(); err != nil {
		return nil, fmt.Errorf("update: could not update target critic: %v",
			err)
	}

	for key, value := range criticMetrics {
		metrics[key] = value
	}
	for key, value := range acMetrics {
		metrics[key] = value
	}
	return metrics, nil
}

// updateActorAndController performs the two independent gradient steps
// that share the augmented batch: the actor's policy gradient step and
// the controller's REINFORCE step on the skill predictor. The critic
// values produced during the actor update are reused, centred by their
// batch mean, as the controller's advantage weights; they enter the
// controller graph as plain inputs, so neither the critic nor the
// actor receives gradients from the controller loss.
func (d *DIAYN) updateActorAndController(augObs []float64,
	step int) (map[string]float64, error) {
	metrics, q, err := d.base.UpdateActor(augObs, step)
	if err != nil {
		return nil, err
	}

	// Split the augmented batch back into its raw-observation portion
	// and the trailing skill labels
	rawPart := make([]float64, d.batchSize*d.rawObsDim)
	labels := make([]float64, d.batchSize*d.skillDim)
	for i := 0; i < d.batchSize; i++ {
		row := augObs[i*d.obsDim : (i+1)*d.obsDim]
		copy(rawPart[i*d.rawObsDim:], row[:d.rawObsDim])
		copy(labels[i*d.skillDim:], row[d.rawObsDim:])
	}

	advantage := make([]float64, len(q))
	qMean := floatutils.Mean(q)
	for i := range advantage {
		advantage[i] = q[i] - qMean
	}

	if err := d.predictorTrain.SetInput(rawPart); err != nil {
		return nil, fmt.Errorf("updateController: %v", err)
	}
	labelTensor := tensor.New(
		tensor.WithBacking(labels),
		tensor.WithShape(d.batchSize, d.skillDim),
	)
	if err := G.Let(d.ctrlLabels, labelTensor); err != nil {
		return nil, fmt.Errorf("updateController: %v", err)
	}
	advantageTensor := tensor.New(
		tensor.WithBacking(advantage),
		tensor.WithShape(d.batchSize),
	)
	if err := G.Let(d.ctrlAdvantage, advantageTensor); err != nil {
		return nil, fmt.Errorf("updateController: %v", err)
	}

	if err := d.ctrlVM.RunAll(); err != nil {
		return nil, fmt.Errorf("updateController: could not run "+
			"controller: %v", err)
	}
	if d.base.RecordMetrics() {
		metrics["diayn_loss"] = d.ctrlLossVal.Data().(float64)
	}
	if err := d.ctrlSolver.Step(d.predictorTrain.Model()); err != nil {
		return nil, fmt.Errorf("updateController: could not step solver: "+
			"%v", err)
	}
	d.ctrlVM.Reset()

	if err := network.Set(d.predictor, d.predictorTrain); err != nil {
		return nil, fmt.Errorf("updateController: could not sync "+
			"predictors: %v", err)
	}

	// The controller loss consumes the embeddings as plain values, so
	// no gradient path reaches the encoder and an encoder step here
	// would leave its parameters unchanged even when encoder updates
	// are enabled.

	return metrics, nil
}

// InitFrom transplants the parameters of another DIAYN agent into this
// one. The encoder, actor, and skill predictor are always copied; the
// critic trunk is copied only when initCritic is set.
func (d *DIAYN) InitFrom(other agent.MetaAgent, initCritic bool) error {
	source, ok := other.(*DIAYN)
	if !ok {
		return fmt.Errorf("initFrom: invalid source agent type"+
			"\n\twant(*diayn.DIAYN)\n\thave(%T)", other)
	}
	if source.skillDim != d.skillDim || source.rawObsDim != d.rawObsDim {
		return fmt.Errorf("initFrom: source agent dimensions differ"+
			"\n\twant(skillDim=%v, rawObsDim=%v)\n\thave(skillDim=%v, "+
			"rawObsDim=%v)", d.skillDim, d.rawObsDim, source.skillDim,
			source.rawObsDim)
	}

	err := network.Set(d.predictorTrain, source.predictorTrain)
	if err != nil {
		return fmt.Errorf("initFrom: could not copy skill predictor: %v",
			err)
	}
	if err := network.Set(d.predictor, d.predictorTrain); err != nil {
		return fmt.Errorf("initFrom: could not sync predictors: %v", err)
	}

	return d.base.InitFrom(source.base, initCritic)
}

// MetaSpecs returns the descriptor of the skill meta-variable
func (d *DIAYN) MetaSpecs() []spec.Meta {
	return []spec.Meta{spec.NewMeta(d.skillDim, "skill")}
}

// CurrentMeta returns a copy of the most recently sampled skill
func (d *DIAYN) CurrentMeta() agent.Meta {
	skill := mat.NewVecDense(d.skillDim, nil)
	skill.CopyVec(d.currentMeta)
	return agent.Meta{"skill": skill}
}

// SkillDim returns the number of discrete skills
func (d *DIAYN) SkillDim() int {
	return d.skillDim
}

// Base exposes the underlying actor-critic capability set
func (d *DIAYN) Base() *ddpg.DDPG {
	return d.base
}
