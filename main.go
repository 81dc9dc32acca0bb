package main

import (
	"fmt"
	"math"
	"time"

	"github.com/samuelfneumann/progressbar"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"sfneuman.com/goskill/agent/ddpg"
	"sfneuman.com/goskill/agent/diayn"
	"sfneuman.com/goskill/experiment/tracker"
	"sfneuman.com/goskill/expreplay"
	"sfneuman.com/goskill/initwfn"
	"sfneuman.com/goskill/spec"
	"sfneuman.com/goskill/timestep"
)

// A demonstration run of the DIAYN agent on a synthetic linear system:
// the state drifts toward the chosen action under Gaussian
// perturbation and reward penalizes distance from the origin. The run
// tracks the controller loss and prints its trailing values.
func main() {
	const (
		rawObsDim = 8
		actionDim = 2
		skillDim  = 8
		numSteps  = 5_000
	)
	var seed int64 = 192382

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		panic(fmt.Sprintf("could not create weight initializer: %v", err))
	}

	config := diayn.Config{
		Config: ddpg.Config{
			HiddenDim:        256,
			TrunkDim:         64,
			Lr:               1e-4,
			BatchSize:        64,
			CriticTargetTau:  0.01,
			StddevSchedule:   "linear(1.0,0.1,2000)",
			StddevClip:       0.3,
			NumExplSteps:     100,
			UpdateEverySteps: 2,
			UpdateEncoder:    false,
			InitWFn:          init,
			RecordMetrics:    true,
		},
		SkillDim: skillDim,
	}

	obsShape := mat.NewVecDense(rawObsDim, nil)
	actionShape := mat.NewVecDense(actionDim, nil)
	obsBound := constantVec(rawObsDim, math.Inf(1))
	actionBound := constantVec(actionDim, 1.0)

	obsSpec := spec.NewEnvironment(obsShape, spec.Observation,
		negate(obsBound), obsBound, spec.Continuous)
	actionSpec := spec.NewEnvironment(actionShape, spec.Action,
		negate(actionBound), actionBound, spec.Continuous)

	skillAgent, err := config.CreateAgent(obsSpec, actionSpec, seed)
	if err != nil {
		panic(fmt.Sprintf("could not create agent: %v", err))
	}

	replayConfig := expreplay.Config{
		SampleMethod:      expreplay.Uniform,
		SampleSize:        config.BatchSize,
		MaxReplayCapacity: 10_000,
		MinReplayCapacity: 256,
	}
	replay, err := replayConfig.Create(rawObsDim, actionDim, skillDim, seed)
	if err != nil {
		panic(fmt.Sprintf("could not create replay buffer: %v", err))
	}

	lossTracker := tracker.NewMetric("diayn_loss", "./diayn_loss.bin")

	drift := distuv.Normal{Mu: 0.0, Sigma: 0.05,
		Src: rand.NewSource(uint64(seed))}

	bar := progressbar.New(80, numSteps, time.Second, false)
	bar.Display()

	current := timestep.New(timestep.First, 0.0, 0.99,
		mat.NewVecDense(rawObsDim, nil), 0)
	for step := 0; step < numSteps; step++ {
		obs := current.Observation
		action := skillAgent.SelectAction(obs, nil, step, false)
		skill := skillAgent.CurrentMeta()["skill"]

		nextObs := mat.NewVecDense(rawObsDim, nil)
		for i := 0; i < rawObsDim; i++ {
			next := 0.95 * obs.AtVec(i)
			if i < actionDim {
				next += 0.1 * action.AtVec(i)
			}
			nextObs.SetVec(i, next+drift.Rand())
		}

		var reward float64
		for i := 0; i < rawObsDim; i++ {
			reward -= nextObs.AtVec(i) * nextObs.AtVec(i)
		}
		reward /= rawObsDim

		nextStep := timestep.New(timestep.Mid, reward, 0.99, nextObs,
			step+1)
		err := replay.Add(timestep.NewTransition(current, action, nextStep,
			skill))
		if err != nil {
			panic(fmt.Sprintf("could not store transition: %v", err))
		}

		metrics, err := skillAgent.Update(replay, step)
		if err != nil {
			panic(fmt.Sprintf("could not update agent: %v", err))
		}
		lossTracker.Track(step, metrics)

		current = nextStep
		bar.Increment()
	}
	bar.Close()

	lossTracker.Save()

	data := tracker.LoadData("./diayn_loss.bin")
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)
}

func constantVec(n int, value float64) *mat.VecDense {
	vec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		vec.SetVec(i, value)
	}
	return vec
}

func negate(v *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		out.SetVec(i, -v.AtVec(i))
	}
	return out
}
