package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// HeUConfig describes He uniform initialization: weights are drawn
// from U(-limit, limit) with limit = gain * sqrt(6 / fanIn). Suited to
// rectifier networks, where only the fan-in controls the activation
// variance.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn drawing from rng
func (h HeUConfig) Create(rng *rand.Rand) G.InitWFn {
	return uniformInit(rng, func(fanIn, _ float64) float64 {
		return h.Gain * math.Sqrt(6.0/fanIn)
	})
}

// HeNConfig describes He normal initialization: weights are drawn from
// N(0, stddev^2) with stddev = gain * sqrt(2 / fanIn).
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer.
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn drawing from rng
func (h HeNConfig) Create(rng *rand.Rand) G.InitWFn {
	return normalInit(rng, func(fanIn, _ float64) float64 {
		return h.Gain * math.Sqrt(2.0/fanIn)
	})
}
