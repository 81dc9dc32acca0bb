package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// GlorotUConfig describes Glorot (Xavier) uniform initialization:
// weights are drawn from U(-limit, limit) with
// limit = gain * sqrt(6 / (fanIn + fanOut)).
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn drawing from rng
func (g GlorotUConfig) Create(rng *rand.Rand) G.InitWFn {
	return uniformInit(rng, func(fanIn, fanOut float64) float64 {
		return g.Gain * math.Sqrt(6.0/(fanIn+fanOut))
	})
}

// GlorotNConfig describes Glorot (Xavier) normal initialization:
// weights are drawn from N(0, stddev^2) with
// stddev = gain * sqrt(2 / (fanIn + fanOut)).
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn drawing from rng
func (g GlorotNConfig) Create(rng *rand.Rand) G.InitWFn {
	return normalInit(rng, func(fanIn, fanOut float64) float64 {
		return g.Gain * math.Sqrt(2.0/(fanIn+fanOut))
	})
}
