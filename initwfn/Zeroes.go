package initwfn

import (
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// ZeroesConfig describes all-zero weight initialization
type ZeroesConfig struct{}

// NewZeroes returns a new Zeroes weight initializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Zero initialization samples nothing, so the generator is
// unused.
func (z ZeroesConfig) Create(*rand.Rand) G.InitWFn {
	return G.Zeroes()
}
