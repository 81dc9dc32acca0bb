// Package initwfn implements weight initialization schemes that can be
// JSON serialized into configuration files. Gorgonia's built-in
// initializers reseed themselves from the wall clock on every call, so
// the schemes here sample their own values from an explicitly seeded
// random number generator: two agents built with the same seed and the
// same construction order get bit-identical weights.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU Type = "GlorotU"
	GlorotN Type = "GlorotN"
	HeU     Type = "HeU"
	HeN     Type = "HeN"
	Zeroes  Type = "Zeroes"
)

// InitWFn wraps weight initialization schemes so that they can be JSON
// marshalled and unmarshalled.
type InitWFn struct {
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	return &InitWFn{Type: c.Type(), Config: c}, nil
}

// InitWFn returns the wrapped scheme as a Gorgonia InitWFn drawing
// from a random number generator seeded with seed. All networks
// initialized with one returned InitWFn consume the same stream, so a
// fixed construction order reproduces the same weights across runs.
func (w *InitWFn) InitWFn(seed uint64) G.InitWFn {
	return w.Config.Create(rand.New(rand.NewSource(seed)))
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", i.Type, i.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(GlorotU): reflect.TypeOf(GlorotUConfig{}),
			string(GlorotN): reflect.TypeOf(GlorotNConfig{}),
			string(HeU):     reflect.TypeOf(HeUConfig{}),
			string(HeN):     reflect.TypeOf(HeNConfig{}),
			string(Zeroes):  reflect.TypeOf(ZeroesConfig{}),
		})
	if err != nil {
		return err
	}

	i.Type = typeName
	i.Config = config

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName := m[typeJsonField].(string)
	var value Config
	if ty, found := customTypes[typeName]; found {
		value = reflect.New(ty).Interface().(Config)
	}

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, &value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// Config implements a weight initialization configuration and can be
// used to create the Gorgonia InitWFn it describes.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes,
	// drawing every sampled value from rng
	Create(rng *rand.Rand) G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}

// fans returns the fan-in and fan-out of a weight tensor shape.
// Dimensions beyond the first two form the receptive field and scale
// both fans.
func fans(shape ...int) (fanIn, fanOut float64) {
	switch len(shape) {
	case 0:
		return 1.0, 1.0
	case 1:
		return float64(shape[0]), float64(shape[0])
	default:
		receptive := 1
		for _, size := range shape[2:] {
			receptive *= size
		}
		fanIn = float64(shape[0] * receptive)
		fanOut = float64(shape[1] * receptive)
		return fanIn, fanOut
	}
}

// uniformInit returns a G.InitWFn sampling uniformly from
// [-limit, limit], with the limit computed from the weight shape's
// fans
func uniformInit(rng *rand.Rand,
	limitOf func(fanIn, fanOut float64) float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		if dt != tensor.Float64 {
			panic(fmt.Sprintf("uniformInit: unsupported dtype %v", dt))
		}
		fanIn, fanOut := fans(s...)
		limit := limitOf(fanIn, fanOut)

		backing := make([]float64, tensor.Shape(s).TotalSize())
		for i := range backing {
			backing[i] = rng.Float64()*2.0*limit - limit
		}
		return backing
	}
}

// normalInit returns a G.InitWFn sampling from a zero-mean Gaussian
// whose scale is computed from the weight shape's fans
func normalInit(rng *rand.Rand,
	stddevOf func(fanIn, fanOut float64) float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		if dt != tensor.Float64 {
			panic(fmt.Sprintf("normalInit: unsupported dtype %v", dt))
		}
		fanIn, fanOut := fans(s...)
		stddev := stddevOf(fanIn, fanOut)

		backing := make([]float64, tensor.Shape(s).TotalSize())
		for i := range backing {
			backing[i] = rng.NormFloat64() * stddev
		}
		return backing
	}
}
