// Package solver puts Gorgonia's gradient-descent solvers behind
// JSON-round-trippable configurations so that experiment files can
// name the optimizer and its hyperparameters.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type names a family of solver that the package can construct
type Type string

// Solver families known to the JSON registry
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
)

// Config describes the hyperparameters of one solver family and
// builds the Gorgonia solver they denote.
type Config interface {
	Create() G.Solver

	// ValidType reports whether the Config can build a solver of the
	// given Type
	ValidType(Type) bool
}

// Solver pairs a live Gorgonia solver with the serializable Config
// that produced it. Marshalling writes the Type and Config only; the
// G.Solver is rebuilt on unmarshal.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver builds a Solver after checking that t and c agree
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}

	s := Solver{Type: t, Config: c}
	s.Solver = s.Config.Create()

	return &s, nil
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(Vanilla): reflect.TypeOf(VanillaConfig{}),
			string(Adam):    reflect.TypeOf(AdamConfig{}),
		})
	if err != nil {
		return err
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig recovers the concrete Config type named by the
// Type field, then unmarshals the Config field into it.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	registry map[string]reflect.Type) (Config, Type, error) {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, "", err
	}

	typeName := fields[typeJsonField].(string)
	var config Config
	if concrete, found := registry[typeName]; found {
		config = reflect.New(concrete).Interface().(Config)
	}

	configBytes, err := json.Marshal(fields[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(configBytes, &config); err != nil {
		return nil, "", err
	}

	return config, Type(typeName), nil
}
