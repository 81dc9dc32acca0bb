// Package schedule implements annealing schedules for exploration
// noise. A schedule is described by a string specification so that it
// can be stored directly in JSON configuration files.
//
// Two forms of specification are supported:
//
//	"0.2"                       constant value
//	"linear(1.0,0.1,500000)"    linear annealing from 1.0 to 0.1 over
//	                            500000 steps, constant afterwards
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"sfneuman.com/goskill/utils/floatutils"
)

// Value evaluates the schedule described by spec at the argument
// timestep. An error is returned if spec is neither a float literal
// nor a linear() specification.
func Value(spec string, step int) (float64, error) {
	if value, err := strconv.ParseFloat(spec, 64); err == nil {
		return value, nil
	}

	body := strings.TrimSpace(spec)
	if !strings.HasPrefix(body, "linear(") || !strings.HasSuffix(body, ")") {
		return 0, fmt.Errorf("value: unknown schedule specification %q", spec)
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "linear("), ")")

	fields := strings.Split(body, ",")
	if len(fields) != 3 {
		return 0, fmt.Errorf("value: linear schedule requires 3 arguments"+
			"\n\twant(3)\n\thave(%v)", len(fields))
	}

	args := make([]float64, 3)
	for i, field := range fields {
		arg, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return 0, fmt.Errorf("value: could not parse schedule argument "+
				"%q: %v", field, err)
		}
		args[i] = arg
	}
	init, final, duration := args[0], args[1], args[2]

	mix := floatutils.Clip(float64(step)/duration, 0.0, 1.0)
	return (1.0-mix)*init + mix*final, nil
}

// MustValue is like Value but panics on a malformed specification. It
// is intended for per-step schedule evaluation after the specification
// has already been validated at construction time.
func MustValue(spec string, step int) float64 {
	value, err := Value(spec, step)
	if err != nil {
		panic(err)
	}
	return value
}

// Validate returns an error if spec is not a legal schedule
// specification.
func Validate(spec string) error {
	_, err := Value(spec, 0)
	return err
}
