package strategy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/spf13/cast"
)

// Defaults builds a parameter set holding the default value of every definition.
func Defaults(definitions []core.Parameter) core.ParameterSet {
	set := make(core.ParameterSet, len(definitions))
	for _, def := range definitions {
		set[def.Name] = def.Default
	}
	return set
}

// ParseAssignments turns "name=value" strings into a parameter set of raw strings.
func ParseAssignments(assignments []string) (core.ParameterSet, error) {
	set := make(core.ParameterSet, len(assignments))
	for _, assignment := range assignments {
		name, value, ok := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", core.ErrInvalidParameter, assignment)
		}
		set[name] = strings.TrimSpace(value)
	}
	return set, nil
}

// Validate checks values against the definitions and returns a copy with every value
// coerced to the Go type of its parameter. Names without a definition are rejected.
func Validate(definitions []core.Parameter, values core.ParameterSet) (core.ParameterSet, error) {
	byName := make(map[string]core.Parameter, len(definitions))
	for _, def := range definitions {
		byName[def.Name] = def
	}

	out := make(core.ParameterSet, len(values))
	var errs []error

	for name, raw := range values {
		def, ok := byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown parameter %q", core.ErrInvalidParameter, name))
			continue
		}

		value, err := coerce(def, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", core.ErrInvalidParameter, name, err))
			continue
		}
		out[name] = value
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func coerce(def core.Parameter, raw any) (any, error) {
	switch def.Type {
	case core.TypeInt:
		v, err := cast.ToIntE(raw)
		if err != nil {
			return nil, err
		}
		return v, checkRange(def, float64(v))

	case core.TypeFloat:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, err
		}
		return v, checkRange(def, v)

	case core.TypeBool:
		return cast.ToBoolE(raw)

	case core.TypeCategorical:
		v := cast.ToString(raw)
		options := make([]string, 0, len(def.Options))
		for _, option := range def.Options {
			options = append(options, cast.ToString(option))
		}
		if !slices.Contains(options, v) {
			return nil, fmt.Errorf("%q is not one of %v", v, options)
		}
		return v, nil
	}

	return cast.ToStringE(raw)
}

func checkRange(def core.Parameter, v float64) error {
	if def.Min != nil && v < cast.ToFloat64(def.Min) {
		return fmt.Errorf("%v is below minimum %v", v, def.Min)
	}
	if def.Max != nil && v > cast.ToFloat64(def.Max) {
		return fmt.Errorf("%v is above maximum %v", v, def.Max)
	}
	return nil
}

// ParamReader copies values from a parameter set into typed fields. Names missing
// from the set leave the destination untouched; conversion failures are collected
// and reported by Err.
type ParamReader struct {
	params core.ParameterSet
	errs   []error
}

// ReadParams starts reading params into strategy fields
func ReadParams(params core.ParameterSet) *ParamReader {
	return &ParamReader{params: params}
}

// Int stores params[name] in dst when present
func (r *ParamReader) Int(name string, dst *int) *ParamReader {
	if raw, ok := r.params[name]; ok {
		v, err := cast.ToIntE(raw)
		r.assign(name, err, func() { *dst = v })
	}
	return r
}

// Float stores params[name] in dst when present
func (r *ParamReader) Float(name string, dst *float64) *ParamReader {
	if raw, ok := r.params[name]; ok {
		v, err := cast.ToFloat64E(raw)
		r.assign(name, err, func() { *dst = v })
	}
	return r
}

// Bool stores params[name] in dst when present
func (r *ParamReader) Bool(name string, dst *bool) *ParamReader {
	if raw, ok := r.params[name]; ok {
		v, err := cast.ToBoolE(raw)
		r.assign(name, err, func() { *dst = v })
	}
	return r
}

// String stores params[name] in dst when present
func (r *ParamReader) String(name string, dst *string) *ParamReader {
	if raw, ok := r.params[name]; ok {
		v, err := cast.ToStringE(raw)
		r.assign(name, err, func() { *dst = v })
	}
	return r
}

func (r *ParamReader) assign(name string, err error, set func()) {
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%w: %s: %v", core.ErrInvalidParameter, name, err))
		return
	}
	set()
}

// Err returns every conversion failure joined, or nil.
func (r *ParamReader) Err() error {
	return errors.Join(r.errs...)
}
