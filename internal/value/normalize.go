package value

import (
	"fmt"
	"sort"

	"github.com/mattjoyce/dagspec/internal/model"
)

// Input is a loosely shaped input declaration. It is one of Mapping, Values
// or Mixed.
type Input interface {
	input()
}

// Mapping declares one Parameter per entry: key is the name, value the payload.
type Mapping map[string]any

// Values is a list of already-typed values.
type Values []Value

// Mixed is a list whose elements are Value, Mapping or map[string]any.
type Mixed []any

func (Mapping) input() {}
func (Values) input()  {}
func (Mixed) input()   {}

// Normalize expands in into an ordered list of values. Mappings expand in
// ascending key order; typed values keep their position. A nil input yields
// an empty list. Duplicate names are kept. Pointers to Parameter or Artifact
// are dereferenced; nil elements are rejected.
func Normalize(in Input) ([]Value, error) {
	out := []Value{}
	switch v := in.(type) {
	case nil:
		return out, nil
	case Mapping:
		return appendMapping(out, v), nil
	case Values:
		for i, el := range v {
			val, err := concrete(el)
			if err != nil {
				return nil, fmt.Errorf("inputs[%d]: %w", i, err)
			}
			out = append(out, val)
		}
		return out, nil
	case Mixed:
		for i, el := range v {
			switch e := el.(type) {
			case Value:
				val, err := concrete(e)
				if err != nil {
					return nil, fmt.Errorf("inputs[%d]: %w", i, err)
				}
				out = append(out, val)
			case Mapping:
				out = appendMapping(out, e)
			case map[string]any:
				out = appendMapping(out, e)
			default:
				return nil, fmt.Errorf("inputs[%d]: %w: %T (want parameter, artifact or mapping)", i, ErrShape, el)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("inputs: %w: %T", ErrShape, in)
}

func concrete(v Value) (Value, error) {
	switch x := v.(type) {
	case Parameter, Artifact:
		return x, nil
	case *Parameter:
		if x != nil {
			return *x, nil
		}
	case *Artifact:
		if x != nil {
			return *x, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrShape, v)
}

func appendMapping(out []Value, m map[string]any) []Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, Parameter{Name: k, Value: m[k]})
	}
	return out
}

// Split renders values into engine parameters and artifacts. render picks
// the parameter form (input, argument or output).
func Split(values []Value, render func(Parameter) (model.Parameter, error)) ([]model.Parameter, []model.Artifact, error) {
	var params []model.Parameter
	var artifacts []model.Artifact
	for _, v := range values {
		switch x := v.(type) {
		case Parameter:
			p, err := render(x)
			if err != nil {
				return nil, nil, err
			}
			params = append(params, p)
		case Artifact:
			artifacts = append(artifacts, x.Model())
		default:
			c, err := concrete(v)
			if err != nil {
				return nil, nil, err
			}
			ps, as, err := Split([]Value{c}, render)
			if err != nil {
				return nil, nil, err
			}
			params = append(params, ps...)
			artifacts = append(artifacts, as...)
		}
	}
	return params, artifacts, nil
}

// BuildInputs renders values as template inputs, or nil when empty.
func BuildInputs(values []Value) (*model.Inputs, error) {
	params, artifacts, err := Split(values, Parameter.AsInput)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 && len(artifacts) == 0 {
		return nil, nil
	}
	return &model.Inputs{Parameters: params, Artifacts: artifacts}, nil
}

// BuildOutputs renders values as template outputs, or nil when empty.
func BuildOutputs(values []Value) (*model.Outputs, error) {
	params, artifacts, err := Split(values, Parameter.AsOutput)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 && len(artifacts) == 0 {
		return nil, nil
	}
	return &model.Outputs{Parameters: params, Artifacts: artifacts}, nil
}

// BuildArguments renders values as argument bindings, or nil when empty.
func BuildArguments(values []Value) (*model.Arguments, error) {
	params, artifacts, err := Split(values, Parameter.AsArgument)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 && len(artifacts) == 0 {
		return nil, nil
	}
	return &model.Arguments{Parameters: params, Artifacts: artifacts}, nil
}
