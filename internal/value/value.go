// Package value defines the named parameters and artifacts that flow between
// pipeline stages, and the normalizer that turns loosely shaped input
// declarations into an ordered list of them.
package value

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattjoyce/dagspec/internal/model"
)

var (
	// ErrLookup is returned when a referenced input or output was never declared.
	ErrLookup = errors.New("lookup failed")
	// ErrShape is returned when a convenience-typed field gets an unsupported shape.
	ErrShape = errors.New("unsupported shape")
)

// Value is a Parameter or an Artifact. Identity is the name.
type Value interface {
	ValueName() string
	isValue()
}

// Parameter is a named scalar value. Payload fields hold arbitrary Go values;
// they are rendered to strings when the engine model is built.
type Parameter struct {
	Name        string
	Value       any
	Default     any
	Description string
	Enum        []string
	GlobalName  string
	ValueFrom   *model.ValueFrom
}

func (p Parameter) ValueName() string { return p.Name }
func (Parameter) isValue()            {}

// Model renders the full engine parameter.
func (p Parameter) Model() (model.Parameter, error) {
	val, err := FormatPayload(p.Value)
	if err != nil {
		return model.Parameter{}, fmt.Errorf("parameter %q value: %w", p.Name, err)
	}
	def, err := FormatPayload(p.Default)
	if err != nil {
		return model.Parameter{}, fmt.Errorf("parameter %q default: %w", p.Name, err)
	}
	return model.Parameter{
		Name:        p.Name,
		Value:       val,
		Default:     def,
		Description: p.Description,
		Enum:        append([]string(nil), p.Enum...),
		GlobalName:  p.GlobalName,
		ValueFrom:   p.ValueFrom,
	}, nil
}

// AsInput renders the parameter as a template input declaration.
func (p Parameter) AsInput() (model.Parameter, error) {
	m, err := p.Model()
	if err != nil {
		return model.Parameter{}, err
	}
	m.ValueFrom = nil
	m.GlobalName = ""
	return m, nil
}

// AsArgument renders the parameter as an argument binding.
func (p Parameter) AsArgument() (model.Parameter, error) {
	val, err := FormatPayload(p.Value)
	if err != nil {
		return model.Parameter{}, fmt.Errorf("parameter %q value: %w", p.Name, err)
	}
	return model.Parameter{Name: p.Name, Value: val}, nil
}

// AsOutput renders the parameter as a template output declaration.
func (p Parameter) AsOutput() (model.Parameter, error) {
	m, err := p.Model()
	if err != nil {
		return model.Parameter{}, err
	}
	m.Default = nil
	m.Enum = nil
	return m, nil
}

// Artifact is a named file artifact with an optional location.
type Artifact struct {
	Name           string
	Path           string
	From           string
	FromExpression string
	GlobalName     string
	Optional       bool
	Mode           *int32
	S3             *model.S3Artifact
	HTTP           *model.HTTPArtifact
	Raw            *model.RawArtifact
}

func (a Artifact) ValueName() string { return a.Name }
func (Artifact) isValue()            {}

// Model renders the engine artifact.
func (a Artifact) Model() model.Artifact {
	return model.Artifact{
		Name:           a.Name,
		Path:           a.Path,
		From:           a.From,
		FromExpression: a.FromExpression,
		GlobalName:     a.GlobalName,
		Optional:       a.Optional,
		Mode:           a.Mode,
		S3:             a.S3,
		HTTP:           a.HTTP,
		Raw:            a.Raw,
	}
}

// FormatPayload renders a payload the way the engine expects parameter
// values: strings verbatim, nil as unset, everything else as compact JSON.
func FormatPayload(v any) (*string, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &p, nil
	case *string:
		return p, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s := string(b)
	return &s, nil
}

// Find returns the value named name.
func Find(values []Value, name string) (Value, bool) {
	for _, v := range values {
		if v.ValueName() == name {
			return v, true
		}
	}
	return nil, false
}

// FindParameter returns the parameter named name, ignoring artifacts.
func FindParameter(values []Value, name string) (Parameter, bool) {
	for _, v := range values {
		if p, ok := v.(Parameter); ok && p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
