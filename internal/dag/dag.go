// Package dag holds the pipeline graph: DAGs own units of work, units may
// nest further DAGs, and Flatten compiles the whole tree into the flat list
// of templates and shared resources a workflow engine consumes.
package dag

import (
	"errors"
	"fmt"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/naming"
	"github.com/mattjoyce/dagspec/internal/value"
)

var (
	// ErrCycle is returned when a DAG is reachable from itself through nested units.
	ErrCycle = errors.New("dag cycle")
	// ErrDuplicateTask is returned when two units of one DAG share a name.
	ErrDuplicateTask = errors.New("duplicate task name")
	// ErrDuplicateTemplate is returned when two templates in one build share a name.
	ErrDuplicateTemplate = errors.New("duplicate template name")
)

// Unit is a node of a DAG. A unit either produces its own template or
// delegates to a nested DAG.
type Unit interface {
	Name() string
	// Nested returns the DAG the unit runs, or nil.
	Nested() *DAG
	IsExit() bool
	SetExit(exit bool)
	// BuildTemplate returns nil when the unit delegates to a nested DAG.
	BuildTemplate() (*model.Template, error)
	BuildDAGTask() (*model.DAGTask, error)
	VolumeClaimTemplates() []model.PersistentVolumeClaim
	Volumes() []model.Volume
}

// DAG is a named pipeline with ordered inputs, outputs and units.
type DAG struct {
	Name     string
	Inputs   []value.Value
	Outputs  []value.Value
	Target   string
	FailFast *bool

	tasks []Unit
	open  int
}

// Option configures a DAG at construction.
type Option func(*DAG) error

// WithInputs declares the DAG's inputs.
func WithInputs(in value.Input) Option {
	return func(d *DAG) error {
		vals, err := value.Normalize(in)
		if err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		d.Inputs = vals
		return nil
	}
}

// WithOutputs declares the DAG's outputs.
func WithOutputs(out ...value.Value) Option {
	return func(d *DAG) error {
		vals, err := value.Normalize(value.Values(out))
		if err != nil {
			return fmt.Errorf("outputs: %w", err)
		}
		d.Outputs = append(d.Outputs, vals...)
		return nil
	}
}

// WithTasks adds units up front.
func WithTasks(units ...Unit) Option {
	return func(d *DAG) error {
		d.AddTasks(units...)
		return nil
	}
}

// WithTarget restricts execution to the named tasks and their dependencies.
func WithTarget(target string) Option {
	return func(d *DAG) error {
		d.Target = target
		return nil
	}
}

// WithFailFast sets the DAG's fail-fast behaviour.
func WithFailFast(failFast bool) Option {
	return func(d *DAG) error {
		d.FailFast = &failFast
		return nil
	}
}

// New creates a DAG with a validated name.
func New(name string, opts ...Option) (*DAG, error) {
	if err := naming.Validate(name); err != nil {
		return nil, fmt.Errorf("dag: %w", err)
	}
	d := &DAG{Name: name, Inputs: []value.Value{}}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("dag %q: %w", name, err)
		}
	}
	return d, nil
}

// AddTask appends a unit.
func (d *DAG) AddTask(u Unit) {
	d.tasks = append(d.tasks, u)
}

// AddTasks appends units in order.
func (d *DAG) AddTasks(units ...Unit) {
	d.tasks = append(d.tasks, units...)
}

// Tasks returns the owned units in order.
func (d *DAG) Tasks() []Unit {
	return append([]Unit(nil), d.tasks...)
}

// Owns reports whether u is one of the DAG's units.
func (d *DAG) Owns(u Unit) bool {
	for _, t := range d.tasks {
		if t == u {
			return true
		}
	}
	return false
}

// InContext reports whether the DAG is currently open in a Session.
func (d *DAG) InContext() bool {
	return d.open > 0
}

// GetParameter returns a reference to one of the DAG's declared outputs,
// scoped to the template inputs.
func (d *DAG) GetParameter(name string) (value.Parameter, error) {
	if _, ok := value.Find(d.Outputs, name); !ok {
		return value.Parameter{}, fmt.Errorf("dag %q has no output %q: %w", d.Name, name, value.ErrLookup)
	}
	return value.Parameter{
		Name:  name,
		Value: fmt.Sprintf("{{inputs.parameters.%s}}", name),
	}, nil
}

// Template compiles this DAG level only: its inputs, outputs and the
// dependency descriptors of its non-exit units.
func (d *DAG) Template() (model.Template, error) {
	inputs, err := value.BuildInputs(d.Inputs)
	if err != nil {
		return model.Template{}, fmt.Errorf("dag %q inputs: %w", d.Name, err)
	}
	outputs, err := value.BuildOutputs(d.Outputs)
	if err != nil {
		return model.Template{}, fmt.Errorf("dag %q outputs: %w", d.Name, err)
	}

	tasks := make([]model.DAGTask, 0, len(d.tasks))
	seen := make(map[string]int, len(d.tasks))
	for i, u := range d.tasks {
		if prev, ok := seen[u.Name()]; ok {
			return model.Template{}, fmt.Errorf("dag %q tasks[%d] %q (first at tasks[%d]): %w",
				d.Name, i, u.Name(), prev, ErrDuplicateTask)
		}
		seen[u.Name()] = i
		if u.IsExit() {
			continue
		}
		t, err := u.BuildDAGTask()
		if err != nil {
			return model.Template{}, fmt.Errorf("dag %q tasks[%d]: %w", d.Name, i, err)
		}
		tasks = append(tasks, *t)
	}

	return model.Template{
		Name:    d.Name,
		Inputs:  inputs,
		Outputs: outputs,
		DAG: &model.DAGTemplate{
			Tasks:    tasks,
			Target:   d.Target,
			FailFast: d.FailFast,
		},
	}, nil
}

// Build returns every template reachable from d.
func (d *DAG) Build() ([]model.Template, error) {
	g, err := Flatten(d)
	if err != nil {
		return nil, err
	}
	return g.Templates, nil
}

// Wrapper is a unit with no template of its own that runs a DAG. It lets a
// bare DAG stand where a unit is expected, e.g. as an exit hook.
type Wrapper struct {
	name string
	dag  *DAG
	exit bool
}

// Wrap returns a unit named name that runs d.
func Wrap(name string, d *DAG) *Wrapper {
	return &Wrapper{name: name, dag: d}
}

func (w *Wrapper) Name() string                                        { return w.name }
func (w *Wrapper) Nested() *DAG                                        { return w.dag }
func (w *Wrapper) IsExit() bool                                        { return w.exit }
func (w *Wrapper) SetExit(exit bool)                                   { w.exit = exit }
func (w *Wrapper) BuildTemplate() (*model.Template, error)             { return nil, nil }
func (w *Wrapper) VolumeClaimTemplates() []model.PersistentVolumeClaim { return nil }
func (w *Wrapper) Volumes() []model.Volume                             { return nil }

func (w *Wrapper) BuildDAGTask() (*model.DAGTask, error) {
	return &model.DAGTask{Name: w.name, Template: w.dag.Name}, nil
}
