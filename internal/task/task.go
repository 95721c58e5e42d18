// Package task provides the unit of work placed in a DAG: a container or
// script template, or a call into a nested DAG, together with the
// dependency and looping settings of its DAG task entry.
package task

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/naming"
	"github.com/mattjoyce/dagspec/internal/value"
	"github.com/mattjoyce/dagspec/internal/volume"
)

var (
	// ErrNoImage is returned for a task that would produce a template without an image.
	ErrNoImage = errors.New("image required")
	// ErrConflict is returned when mutually exclusive settings are combined.
	ErrConflict = errors.New("conflicting settings")
	// ErrDependency is returned when a dependency is declared twice.
	ErrDependency = errors.New("duplicate dependency")
	// ErrNotLooped is returned by loop-aggregate conditions on a task without a loop.
	ErrNotLooped = errors.New("task has no with_param or with_sequence")
)

// Task is a unit of work. It implements dag.Unit.
type Task struct {
	name string

	image           string
	imagePullPolicy string
	command         []string
	args            []string
	source          string
	workingDir      string
	env             []model.EnvVar
	resources       *model.ResourceRequirements

	inputs    []value.Value
	outputs   []value.Value
	arguments []value.Value
	volumes   []volume.Volume

	dag         *dag.DAG
	templateRef *model.TemplateRef

	depends      string
	dependencies []string
	when         string
	withItems    []any
	withParam    string
	withSequence *model.Sequence
	continueOn   *model.ContinueOn
	onExit       string
	hooks        map[string]model.LifecycleHook

	retry          *model.RetryStrategy
	timeout        string
	activeDeadline *int64
	nodeSelector   map[string]string
	tolerations    []model.Toleration
	serviceAccount string
	labels         map[string]string
	annotations    map[string]string
	daemon         *bool

	exit bool
}

// Option configures a Task.
type Option func(*Task) error

// New creates a task and registers it into the session's open DAG, if any.
// s may be nil.
func New(s *dag.Session, name string, opts ...Option) (*Task, error) {
	if err := naming.Validate(name); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	t := &Task{name: name}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("task %q: %w", name, err)
	}
	s.Register(t)
	return t, nil
}

func (t *Task) validate() error {
	delegates := t.dag != nil || t.templateRef != nil
	if t.dag != nil && t.templateRef != nil {
		return fmt.Errorf("dag and template_ref: %w", ErrConflict)
	}
	if delegates && (t.image != "" || t.source != "" || len(t.command) > 0) {
		return fmt.Errorf("container settings on a delegating task: %w", ErrConflict)
	}
	if !delegates && t.image == "" {
		return ErrNoImage
	}
	if n := loopCount(t); n > 1 {
		return fmt.Errorf("with_items, with_param and with_sequence: %w", ErrConflict)
	}
	return volume.Validate(t.volumes)
}

func loopCount(t *Task) int {
	n := 0
	if len(t.withItems) > 0 {
		n++
	}
	if t.withParam != "" {
		n++
	}
	if t.withSequence != nil {
		n++
	}
	return n
}

// WithImage sets the container image.
func WithImage(image string) Option {
	return func(t *Task) error {
		t.image = image
		return nil
	}
}

// WithImagePullPolicy sets the image pull policy.
func WithImagePullPolicy(policy string) Option {
	return func(t *Task) error {
		switch policy {
		case "", "Always", "IfNotPresent", "Never":
			t.imagePullPolicy = policy
			return nil
		}
		return fmt.Errorf("image pull policy %q: %w", policy, value.ErrShape)
	}
}

// WithCommand sets the container entrypoint.
func WithCommand(cmd ...string) Option {
	return func(t *Task) error {
		t.command = append([]string(nil), cmd...)
		return nil
	}
}

// WithArgs sets the container arguments.
func WithArgs(args ...string) Option {
	return func(t *Task) error {
		t.args = append([]string(nil), args...)
		return nil
	}
}

// WithSource turns the task into a script template running src.
func WithSource(src string) Option {
	return func(t *Task) error {
		t.source = src
		return nil
	}
}

// WithWorkingDir sets the container working directory.
func WithWorkingDir(dir string) Option {
	return func(t *Task) error {
		t.workingDir = dir
		return nil
	}
}

// WithEnv adds an environment variable. Non-string values are JSON encoded.
func WithEnv(name string, v any) Option {
	return func(t *Task) error {
		s, err := value.FormatPayload(v)
		if err != nil {
			return fmt.Errorf("env %q: %w", name, err)
		}
		ev := model.EnvVar{Name: name}
		if s != nil {
			ev.Value = *s
		}
		t.env = append(t.env, ev)
		return nil
	}
}

// WithResources sets container requests; limits mirror requests.
func WithResources(cpu, memory string) Option {
	return func(t *Task) error {
		req := map[string]string{}
		if cpu != "" {
			req["cpu"] = cpu
		}
		if memory != "" {
			req["memory"] = memory
		}
		if len(req) == 0 {
			return nil
		}
		lim := make(map[string]string, len(req))
		for k, v := range req {
			lim[k] = v
		}
		t.resources = &model.ResourceRequirements{Requests: req, Limits: lim}
		return nil
	}
}

// WithInputs declares the template inputs.
func WithInputs(in value.Input) Option {
	return func(t *Task) error {
		vals, err := value.Normalize(in)
		if err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		t.inputs = append(t.inputs, vals...)
		return nil
	}
}

// WithOutputs declares the template outputs.
func WithOutputs(out ...value.Value) Option {
	return func(t *Task) error {
		vals, err := value.Normalize(value.Values(out))
		if err != nil {
			return fmt.Errorf("outputs: %w", err)
		}
		t.outputs = append(t.outputs, vals...)
		return nil
	}
}

// WithArguments binds values passed to the template by the DAG task.
func WithArguments(in value.Input) Option {
	return func(t *Task) error {
		vals, err := value.Normalize(in)
		if err != nil {
			return fmt.Errorf("arguments: %w", err)
		}
		t.arguments = append(t.arguments, vals...)
		return nil
	}
}

// WithVolumes attaches volumes, mounted into the container.
func WithVolumes(vols ...volume.Volume) Option {
	return func(t *Task) error {
		t.volumes = append(t.volumes, vols...)
		return nil
	}
}

// WithDAG makes the task run d instead of its own template.
func WithDAG(d *dag.DAG) Option {
	return func(t *Task) error {
		t.dag = d
		return nil
	}
}

// WithTemplateRef makes the task run a template of a stored WorkflowTemplate.
func WithTemplateRef(name, template string, clusterScope bool) Option {
	return func(t *Task) error {
		t.templateRef = &model.TemplateRef{Name: name, Template: template, ClusterScope: clusterScope}
		return nil
	}
}

// WithDepends sets the raw depends expression.
func WithDepends(expr string) Option {
	return func(t *Task) error {
		t.depends = expr
		return nil
	}
}

// WithDependencies sets the plain dependency list.
func WithDependencies(names ...string) Option {
	return func(t *Task) error {
		t.dependencies = append([]string(nil), names...)
		return nil
	}
}

// WithWhen sets the when expression.
func WithWhen(expr string) Option {
	return func(t *Task) error {
		t.when = expr
		return nil
	}
}

// WithItems fans the task out over a literal list.
func WithItems(items ...any) Option {
	return func(t *Task) error {
		t.withItems = append([]any(nil), items...)
		return nil
	}
}

// WithParam fans the task out over a JSON list produced at runtime.
func WithParam(expr string) Option {
	return func(t *Task) error {
		t.withParam = expr
		return nil
	}
}

// WithSequence fans the task out over a numeric sequence.
func WithSequence(seq *model.Sequence) Option {
	return func(t *Task) error {
		t.withSequence = seq
		return nil
	}
}

// WithContinueOn lets the DAG proceed past this task's failures or errors.
func WithContinueOn(failed, errored bool) Option {
	return func(t *Task) error {
		t.continueOn = &model.ContinueOn{Failed: failed, Error: errored}
		return nil
	}
}

// WithOnExit runs the named template when this task finishes.
func WithOnExit(template string) Option {
	return func(t *Task) error {
		t.onExit = template
		return nil
	}
}

// WithHook adds a lifecycle hook.
func WithHook(name string, hook model.LifecycleHook) Option {
	return func(t *Task) error {
		if t.hooks == nil {
			t.hooks = map[string]model.LifecycleHook{}
		}
		t.hooks[name] = hook
		return nil
	}
}

// WithRetry sets the engine-side retry strategy.
func WithRetry(rs model.RetryStrategy) Option {
	return func(t *Task) error {
		t.retry = &rs
		return nil
	}
}

// WithRetryLimit is WithRetry with only a limit.
func WithRetryLimit(limit int) Option {
	return WithRetry(model.RetryStrategy{Limit: strconv.Itoa(limit)})
}

// WithTimeout sets the template timeout, e.g. "10m".
func WithTimeout(d string) Option {
	return func(t *Task) error {
		t.timeout = d
		return nil
	}
}

// WithActiveDeadline sets the template deadline in seconds.
func WithActiveDeadline(seconds int64) Option {
	return func(t *Task) error {
		t.activeDeadline = &seconds
		return nil
	}
}

// WithNodeSelector constrains scheduling.
func WithNodeSelector(sel map[string]string) Option {
	return func(t *Task) error {
		t.nodeSelector = sel
		return nil
	}
}

// WithTolerations sets pod tolerations.
func WithTolerations(tols ...model.Toleration) Option {
	return func(t *Task) error {
		t.tolerations = append(t.tolerations, tols...)
		return nil
	}
}

// WithServiceAccount sets the pod service account.
func WithServiceAccount(name string) Option {
	return func(t *Task) error {
		t.serviceAccount = name
		return nil
	}
}

// WithLabels sets pod labels.
func WithLabels(labels map[string]string) Option {
	return func(t *Task) error {
		t.labels = labels
		return nil
	}
}

// WithAnnotations sets pod annotations.
func WithAnnotations(annotations map[string]string) Option {
	return func(t *Task) error {
		t.annotations = annotations
		return nil
	}
}

// WithDaemon keeps the task running in the background for the DAG's lifetime.
func WithDaemon(daemon bool) Option {
	return func(t *Task) error {
		t.daemon = &daemon
		return nil
	}
}

func (t *Task) Name() string      { return t.name }
func (t *Task) Nested() *dag.DAG  { return t.dag }
func (t *Task) IsExit() bool      { return t.exit }
func (t *Task) SetExit(exit bool) { t.exit = exit }
func (t *Task) Image() string     { return t.image }
func (t *Task) Depends() string   { return t.depends }
func (t *Task) When() string      { return t.when }
func (t *Task) Outputs() []value.Value {
	return append([]value.Value(nil), t.outputs...)
}
