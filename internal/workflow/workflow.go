// Package workflow assembles a root DAG and workflow-wide settings into the
// engine's Workflow object, and drives the submitted workflow through a
// Service.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/naming"
	"github.com/mattjoyce/dagspec/internal/value"
)

var (
	// ErrInContext is returned by transport operations while the root DAG is
	// open in an authoring session.
	ErrInContext = errors.New("workflow is open in an authoring session")
	// ErrNameRequired is returned by operations that address a workflow by name
	// when only a generate name is set.
	ErrNameRequired = errors.New("workflow name required")
	// ErrNoService is returned by transport operations without a Service.
	ErrNoService = errors.New("no workflow service configured")
)

// Workflow is the authoring object for one engine Workflow.
type Workflow struct {
	Name         string
	GenerateName string
	APIVersion   string
	Namespace    string
	Labels       map[string]string
	Annotations  map[string]string

	DAG    *dag.DAG
	Inputs []value.Value

	ActiveDeadlineSeconds        *int64
	Affinity                     map[string]any
	ArchiveLogs                  *bool
	ArtifactRepositoryRef        *model.ArtifactRepositoryRef
	AutomountServiceAccountToken *bool
	DNSPolicy                    string
	Hooks                        map[string]model.LifecycleHook
	HostNetwork                  *bool
	ImagePullSecrets             []string
	Metrics                      *model.Metrics
	NodeSelector                 map[string]string
	Parallelism                  *int64
	PodGC                        *model.PodGC
	PodMetadata                  *model.Metadata
	PodPriorityClassName         string
	PodSpecPatch                 string
	Priority                     *int32
	RetryStrategy                *model.RetryStrategy
	SchedulerName                string
	SecurityContext              *model.PodSecurityContext
	ServiceAccountName           string
	Shutdown                     string
	SuspendOnSubmit              *bool
	Synchronization              *model.Synchronization
	TemplateDefaults             *model.Template
	Tolerations                  []model.Toleration
	TTLStrategy                  *model.TTLStrategy
	VolumeClaimGC                *model.VolumeClaimGC
	WorkflowTemplateRef          *model.WorkflowTemplateRef

	Service Service

	onExit string
}

// Option configures a Workflow at construction.
type Option func(*Workflow) error

// New creates a workflow. At least one of name and generateName must be set.
// The root DAG is named after the workflow unless WithDAG supplies one.
func New(name, generateName string, opts ...Option) (*Workflow, error) {
	if err := naming.Resolve(name, generateName); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	w := &Workflow{
		Name:         name,
		GenerateName: generateName,
		APIVersion:   model.DefaultAPIVersion,
		Inputs:       []value.Value{},
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", w.displayName(), err)
		}
	}
	if w.DAG == nil {
		d, err := dag.New(w.rootDAGName())
		if err != nil {
			return nil, fmt.Errorf("workflow %q root dag: %w", w.displayName(), err)
		}
		w.DAG = d
	}
	return w, nil
}

func (w *Workflow) rootDAGName() string {
	if w.Name != "" {
		return w.Name
	}
	return strings.TrimRight(w.GenerateName, "-.")
}

func (w *Workflow) displayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.GenerateName
}

// WithDAG uses d as the root DAG.
func WithDAG(d *dag.DAG) Option {
	return func(w *Workflow) error {
		w.DAG = d
		return nil
	}
}

// WithDAGName names the root DAG, and so the entrypoint.
func WithDAGName(name string) Option {
	return func(w *Workflow) error {
		d, err := dag.New(name)
		if err != nil {
			return err
		}
		w.DAG = d
		return nil
	}
}

// WithInputs declares the workflow arguments.
func WithInputs(in value.Input) Option {
	return func(w *Workflow) error {
		vals, err := value.Normalize(in)
		if err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		w.Inputs = vals
		return nil
	}
}

// WithMetrics sets workflow metrics; see NormalizeMetrics for accepted shapes.
func WithMetrics(m any) Option {
	return func(w *Workflow) error {
		metrics, err := NormalizeMetrics(m)
		if err != nil {
			return err
		}
		w.Metrics = metrics
		return nil
	}
}

// WithVolumeClaimGC sets claim garbage collection; see NormalizeVolumeClaimGC.
func WithVolumeClaimGC(gc any) Option {
	return func(w *Workflow) error {
		v, err := NormalizeVolumeClaimGC(gc)
		if err != nil {
			return err
		}
		w.VolumeClaimGC = v
		return nil
	}
}

// WithService sets the transport used by Create, Get and friends.
func WithService(s Service) Option {
	return func(w *Workflow) error {
		w.Service = s
		return nil
	}
}

// WithDefaults fills unset settings from d.
func WithDefaults(d Defaults) Option {
	return func(w *Workflow) error {
		d.Apply(w)
		return nil
	}
}

// AddTask appends a unit to the root DAG.
func (w *Workflow) AddTask(u dag.Unit) *Workflow {
	w.DAG.AddTask(u)
	return w
}

// AddTasks appends units to the root DAG.
func (w *Workflow) AddTasks(units ...dag.Unit) *Workflow {
	w.DAG.AddTasks(units...)
	return w
}

// Scope runs fn with the root DAG open in s, so units created inside
// register on the workflow.
func (w *Workflow) Scope(s *dag.Session, fn func(*Workflow) error) error {
	_, err := s.Scope(w.DAG, func(*dag.DAG) error { return fn(w) })
	return err
}

// InContext reports whether the root DAG is open in a session.
func (w *Workflow) InContext() bool {
	return w.DAG.InContext()
}

// OnExitName is the configured exit handler name, if any.
func (w *Workflow) OnExitName() string {
	return w.onExit
}

// OnExitTask runs u when the workflow exits. u is excluded from the root
// task list and added to the root DAG if no DAG in the tree owns it yet.
func (w *Workflow) OnExitTask(u dag.Unit) {
	u.SetExit(true)
	if !owned(w.DAG, u, map[*dag.DAG]bool{}) {
		w.DAG.AddTask(u)
	}
	w.onExit = u.Name()
}

// OnExitDAG runs d when the workflow exits. d's templates are emitted
// through a hidden unit on the root DAG; the exit handler is d itself.
func (w *Workflow) OnExitDAG(d *dag.DAG) {
	if exitWrapper(w.DAG, d) == nil {
		wrapper := dag.Wrap(uniqueTaskName(w.DAG, "exit-"+d.Name), d)
		wrapper.SetExit(true)
		w.DAG.AddTask(wrapper)
	}
	w.onExit = d.Name
}

// OnExit dispatches to OnExitDAG for a *dag.DAG and OnExitTask for any
// other dag.Unit.
func (w *Workflow) OnExit(target any) error {
	switch t := target.(type) {
	case *dag.DAG:
		w.OnExitDAG(t)
	case dag.Unit:
		w.OnExitTask(t)
	default:
		return fmt.Errorf("exit handler %T: %w", target, value.ErrShape)
	}
	return nil
}

func owned(d *dag.DAG, u dag.Unit, seen map[*dag.DAG]bool) bool {
	if seen[d] {
		return false
	}
	seen[d] = true
	for _, t := range d.Tasks() {
		if t == u {
			return true
		}
		if n := t.Nested(); n != nil && owned(n, u, seen) {
			return true
		}
	}
	return false
}

// exitWrapper returns the hidden exit unit on root that runs d, if any.
func exitWrapper(root *dag.DAG, d *dag.DAG) dag.Unit {
	for _, t := range root.Tasks() {
		if t.IsExit() && t.Nested() == d {
			return t
		}
	}
	return nil
}

// uniqueTaskName returns base, suffixed with -2, -3, ... until no unit on d
// uses it.
func uniqueTaskName(d *dag.DAG, base string) string {
	taken := make(map[string]bool, len(d.Tasks()))
	for _, t := range d.Tasks() {
		taken[t.Name()] = true
	}
	name := base
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	return name
}

// GetParameter returns a reference to a declared workflow input parameter.
func (w *Workflow) GetParameter(name string) (value.Parameter, error) {
	if _, ok := value.FindParameter(w.Inputs, name); !ok {
		return value.Parameter{}, fmt.Errorf("%q is not a workflow parameter: %w", name, value.ErrLookup)
	}
	return value.Parameter{
		Name:  name,
		Value: fmt.Sprintf("{{workflow.parameters.%s}}", name),
	}, nil
}

// GetName returns the runtime name expression, useful with generate names.
func (w *Workflow) GetName() string {
	return "{{workflow.name}}"
}
