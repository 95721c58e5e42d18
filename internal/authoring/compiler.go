package authoring

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/task"
	"github.com/mattjoyce/dagspec/internal/value"
	"github.com/mattjoyce/dagspec/internal/volume"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

// ErrInvalid wraps every validation failure of an authoring document.
var ErrInvalid = errors.New("invalid authoring document")

// Options tune compilation.
type Options struct {
	Defaults workflow.Defaults
	Logger   *slog.Logger
}

// CompileFile loads and compiles one authoring file.
func CompileFile(path string, opts Options) (*workflow.Workflow, error) {
	spec, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(spec, opts)
}

// CompileBytes parses and compiles an authoring document.
func CompileBytes(data []byte, opts Options) (*workflow.Workflow, error) {
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return Compile(spec, opts)
}

// Compile turns a parsed document into a Workflow. All DAGs are created
// first so tasks can reference any of them; tasks are then created inside a
// session scope on their DAG and register themselves.
func Compile(spec *FileSpec, opts Options) (*workflow.Workflow, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithComponent("authoring")
	}
	if len(spec.DAGs) == 0 {
		return nil, fmt.Errorf("%w: dags must be non-empty", ErrInvalid)
	}

	dags := make(map[string]*dag.DAG, len(spec.DAGs))
	for i, ds := range spec.DAGs {
		name := strings.TrimSpace(ds.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: dags[%d]: name is required", ErrInvalid, i)
		}
		if _, exists := dags[name]; exists {
			return nil, fmt.Errorf("%w: dags[%d]: duplicate dag name %q", ErrInvalid, i, name)
		}
		d, err := newDAG(name, ds)
		if err != nil {
			return nil, fmt.Errorf("%w: dags[%d]: %w", ErrInvalid, i, err)
		}
		dags[name] = d
	}

	session := dag.NewSession()
	tasks := make(map[string]map[string]*task.Task, len(spec.DAGs))
	for i, ds := range spec.DAGs {
		d := dags[strings.TrimSpace(ds.Name)]
		byName := make(map[string]*task.Task, len(ds.Tasks))
		_, err := session.Scope(d, func(*dag.DAG) error {
			for j, ts := range ds.Tasks {
				t, err := newTask(session, ts, dags, opts.Defaults)
				if err != nil {
					return fmt.Errorf("tasks[%d]: %w", j, err)
				}
				byName[t.Name()] = t
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: dags[%d]: %w", ErrInvalid, i, err)
		}
		if err := checkDependencies(ds, byName); err != nil {
			return nil, fmt.Errorf("%w: dags[%d]: %w", ErrInvalid, i, err)
		}
		tasks[d.Name] = byName
	}

	entry := strings.TrimSpace(spec.Workflow.Entrypoint)
	if entry == "" {
		entry = strings.TrimSpace(spec.DAGs[0].Name)
	}
	root, ok := dags[entry]
	if !ok {
		return nil, fmt.Errorf("%w: workflow.entrypoint: unknown dag %q", ErrInvalid, entry)
	}

	w, err := newWorkflow(spec.Workflow, root, opts.Defaults)
	if err != nil {
		return nil, fmt.Errorf("%w: workflow: %w", ErrInvalid, err)
	}

	if target := strings.TrimSpace(spec.Workflow.OnExit); target != "" {
		switch {
		case tasks[root.Name][target] != nil:
			w.OnExitTask(tasks[root.Name][target])
		case dags[target] != nil:
			w.OnExitDAG(dags[target])
		default:
			return nil, fmt.Errorf("%w: workflow.on_exit: %q is neither a task of %q nor a dag", ErrInvalid, target, root.Name)
		}
	}

	logger.Debug("compiled authoring document",
		"workflow", w.Name,
		"generate_name", w.GenerateName,
		"entrypoint", root.Name,
		"dags", len(dags),
	)
	return w, nil
}

func newDAG(name string, ds DAGSpec) (*dag.DAG, error) {
	outputs := make([]value.Value, 0, len(ds.Outputs))
	for k, vs := range ds.Outputs {
		v, err := vs.Build()
		if err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", k, err)
		}
		outputs = append(outputs, v)
	}
	opts := []dag.Option{
		dag.WithInputs(ds.Inputs.Input),
		dag.WithOutputs(outputs...),
	}
	if ds.Target != "" {
		opts = append(opts, dag.WithTarget(ds.Target))
	}
	if ds.FailFast != nil {
		opts = append(opts, dag.WithFailFast(*ds.FailFast))
	}
	return dag.New(name, opts...)
}

func newTask(s *dag.Session, ts TaskSpec, dags map[string]*dag.DAG, defaults workflow.Defaults) (*task.Task, error) {
	name := strings.TrimSpace(ts.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if ts.DAG != "" && ts.Image != "" {
		return nil, fmt.Errorf("task %q defines both image and dag", name)
	}

	var opts []task.Option
	delegates := ts.DAG != "" || ts.TemplateRef != nil
	if ts.DAG != "" {
		nested, ok := dags[ts.DAG]
		if !ok {
			return nil, fmt.Errorf("task %q references unknown dag %q", name, ts.DAG)
		}
		opts = append(opts, task.WithDAG(nested))
	}
	if ts.TemplateRef != nil {
		ref := ts.TemplateRef
		opts = append(opts, task.WithTemplateRef(ref.Name, ref.Template, ref.ClusterScope))
	}

	if !delegates {
		image := ts.Image
		if image == "" {
			image = defaults.Image
		}
		opts = append(opts, task.WithImage(image))
		pull := ts.ImagePullPolicy
		if pull == "" {
			pull = defaults.ImagePullPolicy
		}
		if pull != "" {
			opts = append(opts, task.WithImagePullPolicy(pull))
		}
	}

	if len(ts.Command) > 0 {
		opts = append(opts, task.WithCommand(ts.Command...))
	}
	if len(ts.Args) > 0 {
		opts = append(opts, task.WithArgs(ts.Args...))
	}
	if ts.Source != "" {
		opts = append(opts, task.WithSource(ts.Source))
	}
	if ts.WorkingDir != "" {
		opts = append(opts, task.WithWorkingDir(ts.WorkingDir))
	}
	for _, k := range slices.Sorted(maps.Keys(ts.Env)) {
		opts = append(opts, task.WithEnv(k, ts.Env[k]))
	}
	if ts.Resources != nil {
		opts = append(opts, task.WithResources(ts.Resources.CPU, ts.Resources.Memory))
	}

	opts = append(opts, task.WithInputs(ts.Inputs.Input), task.WithArguments(ts.Arguments.Input))
	if len(ts.Outputs) > 0 {
		outputs := make([]value.Value, 0, len(ts.Outputs))
		for k, vs := range ts.Outputs {
			v, err := vs.Build()
			if err != nil {
				return nil, fmt.Errorf("task %q outputs[%d]: %w", name, k, err)
			}
			outputs = append(outputs, v)
		}
		opts = append(opts, task.WithOutputs(outputs...))
	}

	if len(ts.Volumes) > 0 {
		vols := make([]volume.Volume, 0, len(ts.Volumes))
		for k, vs := range ts.Volumes {
			v, err := vs.volume()
			if err != nil {
				return nil, fmt.Errorf("task %q volumes[%d]: %w", name, k, err)
			}
			vols = append(vols, v)
		}
		opts = append(opts, task.WithVolumes(vols...))
	}

	if ts.Depends != "" {
		opts = append(opts, task.WithDepends(ts.Depends))
	}
	if len(ts.Dependencies) > 0 {
		opts = append(opts, task.WithDependencies(ts.Dependencies...))
	}
	if ts.When != "" {
		opts = append(opts, task.WithWhen(ts.When))
	}
	if len(ts.WithItems) > 0 {
		opts = append(opts, task.WithItems(ts.WithItems...))
	}
	if ts.WithParam != "" {
		opts = append(opts, task.WithParam(ts.WithParam))
	}
	if seq := ts.WithSequence; seq != nil {
		sequence, err := task.NewSequence(seq.Count, seq.Start, seq.End, seq.Format)
		if err != nil {
			return nil, fmt.Errorf("task %q with_sequence: %w", name, err)
		}
		opts = append(opts, task.WithSequence(sequence))
	}
	if ts.ContinueOn != nil {
		opts = append(opts, task.WithContinueOn(ts.ContinueOn.Failed, ts.ContinueOn.Errored))
	}

	if ts.RetryLimit != nil {
		opts = append(opts, task.WithRetryLimit(*ts.RetryLimit))
	}
	if ts.Timeout != "" {
		opts = append(opts, task.WithTimeout(ts.Timeout))
	}
	if ts.ActiveDeadline != nil {
		opts = append(opts, task.WithActiveDeadline(*ts.ActiveDeadline))
	}
	if len(ts.NodeSelector) > 0 {
		opts = append(opts, task.WithNodeSelector(ts.NodeSelector))
	}
	if ts.ServiceAccount != "" {
		opts = append(opts, task.WithServiceAccount(ts.ServiceAccount))
	}
	if len(ts.Labels) > 0 {
		opts = append(opts, task.WithLabels(ts.Labels))
	}
	if len(ts.Annotations) > 0 {
		opts = append(opts, task.WithAnnotations(ts.Annotations))
	}
	if ts.Daemon {
		opts = append(opts, task.WithDaemon(true))
	}

	return task.New(s, name, opts...)
}

// checkDependencies verifies that depends expressions and dependency lists
// only name tasks of the same DAG.
func checkDependencies(ds DAGSpec, byName map[string]*task.Task) error {
	for j, ts := range ds.Tasks {
		t := byName[strings.TrimSpace(ts.Name)]
		if t == nil {
			continue
		}
		names := append(t.DependencyTasks(), ts.Dependencies...)
		for _, dep := range names {
			if dep == t.Name() {
				return fmt.Errorf("tasks[%d]: task %q depends on itself", j, t.Name())
			}
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("tasks[%d]: task %q depends on unknown task %q", j, t.Name(), dep)
			}
		}
	}
	return nil
}

func newWorkflow(ws WorkflowSpec, root *dag.DAG, defaults workflow.Defaults) (*workflow.Workflow, error) {
	opts := []workflow.Option{
		workflow.WithDAG(root),
		workflow.WithInputs(ws.Inputs.Input),
	}
	if len(ws.Metrics) > 0 {
		opts = append(opts, workflow.WithMetrics(ws.Metrics))
	}
	if ws.VolumeClaimGC != "" {
		opts = append(opts, workflow.WithVolumeClaimGC(workflow.GCStrategy(ws.VolumeClaimGC)))
	}

	w, err := workflow.New(strings.TrimSpace(ws.Name), strings.TrimSpace(ws.GenerateName), opts...)
	if err != nil {
		return nil, err
	}

	w.Namespace = ws.Namespace
	w.ServiceAccountName = ws.ServiceAccountName
	w.Parallelism = ws.Parallelism
	w.ActiveDeadlineSeconds = ws.ActiveDeadline
	w.Priority = ws.Priority
	w.ArchiveLogs = ws.ArchiveLogs
	w.SuspendOnSubmit = ws.Suspend
	w.NodeSelector = ws.NodeSelector
	w.Labels = ws.Labels
	w.Annotations = ws.Annotations
	w.ImagePullSecrets = ws.ImagePullSecrets
	w.TTLStrategy = ws.TTLStrategy
	w.PodGC = ws.PodGC
	w.RetryStrategy = ws.RetryStrategy

	defaults.Apply(w)
	return w, nil
}

func (v VolumeSpec) volume() (volume.Volume, error) {
	switch v.Claim {
	case "", ClaimTemplate:
		return volume.ClaimTemplate{
			Name:         v.Name,
			MountPath:    v.MountPath,
			SubPath:      v.SubPath,
			ReadOnly:     v.ReadOnly,
			Size:         v.Size,
			StorageClass: v.StorageClass,
			AccessModes:  v.AccessModes,
		}, nil
	case ClaimExisting:
		return volume.Existing{
			Name:      v.Name,
			ClaimName: v.ClaimName,
			MountPath: v.MountPath,
			SubPath:   v.SubPath,
			ReadOnly:  v.ReadOnly,
		}, nil
	case ClaimEmptyDir:
		return volume.EmptyDir{Name: v.Name, MountPath: v.MountPath, Medium: v.Medium, SizeLimit: v.SizeLimit}, nil
	case ClaimSecret:
		return volume.Secret{Name: v.Name, SecretName: v.SecretName, MountPath: v.MountPath, Optional: v.Optional}, nil
	case ClaimConfig:
		return volume.ConfigMap{Name: v.Name, ConfigMapName: v.ConfigMapName, MountPath: v.MountPath, Optional: v.Optional}, nil
	}
	return nil, fmt.Errorf("volume %q: unknown claim kind %q: %w", v.Name, v.Claim, value.ErrShape)
}
