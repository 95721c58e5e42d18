package task

import (
	"fmt"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
	"github.com/mattjoyce/dagspec/internal/volume"
)

// BuildTemplate returns the task's own template, or nil when the task runs
// a nested DAG or a referenced template.
func (t *Task) BuildTemplate() (*model.Template, error) {
	if t.dag != nil || t.templateRef != nil {
		return nil, nil
	}
	inputs, err := value.BuildInputs(t.inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	outputs, err := value.BuildOutputs(t.outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}

	c := model.Container{
		Image:           t.image,
		ImagePullPolicy: t.imagePullPolicy,
		Command:         t.command,
		Args:            t.args,
		Env:             t.env,
		WorkingDir:      t.workingDir,
		Resources:       t.resources,
		VolumeMounts:    volume.Mounts(t.volumes),
	}

	tmpl := &model.Template{
		Name:                  t.name,
		Inputs:                inputs,
		Outputs:               outputs,
		Volumes:               volume.PodVolumes(t.volumes),
		ActiveDeadlineSeconds: t.activeDeadline,
		Timeout:               t.timeout,
		RetryStrategy:         t.retry,
		NodeSelector:          t.nodeSelector,
		Tolerations:           t.tolerations,
		ServiceAccountName:    t.serviceAccount,
		Daemon:                t.daemon,
	}
	if len(t.labels) > 0 || len(t.annotations) > 0 {
		tmpl.Metadata = &model.Metadata{Labels: t.labels, Annotations: t.annotations}
	}
	if t.source != "" {
		tmpl.Script = &model.Script{Container: c, Source: t.source}
	} else {
		tmpl.Container = &c
	}
	return tmpl, nil
}

// BuildDAGTask returns the task's entry in its DAG's task list.
func (t *Task) BuildDAGTask() (*model.DAGTask, error) {
	args, err := value.BuildArguments(t.arguments)
	if err != nil {
		return nil, fmt.Errorf("task %q arguments: %w", t.name, err)
	}
	dt := &model.DAGTask{
		Name:         t.name,
		TemplateRef:  t.templateRef,
		Arguments:    args,
		Dependencies: t.dependencies,
		Depends:      t.depends,
		When:         t.when,
		WithItems:    t.withItems,
		WithParam:    t.withParam,
		WithSequence: t.withSequence,
		ContinueOn:   t.continueOn,
		OnExit:       t.onExit,
		Hooks:        t.hooks,
	}
	switch {
	case t.dag != nil:
		dt.Template = t.dag.Name
	case t.templateRef == nil:
		dt.Template = t.name
	}
	return dt, nil
}

// VolumeClaimTemplates returns the per-run claims the task mounts.
func (t *Task) VolumeClaimTemplates() []model.PersistentVolumeClaim {
	return volume.Claims(t.volumes)
}

// Volumes returns the standing workflow volumes the task mounts.
func (t *Task) Volumes() []model.Volume {
	return volume.Standing(t.volumes)
}
