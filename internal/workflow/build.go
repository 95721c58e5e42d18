package workflow

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
)

// FingerprintAnnotation carries the content digest stamped by Stamp.
const FingerprintAnnotation = "dagspec.io/fingerprint"

// Build compiles the workflow. The root DAG tree is flattened exactly once.
func (w *Workflow) Build() (*model.Workflow, error) {
	g, err := dag.Flatten(w.DAG)
	if err != nil {
		return nil, fmt.Errorf("workflow %q: %w", w.displayName(), err)
	}
	args, err := value.BuildArguments(w.Inputs)
	if err != nil {
		return nil, fmt.Errorf("workflow %q arguments: %w", w.displayName(), err)
	}

	var pullSecrets []model.LocalObjectReference
	for _, name := range w.ImagePullSecrets {
		pullSecrets = append(pullSecrets, model.LocalObjectReference{Name: name})
	}

	return &model.Workflow{
		APIVersion: w.APIVersion,
		Kind:       model.KindWorkflow,
		Metadata: model.ObjectMeta{
			Name:         w.Name,
			GenerateName: w.GenerateName,
			Labels:       w.Labels,
			Annotations:  copyStrings(w.Annotations),
		},
		Spec: model.WorkflowSpec{
			Entrypoint:                   w.DAG.Name,
			Templates:                    g.Templates,
			Arguments:                    args,
			VolumeClaimTemplates:         nilIfEmpty(g.VolumeClaimTemplates),
			Volumes:                      nilIfEmpty(g.Volumes),
			OnExit:                       w.onExit,
			ActiveDeadlineSeconds:        w.ActiveDeadlineSeconds,
			Affinity:                     w.Affinity,
			ArchiveLogs:                  w.ArchiveLogs,
			ArtifactRepositoryRef:        w.ArtifactRepositoryRef,
			AutomountServiceAccountToken: w.AutomountServiceAccountToken,
			DNSPolicy:                    w.DNSPolicy,
			Hooks:                        w.Hooks,
			HostNetwork:                  w.HostNetwork,
			ImagePullSecrets:             pullSecrets,
			Metrics:                      w.Metrics,
			NodeSelector:                 w.NodeSelector,
			Parallelism:                  w.Parallelism,
			PodGC:                        w.PodGC,
			PodMetadata:                  w.PodMetadata,
			PodPriorityClassName:         w.PodPriorityClassName,
			PodSpecPatch:                 w.PodSpecPatch,
			Priority:                     w.Priority,
			RetryStrategy:                w.RetryStrategy,
			SchedulerName:                w.SchedulerName,
			SecurityContext:              w.SecurityContext,
			ServiceAccountName:           w.ServiceAccountName,
			Shutdown:                     w.Shutdown,
			Suspend:                      w.SuspendOnSubmit,
			Synchronization:              w.Synchronization,
			TemplateDefaults:             w.TemplateDefaults,
			Tolerations:                  w.Tolerations,
			TTLStrategy:                  w.TTLStrategy,
			VolumeClaimGC:                w.VolumeClaimGC,
			WorkflowTemplateRef:          w.WorkflowTemplateRef,
		},
	}, nil
}

// nilIfEmpty keeps empty resource lists out of the manifest so a decoded
// copy compares equal.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToJSON returns the compiled workflow as compact JSON.
func (w *Workflow) ToJSON() ([]byte, error) {
	m, err := w.Build()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// ToYAML returns the compiled workflow as YAML with two-space indentation.
func (w *Workflow) ToYAML() ([]byte, error) {
	m, err := w.Build()
	if err != nil {
		return nil, err
	}
	return EncodeYAML(m)
}

// ToMap returns the compiled workflow as generic maps with unset fields
// omitted.
func (w *Workflow) ToMap() (map[string]any, error) {
	b, err := w.ToJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode workflow map: %w", err)
	}
	return out, nil
}

// EncodeYAML renders an engine workflow as YAML.
func EncodeYAML(m *model.Workflow) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode workflow yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode workflow yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Fingerprint is the BLAKE3 digest of the workflow's name and spec. It is
// independent of annotations, so stamping does not change it.
func Fingerprint(m *model.Workflow) (string, error) {
	b, err := json.Marshal(struct {
		Name         string             `json:"name"`
		GenerateName string             `json:"generateName"`
		Spec         model.WorkflowSpec `json:"spec"`
	}{m.Metadata.Name, m.Metadata.GenerateName, m.Spec})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Stamp records the fingerprint of m in its annotations and returns it.
func Stamp(m *model.Workflow) (string, error) {
	fp, err := Fingerprint(m)
	if err != nil {
		return "", err
	}
	if m.Metadata.Annotations == nil {
		m.Metadata.Annotations = map[string]string{}
	}
	m.Metadata.Annotations[FingerprintAnnotation] = fp
	return fp, nil
}

// FromModel rebuilds an authoring workflow from an engine object, e.g. a
// server response. Templates are not reconstructed; the root DAG is empty
// and named after the entrypoint.
func FromModel(m *model.Workflow) (*Workflow, error) {
	if m == nil {
		return nil, fmt.Errorf("from model: nil workflow")
	}
	var opts []Option
	if m.Spec.Entrypoint != "" {
		opts = append(opts, WithDAGName(m.Spec.Entrypoint))
	}
	w, err := New(m.Metadata.Name, m.Metadata.GenerateName, opts...)
	if err != nil {
		return nil, err
	}
	s := m.Spec
	w.APIVersion = m.APIVersion
	w.Namespace = m.Metadata.Namespace
	w.Labels = m.Metadata.Labels
	w.Annotations = m.Metadata.Annotations
	w.Inputs = argumentsToInputs(s.Arguments)
	w.onExit = s.OnExit
	w.ActiveDeadlineSeconds = s.ActiveDeadlineSeconds
	w.Affinity = s.Affinity
	w.ArchiveLogs = s.ArchiveLogs
	w.ArtifactRepositoryRef = s.ArtifactRepositoryRef
	w.AutomountServiceAccountToken = s.AutomountServiceAccountToken
	w.DNSPolicy = s.DNSPolicy
	w.Hooks = s.Hooks
	w.HostNetwork = s.HostNetwork
	for _, ref := range s.ImagePullSecrets {
		w.ImagePullSecrets = append(w.ImagePullSecrets, ref.Name)
	}
	w.Metrics = s.Metrics
	w.NodeSelector = s.NodeSelector
	w.Parallelism = s.Parallelism
	w.PodGC = s.PodGC
	w.PodMetadata = s.PodMetadata
	w.PodPriorityClassName = s.PodPriorityClassName
	w.PodSpecPatch = s.PodSpecPatch
	w.Priority = s.Priority
	w.RetryStrategy = s.RetryStrategy
	w.SchedulerName = s.SchedulerName
	w.SecurityContext = s.SecurityContext
	w.ServiceAccountName = s.ServiceAccountName
	w.Shutdown = s.Shutdown
	w.SuspendOnSubmit = s.Suspend
	w.Synchronization = s.Synchronization
	w.TemplateDefaults = s.TemplateDefaults
	w.Tolerations = s.Tolerations
	w.TTLStrategy = s.TTLStrategy
	w.VolumeClaimGC = s.VolumeClaimGC
	w.WorkflowTemplateRef = s.WorkflowTemplateRef
	return w, nil
}

func argumentsToInputs(args *model.Arguments) []value.Value {
	out := []value.Value{}
	if args == nil {
		return out
	}
	for _, p := range args.Parameters {
		vp := value.Parameter{
			Name:        p.Name,
			Description: p.Description,
			Enum:        p.Enum,
			GlobalName:  p.GlobalName,
			ValueFrom:   p.ValueFrom,
		}
		if p.Value != nil {
			vp.Value = *p.Value
		}
		if p.Default != nil {
			vp.Default = *p.Default
		}
		out = append(out, vp)
	}
	for _, a := range args.Artifacts {
		out = append(out, value.Artifact{
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
		})
	}
	return out
}
