// Package authoring loads workflow definitions written in YAML and turns
// them into authoring objects, registering tasks through a dag.Session the
// same way hand-written Go code does.
package authoring

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
)

// FileSpec is one authoring document: a workflow and the DAGs it uses.
type FileSpec struct {
	Workflow WorkflowSpec `yaml:"workflow"`
	DAGs     []DAGSpec    `yaml:"dags"`
}

// WorkflowSpec holds the workflow-level settings.
type WorkflowSpec struct {
	Name               string               `yaml:"name,omitempty"`
	GenerateName       string               `yaml:"generate_name,omitempty"`
	Namespace          string               `yaml:"namespace,omitempty"`
	Entrypoint         string               `yaml:"entrypoint,omitempty"`
	ServiceAccountName string               `yaml:"service_account_name,omitempty"`
	Parallelism        *int64               `yaml:"parallelism,omitempty"`
	ActiveDeadline     *int64               `yaml:"active_deadline_seconds,omitempty"`
	Priority           *int32               `yaml:"priority,omitempty"`
	ArchiveLogs        *bool                `yaml:"archive_logs,omitempty"`
	Suspend            *bool                `yaml:"suspend,omitempty"`
	NodeSelector       map[string]string    `yaml:"node_selector,omitempty"`
	Labels             map[string]string    `yaml:"labels,omitempty"`
	Annotations        map[string]string    `yaml:"annotations,omitempty"`
	ImagePullSecrets   []string             `yaml:"image_pull_secrets,omitempty"`
	Inputs             InputSpec            `yaml:"inputs,omitempty"`
	VolumeClaimGC      string               `yaml:"volume_claim_gc,omitempty"`
	TTLStrategy        *model.TTLStrategy   `yaml:"ttl_strategy,omitempty"`
	PodGC              *model.PodGC         `yaml:"pod_gc,omitempty"`
	Metrics            []model.Prometheus   `yaml:"metrics,omitempty"`
	RetryStrategy      *model.RetryStrategy `yaml:"retry_strategy,omitempty"`
	OnExit             string               `yaml:"on_exit,omitempty"`
}

// DAGSpec is one named DAG.
type DAGSpec struct {
	Name     string      `yaml:"name"`
	Inputs   InputSpec   `yaml:"inputs,omitempty"`
	Outputs  []ValueSpec `yaml:"outputs,omitempty"`
	Target   string      `yaml:"target,omitempty"`
	FailFast *bool       `yaml:"fail_fast,omitempty"`
	Tasks    []TaskSpec  `yaml:"tasks"`
}

// TaskSpec is one task. A task runs a container (image), delegates to
// another DAG (dag), or references an external template (template_ref).
type TaskSpec struct {
	Name            string            `yaml:"name"`
	Image           string            `yaml:"image,omitempty"`
	ImagePullPolicy string            `yaml:"image_pull_policy,omitempty"`
	Command         []string          `yaml:"command,omitempty"`
	Args            []string          `yaml:"args,omitempty"`
	Source          string            `yaml:"source,omitempty"`
	WorkingDir      string            `yaml:"working_dir,omitempty"`
	Env             map[string]any    `yaml:"env,omitempty"`
	Resources       *ResourceSpec     `yaml:"resources,omitempty"`
	Inputs          InputSpec         `yaml:"inputs,omitempty"`
	Outputs         []ValueSpec       `yaml:"outputs,omitempty"`
	Arguments       InputSpec         `yaml:"arguments,omitempty"`
	Volumes         []VolumeSpec      `yaml:"volumes,omitempty"`
	DAG             string            `yaml:"dag,omitempty"`
	TemplateRef     *TemplateRefSpec  `yaml:"template_ref,omitempty"`
	Depends         string            `yaml:"depends,omitempty"`
	Dependencies    []string          `yaml:"dependencies,omitempty"`
	When            string            `yaml:"when,omitempty"`
	WithItems       []any             `yaml:"with_items,omitempty"`
	WithParam       string            `yaml:"with_param,omitempty"`
	WithSequence    *SequenceSpec     `yaml:"with_sequence,omitempty"`
	ContinueOn      *ContinueOnSpec   `yaml:"continue_on,omitempty"`
	RetryLimit      *int              `yaml:"retry_limit,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty"`
	ActiveDeadline  *int64            `yaml:"active_deadline_seconds,omitempty"`
	NodeSelector    map[string]string `yaml:"node_selector,omitempty"`
	ServiceAccount  string            `yaml:"service_account,omitempty"`
	Labels          map[string]string `yaml:"labels,omitempty"`
	Annotations     map[string]string `yaml:"annotations,omitempty"`
	Daemon          bool              `yaml:"daemon,omitempty"`
}

// ResourceSpec sets container requests and limits.
type ResourceSpec struct {
	CPU    string `yaml:"cpu,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

// TemplateRefSpec points at a template in a WorkflowTemplate.
type TemplateRefSpec struct {
	Name         string `yaml:"name"`
	Template     string `yaml:"template"`
	ClusterScope bool   `yaml:"cluster_scope,omitempty"`
}

// SequenceSpec loops over a numeric range. Bounds may be ints or strings.
type SequenceSpec struct {
	Count  any    `yaml:"count,omitempty"`
	Start  any    `yaml:"start,omitempty"`
	End    any    `yaml:"end,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ContinueOnSpec lets the DAG proceed past a failed or errored task.
type ContinueOnSpec struct {
	Failed  bool `yaml:"failed,omitempty"`
	Errored bool `yaml:"errored,omitempty"`
}

// Volume kinds accepted in VolumeSpec.Claim.
const (
	ClaimTemplate = "template"
	ClaimExisting = "existing"
	ClaimEmptyDir = "empty_dir"
	ClaimSecret   = "secret"
	ClaimConfig   = "config_map"
)

// VolumeSpec declares one volume mount.
type VolumeSpec struct {
	Name          string   `yaml:"name"`
	Claim         string   `yaml:"claim,omitempty"`
	MountPath     string   `yaml:"mount_path,omitempty"`
	SubPath       string   `yaml:"sub_path,omitempty"`
	ReadOnly      bool     `yaml:"read_only,omitempty"`
	Size          string   `yaml:"size,omitempty"`
	StorageClass  string   `yaml:"storage_class,omitempty"`
	AccessModes   []string `yaml:"access_modes,omitempty"`
	ClaimName     string   `yaml:"claim_name,omitempty"`
	SecretName    string   `yaml:"secret_name,omitempty"`
	ConfigMapName string   `yaml:"config_map_name,omitempty"`
	Medium        string   `yaml:"medium,omitempty"`
	SizeLimit     string   `yaml:"size_limit,omitempty"`
	Optional      bool     `yaml:"optional,omitempty"`
}

// ValueSpec is a typed parameter or artifact. Artifact is selected when
// kind is "artifact" or when a path or from is given.
type ValueSpec struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind,omitempty"`
	Value       any      `yaml:"value,omitempty"`
	Default     any      `yaml:"default,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Enum        []string `yaml:"enum,omitempty"`
	GlobalName  string   `yaml:"global_name,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	From        string   `yaml:"from,omitempty"`
	Optional    bool     `yaml:"optional,omitempty"`
}

// Build converts the spec into a value.Parameter or value.Artifact.
func (v ValueSpec) Build() (value.Value, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	switch v.Kind {
	case "artifact":
		return v.artifact(), nil
	case "", "parameter":
		if v.Kind == "" && (v.Path != "" || v.From != "") {
			return v.artifact(), nil
		}
		return value.Parameter{
			Name:        v.Name,
			Value:       v.Value,
			Default:     v.Default,
			Description: v.Description,
			Enum:        v.Enum,
			GlobalName:  v.GlobalName,
		}, nil
	}
	return nil, fmt.Errorf("value %q: unknown kind %q: %w", v.Name, v.Kind, value.ErrShape)
}

func (v ValueSpec) artifact() value.Artifact {
	return value.Artifact{
		Name:       v.Name,
		Path:       v.Path,
		From:       v.From,
		GlobalName: v.GlobalName,
		Optional:   v.Optional,
	}
}

// InputSpec accepts the three input shapes: a mapping of name to value, a
// list of typed values, or a list mixing typed values (entries with a name
// key) and plain mappings.
type InputSpec struct {
	Input value.Input
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (in *InputSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		in.Input = value.Mapping(m)
		return nil

	case yaml.SequenceNode:
		var typed value.Values
		var mixed value.Mixed
		plain := false
		for i, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("inputs[%d]: expected a mapping: %w", i, value.ErrShape)
			}
			if hasKey(item, "name") {
				var vs ValueSpec
				if err := item.Decode(&vs); err != nil {
					return fmt.Errorf("inputs[%d]: %w", i, err)
				}
				v, err := vs.Build()
				if err != nil {
					return fmt.Errorf("inputs[%d]: %w", i, err)
				}
				typed = append(typed, v)
				mixed = append(mixed, v)
				continue
			}
			var m map[string]any
			if err := item.Decode(&m); err != nil {
				return fmt.Errorf("inputs[%d]: %w", i, err)
			}
			plain = true
			mixed = append(mixed, value.Mapping(m))
		}
		if plain {
			in.Input = mixed
		} else {
			in.Input = typed
		}
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
	}
	return fmt.Errorf("line %d: inputs must be a mapping or a list: %w", node.Line, value.ErrShape)
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
