package model

// DefaultAPIVersion is the engine API group version for Workflow objects.
const DefaultAPIVersion = "argoproj.io/v1alpha1"

// KindWorkflow is the object kind of a Workflow.
const KindWorkflow = "Workflow"

// Workflow is the complete engine specification object.
type Workflow struct {
	APIVersion string          `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Kind       string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Metadata   ObjectMeta      `json:"metadata" yaml:"metadata"`
	Spec       WorkflowSpec    `json:"spec" yaml:"spec"`
	Status     *WorkflowStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// WorkflowSpec is the flat, name-referenced workflow specification.
type WorkflowSpec struct {
	Entrypoint                   string                   `json:"entrypoint,omitempty" yaml:"entrypoint,omitempty"`
	Templates                    []Template               `json:"templates,omitempty" yaml:"templates,omitempty"`
	Arguments                    *Arguments               `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	VolumeClaimTemplates         []PersistentVolumeClaim  `json:"volumeClaimTemplates,omitempty" yaml:"volumeClaimTemplates,omitempty"`
	Volumes                      []Volume                 `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	OnExit                       string                   `json:"onExit,omitempty" yaml:"onExit,omitempty"`
	ActiveDeadlineSeconds        *int64                   `json:"activeDeadlineSeconds,omitempty" yaml:"activeDeadlineSeconds,omitempty"`
	Affinity                     map[string]any           `json:"affinity,omitempty" yaml:"affinity,omitempty"`
	ArchiveLogs                  *bool                    `json:"archiveLogs,omitempty" yaml:"archiveLogs,omitempty"`
	ArtifactRepositoryRef        *ArtifactRepositoryRef   `json:"artifactRepositoryRef,omitempty" yaml:"artifactRepositoryRef,omitempty"`
	AutomountServiceAccountToken *bool                    `json:"automountServiceAccountToken,omitempty" yaml:"automountServiceAccountToken,omitempty"`
	DNSPolicy                    string                   `json:"dnsPolicy,omitempty" yaml:"dnsPolicy,omitempty"`
	Hooks                        map[string]LifecycleHook `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	HostNetwork                  *bool                    `json:"hostNetwork,omitempty" yaml:"hostNetwork,omitempty"`
	ImagePullSecrets             []LocalObjectReference   `json:"imagePullSecrets,omitempty" yaml:"imagePullSecrets,omitempty"`
	Metrics                      *Metrics                 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	NodeSelector                 map[string]string        `json:"nodeSelector,omitempty" yaml:"nodeSelector,omitempty"`
	Parallelism                  *int64                   `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
	PodGC                        *PodGC                   `json:"podGC,omitempty" yaml:"podGC,omitempty"`
	PodMetadata                  *Metadata                `json:"podMetadata,omitempty" yaml:"podMetadata,omitempty"`
	PodPriorityClassName         string                   `json:"podPriorityClassName,omitempty" yaml:"podPriorityClassName,omitempty"`
	PodSpecPatch                 string                   `json:"podSpecPatch,omitempty" yaml:"podSpecPatch,omitempty"`
	Priority                     *int32                   `json:"priority,omitempty" yaml:"priority,omitempty"`
	RetryStrategy                *RetryStrategy           `json:"retryStrategy,omitempty" yaml:"retryStrategy,omitempty"`
	SchedulerName                string                   `json:"schedulerName,omitempty" yaml:"schedulerName,omitempty"`
	SecurityContext              *PodSecurityContext      `json:"securityContext,omitempty" yaml:"securityContext,omitempty"`
	ServiceAccountName           string                   `json:"serviceAccountName,omitempty" yaml:"serviceAccountName,omitempty"`
	Shutdown                     string                   `json:"shutdown,omitempty" yaml:"shutdown,omitempty"`
	Suspend                      *bool                    `json:"suspend,omitempty" yaml:"suspend,omitempty"`
	Synchronization              *Synchronization         `json:"synchronization,omitempty" yaml:"synchronization,omitempty"`
	TemplateDefaults             *Template                `json:"templateDefaults,omitempty" yaml:"templateDefaults,omitempty"`
	Tolerations                  []Toleration             `json:"tolerations,omitempty" yaml:"tolerations,omitempty"`
	TTLStrategy                  *TTLStrategy             `json:"ttlStrategy,omitempty" yaml:"ttlStrategy,omitempty"`
	VolumeClaimGC                *VolumeClaimGC           `json:"volumeClaimGC,omitempty" yaml:"volumeClaimGC,omitempty"`
	WorkflowTemplateRef          *WorkflowTemplateRef     `json:"workflowTemplateRef,omitempty" yaml:"workflowTemplateRef,omitempty"`
}

// ArtifactRepositoryRef selects an artifact repository config map key.
type ArtifactRepositoryRef struct {
	ConfigMap string `json:"configMap,omitempty" yaml:"configMap,omitempty"`
	Key       string `json:"key,omitempty" yaml:"key,omitempty"`
}

// LocalObjectReference names an object in the same namespace.
type LocalObjectReference struct {
	Name string `json:"name" yaml:"name"`
}

// PodGC controls when the engine deletes completed pods.
type PodGC struct {
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// TTLStrategy controls when the engine deletes the completed workflow.
type TTLStrategy struct {
	SecondsAfterCompletion *int32 `json:"secondsAfterCompletion,omitempty" yaml:"secondsAfterCompletion,omitempty"`
	SecondsAfterSuccess    *int32 `json:"secondsAfterSuccess,omitempty" yaml:"secondsAfterSuccess,omitempty"`
	SecondsAfterFailure    *int32 `json:"secondsAfterFailure,omitempty" yaml:"secondsAfterFailure,omitempty"`
}

// VolumeClaimGC controls when claim templates are deleted.
type VolumeClaimGC struct {
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// WorkflowTemplateRef runs a stored WorkflowTemplate.
type WorkflowTemplateRef struct {
	Name         string `json:"name" yaml:"name"`
	ClusterScope bool   `json:"clusterScope,omitempty" yaml:"clusterScope,omitempty"`
}

// Phase is the lifecycle phase reported by the engine.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseError     Phase = "Error"
	PhaseSkipped   Phase = "Skipped"
	PhaseOmitted   Phase = "Omitted"
)

// Completed reports whether the phase is terminal.
func (p Phase) Completed() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseError, PhaseSkipped, PhaseOmitted:
		return true
	}
	return false
}

// WorkflowStatus is the engine-reported state of a submitted workflow.
type WorkflowStatus struct {
	Phase      Phase                 `json:"phase,omitempty" yaml:"phase,omitempty"`
	Message    string                `json:"message,omitempty" yaml:"message,omitempty"`
	Progress   string                `json:"progress,omitempty" yaml:"progress,omitempty"`
	StartedAt  string                `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	FinishedAt string                `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
	Nodes      map[string]NodeStatus `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NodeStatus is the state of one executed node.
type NodeStatus struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	DisplayName  string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Type         string `json:"type" yaml:"type"`
	TemplateName string `json:"templateName,omitempty" yaml:"templateName,omitempty"`
	Phase        Phase  `json:"phase,omitempty" yaml:"phase,omitempty"`
	Message      string `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt    string `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	FinishedAt   string `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
}
