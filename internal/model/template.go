package model

// Template is one named, flattened unit of the workflow spec. Exactly one of
// DAG, Container or Script is set.
type Template struct {
	Name                  string              `json:"name" yaml:"name"`
	Inputs                *Inputs             `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs               *Outputs            `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Metadata              *Metadata           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	DAG                   *DAGTemplate        `json:"dag,omitempty" yaml:"dag,omitempty"`
	Container             *Container          `json:"container,omitempty" yaml:"container,omitempty"`
	Script                *Script             `json:"script,omitempty" yaml:"script,omitempty"`
	Volumes               []Volume            `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	ActiveDeadlineSeconds *int64              `json:"activeDeadlineSeconds,omitempty" yaml:"activeDeadlineSeconds,omitempty"`
	Timeout               string              `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryStrategy         *RetryStrategy      `json:"retryStrategy,omitempty" yaml:"retryStrategy,omitempty"`
	NodeSelector          map[string]string   `json:"nodeSelector,omitempty" yaml:"nodeSelector,omitempty"`
	Tolerations           []Toleration        `json:"tolerations,omitempty" yaml:"tolerations,omitempty"`
	ServiceAccountName    string              `json:"serviceAccountName,omitempty" yaml:"serviceAccountName,omitempty"`
	Parallelism           *int64              `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
	Metrics               *Metrics            `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Synchronization       *Synchronization    `json:"synchronization,omitempty" yaml:"synchronization,omitempty"`
	SecurityContext       *PodSecurityContext `json:"securityContext,omitempty" yaml:"securityContext,omitempty"`
	PodSpecPatch          string              `json:"podSpecPatch,omitempty" yaml:"podSpecPatch,omitempty"`
	Daemon                *bool               `json:"daemon,omitempty" yaml:"daemon,omitempty"`
	FailFast              *bool               `json:"failFast,omitempty" yaml:"failFast,omitempty"`
	Memoize               *Memoize            `json:"memoize,omitempty" yaml:"memoize,omitempty"`
}

// DAGTemplate is the task graph of a DAG template.
type DAGTemplate struct {
	Tasks    []DAGTask `json:"tasks" yaml:"tasks"`
	Target   string    `json:"target,omitempty" yaml:"target,omitempty"`
	FailFast *bool     `json:"failFast,omitempty" yaml:"failFast,omitempty"`
}

// DAGTask is one dependency descriptor inside a DAG template.
type DAGTask struct {
	Name         string                   `json:"name" yaml:"name"`
	Template     string                   `json:"template,omitempty" yaml:"template,omitempty"`
	TemplateRef  *TemplateRef             `json:"templateRef,omitempty" yaml:"templateRef,omitempty"`
	Arguments    *Arguments               `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Dependencies []string                 `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Depends      string                   `json:"depends,omitempty" yaml:"depends,omitempty"`
	When         string                   `json:"when,omitempty" yaml:"when,omitempty"`
	WithItems    []any                    `json:"withItems,omitempty" yaml:"withItems,omitempty"`
	WithParam    string                   `json:"withParam,omitempty" yaml:"withParam,omitempty"`
	WithSequence *Sequence                `json:"withSequence,omitempty" yaml:"withSequence,omitempty"`
	ContinueOn   *ContinueOn              `json:"continueOn,omitempty" yaml:"continueOn,omitempty"`
	OnExit       string                   `json:"onExit,omitempty" yaml:"onExit,omitempty"`
	Hooks        map[string]LifecycleHook `json:"hooks,omitempty" yaml:"hooks,omitempty"`
}

// TemplateRef references a template in a WorkflowTemplate.
type TemplateRef struct {
	Name         string `json:"name" yaml:"name"`
	Template     string `json:"template" yaml:"template"`
	ClusterScope bool   `json:"clusterScope,omitempty" yaml:"clusterScope,omitempty"`
}

// Sequence expands a task over a numeric range.
type Sequence struct {
	Count  string `json:"count,omitempty" yaml:"count,omitempty"`
	Start  string `json:"start,omitempty" yaml:"start,omitempty"`
	End    string `json:"end,omitempty" yaml:"end,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ContinueOn lets a DAG proceed past failed or errored tasks.
type ContinueOn struct {
	Error  bool `json:"error,omitempty" yaml:"error,omitempty"`
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// LifecycleHook runs a template when an expression becomes true.
type LifecycleHook struct {
	Template   string     `json:"template,omitempty" yaml:"template,omitempty"`
	Expression string     `json:"expression,omitempty" yaml:"expression,omitempty"`
	Arguments  *Arguments `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Metadata is pod-level labels and annotations.
type Metadata struct {
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Container is the main container of a container template.
type Container struct {
	Name            string                `json:"name,omitempty" yaml:"name,omitempty"`
	Image           string                `json:"image" yaml:"image"`
	ImagePullPolicy string                `json:"imagePullPolicy,omitempty" yaml:"imagePullPolicy,omitempty"`
	Command         []string              `json:"command,omitempty" yaml:"command,omitempty"`
	Args            []string              `json:"args,omitempty" yaml:"args,omitempty"`
	Env             []EnvVar              `json:"env,omitempty" yaml:"env,omitempty"`
	WorkingDir      string                `json:"workingDir,omitempty" yaml:"workingDir,omitempty"`
	Resources       *ResourceRequirements `json:"resources,omitempty" yaml:"resources,omitempty"`
	VolumeMounts    []VolumeMount         `json:"volumeMounts,omitempty" yaml:"volumeMounts,omitempty"`
}

// Script is a container template whose command runs inline source.
type Script struct {
	Container `json:",inline" yaml:",inline"`
	Source    string `json:"source" yaml:"source"`
}

// EnvVar is a container environment variable.
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// RetryStrategy is handed to the engine; it is never evaluated locally.
type RetryStrategy struct {
	Limit       string   `json:"limit,omitempty" yaml:"limit,omitempty"`
	RetryPolicy string   `json:"retryPolicy,omitempty" yaml:"retryPolicy,omitempty"`
	Expression  string   `json:"expression,omitempty" yaml:"expression,omitempty"`
	Backoff     *Backoff `json:"backoff,omitempty" yaml:"backoff,omitempty"`
}

// Backoff is the engine-side retry backoff.
type Backoff struct {
	Duration    string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Factor      *int32 `json:"factor,omitempty" yaml:"factor,omitempty"`
	MaxDuration string `json:"maxDuration,omitempty" yaml:"maxDuration,omitempty"`
}

// Toleration lets pods schedule onto tainted nodes.
type Toleration struct {
	Key               string `json:"key,omitempty" yaml:"key,omitempty"`
	Operator          string `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value             string `json:"value,omitempty" yaml:"value,omitempty"`
	Effect            string `json:"effect,omitempty" yaml:"effect,omitempty"`
	TolerationSeconds *int64 `json:"tolerationSeconds,omitempty" yaml:"tolerationSeconds,omitempty"`
}

// PodSecurityContext is the pod-level security context.
type PodSecurityContext struct {
	RunAsUser    *int64 `json:"runAsUser,omitempty" yaml:"runAsUser,omitempty"`
	RunAsGroup   *int64 `json:"runAsGroup,omitempty" yaml:"runAsGroup,omitempty"`
	RunAsNonRoot *bool  `json:"runAsNonRoot,omitempty" yaml:"runAsNonRoot,omitempty"`
	FSGroup      *int64 `json:"fsGroup,omitempty" yaml:"fsGroup,omitempty"`
}

// Synchronization limits concurrent runs with a mutex or semaphore.
type Synchronization struct {
	Mutex     *Mutex        `json:"mutex,omitempty" yaml:"mutex,omitempty"`
	Semaphore *SemaphoreRef `json:"semaphore,omitempty" yaml:"semaphore,omitempty"`
}

// Mutex is a named engine mutex.
type Mutex struct {
	Name string `json:"name" yaml:"name"`
}

// SemaphoreRef points at a config map key holding the semaphore limit.
type SemaphoreRef struct {
	ConfigMapKeyRef *ConfigMapKeySelector `json:"configMapKeyRef,omitempty" yaml:"configMapKeyRef,omitempty"`
}

// ConfigMapKeySelector selects one key of a config map.
type ConfigMapKeySelector struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

// Memoize caches template outputs in a config map.
type Memoize struct {
	Key    string `json:"key" yaml:"key"`
	MaxAge string `json:"maxAge" yaml:"maxAge"`
	Cache  *Cache `json:"cache" yaml:"cache"`
}

// Cache is the memoization store.
type Cache struct {
	ConfigMap *ConfigMapKeySelector `json:"configMap" yaml:"configMap"`
}

// Prometheus is one custom metric emitted by the engine.
type Prometheus struct {
	Name      string        `json:"name" yaml:"name"`
	Help      string        `json:"help" yaml:"help"`
	Labels    []MetricLabel `json:"labels,omitempty" yaml:"labels,omitempty"`
	When      string        `json:"when,omitempty" yaml:"when,omitempty"`
	Gauge     *Gauge        `json:"gauge,omitempty" yaml:"gauge,omitempty"`
	Counter   *Counter      `json:"counter,omitempty" yaml:"counter,omitempty"`
	Histogram *Histogram    `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// MetricLabel is a metric label pair.
type MetricLabel struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Gauge is a gauge metric.
type Gauge struct {
	Value    string `json:"value" yaml:"value"`
	Realtime *bool  `json:"realtime,omitempty" yaml:"realtime,omitempty"`
}

// Counter is a counter metric.
type Counter struct {
	Value string `json:"value" yaml:"value"`
}

// Histogram is a histogram metric.
type Histogram struct {
	Value   string    `json:"value" yaml:"value"`
	Buckets []float64 `json:"buckets" yaml:"buckets"`
}

// Metrics is the engine's plural metrics wrapper.
type Metrics struct {
	Prometheus []Prometheus `json:"prometheus" yaml:"prometheus"`
}
