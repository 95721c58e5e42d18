package model

// CreateOptions are Kubernetes create options forwarded by the server.
type CreateOptions struct {
	DryRun       []string `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	FieldManager string   `json:"fieldManager,omitempty" yaml:"fieldManager,omitempty"`
}

// WorkflowCreateRequest is the body of a create call.
type WorkflowCreateRequest struct {
	Namespace     string         `json:"namespace,omitempty"`
	Workflow      *Workflow      `json:"workflow"`
	ServerDryRun  bool           `json:"serverDryRun,omitempty"`
	CreateOptions *CreateOptions `json:"createOptions,omitempty"`
}

// WorkflowLintRequest is the body of a lint call.
type WorkflowLintRequest struct {
	Namespace string    `json:"namespace,omitempty"`
	Workflow  *Workflow `json:"workflow"`
}

// WorkflowResubmitRequest is the body of a resubmit call.
type WorkflowResubmitRequest struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Memoized  bool   `json:"memoized,omitempty"`
}

// WorkflowResumeRequest is the body of a resume call.
type WorkflowResumeRequest struct {
	Name              string `json:"name"`
	Namespace         string `json:"namespace"`
	NodeFieldSelector string `json:"nodeFieldSelector,omitempty"`
}

// WorkflowRetryRequest is the body of a retry call.
type WorkflowRetryRequest struct {
	Name              string `json:"name"`
	Namespace         string `json:"namespace"`
	RestartSuccessful bool   `json:"restartSuccessful,omitempty"`
	NodeFieldSelector string `json:"nodeFieldSelector,omitempty"`
}

// WorkflowSetRequest is the body of a set call.
type WorkflowSetRequest struct {
	Name              string `json:"name"`
	Namespace         string `json:"namespace"`
	NodeFieldSelector string `json:"nodeFieldSelector,omitempty"`
	Message           string `json:"message,omitempty"`
	Phase             string `json:"phase,omitempty"`
	OutputParameters  string `json:"outputParameters,omitempty"`
}

// WorkflowStopRequest is the body of a stop call.
type WorkflowStopRequest struct {
	Name              string `json:"name"`
	Namespace         string `json:"namespace"`
	NodeFieldSelector string `json:"nodeFieldSelector,omitempty"`
	Message           string `json:"message,omitempty"`
}

// WorkflowSuspendRequest is the body of a suspend call.
type WorkflowSuspendRequest struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// WorkflowTerminateRequest is the body of a terminate call.
type WorkflowTerminateRequest struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// WorkflowDeleteResponse is the (empty) body returned by delete.
type WorkflowDeleteResponse struct{}
