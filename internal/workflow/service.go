package workflow

import (
	"context"
	"fmt"

	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/model"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks github.com/mattjoyce/dagspec/internal/workflow Service

// DefaultNamespace is used when neither the call nor the workflow names one.
const DefaultNamespace = "default"

// Service is the workflow engine API.
type Service interface {
	Create(ctx context.Context, namespace string, req *model.WorkflowCreateRequest) (*model.Workflow, error)
	Lint(ctx context.Context, namespace string, req *model.WorkflowLintRequest) (*model.Workflow, error)
	Get(ctx context.Context, namespace, name string) (*model.Workflow, error)
	Resubmit(ctx context.Context, namespace, name string, req *model.WorkflowResubmitRequest) (*model.Workflow, error)
	Resume(ctx context.Context, namespace, name string, req *model.WorkflowResumeRequest) (*model.Workflow, error)
	Retry(ctx context.Context, namespace, name string, req *model.WorkflowRetryRequest) (*model.Workflow, error)
	Set(ctx context.Context, namespace, name string, req *model.WorkflowSetRequest) (*model.Workflow, error)
	Stop(ctx context.Context, namespace, name string, req *model.WorkflowStopRequest) (*model.Workflow, error)
	Suspend(ctx context.Context, namespace, name string, req *model.WorkflowSuspendRequest) (*model.Workflow, error)
	Terminate(ctx context.Context, namespace, name string, req *model.WorkflowTerminateRequest) (*model.Workflow, error)
	Delete(ctx context.Context, namespace, name string) (*model.WorkflowDeleteResponse, error)
}

func (w *Workflow) namespace(ns string) string {
	if ns != "" {
		return ns
	}
	if w.Namespace != "" {
		return w.Namespace
	}
	return DefaultNamespace
}

func (w *Workflow) ready(op string, needName bool) error {
	if w.InContext() {
		return fmt.Errorf("%s: %w", op, ErrInContext)
	}
	if needName && w.Name == "" {
		return fmt.Errorf("%s %q: %w", op, w.GenerateName, ErrNameRequired)
	}
	if w.Service == nil {
		return fmt.Errorf("%s: %w", op, ErrNoService)
	}
	return nil
}

func (w *Workflow) reply(op, ns string, m *model.Workflow, err error) (*Workflow, error) {
	if err != nil {
		return nil, fmt.Errorf("%s workflow %q: %w", op, w.displayName(), err)
	}
	out, err := FromModel(m)
	if err != nil {
		return nil, fmt.Errorf("%s workflow %q: %w", op, w.displayName(), err)
	}
	out.Service = w.Service
	if out.Namespace == "" {
		out.Namespace = ns
	}
	log.WithWorkflow(out.displayName()).Debug("workflow call completed", "op", op, "namespace", ns)
	return out, nil
}

// Create submits the compiled workflow.
func (w *Workflow) Create(ctx context.Context, namespace string, opts *model.CreateOptions) (*Workflow, error) {
	if err := w.ready("create", false); err != nil {
		return nil, err
	}
	m, err := w.Build()
	if err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Create(ctx, ns, &model.WorkflowCreateRequest{Namespace: ns, Workflow: m, CreateOptions: opts})
	return w.reply("create", ns, resp, err)
}

// Lint asks the engine to validate the compiled workflow.
func (w *Workflow) Lint(ctx context.Context, namespace string) (*Workflow, error) {
	if err := w.ready("lint", false); err != nil {
		return nil, err
	}
	m, err := w.Build()
	if err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Lint(ctx, ns, &model.WorkflowLintRequest{Namespace: ns, Workflow: m})
	return w.reply("lint", ns, resp, err)
}

// Get fetches the workflow's current state.
func (w *Workflow) Get(ctx context.Context, namespace string) (*model.Workflow, error) {
	if err := w.ready("get", true); err != nil {
		return nil, err
	}
	m, err := w.Service.Get(ctx, w.namespace(namespace), w.Name)
	if err != nil {
		return nil, fmt.Errorf("get workflow %q: %w", w.Name, err)
	}
	return m, nil
}

// Resubmit runs the workflow again as a new workflow.
func (w *Workflow) Resubmit(ctx context.Context, namespace string, memoized bool) (*Workflow, error) {
	if err := w.ready("resubmit", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Resubmit(ctx, ns, w.Name, &model.WorkflowResubmitRequest{Name: w.Name, Namespace: ns, Memoized: memoized})
	return w.reply("resubmit", ns, resp, err)
}

// Resume resumes a suspended workflow.
func (w *Workflow) Resume(ctx context.Context, namespace, nodeFieldSelector string) (*Workflow, error) {
	if err := w.ready("resume", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Resume(ctx, ns, w.Name, &model.WorkflowResumeRequest{Name: w.Name, Namespace: ns, NodeFieldSelector: nodeFieldSelector})
	return w.reply("resume", ns, resp, err)
}

// Retry retries a failed workflow.
func (w *Workflow) Retry(ctx context.Context, namespace string, restartSuccessful bool, nodeFieldSelector string) (*Workflow, error) {
	if err := w.ready("retry", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Retry(ctx, ns, w.Name, &model.WorkflowRetryRequest{
		Name:              w.Name,
		Namespace:         ns,
		RestartSuccessful: restartSuccessful,
		NodeFieldSelector: nodeFieldSelector,
	})
	return w.reply("retry", ns, resp, err)
}

// Set updates node state of a running workflow. Name and namespace of req
// are filled in.
func (w *Workflow) Set(ctx context.Context, namespace string, req model.WorkflowSetRequest) (*Workflow, error) {
	if err := w.ready("set", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	req.Name, req.Namespace = w.Name, ns
	resp, err := w.Service.Set(ctx, ns, w.Name, &req)
	return w.reply("set", ns, resp, err)
}

// Stop stops the workflow, running exit handlers.
func (w *Workflow) Stop(ctx context.Context, namespace, nodeFieldSelector, message string) (*Workflow, error) {
	if err := w.ready("stop", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Stop(ctx, ns, w.Name, &model.WorkflowStopRequest{
		Name:              w.Name,
		Namespace:         ns,
		NodeFieldSelector: nodeFieldSelector,
		Message:           message,
	})
	return w.reply("stop", ns, resp, err)
}

// Suspend suspends the workflow.
func (w *Workflow) Suspend(ctx context.Context, namespace string) (*Workflow, error) {
	if err := w.ready("suspend", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Suspend(ctx, ns, w.Name, &model.WorkflowSuspendRequest{Name: w.Name, Namespace: ns})
	return w.reply("suspend", ns, resp, err)
}

// Terminate stops the workflow without running exit handlers.
func (w *Workflow) Terminate(ctx context.Context, namespace string) (*Workflow, error) {
	if err := w.ready("terminate", true); err != nil {
		return nil, err
	}
	ns := w.namespace(namespace)
	resp, err := w.Service.Terminate(ctx, ns, w.Name, &model.WorkflowTerminateRequest{Name: w.Name, Namespace: ns})
	return w.reply("terminate", ns, resp, err)
}

// Delete deletes the workflow.
func (w *Workflow) Delete(ctx context.Context, namespace string) (*model.WorkflowDeleteResponse, error) {
	if err := w.ready("delete", true); err != nil {
		return nil, err
	}
	resp, err := w.Service.Delete(ctx, w.namespace(namespace), w.Name)
	if err != nil {
		return nil, fmt.Errorf("delete workflow %q: %w", w.Name, err)
	}
	return resp, nil
}
