package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/dagspec/internal/dag"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/workflow/mocks"
)

func serverCopy(name string) *model.Workflow {
	return &model.Workflow{
		APIVersion: model.DefaultAPIVersion,
		Kind:       model.KindWorkflow,
		Metadata:   model.ObjectMeta{Name: name, Namespace: "argo", UID: "uid-1"},
		Spec:       model.WorkflowSpec{Entrypoint: "main", Parallelism: ptr(int64(2))},
		Status:     &model.WorkflowStatus{Phase: model.PhaseRunning},
	}
}

func TestCreateSendsCompiledWorkflow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mocks.NewMockService(ctrl)
	ctx := context.Background()

	w, err := New("", "etl-", WithService(svc), WithDAGName("main"))
	require.NoError(t, err)
	w.Namespace = "argo"

	svc.EXPECT().Create(ctx, "argo", gomock.Any()).DoAndReturn(
		func(_ context.Context, ns string, req *model.WorkflowCreateRequest) (*model.Workflow, error) {
			assert.Equal(t, "argo", req.Namespace)
			assert.Equal(t, "etl-", req.Workflow.Metadata.GenerateName)
			assert.Equal(t, "main", req.Workflow.Spec.Entrypoint)
			return serverCopy("etl-x7k2p"), nil
		})

	got, err := w.Create(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "etl-x7k2p", got.Name)
	assert.Equal(t, "argo", got.Namespace)
	assert.Equal(t, "main", got.DAG.Name)
	assert.Equal(t, int64(2), *got.Parallelism)
	assert.Same(t, svc, got.Service)
}

func TestTransportRejectedWhileInContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mocks.NewMockService(ctrl)

	w, err := New("etl", "", WithService(svc))
	require.NoError(t, err)

	s := dag.NewSession()
	err = w.Scope(s, func(w *Workflow) error {
		_, err := w.Create(context.Background(), "argo", nil)
		return err
	})
	assert.ErrorIs(t, err, ErrInContext)
}

func TestNameRequiredOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mocks.NewMockService(ctrl)
	ctx := context.Background()

	w, err := New("", "etl-", WithService(svc))
	require.NoError(t, err)

	calls := map[string]func() error{
		"get":       func() error { _, err := w.Get(ctx, ""); return err },
		"resubmit":  func() error { _, err := w.Resubmit(ctx, "", false); return err },
		"resume":    func() error { _, err := w.Resume(ctx, "", ""); return err },
		"retry":     func() error { _, err := w.Retry(ctx, "", false, ""); return err },
		"set":       func() error { _, err := w.Set(ctx, "", model.WorkflowSetRequest{}); return err },
		"stop":      func() error { _, err := w.Stop(ctx, "", "", ""); return err },
		"suspend":   func() error { _, err := w.Suspend(ctx, ""); return err },
		"terminate": func() error { _, err := w.Terminate(ctx, ""); return err },
		"delete":    func() error { _, err := w.Delete(ctx, ""); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrNameRequired)
		})
	}
}

func TestNoService(t *testing.T) {
	w, err := New("etl", "")
	require.NoError(t, err)
	_, err = w.Lint(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoService)
}

func TestNamedOperationsForwardRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mocks.NewMockService(ctrl)
	ctx := context.Background()

	w, err := New("etl", "", WithService(svc))
	require.NoError(t, err)

	svc.EXPECT().Resubmit(ctx, "default", "etl", &model.WorkflowResubmitRequest{Name: "etl", Namespace: "default", Memoized: true}).
		Return(serverCopy("etl-2"), nil)
	svc.EXPECT().Resume(ctx, "argo", "etl", &model.WorkflowResumeRequest{Name: "etl", Namespace: "argo", NodeFieldSelector: "id=1"}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Retry(ctx, "argo", "etl", &model.WorkflowRetryRequest{Name: "etl", Namespace: "argo", RestartSuccessful: true}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Set(ctx, "argo", "etl", &model.WorkflowSetRequest{Name: "etl", Namespace: "argo", Phase: "Succeeded"}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Stop(ctx, "argo", "etl", &model.WorkflowStopRequest{Name: "etl", Namespace: "argo", Message: "bye"}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Suspend(ctx, "argo", "etl", &model.WorkflowSuspendRequest{Name: "etl", Namespace: "argo"}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Terminate(ctx, "argo", "etl", &model.WorkflowTerminateRequest{Name: "etl", Namespace: "argo"}).
		Return(serverCopy("etl"), nil)
	svc.EXPECT().Get(ctx, "argo", "etl").Return(serverCopy("etl"), nil)
	svc.EXPECT().Delete(ctx, "argo", "etl").Return(&model.WorkflowDeleteResponse{}, nil)

	got, err := w.Resubmit(ctx, "", true)
	require.NoError(t, err)
	assert.Equal(t, "etl-2", got.Name)

	_, err = w.Resume(ctx, "argo", "id=1")
	require.NoError(t, err)
	_, err = w.Retry(ctx, "argo", true, "")
	require.NoError(t, err)
	_, err = w.Set(ctx, "argo", model.WorkflowSetRequest{Phase: "Succeeded"})
	require.NoError(t, err)
	_, err = w.Stop(ctx, "argo", "", "bye")
	require.NoError(t, err)
	_, err = w.Suspend(ctx, "argo")
	require.NoError(t, err)
	_, err = w.Terminate(ctx, "argo")
	require.NoError(t, err)

	m, err := w.Get(ctx, "argo")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseRunning, m.Status.Phase)

	_, err = w.Delete(ctx, "argo")
	require.NoError(t, err)
}

func TestServiceErrorWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mocks.NewMockService(ctrl)
	ctx := context.Background()
	boom := errors.New("connection refused")

	w, err := New("etl", "", WithService(svc))
	require.NoError(t, err)
	svc.EXPECT().Lint(ctx, "default", gomock.Any()).Return(nil, boom)

	_, err = w.Lint(ctx, "")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `lint workflow "etl"`)
}
