package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/dagspec/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", Token: "secret", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:2746"})
	assert.Error(t, err)
}

func TestCreatePostsRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/workflows/argo", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.WorkflowCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "etl-", req.Workflow.Metadata.GenerateName)

		writeJSON(w, http.StatusOK, model.Workflow{Metadata: model.ObjectMeta{Name: "etl-abcde", Namespace: "argo"}})
	}))

	wf, err := c.Create(context.Background(), "argo", &model.WorkflowCreateRequest{
		Namespace: "argo",
		Workflow:  &model.Workflow{Metadata: model.ObjectMeta{GenerateName: "etl-"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "etl-abcde", wf.Metadata.Name)
}

func TestActionRoutes(t *testing.T) {
	var seen []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, model.Workflow{Metadata: model.ObjectMeta{Name: "etl"}})
	}))
	ctx := context.Background()

	_, err := c.Lint(ctx, "argo", &model.WorkflowLintRequest{})
	require.NoError(t, err)
	_, err = c.Get(ctx, "argo", "etl")
	require.NoError(t, err)
	_, err = c.Resubmit(ctx, "argo", "etl", &model.WorkflowResubmitRequest{})
	require.NoError(t, err)
	_, err = c.Resume(ctx, "argo", "etl", &model.WorkflowResumeRequest{})
	require.NoError(t, err)
	_, err = c.Retry(ctx, "argo", "etl", &model.WorkflowRetryRequest{})
	require.NoError(t, err)
	_, err = c.Set(ctx, "argo", "etl", &model.WorkflowSetRequest{})
	require.NoError(t, err)
	_, err = c.Stop(ctx, "argo", "etl", &model.WorkflowStopRequest{})
	require.NoError(t, err)
	_, err = c.Suspend(ctx, "argo", "etl", &model.WorkflowSuspendRequest{})
	require.NoError(t, err)
	_, err = c.Terminate(ctx, "argo", "etl", &model.WorkflowTerminateRequest{})
	require.NoError(t, err)
	_, err = c.Delete(ctx, "argo", "etl")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/v1/workflows/argo/lint",
		"GET /api/v1/workflows/argo/etl",
		"PUT /api/v1/workflows/argo/etl/resubmit",
		"PUT /api/v1/workflows/argo/etl/resume",
		"PUT /api/v1/workflows/argo/etl/retry",
		"PUT /api/v1/workflows/argo/etl/set",
		"PUT /api/v1/workflows/argo/etl/stop",
		"PUT /api/v1/workflows/argo/etl/suspend",
		"PUT /api/v1/workflows/argo/etl/terminate",
		"DELETE /api/v1/workflows/argo/etl",
	}, seen)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": 5, "message": `workflows.argoproj.io "etl" not found`})
	}))

	_, err := c.Get(context.Background(), "argo", "etl")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "not found")
	assert.True(t, IsNotFound(err))
}

func TestWaitForCompletion(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		phase := model.PhaseRunning
		switch n := polls.Add(1); {
		case n == 2:
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		case n >= 4:
			phase = model.PhaseSucceeded
		}
		writeJSON(w, http.StatusOK, model.Workflow{
			Metadata: model.ObjectMeta{Name: "etl"},
			Status:   &model.WorkflowStatus{Phase: phase},
		})
	}))

	var seen int
	wf, err := c.WaitForCompletion(context.Background(), "argo", "etl", WaitOptions{
		Interval:    time.Millisecond,
		MaxInterval: 5 * time.Millisecond,
		OnPoll:      func(*model.Workflow) { seen++ },
	})
	require.NoError(t, err)
	assert.Equal(t, model.PhaseSucceeded, wf.Status.Phase)
	assert.Equal(t, int32(4), polls.Load())
	assert.Equal(t, 3, seen)
}

func TestWaitForCompletionStopsOnNotFound(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	}))

	_, err := c.WaitForCompletion(context.Background(), "argo", "gone", WaitOptions{Interval: time.Millisecond})
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), polls.Load())
}

func TestWaitForCompletionHonoursContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.Workflow{Status: &model.WorkflowStatus{Phase: model.PhaseRunning}})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.WaitForCompletion(ctx, "argo", "etl", WaitOptions{Interval: time.Millisecond, MaxInterval: 2 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
