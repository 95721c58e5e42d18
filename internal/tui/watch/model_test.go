package watch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/dagspec/internal/model"
)

type stubGetter struct {
	wf  *model.Workflow
	err error
	ns  string
	nm  string
}

func (s *stubGetter) Get(_ context.Context, namespace, name string) (*model.Workflow, error) {
	s.ns, s.nm = namespace, name
	return s.wf, s.err
}

func running() *model.Workflow {
	return &model.Workflow{
		Metadata: model.ObjectMeta{Name: "etl-abc", Namespace: "argo"},
		Status: &model.WorkflowStatus{
			Phase:     model.PhaseRunning,
			Progress:  "1/3",
			StartedAt: "2026-01-01T10:00:00Z",
			Nodes: map[string]model.NodeStatus{
				"n3": {Name: "etl-abc.load", DisplayName: "load", Type: "Pod", Phase: model.PhasePending},
				"n1": {Name: "etl-abc", DisplayName: "etl-abc", Type: "DAG", Phase: model.PhaseRunning, StartedAt: "2026-01-01T10:00:00Z"},
				"n2": {Name: "etl-abc.extract", DisplayName: "extract", Type: "Pod", Phase: model.PhaseSucceeded,
					StartedAt: "2026-01-01T10:00:05Z", FinishedAt: "2026-01-01T10:01:10Z"},
			},
		},
	}
}

func TestFetchUsesGetter(t *testing.T) {
	g := &stubGetter{wf: running()}
	m := New(g, "argo", "etl-abc", Options{})

	msg := m.fetch()()
	status, ok := msg.(statusMsg)
	require.True(t, ok)
	assert.Equal(t, "argo", g.ns)
	assert.Equal(t, "etl-abc", g.nm)
	assert.Equal(t, model.PhaseRunning, status.wf.Status.Phase)

	g.err = errors.New("connection refused")
	_, ok = m.fetch()().(errMsg)
	assert.True(t, ok)
}

func TestUpdateStatusKeepsPolling(t *testing.T) {
	m := New(&stubGetter{}, "argo", "etl-abc", Options{Interval: time.Millisecond})

	next, cmd := m.Update(statusMsg{wf: running(), at: time.Now()})
	wm := next.(Model)
	assert.Equal(t, model.PhaseRunning, wm.Phase())
	assert.NotNil(t, cmd)
	assert.False(t, wm.done)

	rows := wm.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "etl-abc", rows[0][0])
	assert.Equal(t, "extract", rows[1][0])
	assert.Equal(t, "1m 5s", rows[1][4])
	assert.Equal(t, "load", rows[2][0])
}

func TestUpdateQuitsOnCompletion(t *testing.T) {
	m := New(&stubGetter{}, "argo", "etl-abc", Options{})
	wf := running()
	wf.Status.Phase = model.PhaseSucceeded

	next, cmd := m.Update(statusMsg{wf: wf, at: time.Now()})
	wm := next.(Model)
	assert.True(t, wm.done)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdateErrorIsShown(t *testing.T) {
	m := New(&stubGetter{}, "argo", "etl-abc", Options{})
	next, cmd := m.Update(errMsg{err: errors.New("boom")})
	wm := next.(Model)
	assert.NotNil(t, cmd)
	assert.Contains(t, wm.View(), "boom")
}

func TestQuitKey(t *testing.T) {
	m := New(&stubGetter{}, "argo", "etl-abc", Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsHeader(t *testing.T) {
	m := New(&stubGetter{}, "argo", "etl-abc", Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	next, _ = next.(Model).Update(statusMsg{wf: running(), at: time.Now()})
	view := next.(Model).View()
	assert.True(t, strings.Contains(view, "argo/etl-abc"))
	assert.Contains(t, view, "Running")
	assert.Contains(t, view, "1/3")
}

func TestElapsed(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 30, 0, time.UTC)
	d, ok := elapsed("2026-01-01T10:00:00Z", "", now)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, d)

	_, ok = elapsed("", "", now)
	assert.False(t, ok)
	assert.Equal(t, "2h 3m", formatDuration(2*time.Hour+3*time.Minute))
}
