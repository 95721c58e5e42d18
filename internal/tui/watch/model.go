package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/dagspec/internal/model"
)

// Getter fetches a workflow. workflow.Service satisfies it.
type Getter interface {
	Get(ctx context.Context, namespace, name string) (*model.Workflow, error)
}

// Options tune polling.
type Options struct {
	Interval time.Duration
	// RequestTimeout bounds each Get call.
	RequestTimeout time.Duration
}

type statusMsg struct {
	wf *model.Workflow
	at time.Time
}

type pollMsg struct{}

type errMsg struct{ err error }

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	getter    Getter
	namespace string
	name      string
	opts      Options

	width int

	wf        *model.Workflow
	lastPoll  time.Time
	lastError string
	done      bool

	table   table.Model
	spinner spinner.Model
	theme   Theme
}

// New creates a watch model for one workflow.
func New(getter Getter, namespace, name string, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	theme := NewDefaultTheme()
	return Model{
		getter:    getter,
		namespace: namespace,
		name:      name,
		opts:      opts,
		table:     newNodeTable(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Highlight)),
		theme:     theme,
	}
}

// Workflow is the last fetched state, nil before the first poll succeeds.
func (m Model) Workflow() *model.Workflow { return m.wf }

// Phase is the last observed workflow phase.
func (m Model) Phase() model.Phase {
	if m.wf == nil || m.wf.Status == nil {
		return ""
	}
	return m.wf.Status.Phase
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.RequestTimeout)
		defer cancel()
		wf, err := m.getter.Get(ctx, m.namespace, m.name)
		if err != nil {
			return errMsg{err: err}
		}
		return statusMsg{wf: wf, at: time.Now()}
	}
}

func (m Model) schedule() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width - 6)
		return m, nil

	case pollMsg:
		return m, m.fetch()

	case statusMsg:
		m.wf = msg.wf
		m.lastPoll = msg.at
		m.lastError = ""
		m.table.SetRows(nodeRows(msg.wf, msg.at))
		if m.Phase().Completed() {
			m.done = true
			return m, tea.Quit
		}
		return m, m.schedule()

	case errMsg:
		m.lastError = msg.err.Error()
		return m, m.schedule()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	parts := []string{
		renderHeader(m.wf, m.namespace, m.name, m.spinner.View(), m.lastPoll, m.theme, width),
		m.table.View(),
	}
	if m.lastError != "" {
		parts = append(parts, m.theme.PhaseFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError)))
	}
	if !m.done {
		parts = append(parts, m.theme.Help.Render(" [q] Quit • [↑/↓] Scroll nodes"))
	}

	return lipgloss.NewStyle().Margin(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Run shows the watch view until the workflow completes, the user quits or
// ctx ends, and returns the last observed phase.
func Run(ctx context.Context, getter Getter, namespace, name string, opts Options) (model.Phase, error) {
	p := tea.NewProgram(New(getter, namespace, name, opts), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("watch %s/%s: %w", namespace, name, err)
	}
	return final.(Model).Phase(), nil
}
