package watch

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/dagspec/internal/model"
)

func newNodeTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Node", Width: 32},
			{Title: "Type", Width: 10},
			{Title: "Phase", Width: 10},
			{Title: "Started", Width: 10},
			{Title: "Duration", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// nodeRows lists the workflow's nodes, earliest start first. Nodes that have
// not started sort last, by name.
func nodeRows(wf *model.Workflow, now time.Time) []table.Row {
	if wf == nil || wf.Status == nil {
		return nil
	}
	nodes := make([]model.NodeStatus, 0, len(wf.Status.Nodes))
	for _, n := range wf.Status.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.StartedAt != b.StartedAt {
			if a.StartedAt == "" {
				return false
			}
			if b.StartedAt == "" {
				return true
			}
			return a.StartedAt < b.StartedAt
		}
		return nodeLabel(a) < nodeLabel(b)
	})

	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		started := ""
		if t, err := time.Parse(time.RFC3339, n.StartedAt); err == nil {
			started = t.Local().Format("15:04:05")
		}
		duration := ""
		if d, ok := elapsed(n.StartedAt, n.FinishedAt, now); ok {
			duration = formatDuration(d)
		}
		rows = append(rows, table.Row{nodeLabel(n), n.Type, string(n.Phase), started, duration})
	}
	return rows
}

func nodeLabel(n model.NodeStatus) string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Name
}
