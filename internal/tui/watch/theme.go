// Package watch is a live terminal view of one running workflow.
package watch

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/dagspec/internal/model"
)

// Theme centralizes all styling for the watch TUI.
type Theme struct {
	PhaseSucceeded lipgloss.Style
	PhaseRunning   lipgloss.Style
	PhaseFailed    lipgloss.Style
	PhasePending   lipgloss.Style
	PhaseSkipped   lipgloss.Style

	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	Help      lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		PhaseSucceeded: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		PhaseRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		PhaseFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		PhasePending:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		PhaseSkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Phase returns the style for a workflow or node phase.
func (t Theme) Phase(p model.Phase) lipgloss.Style {
	switch p {
	case model.PhaseSucceeded:
		return t.PhaseSucceeded
	case model.PhaseRunning:
		return t.PhaseRunning
	case model.PhaseFailed, model.PhaseError:
		return t.PhaseFailed
	case model.PhaseSkipped, model.PhaseOmitted:
		return t.PhaseSkipped
	}
	return t.PhasePending
}
