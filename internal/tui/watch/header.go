package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/dagspec/internal/model"
)

// renderHeader draws the workflow summary box.
func renderHeader(wf *model.Workflow, namespace, name, spin string, lastPoll time.Time, theme Theme, width int) string {
	innerWidth := width - 4

	phase := model.PhasePending
	var status model.WorkflowStatus
	if wf != nil && wf.Status != nil {
		status = *wf.Status
		if status.Phase != "" {
			phase = status.Phase
		}
	}

	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	titleText := theme.Title.Render(fmt.Sprintf("%s/%s", namespace, name))
	if !phase.Completed() {
		titleText += " " + spin
	}
	pad := innerWidth - lipgloss.Width(titleText) - lipgloss.Width(clock) - 2
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock

	statsLine := fmt.Sprintf(" Phase: %s", theme.Phase(phase).Render(string(phase)))
	if status.Progress != "" {
		statsLine += fmt.Sprintf("  Progress: %s", theme.Highlight.Render(status.Progress))
	}
	if d, ok := elapsed(status.StartedAt, status.FinishedAt, time.Now()); ok {
		statsLine += fmt.Sprintf("  ⏱ %s", formatDuration(d))
	}

	pollLine := " Last poll: never"
	if !lastPoll.IsZero() {
		pollLine = fmt.Sprintf(" Last poll: %s ago", time.Since(lastPoll).Round(time.Second))
	}
	lines := []string{titleLine, statsLine, theme.Dim.Render(pollLine)}
	if status.Message != "" {
		lines = append(lines, " "+theme.Phase(phase).Render(status.Message))
	}

	return theme.Border.Width(innerWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// elapsed is the run time from engine timestamps. An unfinished run is
// measured up to now.
func elapsed(startedAt, finishedAt string, now time.Time) (time.Duration, bool) {
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0, false
	}
	end := now
	if finishedAt != "" {
		if t, err := time.Parse(time.RFC3339, finishedAt); err == nil {
			end = t
		}
	}
	if end.Before(start) {
		return 0, false
	}
	return end.Sub(start), true
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
