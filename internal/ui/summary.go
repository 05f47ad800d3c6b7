package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sshfwd/sshfwd/internal/worker"
)

// RuleOutcome is one rule's final line in the shutdown summary.
type RuleOutcome struct {
	Name     string
	Target   string
	Status   worker.Status
	Attempts int
}

// SummaryRenderer formats the end-of-run report printed after all
// workers have stopped.
type SummaryRenderer struct {
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
	nameStyle    lipgloss.Style
}

// NewSummaryRenderer creates a renderer with the default styles.
func NewSummaryRenderer() *SummaryRenderer {
	return &SummaryRenderer{
		successStyle: lipgloss.NewStyle().Foreground(ColorSuccess),
		errorStyle:   lipgloss.NewStyle().Foreground(ColorError),
		warnStyle:    lipgloss.NewStyle().Foreground(ColorWarning),
		mutedStyle:   lipgloss.NewStyle().Foreground(ColorMuted),
		nameStyle:    lipgloss.NewStyle().Bold(true),
	}
}

// RenderSummary formats the final report using default styles.
func RenderSummary(outcomes []RuleOutcome, elapsed time.Duration) string {
	return NewSummaryRenderer().Render(outcomes, elapsed)
}

// Render produces one line per rule plus a trailing elapsed-time line.
func (r *SummaryRenderer) Render(outcomes []RuleOutcome, elapsed time.Duration) string {
	if len(outcomes) == 0 {
		return ""
	}

	nameWidth := 0
	for _, o := range outcomes {
		if len(o.Name) > nameWidth {
			nameWidth = len(o.Name)
		}
	}

	var sb strings.Builder
	for _, o := range outcomes {
		symbol, style := r.decorate(o.Status)
		sb.WriteString("  ")
		sb.WriteString(style.Render(symbol))
		sb.WriteString(" ")
		sb.WriteString(r.nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, o.Name)))
		sb.WriteString("  ")
		sb.WriteString(style.Render(o.Status.String()))
		if o.Target != "" {
			sb.WriteString("  ")
			sb.WriteString(r.mutedStyle.Render(o.Target))
		}
		if o.Attempts > 1 {
			sb.WriteString("  ")
			sb.WriteString(r.mutedStyle.Render(fmt.Sprintf("(%d attempts)", o.Attempts)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(r.mutedStyle.Render(fmt.Sprintf("  ran for %s", elapsed.Round(time.Second))))
	sb.WriteString("\n")
	return sb.String()
}

// decorate maps a final status to its symbol and color.
func (r *SummaryRenderer) decorate(s worker.Status) (string, lipgloss.Style) {
	switch s {
	case worker.StatusConnected:
		return SymbolSuccess, r.successStyle
	case worker.StatusStoppedCancelled:
		return SymbolStopped, r.mutedStyle
	case worker.StatusLaunching, worker.StatusBackoffWaiting:
		return SymbolProgress, r.warnStyle
	default:
		return SymbolFail, r.errorStyle
	}
}
