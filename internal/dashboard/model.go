package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/supervisor"
	"github.com/sshfwd/sshfwd/internal/ui"
	"github.com/sshfwd/sshfwd/internal/worker"
)

// RuleEntry holds the display state of a single forwarding rule.
type RuleEntry struct {
	Label    string
	Target   string
	Status   worker.Status
	Attempt  int
	Delay    time.Duration
	LastLine string
	Since    time.Time
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	entries    []RuleEntry
	index      map[string]int
	selected   int
	width      int
	height     int
	spinner    spinner.Model
	completed  bool
	result     *supervisor.Result
	cancelFunc context.CancelFunc
	stopAsked  bool
	quitting   bool
}

// NewModel creates a dashboard model with one entry per rule, in
// configuration order.
func NewModel(rules []config.Rule, cancelFunc context.CancelFunc) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ui.ColorInfo)),
	)

	entries := make([]RuleEntry, len(rules))
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		entries[i] = RuleEntry{
			Label:  r.Label(),
			Target: r.Describe(),
			Status: worker.StatusLaunching,
		}
		index[r.Label()] = i
	}

	return Model{
		entries:    entries,
		index:      index,
		spinner:    sp,
		cancelFunc: cancelFunc,
	}
}

// Init returns the initial command for the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ruleStatusMsg:
		if i, ok := m.index[msg.Rule]; ok {
			m.entries[i].Status = msg.Status
			m.entries[i].Attempt = msg.Attempt
			m.entries[i].Since = time.Now()
			if msg.Status != worker.StatusBackoffWaiting {
				m.entries[i].Delay = 0
			}
		}
		return m, nil

	case ruleOutputMsg:
		if i, ok := m.index[msg.Rule]; ok {
			m.entries[i].LastLine = msg.Line
		}
		return m, nil

	case ruleBackoffMsg:
		if i, ok := m.index[msg.Rule]; ok {
			m.entries[i].Delay = msg.Delay
		}
		return m, nil

	case runDoneMsg:
		m.completed = true
		m.result = msg.result
		for _, rr := range msg.result.Rules {
			if i, ok := m.index[rr.Rule.Label()]; ok {
				m.entries[i].Status = rr.Status
				m.entries[i].Attempt = rr.Attempts
			}
		}
		if m.stopAsked {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
		return m, nil

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "g", "home":
		m.selected = 0
		return m, nil

	case "G", "end":
		if len(m.entries) > 0 {
			m.selected = len(m.entries) - 1
		}
		return m, nil

	case "q", "ctrl+c":
		if m.cancelFunc != nil {
			m.cancelFunc()
		}
		if m.completed {
			m.quitting = true
			return m, tea.Quit
		}
		// Shutdown requested; quit once the supervisor reports back so
		// no ssh child is orphaned behind the TUI.
		m.stopAsked = true
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.renderRules())

	if showFooter(m.height) {
		sb.WriteString("\n")
		sb.WriteString(m.renderFooter())
	}

	return sb.String()
}

// renderHeader summarizes the fleet: how many tunnels are up, retrying,
// or stopped.
func (m Model) renderHeader() string {
	connected := 0
	waiting := 0
	launching := 0
	stopped := 0
	for _, e := range m.entries {
		switch {
		case e.Status == worker.StatusConnected:
			connected++
		case e.Status == worker.StatusBackoffWaiting:
			waiting++
		case e.Status == worker.StatusLaunching:
			launching++
		case e.Status.Terminal():
			stopped++
		}
	}

	var status string
	if m.completed {
		if stopped == len(m.entries) && connected == 0 {
			status = summaryDownStyle.Render(fmt.Sprintf("all %d stopped", stopped))
		} else {
			status = summaryUpStyle.Render(fmt.Sprintf("%d up", connected)) +
				footerStyle.Render(", ") +
				summaryDownStyle.Render(fmt.Sprintf("%d stopped", stopped))
		}
		status += footerStyle.Render(fmt.Sprintf(" in %.1fs", m.result.Duration.Seconds()))
	} else {
		parts := []string{}
		if connected > 0 {
			parts = append(parts, connectedStyle.Render(fmt.Sprintf("%d up", connected)))
		}
		if launching > 0 {
			parts = append(parts, launchingStyle.Render(fmt.Sprintf("%d launching", launching)))
		}
		if waiting > 0 {
			parts = append(parts, waitingStyle.Render(fmt.Sprintf("%d waiting", waiting)))
		}
		if stopped > 0 {
			parts = append(parts, stoppedStyle.Render(fmt.Sprintf("%d stopped", stopped)))
		}
		status = strings.Join(parts, footerStyle.Render(" | "))
	}

	return headerStyle.Render("Forwards") + " " + status
}

// renderRules renders all rule entries.
func (m Model) renderRules() string {
	var sb strings.Builder
	for i, e := range m.entries {
		sb.WriteString(m.renderRuleLine(e, i == m.selected))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderRuleLine renders a single rule entry.
func (m Model) renderRuleLine(e RuleEntry, selected bool) string {
	var symbol string
	var statusStyle lipgloss.Style

	switch e.Status {
	case worker.StatusLaunching:
		symbol = strings.TrimRight(m.spinner.View(), " ")
		statusStyle = launchingStyle
	case worker.StatusConnected:
		symbol = ui.SymbolSuccess
		statusStyle = connectedStyle
	case worker.StatusBackoffWaiting:
		symbol = strings.TrimRight(m.spinner.View(), " ")
		statusStyle = waitingStyle
	case worker.StatusStoppedCancelled:
		symbol = ui.SymbolStopped
		statusStyle = cancelledStyle
	default:
		symbol = ui.SymbolFail
		statusStyle = stoppedStyle
	}

	line := symbol + " " + e.Label + " " + statusStyle.Render(e.Status.String())

	if e.Status == worker.StatusBackoffWaiting && e.Delay > 0 {
		line += " " + targetStyle.Render(fmt.Sprintf("retry in %s", e.Delay))
	}
	if e.Attempt > 1 {
		line += " " + targetStyle.Render(fmt.Sprintf("attempt %d", e.Attempt))
	}
	line += " " + targetStyle.Render(e.Target)

	if selected && e.LastLine != "" {
		line += "\n    " + outputStyle.Render(e.LastLine)
	}

	if selected {
		return selectedStyle.Render(line)
	}
	return unselectedStyle.Render(line)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m Model) renderFooter() string {
	if m.completed {
		return footerStyle.Render("Press q to exit")
	}
	return footerStyle.Render("j/k: navigate | q: stop all tunnels and exit")
}
