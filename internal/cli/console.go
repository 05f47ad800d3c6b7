package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sshfwd/sshfwd/internal/ui"
	"github.com/sshfwd/sshfwd/internal/worker"
)

// consoleSink prints rule transitions as plain log lines. Used when the
// dashboard is off; safe for concurrent workers.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer

	okStyle   lipgloss.Style
	warnStyle lipgloss.Style
	failStyle lipgloss.Style
	mutedID   lipgloss.Style
}

func newConsoleSink(out io.Writer) *consoleSink {
	s := &consoleSink{
		out:       out,
		okStyle:   lipgloss.NewStyle(),
		warnStyle: lipgloss.NewStyle(),
		failStyle: lipgloss.NewStyle(),
		mutedID:   lipgloss.NewStyle(),
	}
	// Piped or NO_COLOR output gets the plain symbols only.
	if ui.ColorEnabled() {
		s.okStyle = s.okStyle.Foreground(ui.ColorSuccess)
		s.warnStyle = s.warnStyle.Foreground(ui.ColorWarning)
		s.failStyle = s.failStyle.Foreground(ui.ColorError)
		s.mutedID = s.mutedID.Foreground(ui.ColorMuted)
	}
	return s
}

func (s *consoleSink) RuleStatus(rule string, attempt int, status worker.Status) {
	var line string
	switch status {
	case worker.StatusLaunching:
		if attempt > 1 {
			line = fmt.Sprintf("%s %s reconnecting (attempt %d)",
				s.warnStyle.Render(ui.SymbolProgress), rule, attempt)
		} else {
			line = fmt.Sprintf("%s %s connecting",
				s.warnStyle.Render(ui.SymbolProgress), rule)
		}
	case worker.StatusConnected:
		line = fmt.Sprintf("%s %s connected", s.okStyle.Render(ui.SymbolSuccess), rule)
	case worker.StatusBackoffWaiting:
		// The delay arrives via RuleBackoff; nothing useful to say yet.
		return
	case worker.StatusStoppedCancelled:
		line = fmt.Sprintf("%s %s stopped", s.mutedID.Render(ui.SymbolStopped), rule)
	default:
		line = fmt.Sprintf("%s %s %s", s.failStyle.Render(ui.SymbolFail), rule, status)
	}
	s.print(line)
}

func (s *consoleSink) RuleOutput(rule string, line string) {
	if os.Getenv("SSHFWD_DEBUG") == "" {
		return
	}
	s.print(s.mutedID.Render(fmt.Sprintf("  [%s] %s", rule, line)))
}

func (s *consoleSink) RuleBackoff(rule string, delay time.Duration) {
	s.print(fmt.Sprintf("%s %s connection lost, retrying in %s",
		s.warnStyle.Render(ui.SymbolProgress), rule, delay))
}

func (s *consoleSink) print(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}
