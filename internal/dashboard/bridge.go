package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sshfwd/sshfwd/internal/worker"
)

// Bridge adapts worker status callbacks into Bubble Tea messages via
// program.Send(), which is goroutine-safe. Every worker calls in from
// its own goroutine.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a bridge that forwards events to the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// RuleStatus forwards a state transition to the TUI.
func (b *Bridge) RuleStatus(rule string, attempt int, status worker.Status) {
	b.program.Send(ruleStatusMsg{Rule: rule, Attempt: attempt, Status: status})
}

// RuleOutput forwards one line of ssh output to the TUI.
func (b *Bridge) RuleOutput(rule string, line string) {
	b.program.Send(ruleOutputMsg{Rule: rule, Line: line})
}

// RuleBackoff forwards a retry wait to the TUI.
func (b *Bridge) RuleBackoff(rule string, delay time.Duration) {
	b.program.Send(ruleBackoffMsg{Rule: rule, Delay: delay})
}
