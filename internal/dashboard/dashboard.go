// Package dashboard provides an interactive Bubble Tea TUI showing the
// live state of every forwarding rule: connected, retrying with a
// countdown, or stopped. It degrades to plain supervision on non-TTY
// output.
package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/logger"
	"github.com/sshfwd/sshfwd/internal/supervisor"
	"github.com/sshfwd/sshfwd/internal/ui"
	"github.com/sshfwd/sshfwd/internal/worker"
)

// Run supervises the rules behind a full-screen TUI. The supervisor runs
// in a background goroutine while the TUI owns the terminal. Pressing q
// cancels all workers and waits for them to release their children.
// On a non-TTY stdout it falls back to running without a dashboard.
func Run(ctx context.Context, rules []config.Rule, opts worker.Options, log logger.Logger) (*supervisor.Result, error) {
	if !ui.InteractiveOutput() {
		return supervisor.New(rules, opts, log).Run(ctx), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(rules, cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())

	bridge := NewBridge(program)
	opts.Sink = bridge

	// Worker logs would fight the TUI for the terminal.
	sup := supervisor.New(rules, opts, logger.Noop())

	resultChan := make(chan *supervisor.Result, 1)
	go func() {
		result := sup.Run(ctx)
		resultChan <- result
		program.Send(runDoneMsg{result: result})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-resultChan
		return nil, err
	}

	// The TUI has exited; make sure the workers wind down too.
	cancel()
	return <-resultChan, nil
}
