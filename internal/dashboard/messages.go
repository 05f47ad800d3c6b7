package dashboard

import (
	"time"

	"github.com/sshfwd/sshfwd/internal/supervisor"
	"github.com/sshfwd/sshfwd/internal/worker"
)

// ruleStatusMsg signals a rule moved to a new supervision state.
type ruleStatusMsg struct {
	Rule    string
	Attempt int
	Status  worker.Status
}

// ruleOutputMsg carries one line of ssh output for a rule.
type ruleOutputMsg struct {
	Rule string
	Line string
}

// ruleBackoffMsg signals a rule entered a retry wait.
type ruleBackoffMsg struct {
	Rule  string
	Delay time.Duration
}

// runDoneMsg signals the supervisor has finished.
type runDoneMsg struct {
	result *supervisor.Result
}
