package dashboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/supervisor"
	"github.com/sshfwd/sshfwd/internal/worker"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testRules() []config.Rule {
	return []config.Rule{
		{Name: "postgres", LocalBind: "127.0.0.1", LocalPort: 5432, RemoteAddress: "db:5432", SSHHost: "bastion", SSHUser: "ops", SSHPort: 22},
		{Name: "redis", LocalBind: "127.0.0.1", LocalPort: 6379, RemoteAddress: "cache:6379", SSHHost: "bastion", SSHUser: "ops", SSHPort: 22},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg interface{}) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestNewModel_OneEntryPerRuleInOrder(t *testing.T) {
	m := NewModel(testRules(), nil)

	require.Len(t, m.entries, 2)
	assert.Equal(t, "postgres", m.entries[0].Label)
	assert.Equal(t, "redis", m.entries[1].Label)
	assert.Equal(t, worker.StatusLaunching, m.entries[0].Status)
	assert.Equal(t, worker.StatusLaunching, m.entries[1].Status)
}

func TestModel_RuleStatusUpdatesEntry(t *testing.T) {
	m := NewModel(testRules(), nil)

	m = update(t, m, ruleStatusMsg{Rule: "redis", Attempt: 2, Status: worker.StatusConnected})

	assert.Equal(t, worker.StatusConnected, m.entries[1].Status)
	assert.Equal(t, 2, m.entries[1].Attempt)
	assert.Equal(t, worker.StatusLaunching, m.entries[0].Status)
}

func TestModel_UnknownRuleIsIgnored(t *testing.T) {
	m := NewModel(testRules(), nil)

	m = update(t, m, ruleStatusMsg{Rule: "nope", Status: worker.StatusConnected})

	assert.Equal(t, worker.StatusLaunching, m.entries[0].Status)
	assert.Equal(t, worker.StatusLaunching, m.entries[1].Status)
}

func TestModel_BackoffDelayShownThenCleared(t *testing.T) {
	m := NewModel(testRules(), nil)

	m = update(t, m, ruleStatusMsg{Rule: "postgres", Attempt: 1, Status: worker.StatusBackoffWaiting})
	m = update(t, m, ruleBackoffMsg{Rule: "postgres", Delay: 2 * time.Second})
	assert.Equal(t, 2*time.Second, m.entries[0].Delay)

	view := m.View()
	assert.Contains(t, view, "retry in 2s")

	m = update(t, m, ruleStatusMsg{Rule: "postgres", Attempt: 2, Status: worker.StatusLaunching})
	assert.Zero(t, m.entries[0].Delay)
}

func TestModel_OutputAttachesToSelectedRule(t *testing.T) {
	m := NewModel(testRules(), nil)

	m = update(t, m, ruleOutputMsg{Rule: "postgres", Line: "debug1: Connecting to bastion"})
	assert.Equal(t, "debug1: Connecting to bastion", m.entries[0].LastLine)

	// Selected row shows its last output line.
	assert.Contains(t, m.View(), "debug1: Connecting to bastion")
}

func TestModel_RunDoneAdoptsFinalStatuses(t *testing.T) {
	rules := testRules()
	m := NewModel(rules, nil)

	res := &supervisor.Result{
		Rules: []supervisor.RuleResult{
			{Rule: rules[0], Status: worker.StatusStoppedAuth, Attempts: 1},
			{Rule: rules[1], Status: worker.StatusStoppedCancelled, Attempts: 3},
		},
		Duration: 5 * time.Second,
	}
	m = update(t, m, runDoneMsg{result: res})

	assert.True(t, m.completed)
	assert.Equal(t, worker.StatusStoppedAuth, m.entries[0].Status)
	assert.Equal(t, worker.StatusStoppedCancelled, m.entries[1].Status)
	assert.Contains(t, m.View(), "stopped: auth failed")
}

func TestModel_QuitAfterStopRequestWaitsForSupervisor(t *testing.T) {
	cancelled := false
	m := NewModel(testRules(), func() { cancelled = true })

	// q while running requests shutdown but keeps the TUI alive.
	next, cmd := m.Update(keyMsg("q"))
	m = next.(Model)
	assert.True(t, cancelled)
	assert.Nil(t, cmd)
	assert.False(t, m.quitting)

	// Supervisor reporting back quits the TUI.
	next, cmd = m.Update(runDoneMsg{result: &supervisor.Result{}})
	m = next.(Model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(testRules(), nil)

	m = update(t, m, keyMsg("j"))
	assert.Equal(t, 1, m.selected)

	// Bounded at the last entry.
	m = update(t, m, keyMsg("j"))
	assert.Equal(t, 1, m.selected)

	m = update(t, m, keyMsg("k"))
	assert.Equal(t, 0, m.selected)

	m = update(t, m, keyMsg("G"))
	assert.Equal(t, 1, m.selected)

	m = update(t, m, keyMsg("g"))
	assert.Equal(t, 0, m.selected)
}

func TestModel_HeaderCounts(t *testing.T) {
	m := NewModel(testRules(), nil)
	m = update(t, m, ruleStatusMsg{Rule: "postgres", Attempt: 1, Status: worker.StatusConnected})
	m = update(t, m, ruleStatusMsg{Rule: "redis", Attempt: 1, Status: worker.StatusBackoffWaiting})

	header := m.renderHeader()
	assert.Contains(t, header, "1 up")
	assert.Contains(t, header, "1 waiting")
}
