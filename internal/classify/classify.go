// Package classify turns a line of ssh output into an actionable category.
// The patterns are an ordered first-match table: ssh's exit codes do not
// reliably distinguish auth failures from network faults, so the output
// text is the source of truth for the retry decision.
package classify

import (
	"strings"
	"time"
)

// Kind is the classification of one line of process output.
type Kind int

const (
	// Other is any line that matched no pattern. Treated as noise.
	Other Kind = iota
	// AuthFailure means the remote rejected our credentials. Permanent
	// for the rule; retrying would only spam the remote's auth log.
	AuthFailure
	// HostKeyPrompt is the interactive "continue connecting?" question.
	// Never auto-answered; the operator has to fix trust configuration.
	HostKeyPrompt
	// PasswordPrompt is a password or key-passphrase prompt.
	PasswordPrompt
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case AuthFailure:
		return "auth-failure"
	case HostKeyPrompt:
		return "host-key-prompt"
	case PasswordPrompt:
		return "password-prompt"
	default:
		return "other"
	}
}

// Event is one classified line of output.
type Event struct {
	Time time.Time
	Line string
	Kind Kind
}

// rule maps a matcher to a kind. Rules are evaluated top to bottom and the
// first match wins.
type rule struct {
	match func(string) bool
	kind  Kind
}

func contains(substr string) func(string) bool {
	return func(line string) bool { return strings.Contains(line, substr) }
}

var rules = []rule{
	{contains("Permission denied"), AuthFailure},
	{contains("Authentication failed"), AuthFailure},
	{contains("Too many authentication failures"), AuthFailure},
	{contains("Are you sure you want to continue connecting"), HostKeyPrompt},
	{isPasswordPrompt, PasswordPrompt},
}

// Line classifies one line of ssh output.
func Line(line string) Kind {
	for _, r := range rules {
		if r.match(line) {
			return r.kind
		}
	}
	return Other
}

// NewEvent classifies line and stamps it with the current time.
func NewEvent(line string) Event {
	return Event{Time: time.Now(), Line: line, Kind: Line(line)}
}

// isPasswordPrompt matches password and key-passphrase prompts. These are
// emitted without a trailing newline, so the session layer flushes
// colon-terminated partial reads through here.
func isPasswordPrompt(line string) bool {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	if strings.HasSuffix(lower, "password:") {
		return true
	}
	if strings.Contains(lower, "password for ") {
		return true
	}
	return strings.Contains(trimmed, "Enter passphrase")
}

// Terminal reports whether the kind permanently stops the owning rule.
func (k Kind) Terminal() bool {
	return k == AuthFailure || k == HostKeyPrompt
}
