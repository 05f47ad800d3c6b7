package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Kind
	}{
		{
			name: "permission denied publickey",
			line: "ops@bastion: Permission denied (publickey).",
			want: AuthFailure,
		},
		{
			name: "permission denied password",
			line: "Permission denied, please try again.",
			want: AuthFailure,
		},
		{
			name: "authentication failed",
			line: "Authentication failed.",
			want: AuthFailure,
		},
		{
			name: "too many auth failures",
			line: "Received disconnect from 10.0.0.1 port 22:2: Too many authentication failures",
			want: AuthFailure,
		},
		{
			name: "host key confirmation",
			line: "Are you sure you want to continue connecting (yes/no/[fingerprint])?",
			want: HostKeyPrompt,
		},
		{
			name: "password prompt",
			line: "ops@bastion's password:",
			want: PasswordPrompt,
		},
		{
			name: "password prompt capitalized",
			line: "Password:",
			want: PasswordPrompt,
		},
		{
			name: "password for sudo style",
			line: "[sudo] password for ops:",
			want: PasswordPrompt,
		},
		{
			name: "passphrase prompt",
			line: "Enter passphrase for key '/home/ops/.ssh/id_ed25519':",
			want: PasswordPrompt,
		},
		{
			name: "warning banner",
			line: "Warning: Permanently added 'bastion' (ED25519) to the list of known hosts.",
			want: Other,
		},
		{
			name: "keepalive noise",
			line: "debug1: channel 0: free: direct-tcpip",
			want: Other,
		},
		{
			name: "empty line",
			line: "",
			want: Other,
		},
		{
			name: "connection closed",
			line: "Connection to bastion closed by remote host.",
			want: Other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.line))
		})
	}
}

// Patterns are case-sensitive: a lowercase "permission denied" never appears
// in real ssh output, and matching it would risk false positives on banner
// text echoing command names.
func TestLine_CaseSensitiveSubstrings(t *testing.T) {
	assert.Equal(t, Other, Line("permission denied"))
	assert.Equal(t, Other, Line("ARE YOU SURE YOU WANT TO CONTINUE CONNECTING"))
}

func TestLine_FirstMatchWins(t *testing.T) {
	// A line that contains both an auth failure and prompt text classifies
	// as AuthFailure because that rule sits higher in the table.
	line := "Permission denied, please try again. ops@bastion's password:"
	assert.Equal(t, AuthFailure, Line(line))
}

func TestKind_Terminal(t *testing.T) {
	assert.True(t, AuthFailure.Terminal())
	assert.True(t, HostKeyPrompt.Terminal())
	assert.False(t, PasswordPrompt.Terminal())
	assert.False(t, Other.Terminal())
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent("Authentication failed.")
	assert.Equal(t, AuthFailure, ev.Kind)
	assert.Equal(t, "Authentication failed.", ev.Line)
	assert.False(t, ev.Time.IsZero())
}
