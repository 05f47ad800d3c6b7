package doctor

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"

	"github.com/sshfwd/sshfwd/internal/config"
)

// SSHBinaryCheck verifies the ssh client is on PATH. Every tunnel is an
// ssh child process, so nothing works without it.
type SSHBinaryCheck struct{}

func (c *SSHBinaryCheck) Name() string     { return "ssh_binary" }
func (c *SSHBinaryCheck) Category() string { return "SSH" }

func (c *SSHBinaryCheck) Run() CheckResult {
	path, err := exec.LookPath("ssh")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "ssh not found in PATH",
			Suggestion: "Install OpenSSH client (apt install openssh-client / brew install openssh)",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("ssh found: %s", path),
	}
}

func (c *SSHBinaryCheck) Fix() error { return nil }

// SSHAgentCheck verifies an agent is available. Rules without a key_path
// or password rely on it.
type SSHAgentCheck struct{}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return "SSH" }

func (c *SSHAgentCheck) Run() CheckResult {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent not running",
			Suggestion: "Rules without key_path or password need an agent: eval $(ssh-agent) && ssh-add",
		}
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent socket not accessible",
			Suggestion: "Restart the agent: eval $(ssh-agent) && ssh-add",
		}
	}
	conn.Close() //nolint:errcheck // Best-effort close, error not actionable

	out, err := exec.Command("ssh-add", "-l").Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    "SSH agent running but no keys loaded",
				Suggestion: "Add a key with: ssh-add",
			}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Cannot query SSH agent",
			Suggestion: "Check the agent: ssh-add -l",
		}
	}

	keys := 0
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.TrimSpace(line) != "" {
			keys++
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("SSH agent running with %d key%s loaded", keys, pluralize(keys)),
	}
}

func (c *SSHAgentCheck) Fix() error { return nil }

// KeyFileCheck verifies a rule's configured identity file exists and is
// not group or world readable. ssh refuses keys with open permissions,
// which the worker would classify as a transient failure and retry
// forever.
type KeyFileCheck struct {
	RuleLabel string
	KeyPath   string
}

func (c *KeyFileCheck) Name() string     { return "key_file:" + c.RuleLabel }
func (c *KeyFileCheck) Category() string { return "SSH" }

func (c *KeyFileCheck) Run() CheckResult {
	path := config.ExpandTilde(c.KeyPath)
	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: key file %s not found", c.RuleLabel, c.KeyPath),
			Suggestion: "Fix key_path in the config or generate the key with ssh-keygen",
		}
	}

	if info.Mode().Perm()&0077 != 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s: insecure permissions on %s", c.RuleLabel, c.KeyPath),
			Suggestion: fmt.Sprintf("Fix: chmod 600 %s", c.KeyPath),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: key file OK", c.RuleLabel),
	}
}

func (c *KeyFileCheck) Fix() error {
	path := config.ExpandTilde(c.KeyPath)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions on %s: %w", path, err)
		}
	}
	return nil
}
