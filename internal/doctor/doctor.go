package doctor

import "github.com/sshfwd/sshfwd/internal/config"

// NewChecks builds the full preflight suite for a configuration. Checks
// that apply per rule are created per rule; host-level checks are
// deduplicated so a bastion shared by ten rules is probed once.
func NewChecks(cfg *config.Config) []Check {
	checks := []Check{&SSHBinaryCheck{}}

	needsAgent := false
	seenHosts := make(map[string]bool)
	seenKeys := make(map[string]bool)

	for _, rule := range cfg.Forwards {
		if rule.SSHKeyPath == "" && rule.SSHPassword == "" {
			needsAgent = true
		}
		if rule.SSHKeyPath != "" && !seenKeys[rule.SSHKeyPath] {
			seenKeys[rule.SSHKeyPath] = true
			checks = append(checks, &KeyFileCheck{RuleLabel: rule.Label(), KeyPath: rule.SSHKeyPath})
		}

		hostKey := rule.SSHHost
		if !seenHosts[hostKey] {
			seenHosts[hostKey] = true
			checks = append(checks, &KnownHostsCheck{Host: rule.SSHHost, Port: rule.SSHPort})
		}

		checks = append(checks, &LocalPortCheck{Rule: rule})
	}

	if needsAgent {
		checks = append(checks, &SSHAgentCheck{})
	}

	return checks
}
