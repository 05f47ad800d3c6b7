package config

import (
	"strconv"

	"github.com/kevinburke/ssh_config"
)

// sshConfigGet resolves a key for a host alias from ~/.ssh/config.
// Variable so tests can substitute a fake resolver.
var sshConfigGet = ssh_config.Get

// ApplySSHConfigDefaults fills in ssh_user, ssh_port, and ssh_key_path from
// the user's ~/.ssh/config for rules that leave them unset. Explicit values
// in the sshfwd config always win. Validation still runs afterwards, so a
// rule that ends up with no user is reported there.
func ApplySSHConfigDefaults(cfg *Config) {
	for i := range cfg.Forwards {
		applyRuleSSHConfig(&cfg.Forwards[i])
	}
}

func applyRuleSSHConfig(rule *Rule) {
	if rule.SSHUser == "" {
		rule.SSHUser = sshConfigGet(rule.SSHHost, "User")
	}

	if rule.SSHPort == 0 || rule.SSHPort == DefaultSSHPort {
		if portStr := sshConfigGet(rule.SSHHost, "Port"); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port <= 65535 {
				rule.SSHPort = port
			}
		}
	}

	if rule.SSHKeyPath == "" {
		// ssh_config reports "~/.ssh/identity" as the built-in default;
		// only a value actually present in the file is worth copying.
		if key := sshConfigGet(rule.SSHHost, "IdentityFile"); key != "" && key != ssh_config.Default("IdentityFile") {
			rule.SSHKeyPath = key
		}
	}
}
