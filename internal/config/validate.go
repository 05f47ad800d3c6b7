package config

import (
	"fmt"

	"github.com/sshfwd/sshfwd/internal/errors"
)

// Validate checks the config for errors and returns structured messages.
// The supervision core trusts validated rules and performs no revalidation.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sshfwd only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Update sshfwd to a release that understands this config version")
	}

	if len(cfg.Forwards) == 0 {
		return errors.New(errors.ErrConfig,
			"No forwarding rules configured",
			"Add at least one entry under 'forwards' in your config, or run 'sshfwd init'")
	}

	if cfg.Backoff.Multiplier != 0 && cfg.Backoff.Multiplier < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Backoff multiplier %.2f would shrink the retry delay", cfg.Backoff.Multiplier),
			"Use a multiplier of 1.0 or greater")
	}

	seenNames := make(map[string]int)
	seenBinds := make(map[string]int)
	for i, rule := range cfg.Forwards {
		if err := validateRule(i, rule); err != nil {
			return err
		}

		label := rule.Label()
		if prev, ok := seenNames[label]; ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Rules %d and %d share the label '%s'", prev+1, i+1, label),
				"Give each rule a unique 'name' so logs and status reports stay unambiguous")
		}
		seenNames[label] = i

		bind := fmt.Sprintf("%s:%d", rule.LocalBind, rule.LocalPort)
		if prev, ok := seenBinds[bind]; ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Rules %d and %d both bind %s", prev+1, i+1, bind),
				"Two tunnels can't listen on the same local address; change one local_port")
		}
		seenBinds[bind] = i
	}

	return nil
}

func validateRule(index int, rule Rule) error {
	where := fmt.Sprintf("Rule %d (%s)", index+1, rule.Label())

	if rule.LocalPort < 1 || rule.LocalPort > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s: local_port %d is not a valid port", where, rule.LocalPort),
			"Use a port between 1 and 65535")
	}

	if rule.RemoteAddress == "" {
		return errors.New(errors.ErrConfig,
			where+": remote_address is required",
			"Set it to the target as host:port, e.g. 10.0.0.5:5432")
	}
	if _, _, err := ParseHostPort(rule.RemoteAddress); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("%s: remote_address '%s' is not host:port", where, rule.RemoteAddress),
			"Use host:port, or [addr]:port for IPv6")
	}

	if rule.SSHHost == "" {
		return errors.New(errors.ErrConfig,
			where+": ssh_host is required",
			"Set it to the ssh server to tunnel through")
	}

	if rule.SSHUser == "" {
		return errors.New(errors.ErrConfig,
			where+": ssh_user is required",
			"Set ssh_user, or add a User entry for this host in ~/.ssh/config")
	}

	if rule.SSHPort < 1 || rule.SSHPort > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s: ssh_port %d is not a valid port", where, rule.SSHPort),
			"Use a port between 1 and 65535, or omit it for 22")
	}

	return nil
}
