package config

import (
	"testing"

	"github.com/kevinburke/ssh_config"
	"github.com/stretchr/testify/assert"
)

// fakeSSHConfig substitutes the ~/.ssh/config resolver for the duration of
// a test.
func fakeSSHConfig(t *testing.T, values map[string]map[string]string) {
	t.Helper()
	orig := sshConfigGet
	sshConfigGet = func(alias, key string) string {
		if host, ok := values[alias]; ok {
			if v, ok := host[key]; ok {
				return v
			}
		}
		return ssh_config.Default(key)
	}
	t.Cleanup(func() { sshConfigGet = orig })
}

func TestApplySSHConfigDefaults_FillsMissingFields(t *testing.T) {
	fakeSSHConfig(t, map[string]map[string]string{
		"bastion": {
			"User":         "ops",
			"Port":         "2222",
			"IdentityFile": "~/.ssh/bastion_ed25519",
		},
	})

	cfg := DefaultConfig()
	cfg.Forwards = []Rule{{
		LocalPort:     5432,
		RemoteAddress: "10.0.0.5:5432",
		SSHHost:       "bastion",
		SSHPort:       DefaultSSHPort,
	}}
	ApplySSHConfigDefaults(cfg)

	rule := cfg.Forwards[0]
	assert.Equal(t, "ops", rule.SSHUser)
	assert.Equal(t, 2222, rule.SSHPort)
	assert.Equal(t, "~/.ssh/bastion_ed25519", rule.SSHKeyPath)
}

func TestApplySSHConfigDefaults_ExplicitValuesWin(t *testing.T) {
	fakeSSHConfig(t, map[string]map[string]string{
		"bastion": {
			"User":         "other",
			"Port":         "2222",
			"IdentityFile": "~/.ssh/other_key",
		},
	})

	cfg := DefaultConfig()
	cfg.Forwards = []Rule{{
		LocalPort:     5432,
		RemoteAddress: "10.0.0.5:5432",
		SSHHost:       "bastion",
		SSHPort:       2200,
		SSHUser:       "ops",
		SSHKeyPath:    "~/.ssh/mine",
	}}
	ApplySSHConfigDefaults(cfg)

	rule := cfg.Forwards[0]
	assert.Equal(t, "ops", rule.SSHUser)
	assert.Equal(t, 2200, rule.SSHPort)
	assert.Equal(t, "~/.ssh/mine", rule.SSHKeyPath)
}

func TestApplySSHConfigDefaults_IgnoresBuiltinIdentityDefault(t *testing.T) {
	fakeSSHConfig(t, map[string]map[string]string{})

	cfg := DefaultConfig()
	cfg.Forwards = []Rule{{
		LocalPort:     5432,
		RemoteAddress: "10.0.0.5:5432",
		SSHHost:       "unknown-host",
		SSHPort:       DefaultSSHPort,
		SSHUser:       "ops",
	}}
	ApplySSHConfigDefaults(cfg)

	// The library reports "~/.ssh/identity" as a built-in default; that
	// must not leak into the rule as an explicit -i argument.
	assert.Empty(t, cfg.Forwards[0].SSHKeyPath)
	assert.Equal(t, DefaultSSHPort, cfg.Forwards[0].SSHPort)
}
