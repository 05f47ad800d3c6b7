package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshfwd/sshfwd/internal/errors"
)

func validRule() Rule {
	return Rule{
		Name:          "db",
		LocalBind:     "127.0.0.1",
		LocalPort:     5432,
		RemoteAddress: "10.0.0.5:5432",
		SSHHost:       "bastion",
		SSHPort:       22,
		SSHUser:       "ops",
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Forwards = []Rule{validRule()}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_NoRules(t *testing.T) {
	cfg := DefaultConfig()
	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "No forwarding rules")
}

func TestValidate_FutureVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Version = CurrentConfigVersion + 1
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestValidate_RuleErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Rule)
		wantMsg string
	}{
		{"missing local port", func(r *Rule) { r.LocalPort = 0 }, "local_port"},
		{"local port too big", func(r *Rule) { r.LocalPort = 99999 }, "local_port"},
		{"missing remote address", func(r *Rule) { r.RemoteAddress = "" }, "remote_address"},
		{"remote address no port", func(r *Rule) { r.RemoteAddress = "10.0.0.5" }, "remote_address"},
		{"missing ssh host", func(r *Rule) { r.SSHHost = "" }, "ssh_host"},
		{"missing ssh user", func(r *Rule) { r.SSHUser = "" }, "ssh_user"},
		{"bad ssh port", func(r *Rule) { r.SSHPort = -1 }, "ssh_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Forwards[0])
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_IPv6RemoteAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Forwards[0].RemoteAddress = "[fd00::5]:5432"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_DuplicateLabels(t *testing.T) {
	cfg := validConfig()
	second := validRule()
	second.LocalPort = 5433
	cfg.Forwards = append(cfg.Forwards, second)

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share the label")
}

func TestValidate_DuplicateBind(t *testing.T) {
	cfg := validConfig()
	second := validRule()
	second.Name = "db-replica"
	cfg.Forwards = append(cfg.Forwards, second)

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both bind")
}

func TestValidate_ShrinkingMultiplier(t *testing.T) {
	cfg := validConfig()
	cfg.Backoff.Multiplier = 0.5
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiplier")
}
