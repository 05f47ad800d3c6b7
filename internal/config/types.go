package config

import (
	"fmt"
	"time"

	"github.com/sshfwd/sshfwd/internal/backoff"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .sshfwd.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Supervise SuperviseConfig `yaml:"supervise" mapstructure:"supervise"`
	Backoff   BackoffConfig   `yaml:"backoff" mapstructure:"backoff"`
	Forwards  []Rule          `yaml:"forwards" mapstructure:"forwards"`
}

// Rule defines one forwarding rule: a local listen address tunneled to a
// remote address through an ssh connection. Rules are immutable after
// loading; the supervision core never mutates them.
type Rule struct {
	// Name identifies the rule in logs and the dashboard. Optional;
	// defaults to "local_bind:local_port".
	Name string `yaml:"name" mapstructure:"name"`

	// LocalBind is the local listen address. Defaults to 127.0.0.1.
	LocalBind string `yaml:"local_bind" mapstructure:"local_bind"`

	// LocalPort is the local listen port. Required.
	LocalPort int `yaml:"local_port" mapstructure:"local_port"`

	// RemoteAddress is the forward target as host:port. Bracketed IPv6
	// ("[::1]:80") is supported.
	RemoteAddress string `yaml:"remote_address" mapstructure:"remote_address"`

	// SSHHost is the ssh server (bastion) to tunnel through. Required.
	SSHHost string `yaml:"ssh_host" mapstructure:"ssh_host"`

	// SSHPort is the ssh server port. Defaults to 22, or the Port entry
	// from ~/.ssh/config when one matches SSHHost.
	SSHPort int `yaml:"ssh_port" mapstructure:"ssh_port"`

	// SSHUser is the login user. Required (may be filled from
	// ~/.ssh/config).
	SSHUser string `yaml:"ssh_user" mapstructure:"ssh_user"`

	// SSHKeyPath is an optional identity file, tilde-expanded.
	SSHKeyPath string `yaml:"ssh_key_path" mapstructure:"ssh_key_path"`

	// SSHPassword is an optional plaintext password (or key passphrase),
	// typed into the pty when ssh prompts for it.
	SSHPassword string `yaml:"ssh_password" mapstructure:"ssh_password"`

	// SSHExtraArgs are appended verbatim to the ssh invocation, e.g.
	// ["-J", "jumphost"] or ["-o", "StrictHostKeyChecking=accept-new"].
	SSHExtraArgs []string `yaml:"ssh_extra_args" mapstructure:"ssh_extra_args"`
}

// Label returns the identifier used in logs and status reports.
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s:%d", r.LocalBind, r.LocalPort)
}

// Describe returns the full rule description used in log messages.
func (r Rule) Describe() string {
	return fmt.Sprintf("local %s:%d -> %s via %s@%s:%d",
		r.LocalBind, r.LocalPort, r.RemoteAddress, r.SSHUser, r.SSHHost, r.SSHPort)
}

// SuperviseConfig tunes the per-rule supervision loop.
type SuperviseConfig struct {
	// GracePeriod is how long a session must run without a classified
	// failure before the rule is considered connected. ssh -N prints no
	// success banner, so connectedness is inferred from silence.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`

	// StabilityThreshold is how long a connection must stay up for the
	// retry delay to reset to the base value on the next failure.
	StabilityThreshold time.Duration `yaml:"stability_threshold" mapstructure:"stability_threshold"`
}

// BackoffConfig tunes the retry delay sequence.
type BackoffConfig struct {
	Base       time.Duration `yaml:"base" mapstructure:"base"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`
	Cap        time.Duration `yaml:"cap" mapstructure:"cap"`
}

// Policy converts the config section into a backoff.Policy, applying
// defaults for zero fields.
func (b BackoffConfig) Policy() backoff.Policy {
	return backoff.NewPolicy(b.Base, b.Multiplier, b.Cap)
}

// Supervision defaults.
const (
	DefaultGracePeriod        = 3 * time.Second
	DefaultStabilityThreshold = 30 * time.Second
	DefaultLocalBind          = "127.0.0.1"
	DefaultSSHPort            = 22
)

// DefaultConfig returns a Config with sensible defaults and no rules.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Supervise: SuperviseConfig{
			GracePeriod:        DefaultGracePeriod,
			StabilityThreshold: DefaultStabilityThreshold,
		},
		Backoff: BackoffConfig{
			Base:       backoff.DefaultBase,
			Multiplier: backoff.DefaultMultiplier,
			Cap:        backoff.DefaultCap,
		},
	}
}

// ApplyDefaults fills zero-valued fields on the config and all rules.
func (c *Config) ApplyDefaults() {
	if c.Supervise.GracePeriod <= 0 {
		c.Supervise.GracePeriod = DefaultGracePeriod
	}
	if c.Supervise.StabilityThreshold <= 0 {
		c.Supervise.StabilityThreshold = DefaultStabilityThreshold
	}
	for i := range c.Forwards {
		r := &c.Forwards[i]
		if r.LocalBind == "" {
			r.LocalBind = DefaultLocalBind
		}
		if r.SSHPort == 0 {
			r.SSHPort = DefaultSSHPort
		}
	}
}
