package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sshfwd.yaml configuration",
	Long: `Initialize a new sshfwd configuration file.

Creates .sshfwd.yaml in the current directory and guides you through
your first forwarding rule with interactive prompts.

Examples:
  sshfwd init
  sshfwd init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{Overwrite: initForce})
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	// Dir is the directory to write the config into. Empty means the
	// current directory.
	Dir string

	// Rule pre-fills the first forwarding rule and skips the prompts.
	Rule *config.Rule

	// Overwrite replaces an existing config without asking.
	Overwrite bool
}

// Init creates a new .sshfwd.yaml configuration file.
func Init(opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	rule := config.Rule{}
	if opts.Rule != nil {
		rule = *opts.Rule
	} else {
		var err error
		rule, err = promptRule()
		if err != nil {
			return err
		}
	}

	data, err := renderConfig(rule)
	if err != nil {
		return errors.Wrap(err, "Failed to render config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Run `sshfwd doctor` to verify the setup, then `sshfwd up`.")
	return nil
}

// renderConfig produces a readable starter config: the defaults are
// spelled out as durations, and the rule skips empty fields. A round
// trip through yaml.Marshal would print durations in nanoseconds.
func renderConfig(rule config.Rule) ([]byte, error) {
	cfg := config.DefaultConfig()

	var b strings.Builder
	b.WriteString("# sshfwd configuration. See `sshfwd up --help` for usage.\n")
	fmt.Fprintf(&b, "version: %d\n\n", cfg.Version)
	b.WriteString("supervise:\n")
	fmt.Fprintf(&b, "  grace_period: %s\n", cfg.Supervise.GracePeriod)
	fmt.Fprintf(&b, "  stability_threshold: %s\n\n", cfg.Supervise.StabilityThreshold)
	b.WriteString("backoff:\n")
	fmt.Fprintf(&b, "  base: %s\n", cfg.Backoff.Base)
	fmt.Fprintf(&b, "  multiplier: %g\n", cfg.Backoff.Multiplier)
	fmt.Fprintf(&b, "  cap: %s\n\n", cfg.Backoff.Cap)
	b.WriteString("forwards:\n")

	ruleYAML, err := yaml.Marshal([]config.Rule{rule})
	if err != nil {
		return nil, err
	}
	b.Write(ruleYAML)

	return []byte(b.String()), nil
}

// promptRule collects the first forwarding rule interactively.
func promptRule() (config.Rule, error) {
	var sshTarget, localPort, remoteAddr, name string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH host").
				Description("Hostname, user@host, or an ~/.ssh/config alias").
				Placeholder("user@bastion.example.com").
				Value(&sshTarget).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SSH host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Remote address").
				Description("Where the tunnel should go, as host:port").
				Placeholder("db.internal:5432").
				Value(&remoteAddr).
				Validate(func(s string) error {
					_, _, err := config.ParseHostPort(strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Local port").
				Placeholder("5432").
				Value(&localPort).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("enter a port between 1 and 65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Rule name").
				Description("Optional label for logs and the dashboard").
				Placeholder("db").
				Value(&name),
		),
	)

	if err := form.Run(); err != nil {
		return config.Rule{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Run `sshfwd init` again or write .sshfwd.yaml by hand")
	}

	rule := config.Rule{
		Name:          strings.TrimSpace(name),
		RemoteAddress: strings.TrimSpace(remoteAddr),
	}
	rule.LocalPort, _ = strconv.Atoi(strings.TrimSpace(localPort))

	target := strings.TrimSpace(sshTarget)
	if user, host, ok := strings.Cut(target, "@"); ok {
		rule.SSHUser = user
		rule.SSHHost = host
	} else {
		rule.SSHHost = target
	}

	return rule, nil
}
