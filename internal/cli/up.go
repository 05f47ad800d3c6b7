package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/dashboard"
	"github.com/sshfwd/sshfwd/internal/errors"
	"github.com/sshfwd/sshfwd/internal/logger"
	"github.com/sshfwd/sshfwd/internal/supervisor"
	"github.com/sshfwd/sshfwd/internal/ui"
	"github.com/sshfwd/sshfwd/internal/worker"
)

var upDashboard bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start and supervise all configured tunnels",
	Long: `Start one ssh tunnel per forwarding rule and keep them alive.

Dropped connections reconnect with exponential backoff. Authentication
failures and untrusted host keys stop the affected rule; the others keep
running. Ctrl-C shuts everything down cleanly.

Examples:
  sshfwd up
  sshfwd up --dashboard
  sshfwd up --config ./staging.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return upCommand()
	},
}

func init() {
	upCmd.Flags().BoolVar(&upDashboard, "dashboard", false, "show a live TUI instead of log output")
	rootCmd.AddCommand(upCmd)
}

func upCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Default()
	opts := worker.Options{
		GracePeriod:        cfg.Supervise.GracePeriod,
		StabilityThreshold: cfg.Supervise.StabilityThreshold,
		Policy:             cfg.Backoff.Policy(),
	}

	var result *supervisor.Result
	if upDashboard {
		result, err = dashboard.Run(ctx, cfg.Forwards, opts, log)
		if err != nil {
			return errors.Wrap(err, "Dashboard failed")
		}
	} else {
		opts.Sink = newConsoleSink(os.Stdout)
		result = supervisor.New(cfg.Forwards, opts, log).Run(ctx)
	}

	printSummary(result)

	if result.HardFailure() {
		return errors.New(errors.ErrSpawn,
			"One or more tunnels could not be started",
			"Run `sshfwd doctor` to diagnose")
	}
	return nil
}

// loadConfig finds, loads, and validates the configuration shared by
// up/validate/doctor.
func loadConfig() (*config.Config, error) {
	path, err := config.Find(configFlag)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New(errors.ErrConfig,
			"No config file found",
			"Create one with `sshfwd init` or pass --config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSummary(result *supervisor.Result) {
	outcomes := make([]ui.RuleOutcome, len(result.Rules))
	for i, rr := range result.Rules {
		outcomes[i] = ui.RuleOutcome{
			Name:     rr.Rule.Label(),
			Target:   rr.Rule.Describe(),
			Status:   rr.Status,
			Attempts: rr.Attempts,
		}
	}
	fmt.Print("\n" + ui.RenderSummary(outcomes, result.Duration))
}
