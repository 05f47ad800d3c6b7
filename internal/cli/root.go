// Package cli implements the sshfwd command-line interface.
//
// The root command is "sshfwd" with subcommands for different operations:
//
//	sshfwd up        - Start and supervise all configured tunnels
//	sshfwd init      - Create a .sshfwd.yaml config
//	sshfwd validate  - Check the config without starting anything
//	sshfwd doctor    - Diagnose ssh, key, and port problems
//	sshfwd version   - Print version information
//
// Each command loads configuration through internal/config and delegates
// the actual work to the supervision packages.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag is the global --config override, available to all
// subcommands.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "sshfwd",
	Short: "Supervise ssh port-forwarding tunnels",
	Long: `sshfwd keeps ssh -L tunnels alive.

It reads forwarding rules from .sshfwd.yaml, starts one ssh process per
rule, watches their output, and reconnects dropped tunnels with
exponential backoff. Failures that retrying cannot fix (rejected
credentials, untrusted host keys) stop the affected rule and say why.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default: .sshfwd.yaml, searched upward)")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
