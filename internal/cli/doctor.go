package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sshfwd/sshfwd/internal/doctor"
	"github.com/sshfwd/sshfwd/internal/errors"
	"github.com/sshfwd/sshfwd/internal/ui"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose ssh, key, and port problems",
	Long: `Run preflight checks against the current configuration.

Checks:
  - ssh client availability
  - Identity files exist with sane permissions
  - Local bind ports are free
  - Target hosts have known_hosts entries
  - SSH agent state (for rules relying on it)

Examples:
  sshfwd doctor
  sshfwd doctor --fix`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return doctorCommand(doctor.NewChecks(cfg), os.Stdout, doctorFix)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt to fix issues automatically")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(checks []doctor.Check, out io.Writer, fix bool) error {
	results := doctor.RunAllParallel(checks)

	okStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	failStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	for _, r := range results {
		switch r.Status {
		case doctor.StatusPass:
			fmt.Fprintf(out, "%s %s\n", okStyle.Render(ui.SymbolSuccess), r.Message)
		case doctor.StatusWarn:
			fmt.Fprintf(out, "%s %s\n", warnStyle.Render("!"), r.Message)
		case doctor.StatusFail:
			fmt.Fprintf(out, "%s %s\n", failStyle.Render(ui.SymbolFail), r.Message)
		}
		if r.Suggestion != "" && r.Status != doctor.StatusPass {
			fmt.Fprintf(out, "  %s\n", mutedStyle.Render(r.Suggestion))
		}
	}

	fmt.Fprintf(out, "\n%s\n", doctor.Summary(results))

	if fix && doctor.FixableCount(results) > 0 {
		fmt.Fprintln(out, "\nApplying fixes...")
		for i, r := range results {
			if !r.Fixable || r.Status == doctor.StatusPass {
				continue
			}
			if err := checks[i].Fix(); err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", failStyle.Render(ui.SymbolFail), r.Name, err)
				continue
			}
			fmt.Fprintf(out, "%s fixed %s\n", okStyle.Render(ui.SymbolSuccess), r.Name)
		}
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			"Some checks failed",
			"Fix the issues above, then run `sshfwd doctor` again")
	}
	return nil
}
