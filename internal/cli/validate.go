package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshfwd/sshfwd/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config without starting anything",
	Long: `Load and validate the configuration file.

Reports missing fields, bad addresses, duplicate rules, and schema
problems without starting any tunnels.

Examples:
  sshfwd validate
  sshfwd validate --config ./staging.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rules := "rules"
		if len(cfg.Forwards) == 1 {
			rules = "rule"
		}
		fmt.Printf("%s Config OK: %d forwarding %s\n", ui.SymbolSuccess, len(cfg.Forwards), rules)
		for _, r := range cfg.Forwards {
			fmt.Printf("  %s: %s\n", r.Label(), r.Describe())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
