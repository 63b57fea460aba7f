package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Delegated non-custodial accounts, lock-tiered staking and fee distribution",
	Long: `Vault runs the agentvault engines in-process against an in-memory bank.

It provides tools for:
  - Generating and validating engine configuration
  - Running end-to-end demos of the account ledger, staking and fee pool
  - Running the fee keeper on a cron schedule
  - Querying and replaying the event journal
  - Previewing fee splits`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (defaults are used when empty)")
}
