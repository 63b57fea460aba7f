package cmd

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/fees"
)

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Fee pool tools",
}

var feesPreviewCmd = &cobra.Command{
	Use:   "preview <balance>",
	Short: "Show how a pool balance would be distributed",
	Long: `Show the stakers / burn / treasury split of a pool balance, and
optionally the fees the configured rates charge.

Examples:
  vault fees preview 101
  vault fees preview 0 --profit 5000 --aum 250000 --period 720h`,
	Args: cobra.ExactArgs(1),
	RunE: runFeesPreview,
}

var (
	feesProfit string
	feesAUM    string
	feesPeriod time.Duration
)

func init() {
	rootCmd.AddCommand(feesCmd)
	feesCmd.AddCommand(feesPreviewCmd)

	feesPreviewCmd.Flags().StringVar(&feesProfit, "profit", "", "profit to charge the performance fee on")
	feesPreviewCmd.Flags().StringVar(&feesAUM, "aum", "", "assets under management to charge the management fee on")
	feesPreviewCmd.Flags().DurationVar(&feesPeriod, "period", 365*24*time.Hour, "management fee period")
}

func parseAmount(name, s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("%s: %q is not an integer amount", name, s)
	}
	return v, nil
}

func runFeesPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	balance, err := parseAmount("balance", args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := fees.PreviewSplit(balance)
	fmt.Fprintf(out, "balance   %s\n", balance)
	fmt.Fprintf(out, "stakers   %s (%s)\n", s.ToStakers, fees.StakersShare)
	fmt.Fprintf(out, "burn      %s (%s)\n", s.ToBurn, fees.BurnShare)
	fmt.Fprintf(out, "treasury  %s (remainder)\n", s.ToTreasury)

	perf := bps.BP(cfg.Fees.PerformanceFeeBP)
	mgmt := bps.BP(cfg.Fees.ManagementFeeBP)
	if feesProfit != "" {
		profit, err := parseAmount("profit", feesProfit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "performance fee on %s at %s: %s\n", profit, perf, fees.ComputePerformanceFee(profit, perf))
	}
	if feesAUM != "" {
		aum, err := parseAmount("aum", feesAUM)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "management fee on %s at %s over %s: %s\n", aum, mgmt, feesPeriod, fees.ComputeManagementFee(aum, mgmt, feesPeriod))
	}
	return nil
}
