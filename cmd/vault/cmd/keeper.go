package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/clock"
	"github.com/rustyeddy/agentvault/keeper"
)

var keeperCmd = &cobra.Command{
	Use:   "keeper",
	Short: "Settle the fee pool on a schedule",
}

var keeperRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fee keeper until interrupted",
	Long: `Distribute the fee pool on the configured cron schedule (six fields,
seconds first) until SIGINT or SIGTERM.

The bank is in-memory, so --seed-fees collects a performance fee from a
minted payer before the keeper starts.

Examples:
  vault keeper run
  vault keeper run --schedule "*/10 * * * * *" --seed-fees 1000
  vault keeper run --once --seed-fees 101`,
	RunE: runKeeper,
}

var (
	keeperSchedule string
	keeperOnce     bool
	keeperSeed     int64
)

func init() {
	rootCmd.AddCommand(keeperCmd)
	keeperCmd.AddCommand(keeperRunCmd)

	keeperRunCmd.Flags().StringVar(&keeperSchedule, "schedule", "", "cron schedule (overrides keeper.schedule)")
	keeperRunCmd.Flags().BoolVar(&keeperOnce, "once", false, "distribute once and exit")
	keeperRunCmd.Flags().Int64Var(&keeperSeed, "seed-fees", 0, "performance fee to collect before starting")
}

func runKeeper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if keeperSchedule != "" {
		cfg.Keeper.Schedule = keeperSchedule
	}

	s, err := buildStack(cfg, clock.Real{})
	if err != nil {
		return err
	}
	defer s.Close()

	if keeperSeed > 0 {
		const payer = bank.Address("fee-payer")
		amt := math.NewInt(keeperSeed)
		s.bank.Mint(bank.Asset(cfg.Fees.Asset), payer, amt)
		if err := s.fees.CollectPerformanceFee(cmd.Context(), payer, amt); err != nil {
			return err
		}
	}

	k, err := keeper.New(cfg.Keeper.Schedule, s.fees, bank.Address(cfg.Keeper.Caller), keeper.WithLogger(s.log))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if keeperOnce {
		defer k.Stop()
		done, err := k.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		st := k.Stats()
		if !done {
			fmt.Fprintln(out, "nothing to distribute")
			return nil
		}
		fmt.Fprintf(out, "distributed: stakers=%s burn=%s treasury=%s\n",
			st.LastSplit.ToStakers, st.LastSplit.ToBurn, st.LastSplit.ToTreasury)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	k.Start()
	s.log.Info("keeper running", zap.String("schedule", cfg.Keeper.Schedule))
	<-ctx.Done()
	k.Stop()

	st := k.Stats()
	fmt.Fprintf(out, "runs=%d distributions=%d skipped=%d failures=%d\n",
		st.Runs, st.Distributions, st.Skipped, st.Failures)
	return nil
}
