package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/clock"
	"github.com/rustyeddy/agentvault/fees"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/registry"
	"github.com/rustyeddy/agentvault/vaulterr"
)

var demoCmd = &cobra.Command{
	Use:   "demo [ledger|staking|fees]...",
	Short: "Run the end-to-end demos",
	Long: `Run example scenarios against an in-memory bank. With no arguments all
three run concurrently.

Available demos:
  ledger  - accounts bound to executor agents, exposure limits and pause
  staking - a 180 day stake held for a year, then unstaked
  fees    - collect performance and management fees, then distribute

Examples:
  vault demo
  vault demo ledger --accounts 5`,
	ValidArgs: []string{"ledger", "staking", "fees"},
	Args:      cobra.OnlyValidArgs,
	RunE:      runDemo,
}

var demoAccounts int

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoAccounts, "accounts", 3, "number of ledger accounts to run concurrently")
}

type scenario func(ctx context.Context, s *stack, clk *clock.Manual, out io.Writer) error

var scenarios = []struct {
	name string
	run  scenario
}{
	{"ledger", demoLedger},
	{"staking", demoStaking},
	{"fees", demoFees},
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	clk := clock.NewManual(time.Now().UTC())
	s, err := buildStack(cfg, clk)
	if err != nil {
		return err
	}
	defer s.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	outs := make([]bytes.Buffer, len(scenarios))
	for i, sc := range scenarios {
		if len(args) > 0 && !slices.Contains(args, sc.name) {
			continue
		}
		g.Go(func() error {
			fmt.Fprintf(&outs[i], "=== %s ===\n", sc.name)
			if err := sc.run(ctx, s, clk, &outs[i]); err != nil {
				return fmt.Errorf("%s demo: %w", sc.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := range outs {
		if outs[i].Len() > 0 {
			fmt.Fprintln(out, outs[i].String())
		}
	}
	return checkReplay(s, out)
}

func demoLedger(ctx context.Context, s *stack, _ *clock.Manual, out io.Writer) error {
	cfg := s.cfg.Account
	profile, err := account.ParseRiskProfile(cfg.RiskProfile)
	if err != nil {
		return err
	}
	deposit, err := cfg.Deposit()
	if err != nil {
		return err
	}
	if deposit.IsZero() {
		deposit = math.NewInt(1_000)
	}
	targets := cfg.TargetAddresses()
	if len(targets) == 0 {
		return fmt.Errorf("%w: account.targets is empty", vaulterr.ErrInvalidConfiguration)
	}
	for _, t := range targets {
		s.router.Handle(t, func(_ context.Context, target bank.Address, payload []byte) ([]byte, error) {
			return []byte("filled " + string(payload)), nil
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	outs := make([]bytes.Buffer, demoAccounts)
	for i := range demoAccounts {
		owner := bank.Address(fmt.Sprintf("%s-%d", cfg.Owner, i+1))
		s.bank.Mint(bank.Native, owner, deposit)
		g.Go(func() error {
			return runLedgerAccount(ctx, s, owner, profile, bps.BP(cfg.MaxExposureBP), deposit, targets, &outs[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range outs {
		out.Write(outs[i].Bytes())
	}
	return nil
}

func runLedgerAccount(ctx context.Context, s *stack, owner bank.Address, profile account.RiskProfile, maxExposure bps.BP,
	deposit math.Int, targets []bank.Address, out io.Writer) error {
	acctID, err := s.registry.InstantiateAccount(ctx, owner, profile, maxExposure)
	if err != nil {
		return err
	}
	agentID, err := s.registry.InstantiateAgent(ctx, owner, acctID, registry.ExecutorTemplate, targets)
	if err != nil {
		return err
	}
	a, err := s.registry.Account(acctID)
	if err != nil {
		return err
	}
	ag, err := s.registry.Agent(agentID)
	if err != nil {
		return err
	}
	x, ok := ag.(*registry.Executor)
	if !ok {
		return fmt.Errorf("agent %s is a %s, not an executor", agentID, ag.Template())
	}

	if err := a.Deposit(ctx, owner, deposit); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s owner=%s agent=%s deposit=%s limit=%s\n", acctID, owner, agentID, deposit, maxExposure)

	target := targets[0]
	for _, pct := range []bps.BP{2_500, 3_500} {
		pos := pct.Of(deposit)
		exec, err := x.Execute(ctx, target, []byte("rebalance"), pos)
		switch {
		case errors.Is(err, vaulterr.ErrExposureLimitExceeded):
			fmt.Fprintf(out, "  %s -> %s: rejected (%s of value)\n", target, pos, pct)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "  %s -> %s: success=%t %q\n", target, pos, exec.Success, exec.ReturnData)
		}
	}
	fmt.Fprintf(out, "  position at %s: %s (%s exposure)\n", target, a.Position(target), a.Exposure(target))

	if err := x.Report(ctx, bank.Native, bps.BP(500).Of(deposit)); err != nil {
		return err
	}
	if err := x.Pause(ctx, "demo complete"); err != nil {
		return err
	}
	_, err = x.Execute(ctx, target, nil, math.ZeroInt())
	fmt.Fprintf(out, "  after pause: %v\n", err)

	p := a.Performance()
	fmt.Fprintf(out, "  value=%s deposited=%s withdrawn=%s realized=%s unrealized=%s\n",
		p.TotalValue, p.TotalDeposited, p.TotalWithdrawn, p.RealizedPnL, p.UnrealizedPnL)
	return nil
}

func demoStaking(ctx context.Context, s *stack, clk *clock.Manual, out io.Writer) error {
	const (
		staker = bank.Address("staker-1")
		funder = bank.Address("rewards-funder")
	)
	asset := s.staking.Asset()
	principal := math.NewInt(10_000)

	tiers := s.staking.Tiers()
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no lock tiers", vaulterr.ErrInvalidConfiguration)
	}
	tier := tiers[len(tiers)-1]
	for _, t := range tiers {
		if t.LockDays == 180 {
			tier = t
		}
	}

	s.bank.Mint(asset, staker, principal)
	s.bank.Mint(asset, funder, math.NewInt(100_000))
	if err := s.staking.FundRewards(ctx, funder, math.NewInt(100_000)); err != nil {
		return err
	}

	start := clk.Now()
	id, err := s.staking.Stake(ctx, staker, principal, tier.LockDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "staked %s %s for %d days at %s (base rate %s)\n",
		principal, asset, tier.LockDays, tier.Multiplier.Percent().StringFixed(0)+"%", s.staking.BaseRate())

	if tier.LockDays > 0 {
		err = s.staking.Unstake(ctx, staker, id)
		fmt.Fprintf(out, "  unstake now: %v\n", err)
	}

	clk.Set(start.Add(365 * 24 * time.Hour))
	pending, err := s.staking.PendingReward(staker, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  pending after 365 days: %s\n", pending)

	if err := s.staking.Unstake(ctx, staker, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "  unstaked, wallet now %s %s\n", s.bank.BalanceOf(asset, staker), asset)
	fmt.Fprintf(out, "  total staked by %s: %s\n", staker, s.staking.UserTotalStaked(staker))
	return nil
}

func demoFees(ctx context.Context, s *stack, _ *clock.Manual, out io.Writer) error {
	const payer = bank.Address("fee-payer")
	asset := bank.Asset(s.cfg.Fees.Asset)

	s.bank.Mint(asset, payer, math.NewInt(101))
	if err := s.fees.CollectPerformanceFee(ctx, payer, math.NewInt(80)); err != nil {
		return err
	}
	if err := s.fees.CollectManagementFee(ctx, payer, math.NewInt(21)); err != nil {
		return err
	}
	fmt.Fprintf(out, "collected performance=%s management=%s\n",
		s.fees.CollectedBy(fees.Performance), s.fees.CollectedBy(fees.Management))

	split, err := s.fees.DistributeFees(ctx, bank.Address(s.cfg.Keeper.Caller))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  distributed: stakers=%s burn=%s treasury=%s\n", split.ToStakers, split.ToBurn, split.ToTreasury)

	_, err = s.fees.DistributeFees(ctx, bank.Address(s.cfg.Keeper.Caller))
	fmt.Fprintf(out, "  again: %v\n", err)
	return nil
}

// checkReplay rebuilds every account from the journal and compares it with
// the live ledger.
func checkReplay(s *stack, out io.Writer) error {
	events := s.memory.Events()
	books, err := journal.Replay(events)
	if err != nil {
		return err
	}
	for _, id := range s.registry.Accounts() {
		a, err := s.registry.Account(id)
		if err != nil {
			return err
		}
		b, ok := books[id]
		p := a.Performance()
		if !ok || !b.TotalValue.Equal(p.TotalValue) || !b.RealizedPnL.Equal(p.RealizedPnL) {
			return fmt.Errorf("replay of %s does not match the ledger", id)
		}
	}
	fmt.Fprintf(out, "replay: %d events, %d accounts match the ledger\n", len(events), len(s.registry.Accounts()))
	return nil
}
