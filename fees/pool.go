// Package fees is the fee pool. Performance and management fees collect
// into one balance that anyone may distribute to stakers, the burn sink
// and the treasury.
package fees

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/guard"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// Entity is the journal entity fee events are recorded under.
const Entity = "fees"

type Category string

const (
	Performance Category = "performance"
	Management  Category = "management"
)

type Config struct {
	Owner          bank.Address
	Address        bank.Address // where collected fees sit until distributed
	Stakers        bank.Address
	Treasury       bank.Address
	Asset          bank.Asset
	PerformanceFee bps.BP
	ManagementFee  bps.BP
}

func (c Config) Validate() error {
	if c.Owner.IsZero() || c.Address.IsZero() {
		return fmt.Errorf("%w: owner and pool address are required", vaulterr.ErrInvalidConfiguration)
	}
	if c.Asset == "" {
		return fmt.Errorf("%w: missing asset", vaulterr.ErrInvalidConfiguration)
	}
	if err := checkAddresses(c.Address, c.Stakers, c.Treasury); err != nil {
		return err
	}
	return checkRates(c.PerformanceFee, c.ManagementFee)
}

func checkRates(perf, mgmt bps.BP) error {
	if perf > MaxPerformanceFee {
		return fmt.Errorf("%w: performance fee %s above %s", vaulterr.ErrInvalidConfiguration, perf, MaxPerformanceFee)
	}
	if mgmt > MaxManagementFee {
		return fmt.Errorf("%w: management fee %s above %s", vaulterr.ErrInvalidConfiguration, mgmt, MaxManagementFee)
	}
	return nil
}

func checkAddresses(pool, stakers, treasury bank.Address) error {
	if stakers.IsZero() || treasury.IsZero() {
		return fmt.Errorf("%w: stakers and treasury are required", vaulterr.ErrInvalidConfiguration)
	}
	if stakers == pool || treasury == pool {
		return fmt.Errorf("%w: fees cannot be distributed back to the pool", vaulterr.ErrInvalidConfiguration)
	}
	return nil
}

type Pool struct {
	guard guard.Guard
	owner bank.Address
	addr  bank.Address
	asset bank.Asset
	bank  bank.Mover

	mu          sync.RWMutex
	stakers     bank.Address
	treasury    bank.Address
	perfRate    bps.BP
	mgmtRate    bps.BP
	balance     math.Int
	collected   math.Int
	byCategory  map[Category]math.Int
	distributed math.Int
	rounds      int

	rec *journal.Recorder
	log *zap.Logger
}

type Option func(*Pool)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) { p.log = l }
}

func WithRecorder(r *journal.Recorder) Option {
	return func(p *Pool) { p.rec = r }
}

func New(cfg Config, b bank.Mover, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		owner:       cfg.Owner,
		addr:        cfg.Address,
		asset:       cfg.Asset,
		bank:        b,
		stakers:     cfg.Stakers,
		treasury:    cfg.Treasury,
		perfRate:    cfg.PerformanceFee,
		mgmtRate:    cfg.ManagementFee,
		balance:     math.ZeroInt(),
		collected:   math.ZeroInt(),
		distributed: math.ZeroInt(),
		byCategory: map[Category]math.Int{
			Performance: math.ZeroInt(),
			Management:  math.ZeroInt(),
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rec == nil {
		p.rec = journal.NewRecorder(nil, nil, p.log)
	}
	p.log = p.log.With(zap.String("engine", Entity))
	return p, nil
}

func (p *Pool) CollectPerformanceFee(ctx context.Context, from bank.Address, amount math.Int) error {
	return p.collect(ctx, Performance, from, amount)
}

func (p *Pool) CollectManagementFee(ctx context.Context, from bank.Address, amount math.Int) error {
	return p.collect(ctx, Management, from, amount)
}

func (p *Pool) collect(ctx context.Context, cat Category, from bank.Address, amount math.Int) error {
	op := "collect " + string(cat) + " fee"

	ctx, release, err := p.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}
	if err := p.bank.Transfer(ctx, p.asset, from, p.addr, amount); err != nil {
		return fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	p.mu.Lock()
	p.balance = p.balance.Add(amount)
	p.collected = p.collected.Add(amount)
	p.byCategory[cat] = p.byCategory[cat].Add(amount)
	p.mu.Unlock()

	p.emit(journal.Event{
		Kind:   journal.KindFeeCollected,
		Actor:  string(from),
		Amount: amount,
		Attrs:  map[string]string{journal.AttrCategory: string(cat)},
	})
	return nil
}

// DistributeFees pays out the whole balance in one batch. Anyone may call
// it. If any leg fails nothing moves.
func (p *Pool) DistributeFees(ctx context.Context, caller bank.Address) (Split, error) {
	const op = "distribute fees"

	ctx, release, err := p.guard.Enter(ctx)
	defer release()
	if err != nil {
		return Split{}, fmt.Errorf("%s: %w", op, err)
	}

	p.mu.RLock()
	balance := p.balance
	stakers, treasury := p.stakers, p.treasury
	p.mu.RUnlock()

	if !balance.IsPositive() {
		return Split{}, fmt.Errorf("%s: %w", op, vaulterr.ErrNothingToDistribute)
	}

	s := PreviewSplit(balance)
	legs := []bank.Transfer{
		{Asset: p.asset, From: p.addr, To: stakers, Amount: s.ToStakers},
		{Asset: p.asset, From: p.addr, To: bank.Burn, Amount: s.ToBurn},
		{Asset: p.asset, From: p.addr, To: treasury, Amount: s.ToTreasury},
	}
	if err := p.bank.TransferBatch(ctx, legs); err != nil {
		return Split{}, fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	p.mu.Lock()
	p.balance = p.balance.Sub(balance)
	p.distributed = p.distributed.Add(balance)
	p.rounds++
	p.mu.Unlock()

	p.log.Info("fees distributed",
		zap.Stringer("balance", balance),
		zap.Stringer("stakers", s.ToStakers),
		zap.Stringer("burn", s.ToBurn),
		zap.Stringer("treasury", s.ToTreasury),
	)
	p.emit(journal.Event{
		Kind:   journal.KindFeesDistributed,
		Actor:  string(caller),
		Amount: balance,
		Attrs: map[string]string{
			journal.AttrToStakers:  s.ToStakers.String(),
			journal.AttrToBurn:     s.ToBurn.String(),
			journal.AttrToTreasury: s.ToTreasury.String(),
		},
	})
	return s, nil
}

func (p *Pool) UpdateFeeRates(ctx context.Context, caller bank.Address, perf, mgmt bps.BP) error {
	const op = "update fee rates"

	_, release, err := p.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkRates(perf, mgmt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	p.perfRate, p.mgmtRate = perf, mgmt
	p.mu.Unlock()

	p.emit(journal.Event{
		Kind:  journal.KindConfigUpdated,
		Actor: string(caller),
		Attrs: map[string]string{
			journal.AttrPerfRate: strconv.FormatUint(uint64(perf), 10),
			journal.AttrMgmtRate: strconv.FormatUint(uint64(mgmt), 10),
		},
	})
	return nil
}

func (p *Pool) UpdateAddresses(ctx context.Context, caller, stakers, treasury bank.Address) error {
	const op = "update addresses"

	_, release, err := p.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAddresses(p.addr, stakers, treasury); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	p.stakers, p.treasury = stakers, treasury
	p.mu.Unlock()

	p.emit(journal.Event{
		Kind:  journal.KindConfigUpdated,
		Actor: string(caller),
		Attrs: map[string]string{
			journal.AttrStakers:  string(stakers),
			journal.AttrTreasury: string(treasury),
		},
	})
	return nil
}

// Preview is the split DistributeFees would make right now.
func (p *Pool) Preview() Split {
	return PreviewSplit(p.Balance())
}

// PerformanceFee is the fee the current rate charges on profit.
func (p *Pool) PerformanceFee(profit math.Int) math.Int {
	perf, _ := p.Rates()
	return ComputePerformanceFee(profit, perf)
}

// ManagementFee is the fee the current rate charges on aum over elapsed.
func (p *Pool) ManagementFee(aum math.Int, elapsed time.Duration) math.Int {
	_, mgmt := p.Rates()
	return ComputeManagementFee(aum, mgmt, elapsed)
}

func (p *Pool) Balance() math.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}

// TotalCollected never decreases.
func (p *Pool) TotalCollected() math.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.collected
}

func (p *Pool) CollectedBy(cat Category) math.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.byCategory[cat]; ok {
		return v
	}
	return math.ZeroInt()
}

func (p *Pool) TotalDistributed() math.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributed
}

// Rounds counts successful distributions.
func (p *Pool) Rounds() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rounds
}

func (p *Pool) Rates() (perf, mgmt bps.BP) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.perfRate, p.mgmtRate
}

func (p *Pool) Addresses() (stakers, treasury bank.Address) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stakers, p.treasury
}

func (p *Pool) requireOwner(caller bank.Address) error {
	if caller != p.owner {
		return fmt.Errorf("%w: %s is not the owner", vaulterr.ErrUnauthorized, caller)
	}
	return nil
}

func (p *Pool) emit(e journal.Event) {
	e.Entity = Entity
	e.Asset = string(p.asset)
	p.rec.Emit(e)
}
