// Package staking is the lock-tiered reward engine. Stakers lock principal
// in the pool for one of the configured tiers and accrue a linear reward,
// scaled by the tier's multiplier, paid out of a separately funded reserve.
package staking

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
	"github.com/rustyeddy/agentvault/clock"
	"github.com/rustyeddy/agentvault/guard"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// Entity is the journal entity staking events are recorded under.
const Entity = "staking"

type Config struct {
	Owner        bank.Address // may change tiers and the base rate
	Pool         bank.Address // holds staked principal
	RewardSource bank.Address // reserve rewards are paid from
	Asset        bank.Asset
	BaseRate     bps.BP
	Tiers        []Tier // DefaultTiers when empty
}

func (c Config) Validate() error {
	if c.Owner.IsZero() || c.Pool.IsZero() || c.RewardSource.IsZero() {
		return fmt.Errorf("%w: owner, pool and reward source are required", vaulterr.ErrInvalidConfiguration)
	}
	if c.Pool == c.RewardSource {
		return fmt.Errorf("%w: reward source must not be the pool", vaulterr.ErrInvalidConfiguration)
	}
	if c.Asset == "" {
		return fmt.Errorf("%w: missing asset", vaulterr.ErrInvalidConfiguration)
	}
	if err := checkBaseRate(c.BaseRate); err != nil {
		return err
	}
	seen := make(map[uint32]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if seen[t.LockDays] {
			return fmt.Errorf("%w: duplicate tier %d days", vaulterr.ErrInvalidConfiguration, t.LockDays)
		}
		seen[t.LockDays] = true
		if err := checkTier(t.LockDays, t.Multiplier); err != nil {
			return err
		}
	}
	return nil
}

type Engine struct {
	cfg  Config
	bank bank.Mover

	cfgGuard guard.Guard

	mu        sync.RWMutex
	tiers     map[uint32]bps.BP
	baseRate  bps.BP
	version   uint64
	positions map[bank.Address][]Position
	guards    map[bank.Address]*guard.Guard
	funded    math.Int

	clock clock.Clock
	rec   *journal.Recorder
	log   *zap.Logger
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithRecorder(r *journal.Recorder) Option {
	return func(e *Engine) { e.rec = r }
}

func New(cfg Config, b bank.Mover, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}

	e := &Engine{
		cfg:       cfg,
		bank:      b,
		tiers:     make(map[uint32]bps.BP, len(tiers)),
		baseRate:  cfg.BaseRate,
		positions: make(map[bank.Address][]Position),
		guards:    make(map[bank.Address]*guard.Guard),
		funded:    math.ZeroInt(),
		clock:     clock.Real{},
		log:       zap.NewNop(),
	}
	for _, t := range tiers {
		e.tiers[t.LockDays] = t.Multiplier
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rec == nil {
		e.rec = journal.NewRecorder(nil, e.clock, e.log)
	}
	e.log = e.log.With(zap.String("engine", Entity))

	return e, nil
}

func (e *Engine) Asset() bank.Asset { return e.cfg.Asset }

// guardFor returns the staker's guard, creating it on first use.
func (e *Engine) guardFor(staker bank.Address) *guard.Guard {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.guards[staker]
	if !ok {
		g = &guard.Guard{}
		e.guards[staker] = g
	}
	return g
}

// FundRewards moves amount from the funder into the reward reserve.
func (e *Engine) FundRewards(ctx context.Context, from bank.Address, amount math.Int) error {
	const op = "fund rewards"

	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}
	if err := e.bank.Transfer(ctx, e.cfg.Asset, from, e.cfg.RewardSource, amount); err != nil {
		return fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	e.mu.Lock()
	e.funded = e.funded.Add(amount)
	e.mu.Unlock()

	e.emit(journal.Event{
		Kind:   journal.KindRewardsFunded,
		Actor:  string(from),
		Amount: amount,
	})
	return nil
}

// Stake locks amount for lockDays, which must be a configured tier, and
// returns the new position's id.
func (e *Engine) Stake(ctx context.Context, staker bank.Address, amount math.Int, lockDays uint32) (int, error) {
	const op = "stake"

	if staker.IsZero() {
		return 0, fmt.Errorf("%s: %w: empty staker", op, vaulterr.ErrUnauthorized)
	}
	ctx, release, err := e.guardFor(staker).Enter(ctx)
	defer release()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if amount.IsNil() || !amount.IsPositive() {
		return 0, fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}

	e.mu.RLock()
	mult, ok := e.tiers[lockDays]
	e.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%s: %w: %d days", op, vaulterr.ErrInvalidLockPeriod, lockDays)
	}

	if err := e.bank.Transfer(ctx, e.cfg.Asset, staker, e.cfg.Pool, amount); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	now := e.clock.Now()
	e.mu.Lock()
	id := len(e.positions[staker])
	e.positions[staker] = append(e.positions[staker], Position{
		ID:         id,
		Staker:     staker,
		Amount:     amount,
		StakedAt:   now,
		LastClaim:  now,
		LockDays:   lockDays,
		Multiplier: mult,
		Claimed:    math.ZeroInt(),
		Active:     true,
	})
	e.mu.Unlock()

	e.log.Debug("stake",
		zap.String("staker", string(staker)),
		zap.Int("position", id),
		zap.Stringer("amount", amount),
		zap.Uint32("lock_days", lockDays),
	)
	e.emit(journal.Event{
		Kind:   journal.KindStake,
		Actor:  string(staker),
		Amount: amount,
		Attrs: map[string]string{
			journal.AttrPositionID: strconv.Itoa(id),
			journal.AttrLockDays:   strconv.FormatUint(uint64(lockDays), 10),
			journal.AttrMultiplier: strconv.FormatUint(uint64(mult), 10),
		},
	})
	return id, nil
}

// Unstake closes an unlocked position, paying principal and the final
// reward in one batch.
func (e *Engine) Unstake(ctx context.Context, staker bank.Address, id int) error {
	const op = "unstake"

	ctx, release, err := e.guardFor(staker).Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p, err := e.activePosition(staker, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	now := e.clock.Now()
	if p.Locked(now) {
		return fmt.Errorf("%s: %w: position %d unlocks at %s",
			op, vaulterr.ErrStillLocked, id, p.Unlocks().Format(time.RFC3339))
	}

	reward := e.accrued(p, now)
	legs := []bank.Transfer{{Asset: e.cfg.Asset, From: e.cfg.Pool, To: staker, Amount: p.Amount}}
	if reward.IsPositive() {
		legs = append(legs, bank.Transfer{Asset: e.cfg.Asset, From: e.cfg.RewardSource, To: staker, Amount: reward})
	}
	if err := e.bank.TransferBatch(ctx, legs); err != nil {
		return fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	e.mu.Lock()
	q := &e.positions[staker][id]
	q.Active = false
	q.Claimed = q.Claimed.Add(reward)
	q.LastClaim = now
	e.mu.Unlock()

	e.log.Debug("unstake",
		zap.String("staker", string(staker)),
		zap.Int("position", id),
		zap.Stringer("principal", p.Amount),
		zap.Stringer("reward", reward),
	)
	e.emit(journal.Event{
		Kind:   journal.KindUnstake,
		Actor:  string(staker),
		Amount: p.Amount,
		Attrs: map[string]string{
			journal.AttrPositionID: strconv.Itoa(id),
			journal.AttrReward:     reward.String(),
		},
	})
	return nil
}

// ClaimRewards pays the reward accrued since the last claim and restarts
// accrual. The lock is not extended. It returns the amount paid.
func (e *Engine) ClaimRewards(ctx context.Context, staker bank.Address, id int) (math.Int, error) {
	const op = "claim rewards"

	ctx, release, err := e.guardFor(staker).Enter(ctx)
	defer release()
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("%s: %w", op, err)
	}

	p, err := e.activePosition(staker, id)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("%s: %w", op, err)
	}
	now := e.clock.Now()
	reward := e.accrued(p, now)
	if reward.IsZero() {
		return math.ZeroInt(), fmt.Errorf("%s: %w", op, vaulterr.ErrNoRewards)
	}

	if err := e.bank.Transfer(ctx, e.cfg.Asset, e.cfg.RewardSource, staker, reward); err != nil {
		return math.ZeroInt(), fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	e.mu.Lock()
	q := &e.positions[staker][id]
	q.Claimed = q.Claimed.Add(reward)
	q.LastClaim = now
	e.mu.Unlock()

	e.emit(journal.Event{
		Kind:   journal.KindRewardClaimed,
		Actor:  string(staker),
		Amount: reward,
		Attrs:  map[string]string{journal.AttrPositionID: strconv.Itoa(id)},
	})
	return reward, nil
}

// PendingReward is what ClaimRewards would pay right now.
func (e *Engine) PendingReward(staker bank.Address, id int) (math.Int, error) {
	p, err := e.activePosition(staker, id)
	if err != nil {
		return math.ZeroInt(), err
	}
	return e.accrued(p, e.clock.Now()), nil
}

// Positions returns a copy of every position the staker ever opened.
func (e *Engine) Positions(staker bank.Address) []Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Position, len(e.positions[staker]))
	copy(out, e.positions[staker])
	return out
}

// UserTotalStaked sums the principal of the staker's active positions.
func (e *Engine) UserTotalStaked(staker bank.Address) math.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := math.ZeroInt()
	for _, p := range e.positions[staker] {
		if p.Active {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TotalFunded is everything ever moved into the reward reserve through
// FundRewards.
func (e *Engine) TotalFunded() math.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.funded
}

func (e *Engine) activePosition(staker bank.Address, id int) (Position, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ps := e.positions[staker]
	if id < 0 || id >= len(ps) {
		return Position{}, fmt.Errorf("%w: %s has no position %d", vaulterr.ErrInvalidPosition, staker, id)
	}
	if !ps[id].Active {
		return Position{}, fmt.Errorf("%w: position %d is closed", vaulterr.ErrInvalidPosition, id)
	}
	return ps[id], nil
}

func (e *Engine) accrued(p Position, now time.Time) math.Int {
	e.mu.RLock()
	rate := e.baseRate
	e.mu.RUnlock()
	return Accrue(p.Amount, rate, now.Sub(p.LastClaim), p.Multiplier)
}

func (e *Engine) emit(ev journal.Event) {
	ev.Entity = Entity
	if ev.Asset == "" {
		ev.Asset = string(e.cfg.Asset)
	}
	e.rec.Emit(ev)
}
