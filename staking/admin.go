package staking

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// SetLockTier adds or replaces a tier. Open positions keep the multiplier
// they were created with.
func (e *Engine) SetLockTier(ctx context.Context, caller bank.Address, lockDays uint32, multiplier bps.BP) error {
	const op = "set lock tier"

	_, release, err := e.enterConfig(ctx, caller)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkTier(lockDays, multiplier); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	e.mu.Lock()
	e.tiers[lockDays] = multiplier
	e.version++
	e.mu.Unlock()

	e.configUpdated(caller, map[string]string{
		journal.AttrLockDays:   strconv.FormatUint(uint64(lockDays), 10),
		journal.AttrMultiplier: strconv.FormatUint(uint64(multiplier), 10),
	})
	return nil
}

// RemoveLockTier stops new stakes for lockDays.
func (e *Engine) RemoveLockTier(ctx context.Context, caller bank.Address, lockDays uint32) error {
	const op = "remove lock tier"

	_, release, err := e.enterConfig(ctx, caller)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	e.mu.Lock()
	if _, ok := e.tiers[lockDays]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w: %d days", op, vaulterr.ErrInvalidLockPeriod, lockDays)
	}
	delete(e.tiers, lockDays)
	e.version++
	e.mu.Unlock()

	e.configUpdated(caller, map[string]string{
		journal.AttrLockDays: strconv.FormatUint(uint64(lockDays), 10),
		journal.AttrReason:   "tier removed",
	})
	return nil
}

// SetBaseRate changes the APR, in basis points, for all future accrual.
func (e *Engine) SetBaseRate(ctx context.Context, caller bank.Address, rate bps.BP) error {
	const op = "set base rate"

	_, release, err := e.enterConfig(ctx, caller)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkBaseRate(rate); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	e.mu.Lock()
	e.baseRate = rate
	e.version++
	e.mu.Unlock()

	e.configUpdated(caller, map[string]string{
		journal.AttrBaseRate: strconv.FormatUint(uint64(rate), 10),
	})
	return nil
}

// Tiers returns the current tier table ordered by lock length.
func (e *Engine) Tiers() []Tier {
	e.mu.RLock()
	out := make([]Tier, 0, len(e.tiers))
	for d, m := range e.tiers {
		out = append(out, Tier{LockDays: d, Multiplier: m})
	}
	e.mu.RUnlock()
	sortTiers(out)
	return out
}

func (e *Engine) BaseRate() bps.BP {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.baseRate
}

// Version counts configuration changes since the engine was created.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

func (e *Engine) enterConfig(ctx context.Context, caller bank.Address) (context.Context, func(), error) {
	ctx, release, err := e.cfgGuard.Enter(ctx)
	if err != nil {
		return ctx, release, err
	}
	if caller != e.cfg.Owner {
		return ctx, release, fmt.Errorf("%w: %s is not the owner", vaulterr.ErrUnauthorized, caller)
	}
	return ctx, release, nil
}

func (e *Engine) configUpdated(caller bank.Address, attrs map[string]string) {
	e.log.Info("config updated", zap.Uint64("version", e.Version()))
	e.emit(journal.Event{
		Kind:  journal.KindConfigUpdated,
		Actor: string(caller),
		Attrs: attrs,
	})
}
