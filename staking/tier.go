package staking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/vaulterr"
)

const (
	MinMultiplier   bps.BP = 10_000
	MaxMultiplier   bps.BP = 30_000
	MaxBaseRate     bps.BP = 5_000
	DefaultBaseRate bps.BP = 1_000

	// MaxLockDays keeps every unlock time within time.Duration range.
	MaxLockDays uint32 = 36_500
)

// Tier is a lock duration and the multiplier a position locked for that
// long earns.
type Tier struct {
	LockDays   uint32 `yaml:"lock_days" json:"lock_days"`
	Multiplier bps.BP `yaml:"multiplier" json:"multiplier"`
}

func DefaultTiers() []Tier {
	return []Tier{
		{LockDays: 0, Multiplier: 10_000},
		{LockDays: 90, Multiplier: 12_500},
		{LockDays: 180, Multiplier: 15_000},
		{LockDays: 365, Multiplier: 20_000},
	}
}

func checkTier(lockDays uint32, m bps.BP) error {
	if lockDays > MaxLockDays {
		return fmt.Errorf("%w: lock of %d days above %d",
			vaulterr.ErrInvalidConfiguration, lockDays, MaxLockDays)
	}
	return checkMultiplier(m)
}

func checkMultiplier(m bps.BP) error {
	if m < MinMultiplier || m > MaxMultiplier {
		return fmt.Errorf("%w: multiplier %d outside %d..%d",
			vaulterr.ErrInvalidConfiguration, m, MinMultiplier, MaxMultiplier)
	}
	return nil
}

func checkBaseRate(r bps.BP) error {
	if r > MaxBaseRate {
		return fmt.Errorf("%w: base rate %s above %s", vaulterr.ErrInvalidConfiguration, r, MaxBaseRate)
	}
	return nil
}

func sortTiers(ts []Tier) {
	slices.SortFunc(ts, func(a, b Tier) int {
		return cmp.Compare(a.LockDays, b.LockDays)
	})
}
