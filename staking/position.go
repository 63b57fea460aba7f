package staking

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
)

// Position is one stake. ID is its index in the staker's sequence.
// Multiplier is copied from the tier table when the stake is made and
// never changes afterwards.
type Position struct {
	ID         int
	Staker     bank.Address
	Amount     math.Int
	StakedAt   time.Time
	LastClaim  time.Time
	LockDays   uint32
	Multiplier bps.BP
	Claimed    math.Int
	Active     bool
}

func (p Position) Unlocks() time.Time {
	return p.StakedAt.Add(time.Duration(p.LockDays) * 24 * time.Hour)
}

func (p Position) Locked(now time.Time) bool {
	return now.Before(p.Unlocks())
}
