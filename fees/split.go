package fees

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rustyeddy/agentvault/bps"
)

const (
	StakersShare bps.BP = 5_000
	BurnShare    bps.BP = 2_500

	MaxPerformanceFee bps.BP = 2_000
	MaxManagementFee  bps.BP = 200

	secondsPerYear = 365 * 24 * 60 * 60
)

// Split is how one distribution divides the pool balance.
type Split struct {
	ToStakers  math.Int
	ToBurn     math.Int
	ToTreasury math.Int
}

func (s Split) Total() math.Int {
	return s.ToStakers.Add(s.ToBurn).Add(s.ToTreasury)
}

// PreviewSplit divides balance: half to stakers, a quarter burned, and the
// treasury takes whatever is left so the three parts always sum to balance.
func PreviewSplit(balance math.Int) Split {
	if balance.IsNil() || !balance.IsPositive() {
		return Split{ToStakers: math.ZeroInt(), ToBurn: math.ZeroInt(), ToTreasury: math.ZeroInt()}
	}
	stakers := StakersShare.Of(balance)
	burn := BurnShare.Of(balance)
	return Split{
		ToStakers:  stakers,
		ToBurn:     burn,
		ToTreasury: balance.Sub(stakers).Sub(burn),
	}
}

// ComputePerformanceFee applies rate to a profit. Losses pay nothing.
func ComputePerformanceFee(profit math.Int, rate bps.BP) math.Int {
	if profit.IsNil() || !profit.IsPositive() {
		return math.ZeroInt()
	}
	return rate.Of(profit)
}

// ComputeManagementFee pro-rates an annual rate on aum over elapsed,
// truncated to whole seconds.
func ComputeManagementFee(aum math.Int, rate bps.BP, elapsed time.Duration) math.Int {
	secs := int64(elapsed / time.Second)
	if secs <= 0 || aum.IsNil() || !aum.IsPositive() {
		return math.ZeroInt()
	}
	return aum.MulRaw(int64(rate)).MulRaw(secs).QuoRaw(bps.Denominator * secondsPerYear)
}
