package staking

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rustyeddy/agentvault/bps"
)

// SecondsPerYear is the accrual year: 365 days, no leap handling.
const SecondsPerYear = 365 * 24 * 60 * 60

var yearDenominator = math.NewInt(bps.Denominator * SecondsPerYear)

// Accrue returns the reward earned by principal over elapsed time:
//
//	principal * baseRate * seconds / (10000 * SecondsPerYear) * multiplier / 10000
//
// Every division truncates and the terms are applied left to right. Partial
// seconds are dropped and a negative elapsed time earns nothing.
func Accrue(principal math.Int, baseRate bps.BP, elapsed time.Duration, multiplier bps.BP) math.Int {
	secs := int64(elapsed / time.Second)
	if secs <= 0 || principal.IsNil() || !principal.IsPositive() {
		return math.ZeroInt()
	}
	r := principal.MulRaw(int64(baseRate)).MulRaw(secs).Quo(yearDenominator)
	return r.MulRaw(int64(multiplier)).QuoRaw(bps.Denominator)
}
