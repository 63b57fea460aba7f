// Package bps does basis-point arithmetic on token amounts.
//
// Every rate, cap and multiplier in the system is an integer number of
// basis points (1/10000). Multiplication always happens before the
// truncating division so results match an integer reference exactly.
package bps

import (
	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// Denominator is one whole (100%) in basis points.
const Denominator = 10_000

// BP is a basis-point quantity.
type BP uint32

// Of returns floor(amount * b / 10000).
func (b BP) Of(amount math.Int) math.Int {
	return amount.MulRaw(int64(b)).QuoRaw(Denominator)
}

// Percent renders b as a percentage: 3000 -> 30.
func (b BP) Percent() decimal.Decimal {
	return decimal.New(int64(b), -2)
}

func (b BP) String() string {
	return b.Percent().StringFixed(2) + "%"
}

// Within reports whether part/whole <= limit, compared exactly by
// cross-multiplying. The ratio against a zero whole is defined as zero.
func Within(part, whole math.Int, limit BP) bool {
	if whole.IsZero() {
		return true
	}
	return part.MulRaw(Denominator).LTE(whole.MulRaw(int64(limit)))
}

// Ratio returns part/whole as a percentage, or zero when whole is zero.
func Ratio(part, whole math.Int) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Decimal(part).Mul(decimal.NewFromInt(100)).Div(Decimal(whole))
}

// Decimal converts an integer amount to a decimal for reporting.
func Decimal(amount math.Int) decimal.Decimal {
	if amount.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount.BigInt(), 0)
}
