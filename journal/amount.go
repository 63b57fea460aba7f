package journal

import (
	"fmt"

	"cosmossdk.io/math"
)

func amountString(a math.Int) string {
	if a.IsNil() {
		return "0"
	}
	return a.String()
}

func parseAmount(s string) (math.Int, error) {
	if s == "" {
		return math.ZeroInt(), nil
	}
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("bad amount %q", s)
	}
	return v, nil
}
