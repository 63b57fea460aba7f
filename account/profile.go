package account

import "fmt"

type RiskProfile uint8

const (
	Conservative RiskProfile = iota
	Moderate
	Aggressive
)

func (p RiskProfile) Valid() bool {
	return p <= Aggressive
}

func (p RiskProfile) String() string {
	switch p {
	case Conservative:
		return "conservative"
	case Moderate:
		return "moderate"
	case Aggressive:
		return "aggressive"
	default:
		return fmt.Sprintf("RiskProfile(%d)", uint8(p))
	}
}

// ParseRiskProfile accepts the names String returns.
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch s {
	case "conservative":
		return Conservative, nil
	case "moderate":
		return Moderate, nil
	case "aggressive":
		return Aggressive, nil
	}
	return 0, fmt.Errorf("unknown risk profile %q", s)
}
