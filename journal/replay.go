package journal

import (
	"fmt"

	"cosmossdk.io/math"
)

// Books is an account's ledger as rebuilt from its events.
type Books struct {
	TotalValue     math.Int
	TotalDeposited math.Int
	TotalWithdrawn math.Int
	RealizedPnL    math.Int
	Positions      map[string]math.Int
	Paused         bool
	Agent          string
}

func newBooks() *Books {
	return &Books{
		TotalValue:     math.ZeroInt(),
		TotalDeposited: math.ZeroInt(),
		TotalWithdrawn: math.ZeroInt(),
		RealizedPnL:    math.ZeroInt(),
		Positions:      make(map[string]math.Int),
	}
}

// Replay folds account events, in order, into per-account books keyed by
// entity. Staking and fee events are ignored.
func Replay(events []Event) (map[string]*Books, error) {
	out := make(map[string]*Books)
	get := func(entity string) *Books {
		b, ok := out[entity]
		if !ok {
			b = newBooks()
			out[entity] = b
		}
		return b
	}

	for _, e := range events {
		switch e.Kind {
		case KindAccountCreated:
			get(e.Entity)
		case KindDeposit:
			b := get(e.Entity)
			b.TotalValue = b.TotalValue.Add(e.Amount)
			b.TotalDeposited = b.TotalDeposited.Add(e.Amount)
		case KindWithdrawal:
			b := get(e.Entity)
			b.TotalValue = b.TotalValue.Sub(e.Amount)
			b.TotalWithdrawn = b.TotalWithdrawn.Add(e.Amount)
		case KindPnLRecorded:
			b := get(e.Entity)
			b.TotalValue = b.TotalValue.Add(e.Amount)
			b.RealizedPnL = b.RealizedPnL.Add(e.Amount)
		case KindStrategyExecuted, KindPositionUpdated:
			if e.Kind == KindStrategyExecuted && e.Attr(AttrSuccess) != "true" {
				continue
			}
			pos, err := parseAmount(e.Attr(AttrPosition))
			if err != nil {
				return nil, fmt.Errorf("replay %s: %w", e.ID, err)
			}
			get(e.Entity).Positions[e.Attr(AttrTarget)] = pos
		case KindPaused:
			get(e.Entity).Paused = true
		case KindUnpaused:
			get(e.Entity).Paused = false
		case KindAgentChanged, KindAgentBound:
			get(e.Entity).Agent = e.Attr(AttrAgent)
		}
	}
	return out, nil
}
