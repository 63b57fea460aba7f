// Package journal records the observability events emitted by the account
// ledger, the staking engine and the fee pool.
//
// The event log carries enough to rebuild every account's books (see
// Replay). Sinks are in-memory, CSV and SQLite.
package journal

import (
	"time"

	"cosmossdk.io/math"
)

type Kind string

const (
	KindAccountCreated   Kind = "account_created"
	KindAgentBound       Kind = "agent_bound"
	KindDeposit          Kind = "deposit"
	KindWithdrawal       Kind = "withdrawal"
	KindAgentChanged     Kind = "agent_changed"
	KindStrategyExecuted Kind = "strategy_executed"
	KindPositionUpdated  Kind = "position_updated"
	KindPnLRecorded      Kind = "pnl_recorded"
	KindPaused           Kind = "paused"
	KindUnpaused         Kind = "unpaused"
	KindConfigUpdated    Kind = "config_updated"
	KindTargetUpdated    Kind = "target_updated"
	KindStake            Kind = "stake"
	KindUnstake          Kind = "unstake"
	KindRewardClaimed    Kind = "reward_claimed"
	KindRewardsFunded    Kind = "rewards_funded"
	KindFeeCollected     Kind = "fee_collected"
	KindFeesDistributed  Kind = "fees_distributed"
)

// Attribute keys shared by emitters and Replay.
const (
	AttrTarget     = "target"
	AttrSuccess    = "success"
	AttrPosition   = "position"
	AttrRecipient  = "recipient"
	AttrReason     = "reason"
	AttrAgent      = "agent"
	AttrCategory   = "category"
	AttrToStakers  = "to_stakers"
	AttrToBurn     = "to_burn"
	AttrToTreasury = "to_treasury"
	AttrPositionID = "position_id"
	AttrReward     = "reward"
	AttrLockDays   = "lock_days"
	AttrMultiplier = "multiplier"
	AttrAllowed    = "allowed"
	AttrProfile    = "risk_profile"
	AttrExposure   = "max_exposure"
	AttrBaseRate   = "base_rate"
	AttrPerfRate   = "performance_rate"
	AttrMgmtRate   = "management_rate"
	AttrStakers    = "stakers"
	AttrTreasury   = "treasury"
	AttrTemplate   = "template"
	AttrOwner      = "owner"
)

type Event struct {
	ID     string
	Time   time.Time
	Kind   Kind
	Entity string // account id, or the engine name for staking and fees
	Actor  string
	Asset  string
	Amount math.Int
	Attrs  map[string]string
}

// Attr returns the named attribute or "".
func (e Event) Attr(key string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[key]
}

type Journal interface {
	Record(Event) error
	Close() error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(Event) error { return nil }
func (Discard) Close() error       { return nil }
