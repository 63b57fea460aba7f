package account

import (
	"context"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// Strategy is one delegated call. Position is the value the account will
// hold at Target once the call completes; it is what the exposure limit is
// checked against and what gets recorded on success.
type Strategy struct {
	Target   bank.Address
	Payload  []byte
	Position math.Int
}

// Execution reports the outcome of the delegated call. ReturnData is never
// interpreted.
type Execution struct {
	Target     bank.Address
	Success    bool
	ReturnData []byte
	Err        error
}

// ExecuteStrategy runs s against its target on behalf of the account.
//
// The returned error covers only the ledger's own checks. A failing
// delegated call is reported through Execution.Success and leaves the
// recorded position untouched.
func (a *Account) ExecuteStrategy(ctx context.Context, caller bank.Address, s Strategy) (Execution, error) {
	const op = "execute strategy"

	ctx, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return Execution{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireAgent(caller); err != nil {
		return Execution{}, fmt.Errorf("%s: %w", op, err)
	}
	if s.Position.IsNil() || s.Position.IsNegative() {
		return Execution{}, fmt.Errorf("%s: %w: position", op, vaulterr.ErrInvalidAmount)
	}

	a.mu.RLock()
	paused := a.paused
	allowed := a.targets[s.Target]
	total := a.totalValue
	limit := a.maxExposure
	a.mu.RUnlock()

	if paused {
		return Execution{}, fmt.Errorf("%s: %w", op, vaulterr.ErrPaused)
	}
	if !allowed {
		return Execution{}, fmt.Errorf("%s: %w: %s", op, vaulterr.ErrNotWhitelisted, s.Target)
	}
	if !bps.Within(s.Position, total, limit) {
		return Execution{}, fmt.Errorf("%s: %w: %s of %s at %s is %s%%, limit %s",
			op, vaulterr.ErrExposureLimitExceeded, s.Position, total, s.Target,
			bps.Ratio(s.Position, total).StringFixed(2), limit)
	}

	ret, callErr := a.caller.Call(ctx, s.Target, s.Payload)
	exec := Execution{
		Target:     s.Target,
		Success:    callErr == nil,
		ReturnData: ret,
		Err:        callErr,
	}

	attrs := map[string]string{
		journal.AttrTarget:  string(s.Target),
		journal.AttrSuccess: strconv.FormatBool(exec.Success),
	}
	if exec.Success {
		a.mu.Lock()
		a.positions[s.Target] = s.Position
		a.mu.Unlock()
		attrs[journal.AttrPosition] = s.Position.String()
	} else {
		attrs[journal.AttrReason] = callErr.Error()
		a.log.Warn("delegated call failed",
			zap.String("target", string(s.Target)),
			zap.Error(callErr),
		)
	}

	a.emit(journal.Event{
		Kind:   journal.KindStrategyExecuted,
		Actor:  string(caller),
		Amount: s.Position,
		Attrs:  attrs,
	})
	return exec, nil
}

// UpdatePosition lets the agent report the current value held at a
// whitelisted target without making a call.
func (a *Account) UpdatePosition(ctx context.Context, caller bank.Address, target bank.Address, value math.Int) error {
	const op = "update position"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireAgent(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if value.IsNil() || value.IsNegative() {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}

	a.mu.Lock()
	if !a.targets[target] {
		a.mu.Unlock()
		return fmt.Errorf("%s: %w: %s", op, vaulterr.ErrNotWhitelisted, target)
	}
	a.positions[target] = value
	a.mu.Unlock()

	a.emit(journal.Event{
		Kind:   journal.KindPositionUpdated,
		Actor:  string(caller),
		Amount: value,
		Attrs: map[string]string{
			journal.AttrTarget:   string(target),
			journal.AttrPosition: value.String(),
		},
	})
	return nil
}

// Exposure returns the recorded position at target as a share of total
// value, in basis points, truncated. It is zero for an empty account.
func (a *Account) Exposure(target bank.Address) bps.BP {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.totalValue.IsZero() {
		return 0
	}
	e := a.positionLocked(target).MulRaw(bps.Denominator).Quo(a.totalValue)
	if !e.IsUint64() || e.Uint64() > uint64(^uint32(0)) {
		return bps.BP(^uint32(0))
	}
	return bps.BP(e.Uint64())
}

func (a *Account) requireAgent(caller bank.Address) error {
	agent := a.Agent()
	if agent.IsZero() || caller != agent {
		return fmt.Errorf("%w: %s is not the agent", vaulterr.ErrUnauthorized, caller)
	}
	return nil
}
