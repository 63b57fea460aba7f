package account

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// SetAgent binds agent as the only identity allowed to run strategies,
// replacing any previous agent.
func (a *Account) SetAgent(ctx context.Context, caller, agent bank.Address) error {
	const op = "set agent"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if agent.IsZero() {
		return fmt.Errorf("%s: %w: empty agent", op, vaulterr.ErrInvalidConfiguration)
	}

	a.mu.Lock()
	prev := a.agent
	a.agent = agent
	a.mu.Unlock()

	a.log.Info("agent changed",
		zap.String("from", string(prev)),
		zap.String("to", string(agent)),
	)
	a.emit(journal.Event{
		Kind:  journal.KindAgentChanged,
		Actor: string(caller),
		Attrs: map[string]string{journal.AttrAgent: string(agent)},
	})
	return nil
}

// Bind whitelists targets and sets the first agent in one step. It fails
// with vaulterr.ErrAlreadyBound if any agent is set, and then nothing changes.
func (a *Account) Bind(ctx context.Context, caller, agent bank.Address, targets []bank.Address) error {
	const op = "bind agent"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if agent.IsZero() {
		return fmt.Errorf("%s: %w: empty agent", op, vaulterr.ErrInvalidConfiguration)
	}
	for _, t := range targets {
		if t.IsZero() {
			return fmt.Errorf("%s: %w: empty target", op, vaulterr.ErrInvalidConfiguration)
		}
	}

	a.mu.Lock()
	if !a.agent.IsZero() {
		prev := a.agent
		a.mu.Unlock()
		return fmt.Errorf("%s: %w: agent %s", op, vaulterr.ErrAlreadyBound, prev)
	}
	for _, t := range targets {
		a.targets[t] = true
	}
	a.agent = agent
	a.mu.Unlock()

	for _, t := range targets {
		a.emit(journal.Event{
			Kind:  journal.KindTargetUpdated,
			Actor: string(caller),
			Attrs: map[string]string{
				journal.AttrTarget:  string(t),
				journal.AttrAllowed: "true",
			},
		})
	}
	a.log.Info("agent bound", zap.String("agent", string(agent)), zap.Int("targets", len(targets)))
	a.emit(journal.Event{
		Kind:  journal.KindAgentChanged,
		Actor: string(caller),
		Attrs: map[string]string{journal.AttrAgent: string(agent)},
	})
	return nil
}

func (a *Account) UpdateConfig(ctx context.Context, caller bank.Address, profile RiskProfile, maxExposure bps.BP) error {
	const op = "update config"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkRisk(profile, maxExposure); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.mu.Lock()
	a.profile = profile
	a.maxExposure = maxExposure
	a.mu.Unlock()

	a.emit(journal.Event{
		Kind:  journal.KindConfigUpdated,
		Actor: string(caller),
		Attrs: map[string]string{
			journal.AttrProfile:  profile.String(),
			journal.AttrExposure: strconv.FormatUint(uint64(maxExposure), 10),
		},
	})
	return nil
}

func (a *Account) SetTargetAllowed(ctx context.Context, caller, target bank.Address, allowed bool) error {
	const op = "set target allowed"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if target.IsZero() {
		return fmt.Errorf("%s: %w: empty target", op, vaulterr.ErrInvalidConfiguration)
	}

	a.mu.Lock()
	if allowed {
		a.targets[target] = true
	} else {
		delete(a.targets, target)
	}
	a.mu.Unlock()

	a.emit(journal.Event{
		Kind:  journal.KindTargetUpdated,
		Actor: string(caller),
		Attrs: map[string]string{
			journal.AttrTarget:  string(target),
			journal.AttrAllowed: strconv.FormatBool(allowed),
		},
	})
	return nil
}

// EmergencyPause stops strategy execution. The owner or the agent may
// pause; pausing an already paused account succeeds.
func (a *Account) EmergencyPause(ctx context.Context, caller bank.Address, reason string) error {
	const op = "emergency pause"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if caller != a.owner {
		if err := a.requireAgent(caller); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()

	a.log.Warn("account paused",
		zap.String("by", string(caller)),
		zap.String("reason", reason),
	)
	a.emit(journal.Event{
		Kind:  journal.KindPaused,
		Actor: string(caller),
		Attrs: map[string]string{journal.AttrReason: reason},
	})
	return nil
}

// Unpause is owner-only and idempotent.
func (a *Account) Unpause(ctx context.Context, caller bank.Address) error {
	const op = "unpause"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()

	a.log.Info("account unpaused", zap.String("by", string(caller)))
	a.emit(journal.Event{
		Kind:  journal.KindUnpaused,
		Actor: string(caller),
	})
	return nil
}
