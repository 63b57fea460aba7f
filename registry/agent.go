package registry

import (
	"context"

	"cosmossdk.io/math"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
)

// ExecutorTemplate is registered on every new Registry.
const ExecutorTemplate = "executor"

// Agent is a bound agent instance.
type Agent interface {
	ID() string
	Address() bank.Address
	Template() string
	AccountID() string
}

// Spec is what a Factory gets to build an agent from.
type Spec struct {
	ID       string
	Address  bank.Address
	Template string
	Account  *account.Account
	Targets  []bank.Address
}

// Factory builds a fresh, independent agent for one account.
type Factory func(Spec) (Agent, error)

// Executor acts on its account as the bound agent.
type Executor struct {
	spec Spec
}

func NewExecutor(s Spec) (Agent, error) {
	return &Executor{spec: s}, nil
}

func (x *Executor) ID() string              { return x.spec.ID }
func (x *Executor) Address() bank.Address   { return x.spec.Address }
func (x *Executor) Template() string        { return x.spec.Template }
func (x *Executor) AccountID() string       { return x.spec.Account.ID() }
func (x *Executor) Targets() []bank.Address { return append([]bank.Address(nil), x.spec.Targets...) }

// Execute runs a strategy that leaves position at target.
func (x *Executor) Execute(ctx context.Context, target bank.Address, payload []byte, position math.Int) (account.Execution, error) {
	return x.spec.Account.ExecuteStrategy(ctx, x.spec.Address, account.Strategy{
		Target:   target,
		Payload:  payload,
		Position: position,
	})
}

func (x *Executor) Mark(ctx context.Context, target bank.Address, value math.Int) error {
	return x.spec.Account.UpdatePosition(ctx, x.spec.Address, target, value)
}

func (x *Executor) Report(ctx context.Context, asset bank.Asset, pnl math.Int) error {
	return x.spec.Account.RecordPnL(ctx, x.spec.Address, asset, pnl)
}

func (x *Executor) Pause(ctx context.Context, reason string) error {
	return x.spec.Account.EmergencyPause(ctx, x.spec.Address, reason)
}
