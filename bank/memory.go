package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrRejected          = errors.New("transfer rejected")
)

type holding struct {
	asset  Asset
	holder Address
}

// Memory is an in-process bank. It is safe for concurrent use.
//
// Transfers can be made to fail for chosen addresses, which is how callers
// exercise their TransferFailed paths.
type Memory struct {
	mu       sync.Mutex
	balances map[holding]math.Int
	failTo   map[Address]bool
	failFrom map[Address]bool
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[holding]math.Int),
		failTo:   make(map[Address]bool),
		failFrom: make(map[Address]bool),
	}
}

// Mint credits amount out of thin air. Used to seed owners and stakers.
func (m *Memory) Mint(asset Asset, to Address, amount math.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := holding{asset, to}
	m.balances[k] = m.balanceLocked(k).Add(amount)
}

// BalanceOf returns the holder's balance of asset.
func (m *Memory) BalanceOf(asset Asset, holder Address) math.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(holding{asset, holder})
}

// FailTransfersTo makes every transfer credited to addr fail while on is set.
func (m *Memory) FailTransfersTo(addr Address, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTo[addr] = on
}

// FailTransfersFrom makes every transfer debited from addr fail while on is set.
func (m *Memory) FailTransfersFrom(addr Address, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFrom[addr] = on
}

func (m *Memory) Transfer(ctx context.Context, asset Asset, from, to Address, amount math.Int) error {
	return m.TransferBatch(ctx, []Transfer{{Asset: asset, From: from, To: to, Amount: amount}})
}

// TransferBatch validates every leg against a scratch copy of the touched
// balances and only then commits, so a failing leg leaves nothing applied.
func (m *Memory) TransferBatch(ctx context.Context, legs []Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	scratch := make(map[holding]math.Int)
	get := func(k holding) math.Int {
		if v, ok := scratch[k]; ok {
			return v
		}
		return m.balanceLocked(k)
	}

	for i, l := range legs {
		if l.Amount.IsNil() || l.Amount.IsNegative() {
			return fmt.Errorf("leg %d: %w", i, ErrNegativeAmount)
		}
		if m.failFrom[l.From] || m.failTo[l.To] {
			return fmt.Errorf("leg %d %s -> %s: %w", i, l.From, l.To, ErrRejected)
		}

		src := holding{l.Asset, l.From}
		dst := holding{l.Asset, l.To}

		bal := get(src)
		if bal.LT(l.Amount) {
			return fmt.Errorf("leg %d: %s holds %s %s, needs %s: %w",
				i, l.From, bal, l.Asset, l.Amount, ErrInsufficientFunds)
		}
		scratch[src] = bal.Sub(l.Amount)
		scratch[dst] = get(dst).Add(l.Amount)
	}

	for k, v := range scratch {
		m.balances[k] = v
	}
	return nil
}

func (m *Memory) balanceLocked(k holding) math.Int {
	if v, ok := m.balances[k]; ok {
		return v
	}
	return math.ZeroInt()
}
