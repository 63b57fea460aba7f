package account

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// Deposit pulls amount of the native asset from the owner into the account.
func (a *Account) Deposit(ctx context.Context, caller bank.Address, amount math.Int) error {
	return a.deposit(ctx, "deposit", caller, bank.Native, amount)
}

// DepositAsset pulls amount of asset from the owner into the account.
func (a *Account) DepositAsset(ctx context.Context, caller bank.Address, asset bank.Asset, amount math.Int) error {
	return a.deposit(ctx, "deposit asset", caller, asset, amount)
}

func (a *Account) deposit(ctx context.Context, op string, caller bank.Address, asset bank.Asset, amount math.Int) error {
	ctx, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !positive(amount) {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}

	if err := a.bank.Transfer(ctx, asset, a.owner, a.address, amount); err != nil {
		return fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	a.mu.Lock()
	a.holdings[asset] = a.holdingLocked(asset).Add(amount)
	a.totalValue = a.totalValue.Add(amount)
	a.totalDeposited = a.totalDeposited.Add(amount)
	a.mu.Unlock()

	a.log.Debug("deposit",
		zap.String("asset", string(asset)),
		zap.Stringer("amount", amount),
	)
	a.emit(journal.Event{
		Kind:   journal.KindDeposit,
		Actor:  string(caller),
		Asset:  string(asset),
		Amount: amount,
	})
	return nil
}

// Withdraw sends amount of the native asset from the account to recipient.
func (a *Account) Withdraw(ctx context.Context, caller bank.Address, amount math.Int, recipient bank.Address) error {
	return a.withdraw(ctx, "withdraw", caller, bank.Native, amount, recipient)
}

// WithdrawAsset sends amount of asset from the account to recipient.
func (a *Account) WithdrawAsset(ctx context.Context, caller bank.Address, asset bank.Asset, amount math.Int, recipient bank.Address) error {
	return a.withdraw(ctx, "withdraw asset", caller, asset, amount, recipient)
}

func (a *Account) withdraw(ctx context.Context, op string, caller bank.Address, asset bank.Asset, amount math.Int, recipient bank.Address) error {
	ctx, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireOwner(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !positive(amount) {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}
	if recipient.IsZero() {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidRecipient)
	}
	if held := a.Holding(asset); amount.GT(held) {
		return fmt.Errorf("%s: %w: have %s %s, want %s",
			op, vaulterr.ErrInsufficientBalance, held, asset, amount)
	}

	if err := a.bank.Transfer(ctx, asset, a.address, recipient, amount); err != nil {
		return fmt.Errorf("%s: %w: %w", op, vaulterr.ErrTransferFailed, err)
	}

	a.mu.Lock()
	a.holdings[asset] = a.holdingLocked(asset).Sub(amount)
	a.totalValue = a.totalValue.Sub(amount)
	a.totalWithdrawn = a.totalWithdrawn.Add(amount)
	a.mu.Unlock()

	a.log.Debug("withdrawal",
		zap.String("asset", string(asset)),
		zap.Stringer("amount", amount),
		zap.String("recipient", string(recipient)),
	)
	a.emit(journal.Event{
		Kind:   journal.KindWithdrawal,
		Actor:  string(caller),
		Asset:  string(asset),
		Amount: amount,
		Attrs:  map[string]string{journal.AttrRecipient: string(recipient)},
	})
	return nil
}

// RecordPnL books a realized profit (amount > 0) or loss (amount < 0)
// reported by the agent. Total value moves by the same amount so the
// accounting identity holds.
func (a *Account) RecordPnL(ctx context.Context, caller bank.Address, asset bank.Asset, amount math.Int) error {
	const op = "record pnl"

	_, release, err := a.guard.Enter(ctx)
	defer release()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.requireAgent(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if amount.IsNil() || amount.IsZero() {
		return fmt.Errorf("%s: %w", op, vaulterr.ErrInvalidAmount)
	}

	a.mu.Lock()
	held := a.holdingLocked(asset).Add(amount)
	total := a.totalValue.Add(amount)
	if held.IsNegative() || total.IsNegative() {
		a.mu.Unlock()
		return fmt.Errorf("%s: %w: loss %s exceeds holdings", op, vaulterr.ErrInsufficientBalance, amount.Neg())
	}
	a.holdings[asset] = held
	a.totalValue = total
	a.realizedPnL = a.realizedPnL.Add(amount)
	a.mu.Unlock()

	a.emit(journal.Event{
		Kind:   journal.KindPnLRecorded,
		Actor:  string(caller),
		Asset:  string(asset),
		Amount: amount,
	})
	return nil
}

func positive(amount math.Int) bool {
	return !amount.IsNil() && amount.IsPositive()
}
