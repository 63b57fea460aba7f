// Package vaulterr holds the error taxonomy shared by the account ledger,
// the staking engine and the fee pool.
//
// Every rejection is local and final: the operation that returned one of
// these errors left its entity unchanged. Callers match with errors.Is.
package vaulterr

import "errors"

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidRecipient      = errors.New("invalid recipient")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotWhitelisted        = errors.New("target not whitelisted")
	ErrExposureLimitExceeded = errors.New("exposure limit exceeded")
	ErrPaused                = errors.New("account paused")
	ErrInvalidLockPeriod     = errors.New("invalid lock period")
	ErrStillLocked           = errors.New("position still locked")
	ErrNoRewards             = errors.New("no rewards")
	ErrNothingToDistribute   = errors.New("nothing to distribute")
	ErrAlreadyBound          = errors.New("already bound")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrInvalidPosition       = errors.New("invalid position")
	ErrReentrant             = errors.New("reentrant call")
	ErrNotFound              = errors.New("not found")
)
