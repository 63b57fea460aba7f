// Package bank is the value-transfer primitive every engine settles through.
package bank

import (
	"context"

	"cosmossdk.io/math"
)

// Address identifies a holder of funds: an owner, an account, a pool.
type Address string

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }

// Asset names a fungible token. Native is the chain's base asset.
type Asset string

const (
	Native Asset = "native"

	// Burn is the sink that burned fees are sent to. Nothing moves out of it.
	Burn Address = "0x000000000000000000000000000000000000dEaD"
)

// Transfer is a single leg of value movement.
type Transfer struct {
	Asset  Asset
	From   Address
	To     Address
	Amount math.Int
}

// Transferer moves exactly Amount of Asset from one holder to another.
// A non-nil error means nothing moved.
type Transferer interface {
	Transfer(ctx context.Context, asset Asset, from, to Address, amount math.Int) error
}

// Batcher applies several transfers all-or-nothing.
type Batcher interface {
	TransferBatch(ctx context.Context, legs []Transfer) error
}

// Mover is what the fee pool needs: single transfers for collection and
// atomic batches for distribution.
type Mover interface {
	Transferer
	Batcher
}
