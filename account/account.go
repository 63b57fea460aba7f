// Package account is the ledger core: one owner's delegated, non-custodial
// funds, the single agent allowed to act on them, and the per-target
// exposure limit every delegated call is checked against.
//
// Mutating operations on one account are serialized by a reentrancy guard;
// see package guard. Field reads take a separate lock, so Performance and
// Snapshot never block behind an in-flight delegated call and never see a
// half-applied update.
package account

import (
	"fmt"
	"sync"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/guard"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// MaxExposureCap is the global ceiling on MaxExposure: 50%.
const MaxExposureCap bps.BP = 5000

// Config is what an account is created with. Owner and Address never change.
type Config struct {
	ID          string
	Owner       bank.Address
	Address     bank.Address // where the account's funds sit in the bank
	RiskProfile RiskProfile
	MaxExposure bps.BP
}

func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", vaulterr.ErrInvalidConfiguration)
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("%w: missing owner", vaulterr.ErrInvalidConfiguration)
	}
	if c.Address.IsZero() {
		return fmt.Errorf("%w: missing address", vaulterr.ErrInvalidConfiguration)
	}
	return checkRisk(c.RiskProfile, c.MaxExposure)
}

func checkRisk(p RiskProfile, maxExposure bps.BP) error {
	if !p.Valid() {
		return fmt.Errorf("%w: risk profile %d out of range", vaulterr.ErrInvalidConfiguration, p)
	}
	if maxExposure > MaxExposureCap {
		return fmt.Errorf("%w: max exposure %s above cap %s",
			vaulterr.ErrInvalidConfiguration, maxExposure, MaxExposureCap)
	}
	return nil
}

type Account struct {
	guard guard.Guard

	id      string
	owner   bank.Address
	address bank.Address

	mu             sync.RWMutex
	agent          bank.Address
	profile        RiskProfile
	maxExposure    bps.BP
	targets        map[bank.Address]bool
	positions      map[bank.Address]math.Int
	holdings       map[bank.Asset]math.Int
	totalValue     math.Int
	totalDeposited math.Int
	totalWithdrawn math.Int
	realizedPnL    math.Int
	paused         bool

	bank   bank.Transferer
	caller Caller
	rec    *journal.Recorder
	log    *zap.Logger
}

type Option func(*Account)

func WithLogger(l *zap.Logger) Option {
	return func(a *Account) { a.log = l }
}

// WithRecorder sends the account's events to r.
func WithRecorder(r *journal.Recorder) Option {
	return func(a *Account) { a.rec = r }
}

// New creates an account. b moves funds in and out; c performs delegated
// strategy calls.
func New(cfg Config, b bank.Transferer, c Caller, opts ...Option) (*Account, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Account{
		id:             cfg.ID,
		owner:          cfg.Owner,
		address:        cfg.Address,
		profile:        cfg.RiskProfile,
		maxExposure:    cfg.MaxExposure,
		targets:        make(map[bank.Address]bool),
		positions:      make(map[bank.Address]math.Int),
		holdings:       make(map[bank.Asset]math.Int),
		totalValue:     math.ZeroInt(),
		totalDeposited: math.ZeroInt(),
		totalWithdrawn: math.ZeroInt(),
		realizedPnL:    math.ZeroInt(),
		bank:           b,
		caller:         c,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rec == nil {
		a.rec = journal.NewRecorder(nil, nil, a.log)
	}
	a.log = a.log.With(zap.String("account", a.id))

	return a, nil
}

func (a *Account) ID() string            { return a.id }
func (a *Account) Owner() bank.Address   { return a.owner }
func (a *Account) Address() bank.Address { return a.address }

func (a *Account) Agent() bank.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.agent
}

func (a *Account) Paused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paused
}

// Performance is the account's P/L summary. UnrealizedPnL only counts
// value the ledger itself moved; effects of delegated calls that were not
// booked through RecordPnL or UpdatePosition are invisible here.
type Performance struct {
	TotalValue     math.Int
	TotalDeposited math.Int
	TotalWithdrawn math.Int
	RealizedPnL    math.Int
	UnrealizedPnL  math.Int
}

func (a *Account) Performance() Performance {
	a.mu.RLock()
	defer a.mu.RUnlock()

	unrealized := a.totalValue.Sub(a.totalDeposited)
	if unrealized.IsNegative() {
		unrealized = math.ZeroInt()
	}
	return Performance{
		TotalValue:     a.totalValue,
		TotalDeposited: a.totalDeposited,
		TotalWithdrawn: a.totalWithdrawn,
		RealizedPnL:    a.realizedPnL,
		UnrealizedPnL:  unrealized,
	}
}

// Snapshot is a point-in-time copy of the account for reporting.
type Snapshot struct {
	ID          string
	Owner       bank.Address
	Address     bank.Address
	Agent       bank.Address
	RiskProfile RiskProfile
	MaxExposure bps.BP
	Paused      bool
	Targets     []bank.Address
	Positions   map[bank.Address]math.Int
	Holdings    map[bank.Asset]math.Int
	Performance Performance
}

func (a *Account) Snapshot() Snapshot {
	perf := a.Performance()

	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{
		ID:          a.id,
		Owner:       a.owner,
		Address:     a.address,
		Agent:       a.agent,
		RiskProfile: a.profile,
		MaxExposure: a.maxExposure,
		Paused:      a.paused,
		Positions:   make(map[bank.Address]math.Int, len(a.positions)),
		Holdings:    make(map[bank.Asset]math.Int, len(a.holdings)),
		Performance: perf,
	}
	for t, ok := range a.targets {
		if ok {
			s.Targets = append(s.Targets, t)
		}
	}
	for t, v := range a.positions {
		s.Positions[t] = v
	}
	for k, v := range a.holdings {
		s.Holdings[k] = v
	}
	return s
}

// Position returns the recorded position value at target.
func (a *Account) Position(target bank.Address) math.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.positionLocked(target)
}

// Holding returns the ledger's balance of asset.
func (a *Account) Holding(asset bank.Asset) math.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.holdingLocked(asset)
}

// IsTargetAllowed reports whether target is whitelisted.
func (a *Account) IsTargetAllowed(target bank.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.targets[target]
}

func (a *Account) positionLocked(target bank.Address) math.Int {
	if v, ok := a.positions[target]; ok {
		return v
	}
	return math.ZeroInt()
}

func (a *Account) holdingLocked(asset bank.Asset) math.Int {
	if v, ok := a.holdings[asset]; ok {
		return v
	}
	return math.ZeroInt()
}

func (a *Account) requireOwner(caller bank.Address) error {
	if caller != a.owner {
		return fmt.Errorf("%w: %s is not the owner", vaulterr.ErrUnauthorized, caller)
	}
	return nil
}

func (a *Account) emit(e journal.Event) {
	e.Entity = a.id
	a.rec.Emit(e)
}
