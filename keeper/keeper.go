// Package keeper settles the fee pool on a cron schedule.
package keeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/fees"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// DefaultSchedule runs at the top of every hour. Schedules take a leading
// seconds field.
const DefaultSchedule = "0 0 * * * *"

// Distributor is the part of the fee pool the keeper drives.
type Distributor interface {
	DistributeFees(ctx context.Context, caller bank.Address) (fees.Split, error)
}

type Stats struct {
	Runs          int
	Distributions int
	Skipped       int
	Failures      int
	LastRun       time.Time
	LastSplit     fees.Split
	LastErr       error
}

type Keeper struct {
	cron   *cron.Cron
	pool   Distributor
	caller bank.Address
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

type Option func(*Keeper)

func WithLogger(l *zap.Logger) Option {
	return func(k *Keeper) { k.log = l }
}

// ParseSchedule checks a six-field cron spec.
func ParseSchedule(spec string) error {
	_, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(spec)
	if err != nil {
		return fmt.Errorf("%w: schedule %q: %w", vaulterr.ErrInvalidConfiguration, spec, err)
	}
	return nil
}

// New registers a distribution run on schedule. caller is the identity the
// keeper distributes as.
func New(schedule string, pool Distributor, caller bank.Address, opts ...Option) (*Keeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	k := &Keeper{
		cron:   cron.New(cron.WithSeconds()),
		pool:   pool,
		caller: caller,
		ctx:    ctx,
		cancel: cancel,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}

	if _, err := k.cron.AddFunc(schedule, func() { _, _ = k.RunOnce(k.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: schedule %q: %w", vaulterr.ErrInvalidConfiguration, schedule, err)
	}
	return k, nil
}

func (k *Keeper) Start() {
	k.cron.Start()
	k.log.Info("keeper started", zap.String("caller", string(k.caller)))
}

// Stop halts the schedule, cancels a run in progress and waits for it.
func (k *Keeper) Stop() {
	k.cancel()
	<-k.cron.Stop().Done()
	k.log.Info("keeper stopped")
}

// RunOnce distributes the pool now. An empty pool is a skip, not an error.
// It reports whether anything was distributed.
func (k *Keeper) RunOnce(ctx context.Context) (bool, error) {
	split, err := k.pool.DistributeFees(ctx, k.caller)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.stats.Runs++
	k.stats.LastRun = time.Now().UTC()
	k.stats.LastErr = err

	switch {
	case err == nil:
		k.stats.Distributions++
		k.stats.LastSplit = split
		k.log.Info("keeper distributed fees",
			zap.Stringer("stakers", split.ToStakers),
			zap.Stringer("burn", split.ToBurn),
			zap.Stringer("treasury", split.ToTreasury),
		)
		return true, nil
	case errors.Is(err, vaulterr.ErrNothingToDistribute):
		k.stats.Skipped++
		k.stats.LastErr = nil
		k.log.Debug("keeper skipped: pool empty")
		return false, nil
	default:
		k.stats.Failures++
		k.log.Error("keeper distribution failed", zap.Error(err))
		return false, err
	}
}

func (k *Keeper) Stats() Stats {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.stats
}
