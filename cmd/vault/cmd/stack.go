package cmd

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/clock"
	"github.com/rustyeddy/agentvault/config"
	"github.com/rustyeddy/agentvault/fees"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/logging"
	"github.com/rustyeddy/agentvault/registry"
	"github.com/rustyeddy/agentvault/staking"
)

// stack is every engine wired against one in-memory bank and one journal.
type stack struct {
	cfg      *config.Config
	log      *zap.Logger
	bank     *bank.Memory
	clock    clock.Clock
	journal  journal.Journal
	memory   *journal.Memory // mirror of everything recorded, for replay checks
	router   *account.Router
	registry *registry.Registry
	staking  *staking.Engine
	fees     *fees.Pool
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.CSVPath)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Discard{}, nil
	}
}

// tee records to every sink and reports all failures.
type tee []journal.Journal

func (t tee) Record(e journal.Event) error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.Record(e))
	}
	return errors.Join(errs...)
}

func (t tee) Close() error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.Close())
	}
	return errors.Join(errs...)
}

func buildStack(cfg *config.Config, clk clock.Clock) (*stack, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	sink, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	mem := journal.NewMemory()
	j := tee{sink, mem}
	rec := journal.NewRecorder(j, clk, log)

	b := bank.NewMemory()
	router := account.NewRouter()

	eng, err := staking.New(cfg.Staking.EngineConfig(), b,
		staking.WithClock(clk), staking.WithLogger(log), staking.WithRecorder(rec))
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("staking: %w", err)
	}
	pool, err := fees.New(cfg.Fees.PoolConfig(), b,
		fees.WithLogger(log), fees.WithRecorder(rec))
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("fees: %w", err)
	}

	return &stack{
		cfg:      cfg,
		log:      log,
		bank:     b,
		clock:    clk,
		journal:  j,
		memory:   mem,
		router:   router,
		registry: registry.New(b, router, registry.WithLogger(log), registry.WithRecorder(rec)),
		staking:  eng,
		fees:     pool,
	}, nil
}

func (s *stack) Close() error {
	_ = s.log.Sync()
	return s.journal.Close()
}
