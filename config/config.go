package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cosmossdk.io/math"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/fees"
	"github.com/rustyeddy/agentvault/keeper"
	"github.com/rustyeddy/agentvault/logging"
	"github.com/rustyeddy/agentvault/staking"
)

// Config is everything the vault CLI needs to stand up the three engines.
type Config struct {
	Log     logging.Config `json:"log" yaml:"log"`
	Account AccountConfig  `json:"account" yaml:"account"`
	Staking StakingConfig  `json:"staking" yaml:"staking"`
	Fees    FeesConfig     `json:"fees" yaml:"fees"`
	Journal JournalConfig  `json:"journal" yaml:"journal"`
	Keeper  KeeperConfig   `json:"keeper" yaml:"keeper"`
}

// AccountConfig describes the account the demo and keeper commands create.
type AccountConfig struct {
	Owner          string   `json:"owner" yaml:"owner"`
	RiskProfile    string   `json:"risk_profile" yaml:"risk_profile"`
	MaxExposureBP  uint32   `json:"max_exposure_bp" yaml:"max_exposure_bp"`
	InitialDeposit string   `json:"initial_deposit" yaml:"initial_deposit"`
	Targets        []string `json:"targets,omitempty" yaml:"targets,omitempty"`
}

type StakingConfig struct {
	Owner        string         `json:"owner" yaml:"owner"`
	Pool         string         `json:"pool" yaml:"pool"`
	RewardSource string         `json:"reward_source" yaml:"reward_source"`
	Asset        string         `json:"asset" yaml:"asset"`
	BaseRateBP   uint32         `json:"base_rate_bp" yaml:"base_rate_bp"`
	Tiers        []staking.Tier `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

type FeesConfig struct {
	Owner            string `json:"owner" yaml:"owner"`
	Address          string `json:"address" yaml:"address"`
	Stakers          string `json:"stakers" yaml:"stakers"`
	Treasury         string `json:"treasury" yaml:"treasury"`
	Asset            string `json:"asset" yaml:"asset"`
	PerformanceFeeBP uint32 `json:"performance_fee_bp" yaml:"performance_fee_bp"`
	ManagementFeeBP  uint32 `json:"management_fee_bp" yaml:"management_fee_bp"`
}

// JournalConfig selects the event sink.
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "memory", "csv" or "sqlite"
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type KeeperConfig struct {
	Schedule string `json:"schedule" yaml:"schedule"` // cron spec with a seconds field
	Caller   string `json:"caller" yaml:"caller"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks every section against the same bounds the engines
// enforce, so a file that validates can be started.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}

	if c.Account.Owner == "" {
		return fmt.Errorf("account.owner is required")
	}
	if _, err := account.ParseRiskProfile(c.Account.RiskProfile); err != nil {
		return fmt.Errorf("account.risk_profile: %w", err)
	}
	if bps.BP(c.Account.MaxExposureBP) > account.MaxExposureCap {
		return fmt.Errorf("account.max_exposure_bp must be at most %d", account.MaxExposureCap)
	}
	if c.Account.InitialDeposit != "" {
		if _, err := c.Account.Deposit(); err != nil {
			return err
		}
	}

	if err := c.Staking.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("staking: %w", err)
	}
	if err := c.Fees.PoolConfig().Validate(); err != nil {
		return fmt.Errorf("fees: %w", err)
	}

	switch c.Journal.Type {
	case "memory":
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory', 'csv' or 'sqlite'")
	}

	if c.Keeper.Caller == "" {
		return fmt.Errorf("keeper.caller is required")
	}
	if err := keeper.ParseSchedule(c.Keeper.Schedule); err != nil {
		return fmt.Errorf("keeper.schedule: %w", err)
	}
	return nil
}

// Deposit parses InitialDeposit; empty means zero.
func (a AccountConfig) Deposit() (math.Int, error) {
	if a.InitialDeposit == "" {
		return math.ZeroInt(), nil
	}
	v, ok := math.NewIntFromString(a.InitialDeposit)
	if !ok || v.IsNegative() {
		return math.Int{}, fmt.Errorf("account.initial_deposit %q is not a non-negative integer", a.InitialDeposit)
	}
	return v, nil
}

func (a AccountConfig) TargetAddresses() []bank.Address {
	out := make([]bank.Address, len(a.Targets))
	for i, t := range a.Targets {
		out[i] = bank.Address(t)
	}
	return out
}

func (s StakingConfig) EngineConfig() staking.Config {
	return staking.Config{
		Owner:        bank.Address(s.Owner),
		Pool:         bank.Address(s.Pool),
		RewardSource: bank.Address(s.RewardSource),
		Asset:        bank.Asset(s.Asset),
		BaseRate:     bps.BP(s.BaseRateBP),
		Tiers:        s.Tiers,
	}
}

func (f FeesConfig) PoolConfig() fees.Config {
	return fees.Config{
		Owner:          bank.Address(f.Owner),
		Address:        bank.Address(f.Address),
		Stakers:        bank.Address(f.Stakers),
		Treasury:       bank.Address(f.Treasury),
		Asset:          bank.Asset(f.Asset),
		PerformanceFee: bps.BP(f.PerformanceFeeBP),
		ManagementFee:  bps.BP(f.ManagementFeeBP),
	}
}

// Default returns a configuration with the reference tiers and rates. Fees
// for stakers land in the staking reward reserve.
func Default() *Config {
	return &Config{
		Log: logging.Config{Level: "info", Format: "console"},
		Account: AccountConfig{
			Owner:          "owner",
			RiskProfile:    account.Moderate.String(),
			MaxExposureBP:  3000,
			InitialDeposit: "1000",
			Targets:        []string{"dex", "lender"},
		},
		Staking: StakingConfig{
			Owner:        "gov",
			Pool:         "staking-pool",
			RewardSource: "staking-rewards",
			Asset:        "avt",
			BaseRateBP:   uint32(staking.DefaultBaseRate),
			Tiers:        staking.DefaultTiers(),
		},
		Fees: FeesConfig{
			Owner:            "gov",
			Address:          "fee-pool",
			Stakers:          "staking-rewards",
			Treasury:         "treasury",
			Asset:            "avt",
			PerformanceFeeBP: 2000,
			ManagementFeeBP:  200,
		},
		Journal: JournalConfig{
			Type:    "csv",
			CSVPath: "./events.csv",
		},
		Keeper: KeeperConfig{
			Schedule: keeper.DefaultSchedule,
			Caller:   "keeper",
		},
	}
}
