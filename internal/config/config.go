package config

import (
	"cmp"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type MarketConfig struct {
	Timezone  string        `yaml:"timezone"`
	OpenTime  string        `yaml:"open_time"`  // "15:04" in exchange tz
	CloseTime string        `yaml:"close_time"` // "15:04" in exchange tz
	PollGrace time.Duration `yaml:"poll_grace"` // quotes settle window after close
}

const (
	_timezoneDefault  = "America/New_York"
	_openTimeDefault  = "09:30"
	_closeTimeDefault = "16:00"
	_pollGraceDefault = 30 * time.Minute
)

func (c *MarketConfig) Setup() error {
	c.Timezone = cmp.Or(c.Timezone, _timezoneDefault)
	c.OpenTime = cmp.Or(c.OpenTime, _openTimeDefault)
	c.CloseTime = cmp.Or(c.CloseTime, _closeTimeDefault)
	if c.PollGrace <= 0 {
		c.PollGrace = _pollGraceDefault
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: can't load market timezone", err)
	}
	for _, v := range []string{c.OpenTime, c.CloseTime} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("%w: can't parse market session time %q", err, v)
		}
	}
	return nil
}

type FinanceConfig struct {
	Address           string        `yaml:"address"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

const (
	_requestsPerMinuteDefault = 100
	_financeTimeoutDefault    = 10 * time.Second
)

func (c *FinanceConfig) Setup() error {
	if c.Address == "" {
		return fmt.Errorf("finance address is required")
	}
	if _, err := url.Parse(c.Address); err != nil {
		return err
	}

	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = _requestsPerMinuteDefault
	}
	if c.Timeout <= 0 {
		c.Timeout = _financeTimeoutDefault
	}
	return nil
}

type SnapshotConfig struct {
	// Granularity truncates snapshot timestamps so that re-polls within
	// the same cycle update the same row instead of inserting new ones.
	Granularity   time.Duration `yaml:"granularity"`
	RetentionDays int           `yaml:"retention_days"`
	PurgeSpec     string        `yaml:"purge_spec"` // cron expression
}

const (
	_granularityDefault   = time.Minute
	_retentionDaysDefault = 365
	_purgeSpecDefault     = "0 3 * * *"
)

func (c *SnapshotConfig) Setup() {
	if c.Granularity <= 0 {
		c.Granularity = _granularityDefault
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = _retentionDaysDefault
	}
	c.PurgeSpec = cmp.Or(c.PurgeSpec, _purgeSpecDefault)
}

type SchedulerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	PassTimeout  time.Duration `yaml:"pass_timeout"`
}

const (
	_pollIntervalDefault = time.Minute
	_passTimeoutDefault  = 45 * time.Second
)

func (c *SchedulerConfig) Setup() {
	if c.PollInterval <= 0 {
		c.PollInterval = _pollIntervalDefault
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = _passTimeoutDefault
	}
}

type StrategyConfig struct {
	SweepSpec string `yaml:"sweep_spec"` // cron expression for the daily signal sweep
}

const _sweepSpecDefault = "0 10 * * 1-5"

func (c *StrategyConfig) Setup() {
	c.SweepSpec = cmp.Or(c.SweepSpec, _sweepSpecDefault)
}

type MockTradeConfig struct {
	ServerPort string          `yaml:"server_port"`
	Market     MarketConfig    `yaml:"market"`
	Finance    FinanceConfig   `yaml:"finance"`
	Snapshot   SnapshotConfig  `yaml:"snapshot"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
	Strategy   StrategyConfig  `yaml:"strategy"`
}

func (c *MockTradeConfig) ValidateAndSetup() error {
	c.ServerPort = cmp.Or(c.ServerPort, "8080")

	if err := c.Market.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup market cfg", err)
	}
	if err := c.Finance.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup finance cfg", err)
	}
	c.Snapshot.Setup()
	c.Scheduler.Setup()
	c.Strategy.Setup()

	return nil
}

func LoadMockTradeConfig(filename string) (MockTradeConfig, error) {
	var cfg MockTradeConfig
	input, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("%w: can't read file", err)
	}

	if err := yaml.Unmarshal(input, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: can't unmarshal config", err)
	}

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
