package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the mining daemon. Work inputs
// (index, previous hash, miner key, difficulty) come from flags; the
// file only carries tuning and observability settings.
type Config struct {
	MetricsListen     string `yaml:"metrics_listen"`      // /metrics + /status address; empty disables the server
	ReportCron        string `yaml:"report_cron"`         // session summary schedule; empty disables the report
	Workers           int    `yaml:"workers"`             // 0 means one per logical CPU
	BatchSize         int    `yaml:"batch_size"`          // hashes between shared-state visits; 0 means the built-in default
	StatsIntervalSecs int    `yaml:"stats_interval_secs"` // hashrate sampling cadence; 0 means the built-in default
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		ReportCron:        "@every 1m",
		StatsIntervalSecs: 2,
	}
}

// Load reads YAML config from disk on top of the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate enforces basic sanity checks.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must be >= 0")
	}
	if c.StatsIntervalSecs < 0 {
		return fmt.Errorf("stats_interval_secs must be >= 0")
	}
	return nil
}
