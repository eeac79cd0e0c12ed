package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("metrics_listen: \":9100\"\nworkers: 4\nbatch_size: 10000\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsListen != ":9100" || cfg.Workers != 4 || cfg.BatchSize != 10000 {
		t.Fatalf("loaded config wrong: %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.ReportCron != "@every 1m" || cfg.StatsIntervalSecs != 2 {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	cases := []Config{
		{Workers: -1},
		{BatchSize: -1},
		{StatsIntervalSecs: -1},
	}
	for _, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", c)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
