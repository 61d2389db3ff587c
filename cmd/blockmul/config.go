package main

import (
	"fmt"

	"github.com/fluxorio/blockmul/pkg/config"
)

// envPrefix is the environment variable prefix for config overrides
const envPrefix = "BLOCKMUL"

// runConfig configures a bench or check run. Values come from the config
// file, then BLOCKMUL_* environment overrides, then explicit CLI flags.
type runConfig struct {
	Workers      int    `yaml:"workers" json:"workers"`
	BlocksPerRow int    `yaml:"blocks_per_row" json:"blocks_per_row"`
	MatrixSize   int    `yaml:"matrix_size" json:"matrix_size"`
	Callers      int    `yaml:"callers" json:"callers"`
	Runs         int    `yaml:"runs" json:"runs"`
	Seed         int64  `yaml:"seed" json:"seed"`
	MetricsAddr  string `yaml:"metrics_addr" json:"metrics_addr"`
	Trace        bool   `yaml:"trace" json:"trace"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Workers:      4,
		BlocksPerRow: 8,
		MatrixSize:   256,
		Callers:      1,
		Runs:         3,
		Seed:         42,
	}
}

// loadRunConfig merges the optional config file and env overrides into the
// defaults, then validates
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	if path != "" {
		if err := config.LoadWithEnv(path, envPrefix, &cfg); err != nil {
			return cfg, err
		}
	} else if err := config.ApplyEnvOverrides(envPrefix, &cfg); err != nil {
		return cfg, err
	}

	if err := config.Validate(&cfg,
		config.PositiveFields("Workers", "BlocksPerRow", "MatrixSize", "Callers", "Runs"),
	); err != nil {
		return cfg, err
	}
	if cfg.MatrixSize%cfg.BlocksPerRow != 0 {
		return cfg, fmt.Errorf("blocks_per_row %d must divide matrix_size %d", cfg.BlocksPerRow, cfg.MatrixSize)
	}

	return cfg, nil
}
