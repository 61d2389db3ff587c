package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/fluxorio/blockmul/pkg/logger"
	"github.com/fluxorio/blockmul/pkg/matrix"
	"github.com/fluxorio/blockmul/pkg/multiplier"
)

func checkCmd() *cli.Command {
	var (
		configPath string
		size       int64
		workers    int64
		seed       int64
	)

	return &cli.Command{
		Name:  "check",
		Usage: "Verify the pool against the sequential reference for every valid block decomposition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML or JSON config file",
				Destination: &configPath,
			},
			&cli.Int64Flag{
				Name:        "size",
				Usage:       "matrix size (n for n x n)",
				Destination: &size,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Aliases:     []string{"w"},
				Usage:       "pool worker count",
				Destination: &workers,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for operand matrices",
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadRunConfig(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: config: %v", err), 1)
			}
			if cmd.IsSet("size") {
				cfg.MatrixSize = int(size)
			}
			if cmd.IsSet("workers") {
				cfg.Workers = int(workers)
			}
			if cmd.IsSet("seed") {
				cfg.Seed = seed
			}

			return runCheck(cfg)
		},
	}
}

// runCheck multiplies with every blocksPerRow that divides n, including the
// degenerate single-block and one-element-block decompositions, and
// compares each result to the sequential reference
func runCheck(cfg runConfig) error {
	log := logger.NewDefault()

	pool := multiplier.New(multiplier.Config{
		Workers: cfg.Workers,
		Logger:  log,
	})
	defer func() {
		if err := pool.Close(); err != nil {
			log.Errorf("closing pool: %v", err)
		}
	}()

	n := cfg.MatrixSize
	a := matrix.Random(n, cfg.Seed)
	b := matrix.Random(n, cfg.Seed+1)
	want := matrix.New(n)
	if err := matrix.Multiply(a, b, want); err != nil {
		return cli.Exit(fmt.Sprintf("error: reference multiply: %v", err), 1)
	}

	checked := 0
	for blocks := 1; blocks <= n; blocks++ {
		if n%blocks != 0 {
			continue
		}
		c := matrix.New(n)
		if err := pool.Multiply(a, b, c, blocks); err != nil {
			return cli.Exit(fmt.Sprintf("error: multiply with %d blocks: %v", blocks, err), 1)
		}
		if !c.Equal(want, 1e-9) {
			return cli.Exit(fmt.Sprintf("error: result with %d blocks differs from reference", blocks), 1)
		}
		checked++
	}

	fmt.Printf("check: n=%d workers=%d: %d decompositions match the reference\n", n, cfg.Workers, checked)
	return nil
}
