package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fluxorio/blockmul/pkg/logger"
	"github.com/fluxorio/blockmul/pkg/matrix"
	"github.com/fluxorio/blockmul/pkg/multiplier"
	"github.com/fluxorio/blockmul/pkg/observability/otel"
	obsprom "github.com/fluxorio/blockmul/pkg/observability/prometheus"
)

func benchCmd() *cli.Command {
	var (
		configPath  string
		size        int64
		blocks      int64
		workers     int64
		callers     int64
		runs        int64
		seed        int64
		metricsAddr string
		trace       bool
		verify      bool
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "Time block-parallel multiplications against the pool",
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
				Name:        "blocks",
				Usage:       "blocks per row/column (must divide size)",
				Destination: &blocks,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Aliases:     []string{"w"},
				Usage:       "pool worker count",
				Destination: &workers,
			},
			&cli.Int64Flag{
				Name:        "callers",
				Usage:       "concurrent multiply callers per run",
				Destination: &callers,
			},
			&cli.Int64Flag{
				Name:        "runs",
				Usage:       "number of timed runs",
				Destination: &runs,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for operand matrices",
				Destination: &seed,
			},
			&cli.StringFlag{
				Name:        "metrics-addr",
				Usage:       "serve Prometheus metrics on this address (e.g. :9100)",
				Destination: &metricsAddr,
			},
			&cli.BoolFlag{
				Name:        "trace",
				Usage:       "emit OpenTelemetry spans for each run",
				Destination: &trace,
			},
			&cli.BoolFlag{
				Name:        "verify",
				Usage:       "compare results against the sequential reference",
				Value:       true,
				Destination: &verify,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadRunConfig(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: config: %v", err), 1)
			}

			// Explicit flags win over file and environment
			if cmd.IsSet("size") {
				cfg.MatrixSize = int(size)
			}
			if cmd.IsSet("blocks") {
				cfg.BlocksPerRow = int(blocks)
			}
			if cmd.IsSet("workers") {
				cfg.Workers = int(workers)
			}
			if cmd.IsSet("callers") {
				cfg.Callers = int(callers)
			}
			if cmd.IsSet("runs") {
				cfg.Runs = int(runs)
			}
			if cmd.IsSet("seed") {
				cfg.Seed = seed
			}
			if cmd.IsSet("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.IsSet("trace") {
				cfg.Trace = trace
			}
			if cfg.MatrixSize%cfg.BlocksPerRow != 0 {
				return cli.Exit(fmt.Sprintf("error: blocks %d must divide size %d", cfg.BlocksPerRow, cfg.MatrixSize), 1)
			}

			return runBench(ctx, cfg, verify)
		},
	}
}

func runBench(ctx context.Context, cfg runConfig, verify bool) error {
	log := logger.NewDefault()
	runID := uuid.New().String()

	if cfg.Trace {
		if err := otel.Initialize(ctx, otel.Config{
			ServiceName:    "blockmul",
			ServiceVersion: version,
			Environment:    "bench",
		}); err != nil {
			log.Warnf("tracing disabled: %v", err)
		} else {
			defer func() {
				if err := otel.Shutdown(context.Background()); err != nil {
					log.Warnf("tracing shutdown: %v", err)
				}
			}()
		}
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obsprom.Handler())
		go func() {
			log.Infof("serving metrics on %s/metrics", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	pool := multiplier.New(multiplier.Config{
		Workers:             cfg.Workers,
		DefaultBlocksPerRow: cfg.BlocksPerRow,
		Logger:              log,
	})
	defer func() {
		if err := pool.Close(); err != nil {
			log.Errorf("closing pool: %v", err)
		}
	}()

	n := cfg.MatrixSize
	triples := make([]triple, cfg.Callers)
	for k := range triples {
		triples[k] = triple{
			a: matrix.Random(n, cfg.Seed+int64(2*k)),
			b: matrix.Random(n, cfg.Seed+int64(2*k+1)),
			c: matrix.New(n),
		}
	}

	fmt.Printf("run %s: n=%d blocks=%d workers=%d callers=%d\n",
		runID, n, cfg.BlocksPerRow, cfg.Workers, cfg.Callers)

	// 2n^3 floating point operations per full product
	flops := 2 * float64(n) * float64(n) * float64(n) * float64(cfg.Callers)

	for run := 1; run <= cfg.Runs; run++ {
		start := time.Now()
		if err := timedRun(ctx, pool, run, cfg, triples); err != nil {
			return cli.Exit(fmt.Sprintf("error: run %d: %v", run, err), 1)
		}
		elapsed := time.Since(start)

		fmt.Printf("  run %d/%d: %v (%.2f GFLOP/s)\n",
			run, cfg.Runs, elapsed.Round(time.Microsecond), flops/elapsed.Seconds()/1e9)
	}

	if verify {
		want := matrix.New(n)
		for k, tr := range triples {
			if err := matrix.Multiply(tr.a, tr.b, want); err != nil {
				return cli.Exit(fmt.Sprintf("error: reference multiply: %v", err), 1)
			}
			if !tr.c.Equal(want, 1e-9) {
				return cli.Exit(fmt.Sprintf("error: caller %d result differs from reference", k), 1)
			}
		}
		fmt.Println("  verify: all results match the sequential reference")
	}

	stats := pool.Stats()
	fmt.Printf("  pool: %d workers, %d jobs completed\n", stats.Workers, stats.CompletedJobs)
	return nil
}

// triple is one caller's set of operand and output matrices
type triple struct {
	a, b *matrix.Dense
	c    *matrix.Dense
}

// timedRun drives one bench run: every caller multiplies its own triple
// concurrently against the shared pool
func timedRun(ctx context.Context, pool *multiplier.Pool, run int, cfg runConfig, triples []triple) error {
	if otel.IsInitialized() {
		_, end := startRunSpan(ctx, run, cfg)
		defer end()
	}

	errs := make(chan error, len(triples))
	var wg sync.WaitGroup
	for _, tr := range triples {
		wg.Add(1)
		go func(tr triple) {
			defer wg.Done()
			errs <- pool.Multiply(tr.a, tr.b, tr.c, cfg.BlocksPerRow)
		}(tr)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// startRunSpan opens a span covering one bench run
func startRunSpan(ctx context.Context, run int, cfg runConfig) (context.Context, func()) {
	spanCtx, span := otel.Tracer().Start(ctx, "blockmul.bench.run")
	span.SetAttributes(
		attribute.Int("run", run),
		attribute.Int("matrix.size", cfg.MatrixSize),
		attribute.Int("blocks.per_row", cfg.BlocksPerRow),
		attribute.Int("pool.workers", cfg.Workers),
		attribute.Int("callers", cfg.Callers),
	)
	return spanCtx, func() { span.End() }
}
