// Package multiplier multiplies dense square matrices in parallel by
// decomposing the output into independent blocks and dispatching one
// block-compute job per block to a fixed pool of workers.
//
// The pool is reentrant: any number of goroutines may call Multiply
// concurrently against the same pool, each call tracked by its own
// invocation identifier. The pool is single-use: construct once with New,
// tear down once with Close after every Multiply call has returned.
package multiplier

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fluxorio/blockmul/pkg/logger"
	obsprom "github.com/fluxorio/blockmul/pkg/observability/prometheus"
)

// Config configures a Pool
type Config struct {
	// Workers is the number of worker goroutines, spawned at construction
	Workers int

	// DefaultBlocksPerRow is used by MultiplyDefault. Zero means the matrix
	// is computed as a single block.
	DefaultBlocksPerRow int

	// Logger receives worker lifecycle messages. Defaults to the standard
	// leveled logger; use logger.NewNop() to silence.
	Logger logger.Logger
}

// DefaultConfig returns default pool configuration
func DefaultConfig() Config {
	return Config{
		Workers:             4,
		DefaultBlocksPerRow: 1,
	}
}

// Pool is a fixed set of workers computing block-decomposed matrix
// products. All coordination goes through one internal monitor; the Pool
// itself only holds lifecycle state.
type Pool struct {
	workers             int
	defaultBlocksPerRow int

	mon     *monitor
	wg      sync.WaitGroup
	closed  atomic.Bool
	logger  logger.Logger
	metrics *obsprom.Metrics
}

// New creates a pool and spawns exactly cfg.Workers workers before
// returning, so the pool accepts Multiply calls immediately.
func New(cfg Config) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DefaultBlocksPerRow < 1 {
		cfg.DefaultBlocksPerRow = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewDefault()
	}

	p := &Pool{
		workers:             cfg.Workers,
		defaultBlocksPerRow: cfg.DefaultBlocksPerRow,
		mon:                 newMonitor(cfg.Workers),
		logger:              cfg.Logger,
		metrics:             obsprom.GetMetrics(),
	}

	p.metrics.PoolWorkers.Set(float64(cfg.Workers))
	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.workerLoop(i)
	}
	p.logger.Debugf("pool started with %d workers", cfg.Workers)

	return p
}

// Workers returns the number of worker goroutines in the pool
func (p *Pool) Workers() int {
	return p.workers
}

// MultiplyDefault computes c = a x b using the pool's default block-grid
// dimension
func (p *Pool) MultiplyDefault(a, b, c Matrix) error {
	return p.Multiply(a, b, c, p.defaultBlocksPerRow)
}

// Multiply computes c = a x b, decomposed into blocksPerRow x blocksPerRow
// blocks dispatched across the pool. It blocks until every block is done;
// on return c holds the complete product.
//
// blocksPerRow must evenly divide the matrix size; a violation fails before
// any job is enqueued and leaves c untouched. a and b must not be mutated
// for the duration of the call. Blocking is indefinite; there is no
// cancellation or timeout.
//
// Multiply is reentrant: concurrent calls against the same pool each get a
// distinct invocation identifier and distinct bookkeeping, and their jobs
// interleave freely in the shared queue.
func (p *Pool) Multiply(a, b, c Matrix, blocksPerRow int) error {
	if p.closed.Load() {
		return &Error{Code: CodePoolClosed, Message: "multiply called after Close"}
	}
	if a == nil || b == nil || c == nil {
		return &Error{Code: CodeNilMatrix, Message: "operand and output matrices must not be nil"}
	}

	n := a.Size()
	if b.Size() != n || c.Size() != n {
		return &Error{
			Code:    CodeSizeMismatch,
			Message: fmt.Sprintf("matrices must share one size: A=%d B=%d C=%d", n, b.Size(), c.Size()),
		}
	}
	if blocksPerRow < 1 || n%blocksPerRow != 0 {
		return &Error{
			Code:    CodeInvalidBlockCount,
			Message: fmt.Sprintf("blocksPerRow %d must be positive and divide matrix size %d", blocksPerRow, n),
		}
	}

	start := time.Now()

	// Each job writes complete dot products, but the output starts zeroed
	// so a reused matrix never exposes stale values mid-flight.
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			c.Set(i, k, 0)
		}
	}

	totalBlocks := blocksPerRow * blocksPerRow
	id := p.mon.registerInvocation(totalBlocks)
	p.metrics.ActiveInvocations.Inc()

	for blockRow := 0; blockRow < blocksPerRow; blockRow++ {
		for blockCol := 0; blockCol < blocksPerRow; blockCol++ {
			p.mon.enqueue(job{
				a:            a,
				b:            b,
				c:            c,
				blockRow:     blockRow,
				blockCol:     blockCol,
				blocksPerRow: blocksPerRow,
				invocation:   id,
			})
		}
	}
	queued, _, _ := p.mon.snapshot()
	p.metrics.QueueDepth.Set(float64(queued))

	p.mon.waitCompletion(id)

	queued, _, _ = p.mon.snapshot()
	p.metrics.QueueDepth.Set(float64(queued))
	p.metrics.ActiveInvocations.Dec()
	p.metrics.RecordInvocation(time.Since(start))
	return nil
}

// Stats is a point-in-time snapshot of pool state
type Stats struct {
	Workers           int   // worker goroutines in the pool
	QueuedJobs        int   // jobs waiting in the dispatch queue
	ActiveInvocations int   // Multiply calls currently in flight
	CompletedJobs     int64 // jobs completed over the pool lifetime
}

// Stats returns a snapshot of current pool state
func (p *Pool) Stats() Stats {
	queued, active, completed := p.mon.snapshot()
	return Stats{
		Workers:           p.workers,
		QueuedJobs:        queued,
		ActiveInvocations: active,
		CompletedJobs:     completed,
	}
}

// Close requests termination and joins every worker. It must be called
// exactly once, and only after all outstanding Multiply calls have
// returned; closing with invocations in flight is a caller error and
// panics. Close never times out: every worker is guaranteed to observe
// the termination flag and exit.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return &Error{Code: CodePoolClosed, Message: "pool already closed"}
	}

	p.mon.requestTermination()
	p.wg.Wait()
	p.metrics.PoolWorkers.Set(0)
	p.logger.Debugf("pool closed, %d workers joined", p.workers)
	return nil
}
