package multiplier

// Matrix is the minimal surface the pool needs from a matrix implementation.
// Implementations must allow concurrent reads, and concurrent writes from
// different goroutines as long as the touched index sets are disjoint; the
// block partition guarantees the pool never violates that.
type Matrix interface {
	// At returns the element at row i, column j
	At(i, j int) float64

	// Set stores v at row i, column j
	Set(i, j int, v float64)

	// Size returns the number of rows (== columns)
	Size() int
}

// job is the unit of dispatch: a request to compute one complete block of
// the output matrix. Built once by the dispatcher, consumed exactly once by
// exactly one worker, never mutated in between.
type job struct {
	a, b Matrix // read-only for the job's lifetime
	c    Matrix

	blockRow     int
	blockCol     int
	blocksPerRow int

	// invocation identifies the Multiply call this job belongs to
	invocation int64
}
