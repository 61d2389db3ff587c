package matrix

import (
	"math"
	"math/rand"

	"github.com/fluxorio/blockmul/pkg/failfast"
)

// Dense is a square matrix of float64 values stored row-major in a single
// contiguous slice.
//
// Reads and writes from different goroutines are safe as long as the index
// sets they touch are disjoint; Dense does no locking of its own.
type Dense struct {
	n    int
	data []float64
}

// New creates an n x n matrix with all elements zero
func New(n int) *Dense {
	failfast.If(n > 0, "matrix size must be positive, got %d", n)
	return &Dense{
		n:    n,
		data: make([]float64, n*n),
	}
}

// Identity creates an n x n identity matrix
func Identity(n int) *Dense {
	m := New(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Random creates an n x n matrix with pseudo-random elements in [0, 1).
// The same seed always yields the same matrix.
func Random(n int, seed int64) *Dense {
	m := New(n)
	rng := rand.New(rand.NewSource(seed))
	for i := range m.data {
		m.data[i] = rng.Float64()
	}
	return m
}

// Size returns the number of rows (== columns)
func (m *Dense) Size() int {
	return m.n
}

// At returns the element at row i, column j
func (m *Dense) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Set stores v at row i, column j
func (m *Dense) Set(i, j int, v float64) {
	m.data[i*m.n+j] = v
}

// Fill sets every element to v
func (m *Dense) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Equal reports whether m and other have the same size and all elements
// within tol of each other
func (m *Dense) Equal(other *Dense, tol float64) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i, v := range m.data {
		if math.Abs(v-other.data[i]) > tol {
			return false
		}
	}
	return true
}
