package matrix

import "fmt"

// Multiply computes C = A x B sequentially with the straightforward triple
// loop. It is the reference implementation the parallel multiplier is
// checked against.
func Multiply(a, b, c *Dense) error {
	if a == nil || b == nil || c == nil {
		return fmt.Errorf("multiply: operands must not be nil")
	}
	n := a.Size()
	if b.Size() != n || c.Size() != n {
		return fmt.Errorf("multiply: size mismatch: A=%d B=%d C=%d", n, b.Size(), c.Size())
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			c.Set(i, j, sum)
		}
	}
	return nil
}
