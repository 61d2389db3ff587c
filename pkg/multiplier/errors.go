package multiplier

// Error codes returned by the pool
const (
	// CodeInvalidBlockCount means the block-grid dimension does not evenly
	// divide the matrix size (or is not positive)
	CodeInvalidBlockCount = "INVALID_BLOCK_COUNT"

	// CodePoolClosed means Multiply or Close was called after teardown began
	CodePoolClosed = "POOL_CLOSED"

	// CodeNilMatrix means an operand or output matrix is nil
	CodeNilMatrix = "NIL_MATRIX"

	// CodeSizeMismatch means the operand and output matrices do not all have
	// the same size
	CodeSizeMismatch = "SIZE_MISMATCH"
)

// Error represents a pool usage error with a code and message
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}
