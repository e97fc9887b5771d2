package tensor

import "errors"

// Error sentinels shared by all array operations in this module. Callers
// test with errors.Is; the wrapped message carries the offending shapes or
// values.
var (
	// ErrShapeMismatch indicates ranks or dimensions incompatible across
	// arguments.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrIndexOutOfRange indicates an index value outside the valid
	// position range of the indexed axis.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidParameter indicates a scalar argument outside its
	// documented domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)
