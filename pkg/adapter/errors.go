package adapter

import (
	"errors"
	"fmt"
)

// Sentinel validation causes. Match them with errors.Is on the error returned
// by any Adapter operation.
var (
	// ErrNilArray is returned when no array was supplied.
	ErrNilArray = errors.New("adapter: nil array")

	// ErrNotMatrix is returned for arrays that are not two-dimensional.
	ErrNotMatrix = errors.New("adapter: expected a 2D array")

	// ErrDType is returned for element types other than float64.
	ErrDType = errors.New("adapter: expected float64 elements")

	// ErrNotContiguous is returned when strides do not describe C-contiguous
	// row-major storage.
	ErrNotContiguous = errors.New("adapter: expected C-contiguous storage")

	// ErrShapeMismatch is returned when the shape is negative or does not
	// match the length of the data.
	ErrShapeMismatch = errors.New("adapter: shape does not match data")

	// ErrRagged is returned by FromRows when rows differ in length.
	ErrRagged = errors.New("adapter: rows have different lengths")
)

// ValidationError reports an input rejected before reaching the kernel.
type ValidationError struct {
	// Op is the operation that rejected the input (sum, scale, ...).
	Op string
	// Err is one of the package sentinels.
	Err error
	// Detail describes the offending value.
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}
