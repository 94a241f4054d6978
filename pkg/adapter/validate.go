package adapter

import (
	"github.com/orneryd/gridcalc/pkg/kernel"
)

// Validate checks that arr is a C-contiguous 2D float64 array whose data
// length matches its shape, and returns the kernel view of it.
// Failures are *ValidationError values wrapping a package sentinel.
func Validate(op string, arr *Array) (kernel.Matrix, error) {
	if arr == nil {
		return kernel.Matrix{}, &ValidationError{Op: op, Err: ErrNilArray}
	}
	if arr.NDim() != 2 {
		return kernel.Matrix{}, invalid(op, ErrNotMatrix, "got %d dimensions", arr.NDim())
	}
	if arr.DType != "" && arr.DType != Float64 {
		return kernel.Matrix{}, invalid(op, ErrDType, "got %s", arr.DType)
	}

	rows, cols := arr.Shape[0], arr.Shape[1]
	if rows < 0 || cols < 0 {
		return kernel.Matrix{}, invalid(op, ErrShapeMismatch, "negative shape %v", arr.Shape)
	}
	n, ok := shapeProduct(arr.Shape)
	if !ok {
		return kernel.Matrix{}, invalid(op, ErrShapeMismatch, "shape %v overflows", arr.Shape)
	}
	if err := checkContiguous(op, arr.Strides, rows, cols); err != nil {
		return kernel.Matrix{}, err
	}
	if len(arr.Data) != n {
		return kernel.Matrix{}, invalid(op, ErrShapeMismatch, "shape %v needs %d values, have %d", arr.Shape, n, len(arr.Data))
	}

	return kernel.NewMatrix(arr.Data, rows, cols), nil
}

// checkContiguous accepts nil strides or strides equal to (cols, 1).
// Strides of dimensions with extent 1 are never used and are not checked.
func checkContiguous(op string, strides []int, rows, cols int) error {
	if strides == nil {
		return nil
	}
	if len(strides) != 2 {
		return invalid(op, ErrNotContiguous, "got %d strides for 2 dimensions", len(strides))
	}
	if rows > 1 && strides[0] != cols {
		return invalid(op, ErrNotContiguous, "row stride %d, want %d", strides[0], cols)
	}
	if cols > 1 && strides[1] != 1 {
		return invalid(op, ErrNotContiguous, "column stride %d, want 1", strides[1])
	}
	return nil
}
