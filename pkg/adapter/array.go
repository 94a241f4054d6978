package adapter

import (
	"math"

	"github.com/orneryd/gridcalc/pkg/aligned"
)

// DType names the element type an Array claims to hold.
type DType string

const (
	Float64 DType = "float64"
	Float32 DType = "float32"
	Int64   DType = "int64"
)

// Array is the host-side n-dimensional array handed to the Adapter.
//
// Shape lists the extent of each dimension. Strides, when non-nil, gives the
// step between consecutive indices of each dimension in elements; nil means
// C-contiguous. An empty DType means Float64.
//
// Arrays produced by the Adapter own aligned storage and must be released
// with Release once the host is done with them.
type Array struct {
	Shape   []int
	Strides []int
	DType   DType
	Data    []float64

	buf *aligned.Buffer
}

// NewArray wraps data (borrowed, not copied) as a float64 array of the given
// shape.
func NewArray(data []float64, shape ...int) *Array {
	return &Array{Shape: shape, DType: Float64, Data: data}
}

// Zeros allocates a zero-filled float64 array with aligned storage.
func Zeros(shape ...int) (*Array, error) {
	for _, d := range shape {
		if d < 0 {
			return nil, invalid("zeros", ErrShapeMismatch, "negative dimension in %v", shape)
		}
	}
	n, ok := shapeProduct(shape)
	if !ok {
		return nil, &aligned.AllocationError{Count: -1, Err: aligned.ErrTooLarge}
	}
	buf, err := aligned.Alloc(n)
	if err != nil {
		return nil, err
	}
	return &Array{
		Shape: append([]int(nil), shape...),
		DType: Float64,
		Data:  buf.Float64s(),
		buf:   buf,
	}, nil
}

// FromRows copies a slice of equal-length rows into a new rows×cols array
// backed by aligned storage.
func FromRows(rows [][]float64) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, invalid("from_rows", ErrRagged, "row %d has %d values, want %d", i, len(row), cols)
		}
	}

	arr, err := Zeros(len(rows), cols)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		copy(arr.Data[i*cols:], row)
	}
	return arr, nil
}

// NDim returns the number of dimensions.
func (a *Array) NDim() int {
	return len(a.Shape)
}

// Size returns the product of the dimensions, or -1 if it overflows int.
func (a *Array) Size() int {
	n, ok := shapeProduct(a.Shape)
	if !ok {
		return -1
	}
	return n
}

// shapeProduct multiplies non-negative dimensions, reporting false when the
// product does not fit in an int.
func shapeProduct(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, false
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// ToRows copies a 2D array into a slice of rows.
// It returns nil for arrays that are not 2D or whose data no longer covers
// the shape, such as a released array.
func (a *Array) ToRows() [][]float64 {
	if a == nil || len(a.Shape) != 2 {
		return nil
	}
	rows, cols := a.Shape[0], a.Shape[1]
	if n, ok := shapeProduct(a.Shape); !ok || len(a.Data) < n {
		return nil
	}
	out := make([][]float64, rows)
	for r := range out {
		out[r] = append([]float64(nil), a.Data[r*cols:(r+1)*cols]...)
	}
	return out
}

// Owned reports whether the array's storage was allocated by this package.
func (a *Array) Owned() bool {
	return a != nil && a.buf != nil
}

// Release frees adapter-owned storage. It is a no-op for borrowed arrays and
// for repeated calls.
func (a *Array) Release() {
	if a == nil || a.buf == nil {
		return
	}
	a.buf.Free()
	a.Data = nil
}
