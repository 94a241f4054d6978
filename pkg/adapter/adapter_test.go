package adapter

import (
	"bytes"
	"errors"
	"log"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/gridcalc/pkg/aligned"
	"github.com/orneryd/gridcalc/pkg/kernel"
)

func newTestAdapter(t *testing.T, opts ...Option) (*Adapter, *bytes.Buffer) {
	t.Helper()
	k := kernel.New(kernel.Config{Lanes: 2})
	t.Cleanup(k.Close)

	var logs bytes.Buffer
	opts = append([]Option{WithLogger(log.New(&logs, "", 0))}, opts...)
	return New(k, opts...), &logs
}

func sampleMatrix(t *testing.T) *Array {
	t.Helper()
	arr, err := FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	t.Cleanup(arr.Release)
	return arr
}

// =============================================================================
// Operations
// =============================================================================

func TestAdapter_Sum(t *testing.T) {
	a, _ := newTestAdapter(t)

	got, err := a.Sum(sampleMatrix(t))
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestAdapter_Scale(t *testing.T) {
	a, _ := newTestAdapter(t)
	in := sampleMatrix(t)

	out, err := a.Scale(in, 2)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []int{2, 2}, out.Shape)
	assert.Equal(t, Float64, out.DType)
	assert.Equal(t, [][]float64{{2, 4}, {6, 8}}, out.ToRows())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, in.ToRows(), "input must not change")

	assert.True(t, out.Owned())
	assert.Zero(t, uintptr(unsafe.Pointer(&out.Data[0]))%aligned.Alignment, "output must be 32-byte aligned")
}

func TestAdapter_Forecast(t *testing.T) {
	a, _ := newTestAdapter(t)
	in, err := FromRows([][]float64{{1, 10}, {2, 10}, {3, 10}})
	require.NoError(t, err)
	defer in.Release()

	out, err := a.Forecast(in)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []int{1, 2}, out.Shape)
	require.Len(t, out.Data, 2)
	assert.InDelta(t, 4.0, out.Data[0], 1e-12)
	assert.InDelta(t, 10.0, out.Data[1], 1e-12)
}

func TestAdapter_Checksum(t *testing.T) {
	a, _ := newTestAdapter(t)
	in := sampleMatrix(t)

	got, err := a.Checksum(in)
	require.NoError(t, err)
	assert.Equal(t, kernel.Checksum(kernel.NewMatrix([]float64{1, 2, 3, 4}, 2, 2)), got)
}

func TestAdapter_EmptyMatrix(t *testing.T) {
	a, _ := newTestAdapter(t)
	empty := NewArray(nil, 0, 3)

	sum, err := a.Sum(empty)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum)

	scaled, err := a.Scale(empty, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, scaled.Shape)
	assert.Empty(t, scaled.Data)
	scaled.Release()

	pred, err := a.Forecast(empty)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, pred.Data)
	pred.Release()
}

func TestAdapter_BorrowedInput(t *testing.T) {
	a, _ := newTestAdapter(t)
	data := []float64{1, 2, 3, 4, 5, 6}
	arr := NewArray(data, 3, 2)

	sum, err := a.Sum(arr)
	require.NoError(t, err)
	assert.Equal(t, 21.0, sum)

	arr.Release()
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, arr.Data, "borrowed data is not released")
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		arr     *Array
		wantErr error
	}{
		{name: "nil", arr: nil, wantErr: ErrNilArray},
		{name: "1d", arr: NewArray([]float64{1, 2, 3}, 3), wantErr: ErrNotMatrix},
		{name: "3d", arr: NewArray(make([]float64, 8), 2, 2, 2), wantErr: ErrNotMatrix},
		{name: "float32", arr: &Array{Shape: []int{1, 1}, DType: Float32, Data: []float64{1}}, wantErr: ErrDType},
		{name: "int64", arr: &Array{Shape: []int{1, 1}, DType: Int64, Data: []float64{1}}, wantErr: ErrDType},
		{name: "fortran order", arr: &Array{Shape: []int{2, 3}, Strides: []int{1, 2}, Data: make([]float64, 6)}, wantErr: ErrNotContiguous},
		{name: "sliced columns", arr: &Array{Shape: []int{2, 2}, Strides: []int{4, 1}, Data: make([]float64, 4)}, wantErr: ErrNotContiguous},
		{name: "wrong stride count", arr: &Array{Shape: []int{2, 2}, Strides: []int{2}, Data: make([]float64, 4)}, wantErr: ErrNotContiguous},
		{name: "short data", arr: NewArray([]float64{1, 2, 3}, 2, 2), wantErr: ErrShapeMismatch},
		{name: "long data", arr: NewArray([]float64{1, 2, 3, 4, 5}, 2, 2), wantErr: ErrShapeMismatch},
		{name: "negative shape", arr: NewArray(nil, -1, 2), wantErr: ErrShapeMismatch},
		{name: "overflowing shape", arr: &Array{Shape: []int{math.MaxInt/2 + 1, 2}}, wantErr: ErrShapeMismatch},
		{name: "overflowing square shape", arr: &Array{Shape: []int{math.MaxInt, math.MaxInt}}, wantErr: ErrShapeMismatch},
		{name: "ok", arr: NewArray([]float64{1, 2, 3, 4}, 2, 2)},
		{name: "ok explicit strides", arr: &Array{Shape: []int{2, 3}, Strides: []int{3, 1}, Data: make([]float64, 6)}},
		{name: "ok single row any stride", arr: &Array{Shape: []int{1, 3}, Strides: []int{99, 1}, Data: make([]float64, 3)}},
		{name: "ok default dtype", arr: &Array{Shape: []int{1, 1}, Data: []float64{7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Validate("sum", tt.arr)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.arr.Shape[0], m.Rows)
				assert.Equal(t, tt.arr.Shape[1], m.Cols)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "sum", verr.Op)
		})
	}
}

func TestAdapter_RejectsAndLogs(t *testing.T) {
	a, logs := newTestAdapter(t)

	_, err := a.Scale(NewArray([]float64{1, 2, 3}, 3), 2)
	require.ErrorIs(t, err, ErrNotMatrix)
	assert.Contains(t, err.Error(), "scale")
	assert.Contains(t, logs.String(), "scale rejected")

	_, err = a.Checksum(nil)
	require.ErrorIs(t, err, ErrNilArray)

	_, err = a.Forecast(&Array{Shape: []int{1, 1}, DType: Float32, Data: []float64{1}})
	require.ErrorIs(t, err, ErrDType)
}

func TestAdapter_AllocationFailurePropagates(t *testing.T) {
	aligned.SetMaxBytes(8)
	defer aligned.SetMaxBytes(0)

	a, logs := newTestAdapter(t)
	in := NewArray([]float64{1, 2, 3, 4}, 2, 2)

	out, err := a.Scale(in, 2)
	assert.Nil(t, out)

	var allocErr *aligned.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 4, allocErr.Count)
	assert.ErrorIs(t, err, aligned.ErrTooLarge)
	assert.Contains(t, logs.String(), "allocation failed")
}

func TestAdapter_VerboseLogging(t *testing.T) {
	quiet, quietLogs := newTestAdapter(t)
	_, err := quiet.Checksum(sampleMatrix(t))
	require.NoError(t, err)
	assert.Empty(t, quietLogs.String())

	loud, loudLogs := newTestAdapter(t, WithVerbose(true))
	sum, err := loud.Checksum(sampleMatrix(t))
	require.NoError(t, err)
	assert.Contains(t, loudLogs.String(), "checksum on 2×2 matrix")
	assert.Contains(t, loudLogs.String(), "0x")
	assert.NotZero(t, sum)
}

func TestNew_NilKernelUsesDefault(t *testing.T) {
	a := New(nil)
	assert.Same(t, kernel.Default(), a.Kernel())
}

// =============================================================================
// Array
// =============================================================================

func TestFromRows(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}}
	arr, err := FromRows(rows)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, []int{2, 3}, arr.Shape)
	assert.Equal(t, 2, arr.NDim())
	assert.Equal(t, 6, arr.Size())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, arr.Data)
	assert.Equal(t, rows, arr.ToRows())

	rows[0][0] = 100
	assert.Equal(t, 1.0, arr.Data[0], "FromRows must copy")
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrRagged)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Detail, "row 1")
}

func TestFromRows_Empty(t *testing.T) {
	arr, err := FromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, arr.Shape)
	assert.Empty(t, arr.Data)
	arr.Release()
}

func TestZeros_NegativeDimension(t *testing.T) {
	_, err := Zeros(2, -1)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestZeros_OverflowingShape(t *testing.T) {
	arr, err := Zeros(math.MaxInt/2+1, 2)
	assert.Nil(t, arr)

	var allocErr *aligned.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, -1, allocErr.Count)
	assert.ErrorIs(t, err, aligned.ErrTooLarge)
}

func TestAdapter_OverflowingShapeNeverReachesKernel(t *testing.T) {
	a, logs := newTestAdapter(t)
	huge := &Array{Shape: []int{math.MaxInt/2 + 1, 4}}

	_, err := a.Sum(huge)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = a.Scale(huge, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, logs.String(), "overflows")
}

func TestArray_SizeOverflow(t *testing.T) {
	assert.Equal(t, -1, (&Array{Shape: []int{math.MaxInt, 2}}).Size())
	assert.Equal(t, 0, (&Array{Shape: []int{math.MaxInt, 0}}).Size())
}

func TestArray_ToRowsAfterRelease(t *testing.T) {
	arr, err := FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	arr.Release()
	assert.NotPanics(t, func() {
		assert.Nil(t, arr.ToRows())
	})

	short := &Array{Shape: []int{2, 2}, Data: []float64{1}}
	assert.Nil(t, short.ToRows())
}

func TestArray_ReleaseIdempotent(t *testing.T) {
	arr, err := Zeros(4, 4)
	require.NoError(t, err)
	require.True(t, arr.Owned())

	arr.Release()
	assert.Nil(t, arr.Data)
	assert.NotPanics(t, arr.Release)

	var nilArr *Array
	assert.NotPanics(t, nilArr.Release)
	assert.Nil(t, nilArr.ToRows())
}
