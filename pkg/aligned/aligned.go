// Package aligned provides float64 storage aligned for wide-vector loads.
//
// A Buffer owns a block of float64 values whose first element sits on a
// 32-byte boundary, the width of one AVX register (4 doubles). Alignment is
// obtained by over-allocating up to three extra elements and slicing from the
// first aligned address. The Go heap does not move objects, so the address
// stays aligned for the lifetime of the buffer.
//
// Ownership is exclusive. The owner releases the storage with Free, usually
// via defer so that every exit path is covered:
//
//	buf, err := aligned.Alloc(rows * cols)
//	if err != nil {
//		return err
//	}
//	defer buf.Free()
//
//	data := buf.Float64s()
package aligned

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

const (
	// Alignment is the byte boundary of every Buffer (AVX-256).
	Alignment = 32

	elemSize = int(unsafe.Sizeof(float64(0)))

	// padElems is the worst-case number of elements skipped to reach Alignment.
	padElems = Alignment/elemSize - 1
)

var (
	// ErrTooLarge is returned when a request exceeds MaxBytes or cannot be
	// represented or satisfied by the runtime allocator.
	ErrTooLarge = errors.New("aligned: allocation too large")

	// ErrNegativeCount is returned for a negative element count.
	ErrNegativeCount = errors.New("aligned: negative element count")
)

// maxBytes caps a single allocation. Zero means no cap.
var maxBytes atomic.Int64

// SetMaxBytes limits the size of a single allocation in bytes.
// Zero or a negative value removes the limit.
func SetMaxBytes(n int64) {
	if n < 0 {
		n = 0
	}
	maxBytes.Store(n)
}

// MaxBytes returns the current per-allocation limit (0 = unlimited).
func MaxBytes() int64 {
	return maxBytes.Load()
}

// AllocationError reports a request the allocator could not satisfy.
type AllocationError struct {
	// Count is the number of float64 values requested.
	Count int
	// Err is the underlying cause (ErrTooLarge, ErrNegativeCount or a runtime error).
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("aligned: cannot allocate %d float64 values: %v", e.Count, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Buffer exclusively owns count float64 values at a 32-byte aligned address.
// A Buffer must not be copied after first use.
type Buffer struct {
	raw   []float64
	data  []float64
	freed atomic.Bool
}

// Alloc reserves count float64 values aligned to a 32-byte boundary.
//
// A zero count yields a valid empty Buffer without touching the allocator.
// Requests that cannot be satisfied return an *AllocationError; they never
// degrade to unaligned or shorter storage.
func Alloc(count int) (*Buffer, error) {
	if count < 0 {
		return nil, &AllocationError{Count: count, Err: ErrNegativeCount}
	}
	if count == 0 {
		return &Buffer{}, nil
	}
	if count > (math.MaxInt-padElems)/elemSize {
		return nil, &AllocationError{Count: count, Err: ErrTooLarge}
	}
	if limit := maxBytes.Load(); limit > 0 && int64(count)*int64(elemSize) > limit {
		return nil, &AllocationError{
			Count: count,
			Err:   fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, count*elemSize, limit),
		}
	}

	raw, err := makeRaw(count + padElems)
	if err != nil {
		return nil, &AllocationError{Count: count, Err: err}
	}

	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := 0
	if mod := addr % Alignment; mod != 0 {
		offset = int(Alignment-mod) / elemSize
	}

	return &Buffer{
		raw:  raw,
		data: raw[offset : offset+count : offset+count],
	}, nil
}

// FromSlice allocates an aligned Buffer holding a copy of src.
func FromSlice(src []float64) (*Buffer, error) {
	b, err := Alloc(len(src))
	if err != nil {
		return nil, err
	}
	copy(b.data, src)
	return b, nil
}

// makeRaw converts the recoverable "makeslice: len out of range" panic into
// an error. Running out of memory is a fatal runtime error and still aborts
// the process; SetMaxBytes is the guard against that.
func makeRaw(n int) (raw []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("%w: %v", ErrTooLarge, rerr)
				return
			}
			err = fmt.Errorf("%w: %v", ErrTooLarge, r)
		}
	}()
	return make([]float64, n), nil
}

// Float64s returns the buffer's storage. It returns nil once the buffer has
// been freed.
func (b *Buffer) Float64s() []float64 {
	if b == nil || b.freed.Load() {
		return nil
	}
	return b.data
}

// Len returns the number of float64 values owned by the buffer.
func (b *Buffer) Len() int {
	if b == nil || b.freed.Load() {
		return 0
	}
	return len(b.data)
}

// Aligned reports whether the first element sits on a 32-byte boundary.
// Empty and freed buffers are trivially aligned.
func (b *Buffer) Aligned() bool {
	d := b.Float64s()
	if len(d) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&d[0]))%Alignment == 0
}

// Freed reports whether Free has been called.
func (b *Buffer) Freed() bool {
	return b != nil && b.freed.Load()
}

// Free releases the storage. Only the first call has an effect, so it is
// safe to both defer Free and call it early on a success path.
func (b *Buffer) Free() {
	if b == nil || !b.freed.CompareAndSwap(false, true) {
		return
	}
	b.raw = nil
	b.data = nil
}
