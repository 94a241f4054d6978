// Package adapter is the boundary between array hosts and the compute kernel.
//
// The kernel assumes its inputs are well formed and never allocates output
// storage. The Adapter makes both true: it validates every incoming Array
// (2D, float64, C-contiguous, data length matching shape), allocates output
// arrays in 32-byte aligned buffers, calls the kernel and hands the result
// back in host form.
//
// Example:
//
//	a := adapter.New(kernel.Default())
//
//	m, err := adapter.FromRows([][]float64{{1, 2}, {3, 4}})
//	if err != nil {
//		return err
//	}
//	defer m.Release()
//
//	scaled, err := a.Scale(m, 2)
//	if err != nil {
//		return err
//	}
//	defer scaled.Release()
//	fmt.Println(scaled.ToRows()) // [[2 4] [6 8]]
//
// Validation failures are *ValidationError; allocation failures are
// *aligned.AllocationError. Both propagate unchanged.
//
// ReadRows and WriteRows move matrices in and out of CSV or JSON text for
// command-line hosts.
package adapter

import (
	"log"

	"github.com/orneryd/gridcalc/pkg/kernel"
)

// Adapter validates host arrays and dispatches them to a Kernel.
// It holds no per-call state and is safe for concurrent use.
type Adapter struct {
	kernel  *kernel.Kernel
	logger  *log.Logger
	verbose bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for diagnostics. Default: log.Default().
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithVerbose enables logging of every invocation and its result.
// Rejected inputs are always logged.
func WithVerbose(v bool) Option {
	return func(a *Adapter) {
		a.verbose = v
	}
}

// New creates an Adapter over k. A nil k selects kernel.Default().
func New(k *kernel.Kernel, opts ...Option) *Adapter {
	if k == nil {
		k = kernel.Default()
	}
	a := &Adapter{
		kernel: k,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kernel returns the kernel the Adapter dispatches to.
func (a *Adapter) Kernel() *kernel.Kernel {
	return a.kernel
}

// Sum returns the sum of all elements of arr.
func (a *Adapter) Sum(arr *Array) (float64, error) {
	m, err := a.validate("sum", arr)
	if err != nil {
		return 0, err
	}
	a.debugf("🧮 sum on %d×%d matrix (%d lanes)", m.Rows, m.Cols, a.kernel.Lanes())

	result := a.kernel.Sum(m)

	a.debugf("✅ sum complete: %.15g", result)
	return result, nil
}

// Scale returns a new rows×cols array holding arr*factor.
// The caller owns the result and must Release it.
func (a *Adapter) Scale(arr *Array, factor float64) (*Array, error) {
	m, err := a.validate("scale", arr)
	if err != nil {
		return nil, err
	}
	a.debugf("🧮 scale on %d×%d matrix by %g", m.Rows, m.Cols, factor)

	out, err := a.allocate("scale", m.Rows, m.Cols)
	if err != nil {
		return nil, err
	}
	a.kernel.Scale(m, factor, kernel.NewMatrix(out.Data, m.Rows, m.Cols))

	a.debugf("✅ scale complete")
	return out, nil
}

// Forecast returns a new 1×cols array with the next predicted value of each
// column of arr. The caller owns the result and must Release it.
func (a *Adapter) Forecast(arr *Array) (*Array, error) {
	m, err := a.validate("forecast", arr)
	if err != nil {
		return nil, err
	}
	a.debugf("🔮 forecast on %d×%d matrix (window %d)", m.Rows, m.Cols, a.kernel.Config().ForecastWindow)

	out, err := a.allocate("forecast", 1, m.Cols)
	if err != nil {
		return nil, err
	}
	a.kernel.Forecast(m, kernel.NewMatrix(out.Data, 1, m.Cols))

	a.debugf("✅ forecast complete")
	return out, nil
}

// Checksum returns the 64-bit integrity digest of arr.
func (a *Adapter) Checksum(arr *Array) (uint64, error) {
	m, err := a.validate("checksum", arr)
	if err != nil {
		return 0, err
	}
	a.debugf("🔒 checksum on %d×%d matrix", m.Rows, m.Cols)

	sum := a.kernel.Checksum(m)

	a.debugf("✅ checksum complete: 0x%016x", sum)
	return sum, nil
}

func (a *Adapter) validate(op string, arr *Array) (kernel.Matrix, error) {
	m, err := Validate(op, arr)
	if err != nil {
		a.logger.Printf("⚠️ %s rejected: %v", op, err)
		return kernel.Matrix{}, err
	}
	return m, nil
}

func (a *Adapter) allocate(op string, rows, cols int) (*Array, error) {
	out, err := Zeros(rows, cols)
	if err != nil {
		a.logger.Printf("❌ %s: output allocation failed: %v", op, err)
		return nil, err
	}
	return out, nil
}

func (a *Adapter) debugf(format string, args ...any) {
	if a.verbose {
		a.logger.Printf(format, args...)
	}
}
