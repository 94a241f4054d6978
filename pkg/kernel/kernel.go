package kernel

import (
	"runtime"
	"sync"

	"github.com/orneryd/gridcalc/pkg/workerpool"
)

const (
	// DefaultSumParallelThreshold is the element count above which Sum forks.
	DefaultSumParallelThreshold = 500_000

	// DefaultScaleParallelRows is the row count above which Scale forks.
	DefaultScaleParallelRows = 50

	// DefaultForecastParallelCols is the column count above which Forecast forks.
	DefaultForecastParallelCols = 8

	// DefaultForecastWindow is the number of trailing rows Forecast fits.
	DefaultForecastWindow = 30
)

// Config controls lane count and the thresholds that gate parallel dispatch.
// A non-positive field selects its default.
type Config struct {
	// Lanes is the number of worker lanes. Default: runtime.GOMAXPROCS(0)
	Lanes int

	// SumParallelThreshold: Sum forks only when Rows*Cols exceeds it.
	SumParallelThreshold int

	// ScaleParallelRows: Scale forks only when Rows exceeds it.
	ScaleParallelRows int

	// ForecastParallelCols: Forecast forks only when Cols exceeds it.
	ForecastParallelCols int

	// ForecastWindow is the maximum number of trailing rows in a fit.
	ForecastWindow int

	// ReproducibleSum forces Sum onto a single lane so its result does not
	// depend on Lanes.
	ReproducibleSum bool
}

// DefaultConfig returns the default kernel configuration.
func DefaultConfig() Config {
	return Config{
		Lanes:                runtime.GOMAXPROCS(0),
		SumParallelThreshold: DefaultSumParallelThreshold,
		ScaleParallelRows:    DefaultScaleParallelRows,
		ForecastParallelCols: DefaultForecastParallelCols,
		ForecastWindow:       DefaultForecastWindow,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Lanes <= 0 {
		c.Lanes = d.Lanes
	}
	if c.SumParallelThreshold <= 0 {
		c.SumParallelThreshold = d.SumParallelThreshold
	}
	if c.ScaleParallelRows <= 0 {
		c.ScaleParallelRows = d.ScaleParallelRows
	}
	if c.ForecastParallelCols <= 0 {
		c.ForecastParallelCols = d.ForecastParallelCols
	}
	if c.ForecastWindow <= 0 {
		c.ForecastWindow = d.ForecastWindow
	}
	return c
}

// Kernel runs the compute operations on a persistent worker pool.
// It is safe for concurrent use until Close is called.
type Kernel struct {
	cfg  Config
	pool *workerpool.Pool
}

// New creates a Kernel and starts cfg.Lanes workers.
func New(cfg Config) *Kernel {
	cfg = cfg.withDefaults()
	return &Kernel{
		cfg:  cfg,
		pool: workerpool.New(cfg.Lanes),
	}
}

// Config returns the effective configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Lanes returns the number of worker lanes.
func (k *Kernel) Lanes() int {
	return k.cfg.Lanes
}

// Close stops the worker pool. Operations on a closed Kernel still work but
// run on the calling goroutine.
func (k *Kernel) Close() {
	k.pool.Close()
}

var (
	defaultOnce   sync.Once
	defaultKernel *Kernel
)

// Default returns the shared Kernel used by the package-level functions.
// It is created on first use with DefaultConfig and never closed.
func Default() *Kernel {
	defaultOnce.Do(func() {
		defaultKernel = New(DefaultConfig())
	})
	return defaultKernel
}

// Sum returns the sum of all elements of m using the default Kernel.
func Sum(m Matrix) float64 {
	return Default().Sum(m)
}

// Scale writes in*factor into out using the default Kernel.
func Scale(in Matrix, factor float64, out Matrix) {
	Default().Scale(in, factor, out)
}

// Forecast writes one prediction per column of in into out (1×cols) using
// the default Kernel.
func Forecast(in Matrix, out Matrix) {
	Default().Forecast(in, out)
}
