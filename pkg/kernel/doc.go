// Package kernel implements the gridcalc compute kernel: four pure operations
// over dense, row-major float64 matrices.
//
// # Operations
//
//   - Sum: parallel Kahan-compensated sum of every element
//   - Scale: out = in * factor, 4-wide per row with a scalar tail
//   - Forecast: per-column one-step-ahead OLS prediction over a trailing window
//   - Checksum: order-sensitive FNV-1a fold over the elements' bit patterns
//
// # Ownership
//
// A Matrix is a borrowed view. The kernel never allocates output storage:
// Scale and Forecast write into matrices supplied by the caller, sized
// rows×cols and 1×cols respectively. Inputs are never written.
//
// The kernel does not validate shapes. Callers (see pkg/adapter) guarantee
// len(Data) >= Rows*Cols and output sizes before calling.
//
// # Parallelism
//
// A Kernel owns a persistent worker pool. Sum forks across lanes only above
// Config.SumParallelThreshold elements, Scale above Config.ScaleParallelRows
// rows and Forecast above Config.ForecastParallelCols columns; smaller inputs
// run on the calling goroutine. Every parallel section joins before the
// operation returns.
//
// Sum assigns rows to lanes by stride and reduces the per-lane partials in
// lane order, so its result is deterministic for a fixed lane count. Different
// lane counts may differ in the last few bits.
//
// # Usage
//
//	k := kernel.New(kernel.DefaultConfig())
//	defer k.Close()
//
//	m := kernel.NewMatrix([]float64{1, 2, 3, 4}, 2, 2)
//	total := k.Sum(m) // 10
//
//	out := kernel.NewMatrix(make([]float64, 4), 2, 2)
//	k.Scale(m, 2, out) // [[2 4] [6 8]]
//
// The package-level functions use a shared default Kernel.
package kernel
