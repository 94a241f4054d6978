package kernel

import (
	"github.com/orneryd/gridcalc/pkg/math/numeric"
)

// Forecast predicts the next value of every column of in and writes it to
// out.Data[col]; out must hold at least in.Cols values.
//
// Each column is fitted independently with an ordinary least squares line
// over its trailing window of min(Config.ForecastWindow, max(Rows, 1)) rows,
// x running 0..n-1 from the window start. The prediction is:
//   - slope*n + intercept (one step past the window) when n >= 2 and the fit
//     is well conditioned
//   - the window mean when n >= 2 and the fit is degenerate
//   - the last observed value when n < 2, or 0 for a matrix with no rows
//
// Columns are split across lanes when in.Cols exceeds
// Config.ForecastParallelCols.
func (k *Kernel) Forecast(in Matrix, out Matrix) {
	cols := in.Cols
	if cols <= 0 {
		return
	}
	rows := max(in.Rows, 0)
	pred := out.Data[:cols]

	window := min(k.cfg.ForecastWindow, max(rows, 1))
	start := 0
	if rows > window {
		start = rows - window
	}

	forecastCols := func(c0, c1 int) {
		for c := c0; c < c1; c++ {
			pred[c] = forecastColumn(in.Data, rows, cols, c, start)
		}
	}

	if cols > k.cfg.ForecastParallelCols {
		k.pool.ParallelFor(cols, forecastCols)
		return
	}
	forecastCols(0, cols)
}

func forecastColumn(data []float64, rows, cols, col, start int) float64 {
	var fit numeric.OLS
	for r := start; r < rows; r++ {
		fit.Add(float64(r-start), data[r*cols+col])
	}

	if n := fit.N(); n >= 2 {
		if slope, intercept, ok := fit.Fit(); ok {
			return slope*float64(n) + intercept
		}
		// Flat window
		return fit.Mean()
	}
	if rows > 0 {
		return data[(rows-1)*cols+col]
	}
	return 0
}
