// Package numeric provides the float64 accumulators used by the compute kernel.
//
// Main Types:
//   - Kahan: compensated running sum (reduces rounding error over long sums)
//   - OLS: running-sum ordinary least squares fit of y = slope*x + intercept
//
// Both are plain values with no internal synchronization; each worker lane
// keeps its own.
package numeric

import "math"

// DegenerateEpsilon is the smallest |n·Σx² − (Σx)²| for which an OLS fit is
// considered well conditioned.
const DegenerateEpsilon = 1e-12

// Kahan is a compensated summation accumulator.
//
// The zero value is an empty sum. Values must be added in the order the
// caller wants them reduced; the result depends on that order.
//
// Example:
//
//	var k numeric.Kahan
//	for _, v := range values {
//		k.Add(v)
//	}
//	total := k.Sum()
type Kahan struct {
	sum  float64
	comp float64
}

// Add folds v into the running sum.
func (k *Kahan) Add(v float64) {
	y := v - k.comp
	t := k.sum + y
	k.comp = (t - k.sum) - y
	k.sum = t
}

// AddSlice folds every element of vs, left to right.
func (k *Kahan) AddSlice(vs []float64) {
	sum, comp := k.sum, k.comp
	for _, v := range vs {
		y := v - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t
	}
	k.sum, k.comp = sum, comp
}

// Sum returns the compensated total.
func (k *Kahan) Sum() float64 {
	return k.sum
}

// Compensation returns the current correction term.
func (k *Kahan) Compensation() float64 {
	return k.comp
}

// KahanSum returns the compensated sum of vs.
func KahanSum(vs []float64) float64 {
	var k Kahan
	k.AddSlice(vs)
	return k.Sum()
}

// OLS accumulates the sums needed for an ordinary least squares line fit.
// The zero value has no points.
type OLS struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXY float64
	sumX2 float64
}

// Add records the point (x, y).
func (o *OLS) Add(x, y float64) {
	o.sumX += x
	o.sumY += y
	o.sumXY += x * y
	o.sumX2 += x * x
	o.n++
}

// N returns the number of points added.
func (o *OLS) N() int {
	return int(o.n)
}

// Mean returns the mean of the y values, or 0 with no points.
func (o *OLS) Mean() float64 {
	if o.n == 0 {
		return 0
	}
	return o.sumY / o.n
}

// Denominator returns n·Σx² − (Σx)².
func (o *OLS) Denominator() float64 {
	return o.n*o.sumX2 - o.sumX*o.sumX
}

// Fit returns the least squares slope and intercept.
// ok is false when fewer than two points were added or the denominator is
// within DegenerateEpsilon of zero (all x equal).
func (o *OLS) Fit() (slope, intercept float64, ok bool) {
	if o.n < 2 {
		return 0, 0, false
	}
	denom := o.Denominator()
	if math.Abs(denom) <= DegenerateEpsilon {
		return 0, 0, false
	}
	slope = (o.n*o.sumXY - o.sumX*o.sumY) / denom
	intercept = (o.sumY - slope*o.sumX) / o.n
	return slope, intercept, true
}
