package kernel

import (
	"github.com/orneryd/gridcalc/pkg/math/numeric"
)

// Sum returns the sum of all Rows*Cols elements of m, or 0 for an empty
// matrix.
//
// Above Config.SumParallelThreshold elements the rows are dealt to lanes by
// stride: lane i sums rows i, i+L, i+2L, ... with its own Kahan accumulator,
// reading each row left to right. The L partials are then combined with a
// second Kahan pass in lane order. Smaller inputs use a single lane.
func (k *Kernel) Sum(m Matrix) float64 {
	if m.Empty() {
		return 0
	}
	lanes := 1
	if !k.cfg.ReproducibleSum && m.Len() > k.cfg.SumParallelThreshold {
		lanes = k.cfg.Lanes
	}
	return k.sumLanes(m, lanes)
}

// sumLanes runs the strided lane sum with exactly lanes partials.
func (k *Kernel) sumLanes(m Matrix, lanes int) float64 {
	partials := make([]float64, lanes)

	k.pool.ParallelLanes(lanes, func(lane int) {
		var acc numeric.Kahan
		for r := lane; r < m.Rows; r += lanes {
			acc.AddSlice(m.Row(r))
		}
		partials[lane] = acc.Sum()
	})

	// Join barrier passed; partials are no longer shared.
	return numeric.KahanSum(partials)
}
