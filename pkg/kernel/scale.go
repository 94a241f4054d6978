package kernel

import (
	"github.com/orneryd/gridcalc/pkg/simd"
)

// Scale writes in[r][c]*factor into out[r][c] for every cell.
//
// out must hold at least in.Rows*in.Cols values and must either be disjoint
// from in or be exactly the same storage (in-place). Rows are split across
// lanes when in.Rows exceeds Config.ScaleParallelRows; each lane writes a
// disjoint row range, so no coordination is needed.
func (k *Kernel) Scale(in Matrix, factor float64, out Matrix) {
	if in.Empty() {
		return
	}
	cols := in.Cols

	scaleRows := func(start, end int) {
		for r := start; r < end; r++ {
			off := r * cols
			simd.Scale(out.Data[off:off+cols], in.Data[off:off+cols], factor)
		}
	}

	if in.Rows > k.cfg.ScaleParallelRows {
		k.pool.ParallelFor(in.Rows, scaleRows)
		return
	}
	scaleRows(0, in.Rows)
}
