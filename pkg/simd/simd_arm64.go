//go:build arm64 && !nosimd

package simd

import (
	"github.com/viterin/vek"
)

// ARM64 NEON-optimized implementation using the viterin/vek SIMD library.
// vek provides NEON assembly for float64 slices and handles its own tail.

func scale(dst, src []float64, factor float64) {
	vek.MulNumber_Into(dst, src, factor)
}

func runtimeInfo() RuntimeInfo {
	info := vek.Info()
	if info.Acceleration {
		return RuntimeInfo{
			Implementation: ImplNEON,
			Features:       info.CPUFeatures,
			Accelerated:    true,
		}
	}
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       info.CPUFeatures,
		Accelerated:    false,
	}
}
