//go:build !amd64 && !arm64 && !nosimd

package simd

import (
	"github.com/viterin/vek"
)

// Generic fallback implementation using the viterin/vek library.
// On platforms without AVX2/NEON, vek uses its pure Go implementation.

func scale(dst, src []float64, factor float64) {
	vek.MulNumber_Into(dst, src, factor)
}

func runtimeInfo() RuntimeInfo {
	info := vek.Info()
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       info.CPUFeatures,
		Accelerated:    info.Acceleration,
	}
}
