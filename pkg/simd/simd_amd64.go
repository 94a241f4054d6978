//go:build amd64 && !nosimd

package simd

import (
	"golang.org/x/sys/cpu"
)

// x86/amd64 implementation.
// The 4-wide unrolled loop maps onto one 256-bit register per step; the Go
// compiler schedules the four independent multiplies back to back.

// hasAVX2 checks if the CPU supports AVX2+FMA at runtime
var hasAVX2 = cpu.X86.HasAVX2 && cpu.X86.HasFMA

func scale(dst, src []float64, factor float64) {
	scaleUnrolled(dst, src, factor)
}

func runtimeInfo() RuntimeInfo {
	if hasAVX2 {
		return RuntimeInfo{
			Implementation: ImplAVX2,
			Features:       []string{"avx2", "fma", "unrolled-4"},
			Accelerated:    true,
		}
	}
	features := []string{"sse2", "unrolled-4"}
	if cpu.X86.HasAVX {
		features = []string{"avx", "unrolled-4"}
	}
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       features,
		Accelerated:    false,
	}
}
