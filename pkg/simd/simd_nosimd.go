//go:build nosimd

package simd

func scale(dst, src []float64, factor float64) {
	scaleUnrolled(dst, src, factor)
}

func runtimeInfo() RuntimeInfo {
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       []string{"unrolled-4"},
		Accelerated:    false,
	}
}
