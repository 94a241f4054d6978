package simd

// Implementation represents the active SIMD implementation
type Implementation string

const (
	// ImplGeneric indicates pure Go fallback (no SIMD)
	ImplGeneric Implementation = "generic"
	// ImplAVX2 indicates x86 AVX2+FMA SIMD
	ImplAVX2 Implementation = "avx2"
	// ImplNEON indicates ARM NEON SIMD
	ImplNEON Implementation = "neon"
)

// Width is the number of float64 values processed per vector step.
const Width = 4

// RuntimeInfo contains information about the active SIMD implementation
type RuntimeInfo struct {
	// Implementation is the active SIMD backend
	Implementation Implementation
	// Features lists specific CPU features being used
	Features []string
	// Accelerated indicates whether SIMD acceleration is active
	Accelerated bool
}

// Scale writes src[i] * factor into dst[i] for every i < len(src).
//
// dst must be at least as long as src; elements past len(src) are left
// untouched. dst and src may be the same slice (in-place scaling) but must
// not otherwise overlap.
//
// Example:
//
//	dst := make([]float64, 3)
//	simd.Scale(dst, []float64{1, 2, 3}, 0.5) // {0.5, 1, 1.5}
func Scale(dst, src []float64, factor float64) {
	if len(dst) < len(src) {
		panic("simd: destination shorter than source")
	}
	if len(src) == 0 {
		return
	}
	scale(dst[:len(src)], src, factor)
}

// Info returns information about the active SIMD implementation.
//
// Example:
//
//	info := simd.Info()
//	if info.Accelerated {
//	    fmt.Printf("Using %s SIMD\n", info.Implementation)
//	}
func Info() RuntimeInfo {
	return runtimeInfo()
}

// scaleUnrolled multiplies Width consecutive elements per step against the
// broadcast factor, then finishes the 0-3 trailing elements one at a time.
// len(dst) must equal len(src).
func scaleUnrolled(dst, src []float64, factor float64) {
	n := len(src)
	dst = dst[:n]

	i := 0
	for ; i <= n-Width; i += Width {
		s := src[i : i+Width : i+Width]
		d := dst[i : i+Width : i+Width]
		d[0] = s[0] * factor
		d[1] = s[1] * factor
		d[2] = s[2] * factor
		d[3] = s[3] * factor
	}

	// Handle remaining elements
	for ; i < n; i++ {
		dst[i] = src[i] * factor
	}
}
