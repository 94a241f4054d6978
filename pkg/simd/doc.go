// Package simd provides SIMD-accelerated float64 row operations for gridcalc.
//
// The kernel scales each matrix row through this package. Implementations
// are selected per platform at build time:
//
//   - x86/amd64: 4-wide unrolled loop (one AVX-256 register of float64) with a
//     scalar tail; the Go compiler keeps the four lanes independent
//   - arm64: NEON via github.com/viterin/vek
//   - fallback: github.com/viterin/vek pure Go path for all other platforms
//   - nosimd build tag: the portable 4-wide loop everywhere
//
// # Supported Operations
//
//   - Scale: dst[i] = src[i] * factor
//
// # Usage
//
//	import "github.com/orneryd/gridcalc/pkg/simd"
//
//	src := []float64{1, 2, 3, 4, 5}
//	dst := make([]float64, len(src))
//	simd.Scale(dst, src, 2) // dst = {2, 4, 6, 8, 10}
//
//	info := simd.Info()
//	fmt.Printf("SIMD: %s (%s)\n", info.Implementation, info.Features)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use on disjoint
// destinations. They do not modify any global state.
//
// # Precision
//
// Every element is a single IEEE-754 multiplication, so all implementations
// produce bit-identical results.
package simd
