package simd

import (
	"fmt"
	"math/rand"
	"testing"
)

// Row widths typical for spreadsheet-style matrices
var benchmarkSizes = []int{3, 16, 100, 1000, 4096, 65536}

func generateTestRow(size int) []float64 {
	v := make([]float64, size)
	for i := range v {
		v[i] = rand.Float64()*2 - 1 // [-1, 1]
	}
	return v
}

// scaleNaive is the plain loop the 4-wide path is compared against.
func scaleNaive(dst, src []float64, factor float64) {
	for i := range src {
		dst[i] = src[i] * factor
	}
}

// BenchmarkScale benchmarks scaling at various row widths
func BenchmarkScale(b *testing.B) {
	for _, size := range benchmarkSizes {
		src := generateTestRow(size)
		dst := make([]float64, size)
		name := fmt.Sprintf("%d", size)

		b.Run("SIMD-"+name, func(b *testing.B) {
			b.SetBytes(int64(size * 8 * 2))
			for i := 0; i < b.N; i++ {
				Scale(dst, src, 1.5)
			}
		})

		b.Run("Unrolled-"+name, func(b *testing.B) {
			b.SetBytes(int64(size * 8 * 2))
			for i := 0; i < b.N; i++ {
				scaleUnrolled(dst, src, 1.5)
			}
		})

		b.Run("Reference-"+name, func(b *testing.B) {
			b.SetBytes(int64(size * 8 * 2))
			for i := 0; i < b.N; i++ {
				scaleNaive(dst, src, 1.5)
			}
		})
	}
}
