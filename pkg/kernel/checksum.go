package kernel

import "math"

// FNV-1a 64-bit parameters.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// Checksum returns a 64-bit FNV-1a style digest of m: each element's IEEE-754
// bit pattern, in row-major order, is XORed into the accumulator which is
// then multiplied by the FNV prime (wrapping).
//
// The digest is order sensitive (a transpose usually changes it) and detects
// accidental corruption only; it is not collision resistant. An empty matrix
// yields the FNV offset basis.
func Checksum(m Matrix) uint64 {
	h := fnvOffset64
	for _, v := range m.elements() {
		h ^= math.Float64bits(v)
		h *= fnvPrime64
	}
	return h
}

// Checksum is the Kernel form of the package-level Checksum. It always runs
// sequentially on the calling goroutine.
func (k *Kernel) Checksum(m Matrix) uint64 {
	return Checksum(m)
}
