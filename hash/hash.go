// Package hash implements the fast modular hash used for reproducible sampling
// (dropout masks, sample order) during training.
package hash

// Hash mixes n with the salt s and reduces the result into the range [0, max).
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mix input with salt using subtraction
	var m = uint32(n) - uint32(s)

	// xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mix again with salt using addition
	m += s

	// multiply shift range reduction (Lemire) instead of modulo
	return uint32((uint64(m) * uint64(max)) >> 32)
}

const unitBits = 24

// Unit maps n and salt s to a float32 in [0, 1) with 24 bits of resolution.
func Unit(n uint32, s uint32) float32 {
	return float32(Hash(n, s, 1<<unitBits)) / (1 << unitBits)
}

// Keep reports whether element n survives dropout with the given rate under salt s.
func Keep(n uint32, s uint32, rate float32) bool {
	if rate <= 0 {
		return true
	}
	if rate >= 1 {
		return false
	}
	return Unit(n, s) >= rate
}
