// Package avx implements the vector kernels of the layer library, picking
// an unrolled implementation on CPUs with wide SIMD units.
package avx

import "runtime"

// Dot returns the inner product of a and b[:len(a)].
var Dot func(a, b []float32) float32 = dotNotVectorized

// Axpy computes y[i] += alpha * x[i] over len(x) elements.
var Axpy func(alpha float32, x, y []float32) = axpyNotVectorized

// Scale computes x[i] *= alpha.
var Scale func(alpha float32, x []float32) = scaleNotVectorized

var vectorized bool

var parallelism int = runtime.NumCPU()

// Vectorized reports whether the unrolled kernels are in use.
func Vectorized() bool {
	return vectorized
}

// Parallelism reports the recommended number of goroutines for layer work.
// Can't return 0.
func Parallelism() int {
	if parallelism < 1 {
		return 1
	}
	return parallelism
}

func dotNotVectorized(a, b []float32) (s float32) {
	b = b[:len(a)]
	for i := range a {
		s += a[i] * b[i]
	}
	return
}

func axpyNotVectorized(alpha float32, x, y []float32) {
	y = y[:len(x)]
	for i := range x {
		y[i] += alpha * x[i]
	}
}

func scaleNotVectorized(alpha float32, x []float32) {
	for i := range x {
		x[i] *= alpha
	}
}

// the 8-way unrolled kernels keep independent accumulators so the compiler
// can schedule them on separate vector lanes
func dotUnrolled(a, b []float32) float32 {
	b = b[:len(a)]
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i+8 <= len(a); i += 8 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
		s4 += a[i+4] * b[i+4]
		s5 += a[i+5] * b[i+5]
		s6 += a[i+6] * b[i+6]
		s7 += a[i+7] * b[i+7]
	}
	for ; i < len(a); i++ {
		s0 += a[i] * b[i]
	}
	return ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
}

func axpyUnrolled(alpha float32, x, y []float32) {
	y = y[:len(x)]
	i := 0
	for ; i+8 <= len(x); i += 8 {
		y[i] += alpha * x[i]
		y[i+1] += alpha * x[i+1]
		y[i+2] += alpha * x[i+2]
		y[i+3] += alpha * x[i+3]
		y[i+4] += alpha * x[i+4]
		y[i+5] += alpha * x[i+5]
		y[i+6] += alpha * x[i+6]
		y[i+7] += alpha * x[i+7]
	}
	for ; i < len(x); i++ {
		y[i] += alpha * x[i]
	}
}

func scaleUnrolled(alpha float32, x []float32) {
	i := 0
	for ; i+8 <= len(x); i += 8 {
		x[i] *= alpha
		x[i+1] *= alpha
		x[i+2] *= alpha
		x[i+3] *= alpha
		x[i+4] *= alpha
		x[i+5] *= alpha
		x[i+6] *= alpha
		x[i+7] *= alpha
	}
	for ; i < len(x); i++ {
		x[i] *= alpha
	}
}
