//go:build !noasm && (amd64 || arm64)

package avx

import "strconv"

import "github.com/klauspost/cpuid/v2"

func init() {
	if cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3) || cpuid.CPU.Supports(cpuid.ASIMD) {
		Dot = dotUnrolled
		Axpy = axpyUnrolled
		Scale = scaleUnrolled
		vectorized = true
	}
	if cpuid.CPU.PhysicalCores > 0 {
		parallelism = cpuid.CPU.PhysicalCores
	}
}

// Describe reports the CPU brand, core counts and the kernel flavour in use.
func Describe() string {
	kind := "scalar"
	if vectorized {
		kind = "unrolled"
	}
	return cpuid.CPU.BrandName + " (" + strconv.Itoa(cpuid.CPU.PhysicalCores) + " cores, " +
		strconv.Itoa(cpuid.CPU.LogicalCores) + " threads, " + kind + " kernels)"
}
