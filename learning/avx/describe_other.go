//go:build noasm || !(amd64 || arm64)

package avx

import "strconv"

// Describe reports the kernel flavour in use.
func Describe() string {
	return "generic cpu (" + strconv.Itoa(parallelism) + " threads, scalar kernels)"
}
