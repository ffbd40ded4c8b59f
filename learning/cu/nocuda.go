//go:build !cuda

// Package cu probes CUDA devices so training can report the accelerators
// present on the machine.
package cu

// Available reports whether the binary was built with CUDA support.
const Available = false

// Devices returns no devices in builds without the cuda tag.
func Devices() ([]Device, error) {
	return nil, nil
}
