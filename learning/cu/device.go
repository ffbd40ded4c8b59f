//go:build cuda

// Package cu probes CUDA devices so training can report the accelerators
// present on the machine.
package cu

import "fmt"

import "gorgonia.org/cu"

// Available reports whether the binary was built with CUDA support.
const Available = true

// Devices lists the CUDA devices with their name and total memory.
func Devices() ([]Device, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, fmt.Errorf("cuda: %w", err)
	}
	var o = make([]Device, 0, n)
	for i := 0; i < n; i++ {
		dev := cu.Device(i)
		name, err := dev.Name()
		if err != nil {
			return nil, fmt.Errorf("cuda device %d name: %w", i, err)
		}
		memory, err := dev.TotalMem()
		if err != nil {
			return nil, fmt.Errorf("cuda device %d memory: %w", i, err)
		}
		o = append(o, Device{Ordinal: i, Name: name, MemoryBytes: uint64(memory)})
	}
	return o, nil
}
