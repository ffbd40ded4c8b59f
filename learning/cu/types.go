package cu

import "fmt"

// Device describes one CUDA device.
type Device struct {
	Ordinal     int
	Name        string
	MemoryBytes uint64
}

func (d Device) String() string {
	return fmt.Sprintf("cuda:%d %s (%d MiB)", d.Ordinal, d.Name, d.MemoryBytes>>20)
}

// Describe summarizes the CUDA devices, or reports why there are none.
func Describe() string {
	if !Available {
		return "cuda: not compiled in (build with -tags cuda)"
	}
	devs, err := Devices()
	if err != nil {
		return err.Error()
	}
	if len(devs) == 0 {
		return "cuda: no devices"
	}
	var s string
	for i, d := range devs {
		if i > 0 {
			s += ", "
		}
		s += d.String()
	}
	return s
}
