// Package series implements the (batch, timesteps, channels) float32 block
// passed between the layers of a network.
package series

import "github.com/pkg/errors"

// Batch is a row-major block of Len series with Steps timesteps and
// Channels values per timestep. Channels vary fastest.
type Batch struct {
	Len      int
	Steps    int
	Channels int
	Data     []float32
}

// New allocates a zeroed batch.
func New(n, steps, channels int) *Batch {
	return &Batch{
		Len:      n,
		Steps:    steps,
		Channels: channels,
		Data:     make([]float32, n*steps*channels),
	}
}

// FromSlice wraps data as a batch without copying.
func FromSlice(n, steps, channels int, data []float32) (*Batch, error) {
	if n < 0 || steps < 0 || channels < 0 {
		return nil, errors.Errorf("series: negative dimension (%d, %d, %d)", n, steps, channels)
	}
	if len(data) != n*steps*channels {
		return nil, errors.Errorf("series: %d values do not fill shape (%d, %d, %d)", len(data), n, steps, channels)
	}
	return &Batch{Len: n, Steps: steps, Channels: channels, Data: data}, nil
}

// Like allocates a zeroed batch of the same shape as b.
func Like(b *Batch) *Batch {
	return New(b.Len, b.Steps, b.Channels)
}

// Size is the number of values in one series.
func (b *Batch) Size() int {
	return b.Steps * b.Channels
}

// Sample returns series n as a subslice of Data.
func (b *Batch) Sample(n int) []float32 {
	size := b.Size()
	return b.Data[n*size : (n+1)*size]
}

// Row returns the channel vector of series n at timestep t.
func (b *Batch) Row(n, t int) []float32 {
	off := (n*b.Steps + t) * b.Channels
	return b.Data[off : off+b.Channels]
}

// At returns the value of series n at timestep t, channel c.
func (b *Batch) At(n, t, c int) float32 {
	return b.Data[(n*b.Steps+t)*b.Channels+c]
}

// Set sets the value of series n at timestep t, channel c.
func (b *Batch) Set(n, t, c int, v float32) {
	b.Data[(n*b.Steps+t)*b.Channels+c] = v
}

// Clone returns a deep copy.
func (b *Batch) Clone() *Batch {
	o := Like(b)
	copy(o.Data, b.Data)
	return o
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b *Batch) bool {
	return a.Len == b.Len && a.Steps == b.Steps && a.Channels == b.Channels
}

// Select gathers the series at the given indexes into a new batch.
func (b *Batch) Select(idx []int) *Batch {
	o := New(len(idx), b.Steps, b.Channels)
	size := b.Size()
	for i, n := range idx {
		copy(o.Data[i*size:(i+1)*size], b.Sample(n))
	}
	return o
}

// Slice returns series [from, to) sharing the backing data.
func (b *Batch) Slice(from, to int) *Batch {
	size := b.Size()
	return &Batch{Len: to - from, Steps: b.Steps, Channels: b.Channels, Data: b.Data[from*size : to*size]}
}

// PadSteps returns a copy of b with trailing zero timesteps up to steps.
// If b already has at least steps timesteps, the first steps are kept.
func (b *Batch) PadSteps(steps int) *Batch {
	o := New(b.Len, steps, b.Channels)
	keep := b.Steps
	if keep > steps {
		keep = steps
	}
	for n := 0; n < b.Len; n++ {
		copy(o.Data[n*o.Size():n*o.Size()+keep*b.Channels], b.Data[n*b.Size():n*b.Size()+keep*b.Channels])
	}
	return o
}

// Add accumulates src into b elementwise.
func (b *Batch) Add(src *Batch) {
	for i, v := range src.Data {
		b.Data[i] += v
	}
}

// Zero clears all values.
func (b *Batch) Zero() {
	for i := range b.Data {
		b.Data[i] = 0
	}
}
