package tcnae

import (
	"gorgonia.org/tensor"

	"github.com/neurlang/tcnae/parallel"
	"github.com/neurlang/tcnae/series"
)

// inference chunk size in series
const chunk = 64

// reconstruct runs the network in inference mode and pads the output with
// zero timesteps to the input length.
func (m *TCNAE) reconstruct(x *series.Batch) *series.Batch {
	out := series.New(x.Len, x.Steps, m.net.Out().Channels)
	chunks := (x.Len + chunk - 1) / chunk
	parallel.ForEach(chunks, m.net.Threads(), func(i int) {
		from, to := i*chunk, (i+1)*chunk
		if to > x.Len {
			to = x.Len
		}
		y := m.net.Forward(x.Slice(from, to), false).PadSteps(x.Steps)
		copy(out.Data[from*out.Size():to*out.Size()], y.Data)
	})
	return out
}

// Reconstruct returns the reconstruction of x, zero padded to the input length.
func (m *TCNAE) Reconstruct(x *tensor.Dense) (*tensor.Dense, error) {
	m.mut.RLock()
	defer m.mut.RUnlock()
	b, err := m.nonEmpty(x)
	if err != nil {
		return nil, err
	}
	return m.reconstruct(b).Dense(), nil
}

// Predict returns the reconstruction error of x: the squared difference
// between x and its padded reconstruction averaged over the channels, a
// (batch, timesteps) matrix.
func (m *TCNAE) Predict(x *tensor.Dense) (*tensor.Dense, error) {
	m.mut.RLock()
	defer m.mut.RUnlock()
	b, err := m.nonEmpty(x)
	if err != nil {
		return nil, err
	}
	rec := m.reconstruct(b)
	mse := make([]float32, b.Len*b.Steps)
	inv := 1 / float32(b.Channels)
	for n := 0; n < b.Len; n++ {
		for t := 0; t < b.Steps; t++ {
			var sum float32
			r := rec.Row(n, t)
			for c, v := range b.Row(n, t) {
				d := r[c] - v
				sum += d * d
			}
			mse[n*b.Steps+t] = sum * inv
		}
	}
	return series.Matrix(b.Len, b.Steps, mse), nil
}

// PredictValidation is Predict, named for use on validation data.
func (m *TCNAE) PredictValidation(x *tensor.Dense) (*tensor.Dense, error) {
	return m.Predict(x)
}
