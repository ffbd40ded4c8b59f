package series

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

// FromDense converts a rank-3 float32 dense tensor (batch, timesteps, channels)
// into a Batch. The values are copied.
func FromDense(t *tensor.Dense) (*Batch, error) {
	if t == nil {
		return nil, errors.New("series: nil tensor")
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, errors.Errorf("series: expected rank 3 (batch, timesteps, channels), got shape %v", shape)
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("series: expected float32 tensor, got %v", t.Dtype())
	}
	if shape.TotalSize() == 0 {
		return New(shape[0], shape[1], shape[2]), nil
	}
	if t.IsMaterializable() {
		t = t.Materialize().(*tensor.Dense)
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("series: unexpected backing %T", t.Data())
	}
	o := New(shape[0], shape[1], shape[2])
	copy(o.Data, data)
	return o, nil
}

// Dense converts the batch into a rank-3 dense tensor. The values are copied.
func (b *Batch) Dense() *tensor.Dense {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return tensor.New(tensor.WithShape(b.Len, b.Steps, b.Channels), tensor.WithBacking(data))
}

// Matrix wraps a (rows, cols) slice of float32 into a rank-2 dense tensor.
func Matrix(rows, cols int, data []float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}
