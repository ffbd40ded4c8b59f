package datasets

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/tcnae/series"

// Windows cuts s into windows of window timesteps starting every stride
// steps and returns them as a (windows, window, channels) tensor. A tail
// shorter than a window is dropped.
func Windows(s Series, window, stride int) (*tensor.Dense, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if window < 1 || stride < 1 {
		return nil, errors.Errorf("datasets: window %d and stride %d must be positive", window, stride)
	}
	if len(s) < window {
		return nil, errors.Errorf("datasets: series of %d steps shorter than window %d", len(s), window)
	}
	n := (len(s)-window)/stride + 1
	b := series.New(n, window, s.Channels())
	for i := 0; i < n; i++ {
		for t := 0; t < window; t++ {
			copy(b.Row(i, t), s[i*stride+t])
		}
	}
	return b.Dense(), nil
}

// Unwindow maps per window scores of shape (windows, window), as returned
// by the model's Predict, back onto a series of length steps by averaging
// the windows overlapping each timestep. Steps covered by no window score 0.
func Unwindow(scores *tensor.Dense, stride, steps int) ([]float32, error) {
	shape := scores.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("datasets: expected (windows, window) scores, got shape %v", shape)
	}
	if stride < 1 {
		return nil, errors.Errorf("datasets: stride %d must be positive", stride)
	}
	if scores.IsMaterializable() {
		scores = scores.Materialize().(*tensor.Dense)
	}
	data, ok := scores.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("datasets: expected float32 scores, got %v", scores.Dtype())
	}
	n, window := shape[0], shape[1]
	sum := make([]float32, steps)
	count := make([]int, steps)
	for i := 0; i < n; i++ {
		for t := 0; t < window; t++ {
			at := i*stride + t
			if at >= steps {
				break
			}
			sum[at] += data[i*window+t]
			count[at]++
		}
	}
	for t := range sum {
		if count[t] > 0 {
			sum[t] /= float32(count[t])
		}
	}
	return sum, nil
}
