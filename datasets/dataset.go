// Package datasets prepares time series for the autoencoder: sliding
// windows, train and validation splits, standardization and synthetic
// signals with injected anomalies.
package datasets

import "math"
import "math/rand"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/tcnae/series"

// Series is a multichannel time series indexed [timestep][channel].
type Series [][]float32

// Channels is the channel count of the first timestep.
func (s Series) Channels() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func (s Series) check() error {
	if len(s) == 0 {
		return errors.New("datasets: empty series")
	}
	ch := s.Channels()
	if ch == 0 {
		return errors.New("datasets: series without channels")
	}
	for t, row := range s {
		if len(row) != ch {
			return errors.Errorf("datasets: timestep %d has %d channels, want %d", t, len(row), ch)
		}
	}
	return nil
}

// Standardize scales every channel to zero mean and unit variance in place
// and returns the means and standard deviations used. Constant channels
// are only centered.
func Standardize(s Series) (mean, std []float64, err error) {
	if err := s.check(); err != nil {
		return nil, nil, err
	}
	ch := s.Channels()
	mean = make([]float64, ch)
	std = make([]float64, ch)
	for _, row := range s {
		for c, v := range row {
			mean[c] += float64(v)
		}
	}
	for c := range mean {
		mean[c] /= float64(len(s))
	}
	for _, row := range s {
		for c, v := range row {
			d := float64(v) - mean[c]
			std[c] += d * d
		}
	}
	for c := range std {
		std[c] = math.Sqrt(std[c] / float64(len(s)))
	}
	for _, row := range s {
		for c, v := range row {
			d := float64(v) - mean[c]
			if std[c] > 0 {
				d /= std[c]
			}
			row[c] = float32(d)
		}
	}
	return mean, std, nil
}

// Split divides a (batch, timesteps, channels) tensor into a training part
// holding fraction of the series and a validation part with the rest. With
// rng set the series are assigned in random order, otherwise in order.
func Split(x *tensor.Dense, fraction float64, rng *rand.Rand) (train, valid *tensor.Dense, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.Errorf("datasets: split fraction %f outside (0, 1)", fraction)
	}
	b, err := series.FromDense(x)
	if err != nil {
		return nil, nil, err
	}
	cut := int(math.Round(fraction * float64(b.Len)))
	if cut < 1 || cut >= b.Len {
		return nil, nil, errors.Errorf("datasets: cannot split %d series by %f", b.Len, fraction)
	}
	order := make([]int, b.Len)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return b.Select(order[:cut]).Dense(), b.Select(order[cut:]).Dense(), nil
}
