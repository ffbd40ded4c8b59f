package datasets

import "math"
import "math/rand"

import "github.com/pkg/errors"

// Sine generates n steps of a single channel sine wave with the given
// period plus gaussian noise of standard deviation noise.
func Sine(n, period int, noise float64, seed int64) Series {
	rng := rand.New(rand.NewSource(seed))
	s := make(Series, n)
	for t := range s {
		v := math.Sin(2 * math.Pi * float64(t) / float64(period))
		if noise > 0 {
			v += rng.NormFloat64() * noise
		}
		s[t] = []float32{float32(v)}
	}
	return s
}

// InjectAnomaly adds offset to every channel of steps [from, to) in place.
func InjectAnomaly(s Series, from, to int, offset float32) error {
	if from < 0 || to > len(s) || from >= to {
		return errors.Errorf("datasets: anomaly range [%d, %d) outside series of %d steps", from, to, len(s))
	}
	for t := from; t < to; t++ {
		for c := range s[t] {
			s[t][c] += offset
		}
	}
	return nil
}
