// Package initializers implements the named weight initializers used by the
// convolution and dense layers.
package initializers

import "math"
import "math/rand"
import "sort"

import "github.com/pkg/errors"

// Initializer fills ws for a parameter with the given fan in and fan out.
type Initializer func(ws []float32, fanIn, fanOut int, rng *rand.Rand)

var registry = map[string]Initializer{
	"glorot_normal":  GlorotNormal,
	"glorot_uniform": GlorotUniform,
	"he_normal":      HeNormal,
	"he_uniform":     HeUniform,
	"lecun_normal":   LecunNormal,
	"zeros":          Zeros,
	"ones":           Ones,
}

// Get looks up an initializer by name.
func Get(name string) (Initializer, error) {
	if f, ok := registry[name]; ok {
		return f, nil
	}
	return nil, errors.Errorf("initializers: unknown initializer %q (have %v)", name, Names())
}

// Names lists the registered initializer names.
func Names() []string {
	var o = make([]string, 0, len(registry))
	for k := range registry {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// truncated normal distributions are rescaled by this constant so the
// variance matches the untruncated target
const truncStddevCorrection = 0.87962566103423978

func truncNormal(ws []float32, stddev float64, rng *rand.Rand) {
	for i := range ws {
		v := rng.NormFloat64()
		for v < -2 || v > 2 {
			v = rng.NormFloat64()
		}
		ws[i] = float32(v * stddev)
	}
}

func uniform(ws []float32, limit float64, rng *rand.Rand) {
	for i := range ws {
		ws[i] = float32((2*rng.Float64() - 1) * limit)
	}
}

// GlorotNormal draws from a truncated normal with variance 2/(fanIn+fanOut).
func GlorotNormal(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	truncNormal(ws, math.Sqrt(2/float64(fanIn+fanOut))/truncStddevCorrection, rng)
}

// GlorotUniform draws from U(-l, l) with l = sqrt(6/(fanIn+fanOut)).
func GlorotUniform(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	uniform(ws, math.Sqrt(6/float64(fanIn+fanOut)), rng)
}

// HeNormal draws from a truncated normal with variance 2/fanIn.
func HeNormal(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	truncNormal(ws, math.Sqrt(2/float64(fanIn))/truncStddevCorrection, rng)
}

// HeUniform draws from U(-l, l) with l = sqrt(6/fanIn).
func HeUniform(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	uniform(ws, math.Sqrt(6/float64(fanIn)), rng)
}

// LecunNormal draws from a truncated normal with variance 1/fanIn.
func LecunNormal(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	truncNormal(ws, math.Sqrt(1/float64(fanIn))/truncStddevCorrection, rng)
}

// Zeros sets every weight to 0.
func Zeros(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	for i := range ws {
		ws[i] = 0
	}
}

// Ones sets every weight to 1.
func Ones(ws []float32, fanIn, fanOut int, rng *rand.Rand) {
	for i := range ws {
		ws[i] = 1
	}
}
