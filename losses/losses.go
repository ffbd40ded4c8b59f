// Package losses implements the reconstruction losses a model can be
// compiled with. Every loss is the mean of an elementwise term over all
// values of the batch.
package losses

import "math"
import "sort"

import "github.com/pkg/errors"

// Loss is an elementwise reconstruction loss.
type Loss interface {

	// Name is the registry name of the loss.
	Name() string

	// Cost is the mean loss of outs against targets.
	Cost(outs, targets []float32) float64

	// Derivs writes the derivative of Cost with respect to every output into ds.
	Derivs(outs, targets, ds []float32)
}

// term is an elementwise loss with its derivative in the error e = out - target.
type term struct {
	name string
	f    func(out, target float64) float64
	d    func(out, target float64) float64
}

func (l *term) Name() string { return l.name }

func (l *term) Cost(outs, targets []float32) float64 {
	if len(outs) == 0 {
		return 0
	}
	var sum float64
	for i := range outs {
		sum += l.f(float64(outs[i]), float64(targets[i]))
	}
	return sum / float64(len(outs))
}

func (l *term) Derivs(outs, targets, ds []float32) {
	inv := 1 / float64(len(outs))
	for i := range outs {
		ds[i] = float32(l.d(float64(outs[i]), float64(targets[i])) * inv)
	}
}

const huberDelta = 1.0

const epsilon = 1e-7

var registry = map[string]Loss{
	"mean_squared_error": &term{
		name: "mean_squared_error",
		f:    func(o, t float64) float64 { return (o - t) * (o - t) },
		d:    func(o, t float64) float64 { return 2 * (o - t) },
	},
	"mean_absolute_error": &term{
		name: "mean_absolute_error",
		f:    func(o, t float64) float64 { return math.Abs(o - t) },
		d: func(o, t float64) float64 {
			if o == t {
				return 0
			}
			return math.Copysign(1, o-t)
		},
	},
	"huber": &term{
		name: "huber",
		f: func(o, t float64) float64 {
			e := math.Abs(o - t)
			if e <= huberDelta {
				return 0.5 * e * e
			}
			return huberDelta*e - 0.5*huberDelta*huberDelta
		},
		d: func(o, t float64) float64 {
			e := o - t
			if math.Abs(e) <= huberDelta {
				return e
			}
			return math.Copysign(huberDelta, e)
		},
	},
	"log_cosh": &term{
		name: "log_cosh",
		f: func(o, t float64) float64 {
			// log(cosh(e)) without overflowing cosh
			e := math.Abs(o - t)
			return e + math.Log1p(math.Exp(-2*e)) - math.Ln2
		},
		d: func(o, t float64) float64 { return math.Tanh(o - t) },
	},
	"mean_squared_logarithmic_error": &term{
		name: "mean_squared_logarithmic_error",
		f: func(o, t float64) float64 {
			e := math.Log1p(math.Max(o, epsilon)) - math.Log1p(math.Max(t, epsilon))
			return e * e
		},
		d: func(o, t float64) float64 {
			if o < epsilon {
				return 0
			}
			e := math.Log1p(o) - math.Log1p(math.Max(t, epsilon))
			return 2 * e / (1 + o)
		},
	},
}

var aliases = map[string]string{
	"mse":     "mean_squared_error",
	"mae":     "mean_absolute_error",
	"msle":    "mean_squared_logarithmic_error",
	"logcosh": "log_cosh",
}

// Get looks up a loss by name or common abbreviation.
func Get(name string) (Loss, error) {
	if full, ok := aliases[name]; ok {
		name = full
	}
	if l, ok := registry[name]; ok {
		return l, nil
	}
	return nil, errors.Errorf("losses: unknown loss %q", name)
}

// Names lists the registered losses.
func Names() (o []string) {
	for name := range registry {
		o = append(o, name)
	}
	sort.Strings(o)
	return
}
