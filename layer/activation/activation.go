// Package activation implements elementwise activation functions and the
// activation layer.
package activation

import "math"
import "sort"

import "github.com/pkg/errors"

// Func is an activation with its derivative expressed through the input x
// and the output y = F(x).
type Func struct {
	Name  string
	F     func(x float32) float32
	Deriv func(x, y float32) float32
}

var registry = map[string]Func{
	"linear": {
		Name:  "linear",
		F:     func(x float32) float32 { return x },
		Deriv: func(x, y float32) float32 { return 1 },
	},
	"relu": {
		Name: "relu",
		F: func(x float32) float32 {
			if x > 0 {
				return x
			}
			return 0
		},
		Deriv: func(x, y float32) float32 {
			if x > 0 {
				return 1
			}
			return 0
		},
	},
	"tanh": {
		Name:  "tanh",
		F:     func(x float32) float32 { return float32(math.Tanh(float64(x))) },
		Deriv: func(x, y float32) float32 { return 1 - y*y },
	},
	"sigmoid": {
		Name:  "sigmoid",
		F:     func(x float32) float32 { return float32(1 / (1 + math.Exp(-float64(x)))) },
		Deriv: func(x, y float32) float32 { return y * (1 - y) },
	},
	"elu": {
		Name: "elu",
		F: func(x float32) float32 {
			if x > 0 {
				return x
			}
			return float32(math.Expm1(float64(x)))
		},
		Deriv: func(x, y float32) float32 {
			if x > 0 {
				return 1
			}
			return y + 1
		},
	},
	"softplus": {
		Name: "softplus",
		F: func(x float32) float32 {
			if x > 20 {
				return x
			}
			return float32(math.Log1p(math.Exp(float64(x))))
		},
		Deriv: func(x, y float32) float32 { return float32(1 / (1 + math.Exp(-float64(x)))) },
	},
}

// Get looks up an activation by name. The empty name means linear.
func Get(name string) (Func, error) {
	if name == "" {
		name = "linear"
	}
	if f, ok := registry[name]; ok {
		return f, nil
	}
	return Func{}, errors.Errorf("activation: unknown activation %q (have %v)", name, Names())
}

// Names lists the registered activation names.
func Names() []string {
	var o = make([]string, 0, len(registry))
	for k := range registry {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Linear reports whether f is the identity.
func (f Func) Linear() bool {
	return f.Name == "linear"
}
