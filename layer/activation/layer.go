package activation

import "math/rand"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

// ActivationLayer applies a named activation elementwise.
type ActivationLayer struct {
	fn Func
}

// Activation is the instantiated activation layer.
type Activation struct {
	fn    Func
	shape layer.Shape
	x, y  *series.Batch
}

// MustNew creates a new activation layer by name
func MustNew(name string) *ActivationLayer {
	o, err := New(name)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new activation layer by name
func New(name string) (o *ActivationLayer, err error) {
	fn, err := Get(name)
	if err != nil {
		return nil, err
	}
	return &ActivationLayer{fn: fn}, nil
}

// Lay turns the activation layer into a node
func (i *ActivationLayer) Lay(in layer.Shape, _ *rand.Rand) (layer.Node, error) {
	return &Activation{fn: i.fn, shape: in}, nil
}

// Node creates the node directly, for composite layers.
func (i *ActivationLayer) Node(in layer.Shape) *Activation {
	return &Activation{fn: i.fn, shape: in}
}

func (a *Activation) Name() string          { return "activation_" + a.fn.Name }
func (a *Activation) Out() layer.Shape      { return a.shape }
func (a *Activation) Params() []*layer.Param { return nil }

// Forward applies the activation.
func (a *Activation) Forward(x *series.Batch, train bool) *series.Batch {
	if a.fn.Linear() {
		if train {
			a.x, a.y = x, x
		}
		return x
	}
	y := series.Like(x)
	for i, v := range x.Data {
		y.Data[i] = a.fn.F(v)
	}
	if train {
		a.x, a.y = x, y
	}
	return y
}

// Backward multiplies dy by the activation derivative.
func (a *Activation) Backward(dy *series.Batch) *series.Batch {
	if a.fn.Linear() {
		return dy
	}
	dx := series.Like(dy)
	for i, g := range dy.Data {
		dx.Data[i] = g * a.fn.Deriv(a.x.Data[i], a.y.Data[i])
	}
	return dx
}
