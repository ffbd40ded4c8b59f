// Package dense implements a fully connected layer applied to every timestep
package dense

import "fmt"
import "math/rand"

import "github.com/neurlang/tcnae/initializers"
import "github.com/neurlang/tcnae/layer"

// DenseLayer is the configuration of a per-timestep fully connected layer.
type DenseLayer struct {
	units int
	init  initializers.Initializer
}

// MustNew creates a new dense layer with units outputs and a kernel initializer
func MustNew(units int, init string) *DenseLayer {
	o, err := New(units, init)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new dense layer with units outputs and a kernel initializer
func New(units int, init string) (o *DenseLayer, err error) {
	if units < 1 {
		return nil, fmt.Errorf("New Dense: Units %d is lower than 1", units)
	}
	f, err := initializers.Get(init)
	if err != nil {
		return nil, err
	}
	o = new(DenseLayer)
	o.units = units
	o.init = f
	return
}

// Lay turns dense layer into a node
func (i *DenseLayer) Lay(in layer.Shape, rng *rand.Rand) (layer.Node, error) {
	if in.Channels < 1 {
		return nil, fmt.Errorf("Lay Dense: no input channels")
	}
	o := new(Dense)
	o.in = in
	o.out = layer.Shape{Steps: in.Steps, Channels: i.units}
	o.w = layer.NewParam("dense/kernel", i.units, in.Channels)
	o.b = layer.NewParam("dense/bias", i.units)
	i.init(o.w.Value, in.Channels, i.units, rng)
	return o, nil
}
