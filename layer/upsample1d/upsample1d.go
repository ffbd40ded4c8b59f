// Package upsample1d repeats every timestep a fixed number of times
package upsample1d

import "fmt"
import "math/rand"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

// UpSample1DLayer is the upsampling configuration.
type UpSample1DLayer struct {
	size int
}

// UpSample1D is the instantiated upsampling node.
type UpSample1D struct {
	size    int
	in, out layer.Shape
}

// MustNew creates a new upsampling layer with repeat factor size
func MustNew(size int) *UpSample1DLayer {
	o, err := New(size)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new upsampling layer with repeat factor size
func New(size int) (o *UpSample1DLayer, err error) {
	if size < 1 {
		return nil, fmt.Errorf("New UpSample1D: Size %d is lower than 1", size)
	}
	return &UpSample1DLayer{size: size}, nil
}

// Lay turns upsampling layer into a node
func (i *UpSample1DLayer) Lay(in layer.Shape, _ *rand.Rand) (layer.Node, error) {
	return &UpSample1D{
		size: i.size,
		in:   in,
		out:  layer.Shape{Steps: in.Steps * i.size, Channels: in.Channels},
	}, nil
}

func (u *UpSample1D) Name() string           { return "up_sampling1d" }
func (u *UpSample1D) Out() layer.Shape       { return u.out }
func (u *UpSample1D) Params() []*layer.Param { return nil }

// Forward repeats each input step size times.
func (u *UpSample1D) Forward(x *series.Batch, _ bool) *series.Batch {
	y := series.New(x.Len, u.out.Steps, u.out.Channels)
	for n := 0; n < x.Len; n++ {
		for t := 0; t < u.out.Steps; t++ {
			copy(y.Row(n, t), x.Row(n, t/u.size))
		}
	}
	return y
}

// Backward sums the gradients of the copies.
func (u *UpSample1D) Backward(dy *series.Batch) *series.Batch {
	dx := series.New(dy.Len, u.in.Steps, u.in.Channels)
	for n := 0; n < dy.Len; n++ {
		for t := 0; t < u.out.Steps; t++ {
			row := dx.Row(n, t/u.size)
			for c, v := range dy.Row(n, t) {
				row[c] += v
			}
		}
	}
	return dx
}
