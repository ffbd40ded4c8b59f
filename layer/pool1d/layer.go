// Package pool1d implements average and max pooling along the time axis
package pool1d

import "fmt"
import "math/rand"

import "github.com/neurlang/tcnae/layer"

// Pooler names a pooling reduction.
type Pooler string

const (
	Average Pooler = "average"
	Max     Pooler = "max"
)

// ParsePooler validates a pooler name.
func ParsePooler(s string) (Pooler, error) {
	switch Pooler(s) {
	case Average, Max:
		return Pooler(s), nil
	}
	return "", fmt.Errorf("pool1d: unknown pooler %q (want average or max)", s)
}

// Pool1DLayer is the configuration of a pooling layer with pool size equal
// to its stride and no padding.
type Pool1DLayer struct {
	size   int
	pooler Pooler
}

// MustNew creates a new pooling layer with size and pooler
func MustNew(size int, pooler Pooler) *Pool1DLayer {
	o, err := New(size, pooler)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new pooling layer with size and pooler
func New(size int, pooler Pooler) (o *Pool1DLayer, err error) {
	if size < 1 {
		return nil, fmt.Errorf("New Pool1D: Size %d is lower than 1", size)
	}
	if _, err := ParsePooler(string(pooler)); err != nil {
		return nil, err
	}
	o = new(Pool1DLayer)
	o.size = size
	o.pooler = pooler
	return
}

// Lay turns pooling layer into a node
func (i *Pool1DLayer) Lay(in layer.Shape, _ *rand.Rand) (layer.Node, error) {
	steps := in.Steps / i.size
	if steps < 1 {
		return nil, fmt.Errorf("Lay Pool1D: %d steps shorter than pool size %d", in.Steps, i.size)
	}
	o := new(Pool1D)
	o.size = i.size
	o.pooler = i.pooler
	o.in = in
	o.out = layer.Shape{Steps: steps, Channels: in.Channels}
	return o, nil
}
