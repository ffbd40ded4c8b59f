// Package dropout implements spatial dropout, which drops whole channels
// of a series during training
package dropout

import "fmt"
import "math/rand"
import "sync/atomic"

import "github.com/neurlang/tcnae/hash"
import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

// DropoutLayer is the spatial dropout configuration.
type DropoutLayer struct {
	rate float32
}

// Dropout is the instantiated spatial dropout node. Masks are derived from
// a per node seed and a counter advanced on every training pass.
type Dropout struct {
	rate  float32
	shape layer.Shape
	seed  uint32
	salt  atomic.Uint32
	mask  []float32
}

// MustNew creates a new spatial dropout layer with the drop rate
func MustNew(rate float32) *DropoutLayer {
	o, err := New(rate)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new spatial dropout layer with the drop rate
func New(rate float32) (o *DropoutLayer, err error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("New Dropout: Rate %f is outside [0, 1)", rate)
	}
	return &DropoutLayer{rate: rate}, nil
}

// Lay turns dropout layer into a node
func (i *DropoutLayer) Lay(in layer.Shape, rng *rand.Rand) (layer.Node, error) {
	return i.Node(in, rng), nil
}

// Node creates the node directly, for composite layers.
func (i *DropoutLayer) Node(in layer.Shape, rng *rand.Rand) *Dropout {
	o := &Dropout{rate: i.rate, shape: in}
	if rng != nil {
		o.seed = rng.Uint32()
	}
	return o
}

func (d *Dropout) Name() string           { return "spatial_dropout1d" }
func (d *Dropout) Out() layer.Shape       { return d.shape }
func (d *Dropout) Params() []*layer.Param { return nil }

// Forward is the identity outside training.
func (d *Dropout) Forward(x *series.Batch, train bool) *series.Batch {
	if !train || d.rate == 0 {
		if train {
			d.mask = nil
		}
		return x
	}
	salt := d.seed ^ d.salt.Add(0x9E3779B9)
	scale := 1 / (1 - d.rate)
	mask := make([]float32, x.Len*x.Channels)
	for n := 0; n < x.Len; n++ {
		for c := 0; c < x.Channels; c++ {
			if hash.Keep(uint32(n*x.Channels+c), salt, d.rate) {
				mask[n*x.Channels+c] = scale
			}
		}
	}
	d.mask = mask
	return d.apply(x, mask)
}

func (d *Dropout) apply(x *series.Batch, mask []float32) *series.Batch {
	y := series.Like(x)
	for n := 0; n < x.Len; n++ {
		m := mask[n*x.Channels : (n+1)*x.Channels]
		for t := 0; t < x.Steps; t++ {
			src, dst := x.Row(n, t), y.Row(n, t)
			for c, v := range src {
				dst[c] = v * m[c]
			}
		}
	}
	return y
}

// Backward masks the gradient the same way as the last training pass.
func (d *Dropout) Backward(dy *series.Batch) *series.Batch {
	if d.mask == nil {
		return dy
	}
	return d.apply(dy, d.mask)
}
