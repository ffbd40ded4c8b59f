package dense

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/learning/avx"
import "github.com/neurlang/tcnae/parallel"
import "github.com/neurlang/tcnae/series"

// Dense is the instantiated per-timestep fully connected node. The kernel
// is stored as (units, input channels).
type Dense struct {
	in, out layer.Shape
	w, b    *layer.Param
	x       *series.Batch

	layer.Limit
}

func (d *Dense) Name() string           { return "time_distributed_dense" }
func (d *Dense) Out() layer.Shape       { return d.out }
func (d *Dense) Params() []*layer.Param { return []*layer.Param{d.w, d.b} }

func (d *Dense) unit(o int) []float32 {
	cin := d.in.Channels
	return d.w.Value[o*cin : (o+1)*cin]
}

// Forward projects the channels of every timestep.
func (d *Dense) Forward(x *series.Batch, train bool) *series.Batch {
	y := series.New(x.Len, x.Steps, d.out.Channels)
	parallel.ForEach(x.Len, d.Threads(), func(n int) {
		for t := 0; t < x.Steps; t++ {
			in := x.Row(n, t)
			row := y.Row(n, t)
			for o := range row {
				row[o] = d.b.Value[o] + avx.Dot(d.unit(o), in)
			}
		}
	})
	if train {
		d.x = x
	}
	return y
}

// Backward accumulates kernel and bias gradients and returns the input gradient.
func (d *Dense) Backward(dy *series.Batch) *series.Batch {
	x := d.x
	dx := series.Like(x)
	cin := d.in.Channels
	parallel.ForEach(x.Len, d.Threads(), func(n int) {
		for t := 0; t < x.Steps; t++ {
			row := dx.Row(n, t)
			for o, g := range dy.Row(n, t) {
				avx.Axpy(g, d.unit(o), row)
			}
		}
	})
	parallel.ForEach(d.out.Channels, d.Threads(), func(o int) {
		grad := d.w.Grad[o*cin : (o+1)*cin]
		var db float32
		for n := 0; n < x.Len; n++ {
			for t := 0; t < x.Steps; t++ {
				g := dy.At(n, t, o)
				db += g
				avx.Axpy(g, x.Row(n, t), grad)
			}
		}
		d.b.Grad[o] += db
	})
	return dx
}
