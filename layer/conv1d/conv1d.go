package conv1d

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/learning/avx"
import "github.com/neurlang/tcnae/parallel"
import "github.com/neurlang/tcnae/series"

// Conv1D is the instantiated dilated convolution. The kernel is stored as
// (filters, kernel, input channels) so the innermost loop runs over the
// channels of one input timestep.
type Conv1D struct {
	name             string
	in, out          layer.Shape
	kernel, dilation int
	left             int

	w, b *layer.Param

	x *series.Batch

	layer.Limit
}

func (c *Conv1D) Name() string           { return c.name }
func (c *Conv1D) Out() layer.Shape       { return c.out }
func (c *Conv1D) Params() []*layer.Param { return []*layer.Param{c.w, c.b} }

// Kernel exposes the kernel parameter.
func (c *Conv1D) Kernel() *layer.Param { return c.w }

// Bias exposes the bias parameter.
func (c *Conv1D) Bias() *layer.Param { return c.b }

// source returns the input timestep feeding output step t through tap k,
// or -1 when it falls into the zero padding.
func (c *Conv1D) source(t, k int) int {
	s := t - c.left + k*c.dilation
	if s < 0 || s >= c.in.Steps {
		return -1
	}
	return s
}

func (c *Conv1D) taps(o, k int) []float32 {
	cin := c.in.Channels
	off := (o*c.kernel + k) * cin
	return c.w.Value[off : off+cin]
}

// Forward computes the convolution.
func (c *Conv1D) Forward(x *series.Batch, train bool) *series.Batch {
	y := series.New(x.Len, c.out.Steps, c.out.Channels)
	parallel.ForEach(x.Len, c.Threads(), func(n int) {
		for t := 0; t < c.out.Steps; t++ {
			row := y.Row(n, t)
			for o := range row {
				s := c.b.Value[o]
				for k := 0; k < c.kernel; k++ {
					if src := c.source(t, k); src >= 0 {
						s += avx.Dot(c.taps(o, k), x.Row(n, src))
					}
				}
				row[o] = s
			}
		}
	})
	if train {
		c.x = x
	}
	return y
}

// Backward accumulates kernel and bias gradients and returns the input gradient.
func (c *Conv1D) Backward(dy *series.Batch) *series.Batch {
	x := c.x
	dx := series.Like(x)
	cin := c.in.Channels
	parallel.ForEach(x.Len, c.Threads(), func(n int) {
		for t := 0; t < c.out.Steps; t++ {
			g := dy.Row(n, t)
			for o, v := range g {
				if v == 0 {
					continue
				}
				for k := 0; k < c.kernel; k++ {
					if src := c.source(t, k); src >= 0 {
						avx.Axpy(v, c.taps(o, k), dx.Row(n, src))
					}
				}
			}
		}
	})
	parallel.ForEach(c.out.Channels, c.Threads(), func(o int) {
		var db float32
		for n := 0; n < x.Len; n++ {
			for t := 0; t < c.out.Steps; t++ {
				v := dy.At(n, t, o)
				if v == 0 {
					continue
				}
				db += v
				for k := 0; k < c.kernel; k++ {
					if src := c.source(t, k); src >= 0 {
						off := (o*c.kernel + k) * cin
						avx.Axpy(v, x.Row(n, src), c.w.Grad[off:off+cin])
					}
				}
			}
		}
		c.b.Grad[o] += db
	})
	return dx
}
