package pool1d

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/learning/avx"
import "github.com/neurlang/tcnae/series"

// Pool1D is the instantiated pooling node. Trailing steps that do not fill
// a whole window are dropped.
type Pool1D struct {
	size    int
	pooler  Pooler
	in, out layer.Shape

	argmax []int32
	n      int
}

func (p *Pool1D) Name() string           { return string(p.pooler) + "_pooling1d" }
func (p *Pool1D) Out() layer.Shape       { return p.out }
func (p *Pool1D) Params() []*layer.Param { return nil }

// Forward reduces each window of size steps.
func (p *Pool1D) Forward(x *series.Batch, train bool) *series.Batch {
	y := series.New(x.Len, p.out.Steps, p.out.Channels)
	var argmax []int32
	if train && p.pooler == Max {
		argmax = make([]int32, len(y.Data))
	}
	inv := 1 / float32(p.size)
	for n := 0; n < x.Len; n++ {
		for t := 0; t < p.out.Steps; t++ {
			row := y.Row(n, t)
			base := t * p.size
			switch p.pooler {
			case Average:
				for k := 0; k < p.size; k++ {
					for c, v := range x.Row(n, base+k) {
						row[c] += v
					}
				}
				avx.Scale(inv, row)
			case Max:
				copy(row, x.Row(n, base))
				var at []int32
				if argmax != nil {
					off := (n*p.out.Steps + t) * p.out.Channels
					at = argmax[off : off+p.out.Channels]
					for c := range at {
						at[c] = int32(base)
					}
				}
				for k := 1; k < p.size; k++ {
					for c, v := range x.Row(n, base+k) {
						if v > row[c] {
							row[c] = v
							if at != nil {
								at[c] = int32(base + k)
							}
						}
					}
				}
			}
		}
	}
	if train {
		p.argmax = argmax
		p.n = x.Len
	}
	return y
}

// Backward spreads the gradient evenly (average) or to the winning step (max).
func (p *Pool1D) Backward(dy *series.Batch) *series.Batch {
	dx := series.New(p.n, p.in.Steps, p.in.Channels)
	inv := 1 / float32(p.size)
	for n := 0; n < dy.Len; n++ {
		for t := 0; t < p.out.Steps; t++ {
			g := dy.Row(n, t)
			switch p.pooler {
			case Average:
				for k := 0; k < p.size; k++ {
					row := dx.Row(n, t*p.size+k)
					for c, v := range g {
						row[c] += v * inv
					}
				}
			case Max:
				off := (n*p.out.Steps + t) * p.out.Channels
				for c, v := range g {
					dx.Data[(n*p.in.Steps+int(p.argmax[off+c]))*p.in.Channels+c] += v
				}
			}
		}
	}
	return dx
}
