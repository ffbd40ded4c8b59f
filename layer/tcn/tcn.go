package tcn

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/layer/activation"
import "github.com/neurlang/tcnae/layer/conv1d"
import "github.com/neurlang/tcnae/series"

// residualBlock computes act(shortcut(x) + branch(x)). The branch output is
// also the skip output of the block.
type residualBlock struct {
	branch   []layer.Node
	shortcut *conv1d.Conv1D
	act      *activation.Activation
	out      layer.Shape
}

func (b *residualBlock) forward(x *series.Batch, train bool) (res, skip *series.Batch) {
	skip = x
	for _, n := range b.branch {
		skip = n.Forward(skip, train)
	}
	short := x
	if b.shortcut != nil {
		short = b.shortcut.Forward(x, train)
	}
	sum := skip.Clone()
	sum.Add(short)
	return b.act.Forward(sum, train), skip
}

// backward takes the gradients of both outputs; dskip may be nil.
func (b *residualBlock) backward(dres, dskip *series.Batch) *series.Batch {
	dsum := b.act.Backward(dres)
	dbranch := dsum
	if dskip != nil {
		dbranch = dsum.Clone()
		dbranch.Add(dskip)
	}
	for i := len(b.branch) - 1; i >= 0; i-- {
		dbranch = b.branch[i].Backward(dbranch)
	}
	dx := dbranch.Clone()
	if b.shortcut != nil {
		dx.Add(b.shortcut.Backward(dsum))
	} else {
		dx.Add(dsum)
	}
	return dx
}

func (b *residualBlock) params() (o []*layer.Param) {
	for _, n := range b.branch {
		o = append(o, n.Params()...)
	}
	if b.shortcut != nil {
		o = append(o, b.shortcut.Params()...)
	}
	return
}

// TCN is the instantiated network.
type TCN struct {
	name   string
	skip   bool
	blocks []*residualBlock
	out    layer.Shape
}

func (t *TCN) Name() string     { return t.name }
func (t *TCN) Out() layer.Shape { return t.out }

// SetThreads limits the goroutines of every convolution in the blocks.
func (t *TCN) SetThreads(n int) {
	for _, b := range t.blocks {
		layer.SetThreads(n, b.branch...)
		if b.shortcut != nil {
			b.shortcut.SetThreads(n)
		}
	}
}

// Blocks is the number of residual blocks.
func (t *TCN) Blocks() int { return len(t.blocks) }

func (t *TCN) Params() (o []*layer.Param) {
	for _, b := range t.blocks {
		o = append(o, b.params()...)
	}
	return
}

// Forward runs the residual blocks in order.
func (t *TCN) Forward(x *series.Batch, train bool) *series.Batch {
	var sum *series.Batch
	for _, b := range t.blocks {
		var skip *series.Batch
		x, skip = b.forward(x, train)
		if !t.skip {
			continue
		}
		if sum == nil {
			sum = skip.Clone()
		} else {
			sum.Add(skip)
		}
	}
	if t.skip {
		return sum
	}
	return x
}

// Backward propagates dy through the blocks in reverse order. With skip
// connections every block receives dy on its skip output and the residual
// output of the last block is unused.
func (t *TCN) Backward(dy *series.Batch) *series.Batch {
	var dres, dskip *series.Batch
	if t.skip {
		dres = series.Like(dy)
		dskip = dy
	} else {
		dres = dy
	}
	for i := len(t.blocks) - 1; i >= 0; i-- {
		dres = t.blocks[i].backward(dres, dskip)
	}
	return dres
}
