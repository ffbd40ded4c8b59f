// Package tcn implements a temporal convolutional network: stacks of dilated
// residual blocks whose skip outputs may be summed into the network output.
package tcn

import "fmt"
import "math/rand"

import "github.com/neurlang/tcnae/initializers"
import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/layer/activation"
import "github.com/neurlang/tcnae/layer/conv1d"
import "github.com/neurlang/tcnae/layer/dropout"

// Options configure a TCN.
type Options struct {
	Name               string
	Filters            int
	KernelSize         int
	Stacks             int
	Dilations          []int
	Padding            layer.Padding
	Activation         string
	DropoutRate        float32
	UseSkipConnections bool
	KernelInit         string
}

// TCNLayer is a validated TCN configuration.
type TCNLayer struct {
	opts Options
}

// MustNew creates a new TCN layer from options
func MustNew(opts Options) *TCNLayer {
	o, err := New(opts)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new TCN layer from options
func New(opts Options) (o *TCNLayer, err error) {
	if opts.Filters < 1 {
		return nil, fmt.Errorf("New TCN: Filters %d is lower than 1", opts.Filters)
	}
	if opts.KernelSize < 1 {
		return nil, fmt.Errorf("New TCN: KernelSize %d is lower than 1", opts.KernelSize)
	}
	if opts.Stacks < 1 {
		return nil, fmt.Errorf("New TCN: Stacks %d is lower than 1", opts.Stacks)
	}
	if len(opts.Dilations) == 0 {
		return nil, fmt.Errorf("New TCN: no dilations")
	}
	for _, d := range opts.Dilations {
		if d < 1 {
			return nil, fmt.Errorf("New TCN: Dilation %d is lower than 1", d)
		}
	}
	switch opts.Padding {
	case layer.Causal, layer.Same:
	default:
		return nil, fmt.Errorf("New TCN: padding %q is not causal or same", opts.Padding)
	}
	if _, err := activation.Get(opts.Activation); err != nil {
		return nil, err
	}
	if _, err := initializers.Get(opts.KernelInit); err != nil {
		return nil, err
	}
	if _, err := dropout.New(opts.DropoutRate); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = "tcn"
	}
	opts.Dilations = append([]int(nil), opts.Dilations...)
	return &TCNLayer{opts: opts}, nil
}

// ReceptiveField is the number of input steps one output step can see.
func (i *TCNLayer) ReceptiveField() int {
	var sum int
	for _, d := range i.opts.Dilations {
		sum += d
	}
	return 1 + 2*(i.opts.KernelSize-1)*i.opts.Stacks*sum
}

// Lay turns TCN layer into a node
func (i *TCNLayer) Lay(in layer.Shape, rng *rand.Rand) (layer.Node, error) {
	o := &TCN{name: i.opts.Name, skip: i.opts.UseSkipConnections}
	shape := in
	for s := 0; s < i.opts.Stacks; s++ {
		for _, d := range i.opts.Dilations {
			b, err := i.block(fmt.Sprintf("%s/residual_block_%d", i.opts.Name, len(o.blocks)), shape, d, rng)
			if err != nil {
				return nil, err
			}
			o.blocks = append(o.blocks, b)
			shape = b.out
		}
	}
	o.out = shape
	return o, nil
}

func (i *TCNLayer) block(name string, in layer.Shape, dilation int, rng *rand.Rand) (*residualBlock, error) {
	act := activation.MustNew(i.opts.Activation)
	drop := dropout.MustNew(i.opts.DropoutRate)
	b := &residualBlock{out: layer.Shape{Steps: in.Steps, Channels: i.opts.Filters}}
	shape := in
	for k := 0; k < 2; k++ {
		cl, err := conv1d.New(i.opts.Filters, i.opts.KernelSize, dilation, i.opts.Padding, i.opts.KernelInit)
		if err != nil {
			return nil, err
		}
		conv, err := cl.Named(fmt.Sprintf("%s/conv1d_%d", name, k)).Node(shape, rng)
		if err != nil {
			return nil, err
		}
		shape = conv.Out()
		b.branch = append(b.branch, conv, act.Node(shape), drop.Node(shape, rng))
	}
	if in.Channels != i.opts.Filters {
		cl, err := conv1d.New(i.opts.Filters, 1, 1, layer.Same, i.opts.KernelInit)
		if err != nil {
			return nil, err
		}
		conv, err := cl.Named(name + "/matching_conv1d").Node(in, rng)
		if err != nil {
			return nil, err
		}
		b.shortcut = conv
	}
	b.act = act.Node(b.out)
	return b, nil
}
