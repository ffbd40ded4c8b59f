// Package conv1d implements a dilated 1D convolution layer
package conv1d

import "fmt"
import "math/rand"

import "github.com/neurlang/tcnae/initializers"
import "github.com/neurlang/tcnae/layer"

// Conv1DLayer is the configuration of a dilated convolution.
type Conv1DLayer struct {
	filters, kernel, dilation int
	padding                   layer.Padding
	init                      initializers.Initializer
	name                      string
}

// MustNew creates a new Conv1D layer with filters, kernel size, dilation, padding and kernel initializer
func MustNew(filters, kernel, dilation int, padding layer.Padding, init string) *Conv1DLayer {
	o, err := New(filters, kernel, dilation, padding, init)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv1D layer with filters, kernel size, dilation, padding and kernel initializer
func New(filters, kernel, dilation int, padding layer.Padding, init string) (o *Conv1DLayer, err error) {
	if filters < 1 {
		return nil, fmt.Errorf("New Conv1D: Filters %d is lower than 1", filters)
	}
	if kernel < 1 {
		return nil, fmt.Errorf("New Conv1D: Kernel %d is lower than 1", kernel)
	}
	if dilation < 1 {
		return nil, fmt.Errorf("New Conv1D: Dilation %d is lower than 1", dilation)
	}
	if _, err := layer.ParsePadding(string(padding)); err != nil {
		return nil, err
	}
	f, err := initializers.Get(init)
	if err != nil {
		return nil, err
	}
	o = new(Conv1DLayer)
	o.filters = filters
	o.kernel = kernel
	o.dilation = dilation
	o.padding = padding
	o.init = f
	o.name = fmt.Sprintf("conv1d_k%d_d%d", kernel, dilation)
	return
}

// Named overrides the node name used in summaries and weight files.
func (i *Conv1DLayer) Named(name string) *Conv1DLayer {
	i.name = name
	return i
}

// Lay turns Conv1D layer into a node
func (i *Conv1DLayer) Lay(in layer.Shape, rng *rand.Rand) (layer.Node, error) {
	return i.Node(in, rng)
}

// Node creates the concrete node, for composite layers.
func (i *Conv1DLayer) Node(in layer.Shape, rng *rand.Rand) (*Conv1D, error) {
	steps := i.padding.OutSteps(in.Steps, i.kernel, i.dilation)
	if steps < 1 {
		return nil, fmt.Errorf("Lay Conv1D: %d steps too short for kernel %d dilation %d", in.Steps, i.kernel, i.dilation)
	}
	if in.Channels < 1 {
		return nil, fmt.Errorf("Lay Conv1D: no input channels")
	}
	var o Conv1D
	o.name = i.name
	o.in = in
	o.out = layer.Shape{Steps: steps, Channels: i.filters}
	o.kernel = i.kernel
	o.dilation = i.dilation
	o.left = i.padding.Left(i.kernel, i.dilation)
	o.w = layer.NewParam(i.name+"/kernel", i.filters, i.kernel, in.Channels)
	o.b = layer.NewParam(i.name+"/bias", i.filters)
	i.init(o.w.Value, i.kernel*in.Channels, i.kernel*i.filters, rng)
	return &o, nil
}
