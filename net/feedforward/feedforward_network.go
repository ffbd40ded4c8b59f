// Package feedforward implements a feedforward network type: a chain of
// layer nodes trained by backpropagation.
package feedforward

import "fmt"
import "math/rand"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	layers []layer.Layer
	labels []string
	nodes  []layer.Node
	in     layer.Shape

	threads layer.Limit
}

// NewLayer appends a layer configuration. The label is shown in summaries.
func (f *FeedforwardNetwork) NewLayer(label string, l layer.Layer) {
	f.layers = append(f.layers, l)
	f.labels = append(f.labels, label)
	f.nodes = nil
}

// Build instantiates every layer for input shape in, initializing the
// parameters from rng. Previously built nodes are discarded.
func (f *FeedforwardNetwork) Build(in layer.Shape, rng *rand.Rand) error {
	f.nodes = nil
	f.in = in
	shape := in
	var nodes []layer.Node
	for i, l := range f.layers {
		n, err := l.Lay(shape, rng)
		if err != nil {
			return errors.Wrapf(err, "layer %d (%s)", i, f.labels[i])
		}
		nodes = append(nodes, n)
		shape = n.Out()
	}
	f.nodes = nodes
	layer.SetThreads(f.threads.Threads(), nodes...)
	return nil
}

// SetThreads limits the goroutines used by every node of the network.
// Values below 1 select the default.
func (f *FeedforwardNetwork) SetThreads(n int) {
	f.threads.SetThreads(n)
	layer.SetThreads(f.threads.Threads(), f.nodes...)
}

// Threads is the goroutine limit of the network.
func (f *FeedforwardNetwork) Threads() int {
	return f.threads.Threads()
}

// Built reports whether Build succeeded.
func (f *FeedforwardNetwork) Built() bool {
	return f.nodes != nil || len(f.layers) == 0
}

// Len returns the number of layers.
func (f *FeedforwardNetwork) Len() int {
	return len(f.layers)
}

// In is the input shape the network was built for.
func (f *FeedforwardNetwork) In() layer.Shape {
	return f.in
}

// Out is the output shape of the built network.
func (f *FeedforwardNetwork) Out() layer.Shape {
	if len(f.nodes) == 0 {
		return f.in
	}
	return f.nodes[len(f.nodes)-1].Out()
}

// GetNode returns the n-th built node.
func (f *FeedforwardNetwork) GetNode(n int) layer.Node {
	return f.nodes[n]
}

// Params lists all trainable parameters in layer order.
func (f *FeedforwardNetwork) Params() (o []*layer.Param) {
	for _, n := range f.nodes {
		o = append(o, n.Params()...)
	}
	return
}

// CountParams is the number of scalar parameters.
func (f *FeedforwardNetwork) CountParams() int {
	return layer.CountParams(f.nodes...)
}

// Forget clears all accumulated gradients.
func (f *FeedforwardNetwork) Forget() {
	for _, p := range f.Params() {
		p.ZeroGrad()
	}
}

// Forward infers the network output. With train set, the nodes keep what
// Backward needs and dropout is active.
func (f *FeedforwardNetwork) Forward(x *series.Batch, train bool) *series.Batch {
	for _, n := range f.nodes {
		x = n.Forward(x, train)
	}
	return x
}

// Backward backpropagates the output gradient dy of the last training Forward.
func (f *FeedforwardNetwork) Backward(dy *series.Batch) *series.Batch {
	for i := len(f.nodes) - 1; i >= 0; i-- {
		dy = f.nodes[i].Backward(dy)
	}
	return dy
}

// Weights copies all parameter values into one slice.
func (f *FeedforwardNetwork) Weights() []float32 {
	var o []float32
	for _, p := range f.Params() {
		o = append(o, p.Value...)
	}
	return o
}

// SetWeights restores values copied by Weights.
func (f *FeedforwardNetwork) SetWeights(w []float32) error {
	params := f.Params()
	var size int
	for _, p := range params {
		size += p.Len()
	}
	if size != len(w) {
		return errors.Errorf("feedforward: %d weights for %d parameters", len(w), size)
	}
	for _, p := range params {
		copy(p.Value, w[:p.Len()])
		w = w[p.Len():]
	}
	return nil
}

func shape(s layer.Shape) string {
	return fmt.Sprintf("(None, %d, %d)", s.Steps, s.Channels)
}

// Summary renders a table of the layers, their output shapes and
// parameter counts.
func (f *FeedforwardNetwork) Summary(title string) string {
	var b strings.Builder
	line := strings.Repeat("_", 66) + "\n"
	fmt.Fprintf(&b, "Model: %q\n", title)
	b.WriteString(line)
	fmt.Fprintf(&b, "%-32s %-22s %10s\n", "Layer (type)", "Output Shape", "Param #")
	b.WriteString(strings.Repeat("=", 66) + "\n")
	fmt.Fprintf(&b, "%-32s %-22s %10d\n", "input (InputLayer)", shape(f.in), 0)
	for i, n := range f.nodes {
		name := fmt.Sprintf("%s (%s)", n.Name(), f.labels[i])
		fmt.Fprintf(&b, "%-32s %-22s %10d\n", name, shape(n.Out()), layer.CountParams(n))
	}
	b.WriteString(strings.Repeat("=", 66) + "\n")
	fmt.Fprintf(&b, "Total params: %d\n", f.CountParams())
	b.WriteString(line)
	return b.String()
}
