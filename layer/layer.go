// Package layer defines the layer, node and parameter contracts shared by
// the layer packages.
package layer

import "math/rand"

import "github.com/neurlang/tcnae/series"

// Shape is the per-series shape flowing between layers: timesteps by channels.
type Shape struct {
	Steps    int
	Channels int
}

// Layer is a layer configuration which can be instantiated for an input shape.
type Layer interface {

	// Lay creates a node for input shape in, initializing its parameters from rng.
	Lay(in Shape, rng *rand.Rand) (Node, error)
}

// Node is an instantiated layer holding its parameters.
type Node interface {

	// Name identifies the node in summaries and weight files.
	Name() string

	// Out reports the output shape for one series.
	Out() Shape

	// Forward computes the node output. When train is true, the node keeps
	// whatever it needs for Backward and applies training-only behaviour
	// (dropout). When train is false the node state is not modified.
	Forward(x *series.Batch, train bool) *series.Batch

	// Backward receives the gradient of the loss with respect to the output of
	// the last training Forward, accumulates parameter gradients and returns
	// the gradient with respect to that Forward's input.
	Backward(dy *series.Batch) *series.Batch

	// Params lists the trainable parameters; nil for parameterless nodes.
	Params() []*Param
}

// Param is a trainable parameter tensor with its gradient accumulator.
type Param struct {
	Name  string
	Shape []int
	Value []float32
	Grad  []float32
}

// NewParam allocates a parameter of the given shape.
func NewParam(name string, shape ...int) *Param {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &Param{
		Name:  name,
		Shape: append([]int(nil), shape...),
		Value: make([]float32, size),
		Grad:  make([]float32, size),
	}
}

// ZeroGrad clears the gradient accumulator.
func (p *Param) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Len is the number of scalar values in the parameter.
func (p *Param) Len() int {
	return len(p.Value)
}

// CountParams sums the scalar parameters of nodes.
func CountParams(nodes ...Node) (o int) {
	for _, n := range nodes {
		for _, p := range n.Params() {
			o += p.Len()
		}
	}
	return
}
