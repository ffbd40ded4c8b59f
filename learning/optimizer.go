package learning

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/parallel"

// Optimizer applies accumulated gradients to parameters.
type Optimizer interface {

	// Step updates every parameter from its Grad and advances the step counter.
	Step(params []*layer.Param)

	// Steps is the number of updates applied so far.
	Steps() int
}

// New creates the optimizer described by h.
func New(h HyperParameters) (Optimizer, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	switch h.Optimizer {
	case "sgd":
		return &sgd{h: h, velocity: make(map[*layer.Param][]float32)}, nil
	}
	return &adam{h: h, slots: make(map[*layer.Param]*adamSlot)}, nil
}

// MustNew creates the optimizer described by h or panics.
func MustNew(h HyperParameters) Optimizer {
	o, err := New(h)
	if err != nil {
		panic(err.Error())
	}
	return o
}

func threads(h HyperParameters) int {
	if h.Threads > 0 {
		return h.Threads
	}
	return layer.Threads()
}

// chunked runs fn over contiguous ranges of every parameter in parallel.
func chunked(params []*layer.Param, limit int, fn func(p *layer.Param, from, to int)) {
	for _, p := range params {
		p := p
		parallel.ForChunks(p.Len(), limit, func(from, to int) {
			fn(p, from, to)
		})
	}
}
