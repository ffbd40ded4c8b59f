package learning

import "sync"

import "github.com/neurlang/tcnae/layer"

type sgd struct {
	h        HyperParameters
	t        int
	mut      sync.Mutex
	velocity map[*layer.Param][]float32
}

func (s *sgd) Steps() int { return s.t }

func (s *sgd) state(p *layer.Param) []float32 {
	s.mut.Lock()
	defer s.mut.Unlock()
	v, ok := s.velocity[p]
	if !ok {
		v = make([]float32, p.Len())
		s.velocity[p] = v
	}
	return v
}

// Step applies v = momentum*v - lr*g; p += v.
func (s *sgd) Step(params []*layer.Param) {
	s.t++
	lr, mom := s.h.LearningRate, s.h.Momentum
	chunked(params, threads(s.h), func(p *layer.Param, from, to int) {
		if mom == 0 {
			for i := from; i < to; i++ {
				p.Value[i] -= lr * p.Grad[i]
			}
			return
		}
		v := s.state(p)
		for i := from; i < to; i++ {
			v[i] = mom*v[i] - lr*p.Grad[i]
			p.Value[i] += v[i]
		}
	})
}
