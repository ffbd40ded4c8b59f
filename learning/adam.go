package learning

import "math"
import "sync"

import "github.com/neurlang/tcnae/layer"

type adamSlot struct {
	m, v, vhat []float32
}

type adam struct {
	h     HyperParameters
	t     int
	mut   sync.Mutex
	slots map[*layer.Param]*adamSlot
}

func (a *adam) slot(p *layer.Param) *adamSlot {
	a.mut.Lock()
	defer a.mut.Unlock()
	s, ok := a.slots[p]
	if !ok {
		s = &adamSlot{m: make([]float32, p.Len()), v: make([]float32, p.Len())}
		if a.h.AMSGrad {
			s.vhat = make([]float32, p.Len())
		}
		a.slots[p] = s
	}
	return s
}

func (a *adam) Steps() int { return a.t }

// Step applies one bias corrected Adam update.
func (a *adam) Step(params []*layer.Param) {
	a.t++
	b1, b2 := float64(a.h.Beta1), float64(a.h.Beta2)
	lr := float32(float64(a.h.LearningRate) * math.Sqrt(1-math.Pow(b2, float64(a.t))) / (1 - math.Pow(b1, float64(a.t))))
	beta1, beta2, eps := a.h.Beta1, a.h.Beta2, a.h.Epsilon
	for _, p := range params {
		a.slot(p)
	}
	chunked(params, threads(a.h), func(p *layer.Param, from, to int) {
		s := a.slot(p)
		for i := from; i < to; i++ {
			g := p.Grad[i]
			m := beta1*s.m[i] + (1-beta1)*g
			v := beta2*s.v[i] + (1-beta2)*g*g
			s.m[i], s.v[i] = m, v
			if s.vhat != nil {
				if v > s.vhat[i] {
					s.vhat[i] = v
				}
				v = s.vhat[i]
			}
			p.Value[i] -= lr * m / (float32(math.Sqrt(float64(v))) + eps)
		}
	})
}
