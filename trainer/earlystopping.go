package trainer

import "math"

// EarlyStopping halts training when the monitored validation loss stops
// improving and keeps a copy of the best weights seen.
type EarlyStopping struct {
	Patience int     // epochs without improvement before stopping
	MinDelta float64 // minimum decrease counted as improvement

	best        float64
	wait        int
	bestEpoch   int
	bestWeights []float32
}

// NewEarlyStopping creates an early stopping monitor.
func NewEarlyStopping(patience int, minDelta float64) *EarlyStopping {
	e := &EarlyStopping{Patience: patience, MinDelta: math.Abs(minDelta)}
	e.reset()
	return e
}

func (e *EarlyStopping) reset() {
	e.best = math.Inf(1)
	e.wait = 0
	e.bestEpoch = -1
	e.bestWeights = nil
}

// update records the validation loss of epoch and reports whether training
// should stop. weights is called only when the epoch improves on the best.
func (e *EarlyStopping) update(epoch int, valLoss float64, weights func() []float32) (stop bool) {
	if e.bestWeights == nil || valLoss < e.best-e.MinDelta {
		e.best = valLoss
		e.wait = 0
		e.bestEpoch = epoch
		e.bestWeights = weights()
		return false
	}
	e.wait++
	return e.wait >= e.Patience
}

// Best returns the best validation loss, its epoch and the weights of that epoch.
func (e *EarlyStopping) Best() (loss float64, epoch int, weights []float32) {
	return e.best, e.bestEpoch, e.bestWeights
}
