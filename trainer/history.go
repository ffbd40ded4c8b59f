package trainer

import "math"

// History records the per epoch losses of one training run. The json keys
// follow the metric names reported during training.
type History struct {
	Loss    []float64 `json:"loss"`
	ValLoss []float64 `json:"val_loss"`

	// BestEpoch is the zero based epoch with the lowest validation loss.
	BestEpoch int `json:"best_epoch"`

	// StoppedEpoch is the zero based epoch after which early stopping
	// halted training, or -1 when all epochs ran.
	StoppedEpoch int `json:"stopped_epoch"`

	// Seconds is the wall clock duration of the run.
	Seconds float64 `json:"seconds"`
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{BestEpoch: -1, StoppedEpoch: -1}
}

// Epochs is the number of epochs recorded.
func (h *History) Epochs() int {
	return len(h.Loss)
}

func (h *History) add(loss, valLoss float64) {
	h.Loss = append(h.Loss, loss)
	h.ValLoss = append(h.ValLoss, valLoss)
	if h.BestEpoch < 0 || valLoss < h.ValLoss[h.BestEpoch] {
		h.BestEpoch = len(h.ValLoss) - 1
	}
}

// BestValLoss is the lowest validation loss seen, or +Inf without epochs.
func (h *History) BestValLoss() float64 {
	if h.BestEpoch < 0 {
		return math.Inf(1)
	}
	return h.ValLoss[h.BestEpoch]
}
