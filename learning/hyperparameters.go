// Package learning implements the gradient based optimizers that update
// layer parameters after every minibatch.
package learning

import "fmt"

// HyperParameters configure an optimizer.
type HyperParameters struct {
	Optimizer    string  // "adam" or "sgd"
	LearningRate float32 // step size
	Beta1        float32 // adam first moment decay
	Beta2        float32 // adam second moment decay
	Epsilon      float32 // adam denominator fuzz
	AMSGrad      bool    // adam keeps the running maximum of the second moment
	Momentum     float32 // sgd momentum, 0 for plain gradient descent
	Threads      int     // goroutines used for one update, 0 for the layer default
}

// Adam returns the hyperparameters of Adam with AMSGrad and learning rate lr.
func Adam(lr float32) HyperParameters {
	return HyperParameters{
		Optimizer:    "adam",
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		AMSGrad:      true,
	}
}

// SGD returns the hyperparameters of gradient descent with momentum.
func SGD(lr, momentum float32) HyperParameters {
	return HyperParameters{
		Optimizer:    "sgd",
		LearningRate: lr,
		Momentum:     momentum,
	}
}

// Validate reports the first invalid setting.
func (h *HyperParameters) Validate() error {
	if !(h.LearningRate > 0) {
		return fmt.Errorf("learning rate must be positive, got %f", h.LearningRate)
	}
	switch h.Optimizer {
	case "adam":
		if h.Beta1 <= 0 || h.Beta1 >= 1 {
			return fmt.Errorf("Adam beta1 must be in (0, 1), got %f", h.Beta1)
		}
		if h.Beta2 <= 0 || h.Beta2 >= 1 {
			return fmt.Errorf("Adam beta2 must be in (0, 1), got %f", h.Beta2)
		}
		if h.Epsilon <= 0 {
			return fmt.Errorf("Adam epsilon must be positive, got %f", h.Epsilon)
		}
	case "sgd":
		if h.Momentum < 0 || h.Momentum >= 1 {
			return fmt.Errorf("SGD momentum must be in [0, 1), got %f", h.Momentum)
		}
	default:
		return fmt.Errorf("unknown optimizer %q", h.Optimizer)
	}
	return nil
}
