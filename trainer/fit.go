package trainer

import "log"
import "math"
import "math/rand"
import "time"

import "github.com/pkg/errors"

import "github.com/neurlang/tcnae/series"

// Trainable is a network the trainer can optimize against its own input.
type Trainable interface {

	// TrainBatch runs one training step on x and returns the batch loss.
	TrainBatch(x *series.Batch) (float64, error)

	// Loss evaluates the loss on x in inference mode.
	Loss(x *series.Batch) (float64, error)

	// Weights copies out all parameters in order.
	Weights() []float32

	// SetWeights restores parameters copied by Weights.
	SetWeights(w []float32) error
}

// Options control a training run.
type Options struct {
	BatchSize     int
	Epochs        int
	Shuffle       bool
	Rand          *rand.Rand
	EarlyStopping *EarlyStopping
	Logger        *log.Logger // per epoch lines are logged when not nil
}

// Fit trains m on train, monitoring the loss on valid after every epoch.
func Fit(m Trainable, train, valid *series.Batch, opts Options) (*History, error) {
	if train == nil || train.Len == 0 {
		return nil, errors.New("trainer: empty training set")
	}
	if opts.Epochs < 0 {
		return nil, errors.Errorf("trainer: negative epoch count %d", opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	var rng *rand.Rand
	if opts.Shuffle {
		rng = opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	es := opts.EarlyStopping
	if es != nil {
		es.reset()
	}

	start := time.Now()
	h := NewHistory()
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		var sum float64
		for _, idx := range Batches(train.Len, opts.BatchSize, rng) {
			loss, err := m.TrainBatch(train.Select(idx))
			if err != nil {
				return h, errors.Wrapf(err, "epoch %d", epoch+1)
			}
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return h, errors.Errorf("trainer: loss is %v in epoch %d", loss, epoch+1)
			}
			sum += loss * float64(len(idx))
		}
		loss := sum / float64(train.Len)
		valLoss, err := Evaluate(m, valid, opts.BatchSize)
		if err != nil {
			return h, errors.Wrapf(err, "validation in epoch %d", epoch+1)
		}
		h.add(loss, valLoss)
		if opts.Logger != nil {
			opts.Logger.Printf("Epoch %d/%d - %.0fs - loss: %.4f - val_loss: %.4f",
				epoch+1, opts.Epochs, time.Since(start).Seconds(), loss, valLoss)
		}
		if es != nil && !math.IsNaN(valLoss) && es.update(epoch, valLoss, m.Weights) {
			h.StoppedEpoch = epoch
			if opts.Logger != nil {
				opts.Logger.Printf("Epoch %d: early stopping", epoch+1)
			}
			break
		}
	}
	if es != nil {
		if _, epoch, w := es.Best(); w != nil {
			if err := m.SetWeights(w); err != nil {
				return h, errors.Wrap(err, "restoring best weights")
			}
			if opts.Logger != nil && epoch+1 != h.Epochs() {
				opts.Logger.Printf("Restoring model weights from the end of the best epoch: %d.", epoch+1)
			}
		}
	}
	h.Seconds = time.Since(start).Seconds()
	return h, nil
}

// Evaluate computes the sample weighted mean loss of m on x in chunks of
// batchSize series. An empty or missing set evaluates to NaN.
func Evaluate(m Trainable, x *series.Batch, batchSize int) (float64, error) {
	if x == nil || x.Len == 0 {
		return math.NaN(), nil
	}
	if batchSize <= 0 {
		batchSize = x.Len
	}
	var sum float64
	for from := 0; from < x.Len; from += batchSize {
		to := from + batchSize
		if to > x.Len {
			to = x.Len
		}
		loss, err := m.Loss(x.Slice(from, to))
		if err != nil {
			return 0, err
		}
		sum += loss * float64(to-from)
	}
	return sum / float64(x.Len), nil
}
