package tcnae

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/neurlang/tcnae/series"
	"github.com/neurlang/tcnae/store"
	"github.com/neurlang/tcnae/trainer"
)

// FitOptions control one call to Fit. Zero BatchSize and Epochs select
// the defaults of 32 and 40. The training series are reshuffled before every
// epoch unless KeepOrder is set.
type FitOptions struct {
	BatchSize int
	Epochs    int
	Verbose   int // 0 silent, 1 every epoch, 2 adds the model description
	KeepOrder bool

	// Store, when set, receives a checkpoint after training whose parent
	// is Parent.
	Store  *store.Store
	Parent string
}

// DefaultFitOptions returns the default training options.
func DefaultFitOptions() FitOptions {
	return FitOptions{BatchSize: 32, Epochs: 40, Verbose: 1}
}

// session exposes the model to the trainer while Fit holds the write lock.
type session struct {
	m *TCNAE
}

// TrainBatch reconstructs x, backpropagates the loss against x itself and
// applies one optimizer step.
func (s session) TrainBatch(x *series.Batch) (float64, error) {
	m := s.m
	m.net.Forget()
	y := m.net.Forward(x, true)
	padded := y.PadSteps(x.Steps)
	loss := m.loss.Cost(padded.Data, x.Data)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, nil
	}
	dpadded := series.Like(padded)
	m.loss.Derivs(padded.Data, x.Data, dpadded.Data)
	m.net.Backward(dpadded.PadSteps(y.Steps))
	m.opt.Step(m.net.Params())
	return loss, nil
}

// Loss evaluates the reconstruction loss in inference mode.
func (s session) Loss(x *series.Batch) (float64, error) {
	m := s.m
	padded := m.reconstruct(x)
	return m.loss.Cost(padded.Data, x.Data), nil
}

func (s session) Weights() []float32 {
	return s.m.net.Weights()
}

func (s session) SetWeights(w []float32) error {
	return s.m.net.SetWeights(w)
}

// Fit trains the autoencoder to reconstruct xTrain, reporting the loss on
// xValid after every epoch. Both must have shape (batch, WindowLength,
// TSDimension).
func (m *TCNAE) Fit(xTrain, xValid *tensor.Dense, opts FitOptions) (*trainer.History, error) {
	m.mut.Lock()
	defer m.mut.Unlock()

	train, err := m.batch(xTrain)
	if err != nil {
		return nil, errors.Wrap(err, "training set")
	}
	if train.Len == 0 {
		return nil, errors.New("tcnae: empty training set")
	}
	valid, err := m.batch(xValid)
	if err != nil {
		return nil, errors.Wrap(err, "validation set")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 40
	}

	to := trainer.Options{
		BatchSize: opts.BatchSize,
		Epochs:    opts.Epochs,
		Shuffle:   !opts.KeepOrder,
		Rand:      m.rng,
	}
	if m.cfg.UseEarlyStopping {
		to.EarlyStopping = trainer.NewEarlyStopping(m.cfg.Patience, m.cfg.MinDelta)
	}
	if opts.Verbose > 0 {
		to.Logger = m.l
	}

	if opts.Verbose > 0 {
		m.l.Println("> Starting the Training...")
	}
	start := time.Now()
	h, err := trainer.Fit(session{m}, train, valid, to)
	if err != nil {
		return h, err
	}
	if opts.Verbose > 0 {
		m.l.Println("> Training Time :", math.Round(time.Since(start).Seconds()), "seconds.")
	}
	m.history = h

	if opts.Store != nil {
		id, err := m.saveCheckpoint(opts.Store, opts.Parent)
		if err != nil {
			return h, err
		}
		if opts.Verbose > 0 {
			m.l.Println("> Saved checkpoint", id)
		}
	}
	return h, nil
}

// batch converts and shape checks an input tensor.
func (m *TCNAE) batch(x *tensor.Dense) (*series.Batch, error) {
	if x == nil {
		return nil, errors.New("tcnae: nil tensor")
	}
	b, err := series.FromDense(x)
	if err != nil {
		return nil, err
	}
	in := m.net.In()
	if b.Steps != in.Steps || b.Channels != in.Channels {
		return nil, errors.Errorf("tcnae: series of shape (%d, %d), model expects (%d, %d)",
			b.Steps, b.Channels, in.Steps, in.Channels)
	}
	return b, nil
}

// nonEmpty is batch for inference, which needs at least one series.
func (m *TCNAE) nonEmpty(x *tensor.Dense) (*series.Batch, error) {
	b, err := m.batch(x)
	if err != nil {
		return nil, err
	}
	if b.Len == 0 {
		return nil, errors.New("tcnae: empty batch")
	}
	return b, nil
}
