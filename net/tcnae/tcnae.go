// Package tcnae implements the temporal convolutional autoencoder (TCN-AE)
// for unsupervised anomaly detection in time series. The network encodes a
// window with a dilated TCN, compresses it in time by pooling, upsamples it
// again and decodes it with a second TCN. The per timestep reconstruction
// error serves as the anomaly score.
package tcnae

import (
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/neurlang/tcnae/layer"
	"github.com/neurlang/tcnae/layer/activation"
	"github.com/neurlang/tcnae/layer/conv1d"
	"github.com/neurlang/tcnae/layer/dense"
	"github.com/neurlang/tcnae/layer/pool1d"
	"github.com/neurlang/tcnae/layer/tcn"
	"github.com/neurlang/tcnae/layer/upsample1d"
	"github.com/neurlang/tcnae/learning"
	"github.com/neurlang/tcnae/learning/avx"
	"github.com/neurlang/tcnae/learning/cu"
	"github.com/neurlang/tcnae/losses"
	"github.com/neurlang/tcnae/net/feedforward"
	"github.com/neurlang/tcnae/trainer"
)

// TCNAE is a TCN autoencoder. Fit and BuildModel must not overlap with each
// other; Predict may be called concurrently.
type TCNAE struct {
	mut sync.RWMutex

	cfg Config
	net *feedforward.FeedforwardNetwork
	opt learning.Optimizer

	loss losses.Loss
	rng  *rand.Rand

	history    *trainer.History
	checkpoint string

	l *log.Logger
}

// MustNew creates and builds a model from cfg
func MustNew(cfg Config) *TCNAE {
	m, err := New(cfg)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// New creates and builds a model from cfg
func New(cfg Config) (*TCNAE, error) {
	m := &TCNAE{cfg: cfg.clone(), l: log.New(os.Stdout, "", 0)}
	if err := m.BuildModel(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetLogger directs the log output to w.
func (m *TCNAE) SetLogger(w io.Writer) {
	m.mut.Lock()
	defer m.mut.Unlock()
	m.l = log.New(w, "", 0)
}

// SetLogFile appends the log output to a file.
func (m *TCNAE) SetLogFile(filename string) error {
	outfile, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	m.SetLogger(outfile)
	return nil
}

// Config returns a copy of the model configuration.
func (m *TCNAE) Config() Config {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.cfg.clone()
}

func (m *TCNAE) tcn(name string) (*tcn.TCNLayer, error) {
	return tcn.New(tcn.Options{
		Name:               name,
		Filters:            m.cfg.NbFilters,
		KernelSize:         m.cfg.KernelSize,
		Stacks:             m.cfg.NbStacks,
		Dilations:          m.cfg.Dilations,
		Padding:            layer.Padding(m.cfg.Padding),
		Activation:         m.cfg.TCNActivation,
		DropoutRate:        m.cfg.DropoutRate,
		UseSkipConnections: m.cfg.UseSkipConnections,
		KernelInit:         m.cfg.ConvKernelInit,
	})
}

// BuildModel assembles the network and a fresh optimizer, discarding all
// previously learned parameters.
func (m *TCNAE) BuildModel() error {
	m.mut.Lock()
	defer m.mut.Unlock()
	return m.build()
}

func (m *TCNAE) build() error {
	c := &m.cfg
	if err := c.Validate(); err != nil {
		return err
	}
	loss, err := losses.Get(c.Loss)
	if err != nil {
		return err
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	enc, err := m.tcn("tcn-enc")
	if err != nil {
		return err
	}
	dec, err := m.tcn("tcn-dec")
	if err != nil {
		return err
	}
	proj, err := conv1d.New(c.FiltersConv1D, 1, 1, layer.Padding(c.Padding), "glorot_uniform")
	if err != nil {
		return err
	}
	pool, err := pool1d.New(c.LatentSampleRate, pool1d.Pooler(c.Pooler))
	if err != nil {
		return err
	}

	net := new(feedforward.FeedforwardNetwork)
	net.NewLayer("TCN", enc)
	net.NewLayer("Conv1D", proj.Named("conv1d"))
	net.NewLayer("Activation", activation.MustNew(c.ActivationConv1D))
	net.NewLayer("Pooling1D", pool)
	net.NewLayer("Activation", activation.MustNew("linear"))
	net.NewLayer("UpSampling1D", upsample1d.MustNew(c.LatentSampleRate))
	net.NewLayer("TCN", dec)
	net.NewLayer("Dense", dense.MustNew(c.TSDimension, "glorot_uniform"))
	net.SetThreads(c.Threads)
	if err := net.Build(layer.Shape{Steps: c.WindowLength, Channels: c.TSDimension}, rng); err != nil {
		return errors.Wrap(err, "build model")
	}

	hp, err := c.hyperParameters()
	if err != nil {
		return err
	}
	hp.Threads = net.Threads()
	opt, err := learning.New(hp)
	if err != nil {
		return err
	}

	m.net, m.opt, m.loss, m.rng = net, opt, loss, rng
	m.history = nil
	m.checkpoint = ""
	if c.Verbose > 1 {
		m.l.Print(m.net.Summary("tcn-ae"))
		m.l.Printf("receptive field: %d steps", enc.ReceptiveField())
		m.l.Printf("cpu: %s", avx.Describe())
		m.l.Printf("%s", cu.Describe())
	}
	return nil
}

// Summary lists the layers with their output shapes and parameter counts.
func (m *TCNAE) Summary() string {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.net.Summary("tcn-ae")
}

// InputShape is the (timesteps, channels) shape accepted by the model.
func (m *TCNAE) InputShape() (steps, channels int) {
	m.mut.RLock()
	defer m.mut.RUnlock()
	in := m.net.In()
	return in.Steps, in.Channels
}

// OutputSteps is the number of reconstructed timesteps before padding.
func (m *TCNAE) OutputSteps() int {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.net.Out().Steps
}

// CountParams is the number of trainable scalars.
func (m *TCNAE) CountParams() int {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.net.CountParams()
}

// History is the history of the last Fit, or nil.
func (m *TCNAE) History() *trainer.History {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.history
}
