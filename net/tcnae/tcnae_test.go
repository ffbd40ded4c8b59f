package tcnae

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorgonia.org/tensor"

	"github.com/neurlang/tcnae/datasets"
	"github.com/neurlang/tcnae/layer/conv1d"
	"github.com/neurlang/tcnae/layer/dense"
	"github.com/neurlang/tcnae/series"
	"github.com/neurlang/tcnae/store"
	"github.com/neurlang/tcnae/trainer"
)

func small() Config {
	c := DefaultConfig()
	c.WindowLength = 16
	c.Dilations = []int{1, 2}
	c.NbFilters = 4
	c.KernelSize = 3
	c.FiltersConv1D = 2
	c.LatentSampleRate = 4
	c.TCNActivation = "tanh"
	c.Seed = 7
	c.Verbose = 0
	return c
}

func sineWindows(t *testing.T, n int, seed int64) *tensor.Dense {
	t.Helper()
	x, err := datasets.Windows(datasets.Sine(n, 8, 0.05, seed), 16, 4)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func values(t *testing.T, d *tensor.Dense) []float32 {
	t.Helper()
	data, ok := d.Data().([]float32)
	if !ok {
		t.Fatalf("unexpected backing %T", d.Data())
	}
	return data
}

func TestInputShape(t *testing.T) {
	for _, dims := range [][2]int{{16, 1}, {32, 3}, {20, 2}} {
		c := small()
		c.WindowLength, c.TSDimension = dims[0], dims[1]
		m, err := New(c)
		if err != nil {
			t.Fatal(err)
		}
		steps, channels := m.InputShape()
		if steps != dims[0] || channels != dims[1] {
			t.Errorf("input shape (%d, %d), want %v", steps, channels, dims)
		}
	}
}

func TestPaddingAllSamplingFactors(t *testing.T) {
	x := sineWindows(t, 40, 1)
	batch := x.Shape()[0]
	for f := 1; f <= 16; f++ {
		c := small()
		c.LatentSampleRate = f
		m, err := New(c)
		if err != nil {
			t.Fatalf("factor %d: %v", f, err)
		}
		if m.OutputSteps() != 16/f*f {
			t.Errorf("factor %d: %d output steps", f, m.OutputSteps())
		}
		e, err := m.Predict(x)
		if err != nil {
			t.Fatal(err)
		}
		if s := e.Shape(); s[0] != batch || s[1] != 16 {
			t.Fatalf("factor %d: error shape %v", f, s)
		}
		for _, v := range values(t, e) {
			if v < 0 || math.IsNaN(float64(v)) {
				t.Fatalf("factor %d: error value %f", f, v)
			}
		}
		rec, err := m.Reconstruct(x)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := series.FromDense(rec)
		for step := m.OutputSteps(); step < 16; step++ {
			if b.At(0, step, 0) != 0 {
				t.Errorf("factor %d: padded step %d is %f", f, step, b.At(0, step, 0))
			}
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	m := MustNew(small())
	x := sineWindows(t, 300, 2)
	a, err := m.Predict(x)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.PredictValidation(x)
	if err != nil {
		t.Fatal(err)
	}
	va, vb := values(t, a), values(t, b)
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("prediction %d differs: %f vs %f", i, va[i], vb[i])
		}
	}
}

func TestConcurrentPredict(t *testing.T) {
	m := MustNew(small())
	x := sineWindows(t, 100, 3)
	want, _ := m.Predict(x)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Predict(x)
			if err != nil {
				t.Error(err)
				return
			}
			if !bytes.Equal(floatBytes(values(t, got)), floatBytes(values(t, want))) {
				t.Error("concurrent prediction differs")
			}
		}()
	}
	wg.Wait()
}

func floatBytes(v []float32) []byte {
	var b bytes.Buffer
	for _, f := range v {
		bits := math.Float32bits(f)
		b.Write([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
	}
	return b.Bytes()
}

func TestFitLowersLoss(t *testing.T) {
	c := small()
	c.LearningRate = 0.01
	m := MustNew(c)
	var logs bytes.Buffer
	m.SetLogger(&logs)
	h, err := m.Fit(sineWindows(t, 400, 4), sineWindows(t, 100, 5), FitOptions{BatchSize: 16, Epochs: 8, Verbose: 2})
	if err != nil {
		t.Fatal(err)
	}
	if h.Epochs() != 8 {
		t.Fatalf("%d epochs", h.Epochs())
	}
	if h.Loss[7] >= h.Loss[0] {
		t.Errorf("loss did not decrease: %v", h.Loss)
	}
	out := logs.String()
	for _, want := range []string{"> Starting the Training...", "Epoch 8/8", "> Training Time :"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}

func meanError(t *testing.T, m *TCNAE, x *tensor.Dense) float64 {
	e, err := m.Predict(x)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	v := values(t, e)
	for _, f := range v {
		sum += float64(f)
	}
	return sum / float64(len(v))
}

func TestEarlyStoppingKeepsBest(t *testing.T) {
	c := small()
	c.LearningRate = 0.01
	c.UseEarlyStopping = true
	c.Patience = 1
	c.MinDelta = 0.5
	m := MustNew(c)
	valid := sineWindows(t, 100, 6)
	h, err := m.Fit(sineWindows(t, 200, 7), valid, FitOptions{BatchSize: 8, Epochs: 10})
	if err != nil {
		t.Fatal(err)
	}
	if h.StoppedEpoch < 0 {
		t.Fatalf("early stopping never triggered: %v", h.ValLoss)
	}
	got := meanError(t, m, valid)
	best := h.ValLoss[0]
	for _, v := range h.ValLoss[:h.StoppedEpoch+1] {
		if v < best-c.MinDelta {
			best = v
		}
	}
	if math.Abs(got-best) > 1e-4*math.Max(1, best) {
		t.Errorf("validation loss after restore %f, best seen %f (%v)", got, best, h.ValLoss)
	}
}

func TestRebuildResetsParameters(t *testing.T) {
	m := MustNew(small())
	initial := m.Fingerprint()
	if _, err := m.Fit(sineWindows(t, 100, 8), sineWindows(t, 40, 9), FitOptions{Epochs: 1}); err != nil {
		t.Fatal(err)
	}
	trained := m.Fingerprint()
	if trained == initial {
		t.Fatal("training left the parameters unchanged")
	}
	if err := m.BuildModel(); err != nil {
		t.Fatal(err)
	}
	if got := m.Fingerprint(); got == trained || got != initial {
		t.Errorf("rebuild fingerprint %s, initial %s, trained %s", got, initial, trained)
	}
	if m.History() != nil {
		t.Error("rebuild kept the training history")
	}
}

func TestWeightsFileRoundTrip(t *testing.T) {
	a := MustNew(small())
	if _, err := a.Fit(sineWindows(t, 100, 10), sineWindows(t, 40, 11), FitOptions{Epochs: 1}); err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(t.TempDir(), "weights.json.lzw")
	if err := a.WriteCompressedWeightsToFile(name); err != nil {
		t.Fatal(err)
	}
	c := small()
	c.Seed = 99
	b := MustNew(c)
	resume := true
	if err := trainer.Resume(b, &resume, &name); err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints differ after loading weights")
	}
	x := sineWindows(t, 60, 12)
	if meanError(t, a, x) != meanError(t, b, x) {
		t.Error("predictions differ after loading weights")
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	a := MustNew(small())
	first, err := a.SaveCheckpoint(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Fit(sineWindows(t, 100, 13), sineWindows(t, 40, 14),
		FitOptions{Epochs: 1, Store: s, Parent: first}); err != nil {
		t.Fatal(err)
	}
	second := a.LastCheckpoint()
	latest, err := s.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest.VersionID != second || latest.ParentID != first || len(latest.History) == 0 {
		t.Fatalf("latest checkpoint %s parent %s, want %s parent %s", latest.VersionID, latest.ParentID, second, first)
	}

	cfg, err := LoadConfig(s, second)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 1234
	b := MustNew(cfg)
	if err := b.LoadCheckpoint(s, second); err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints differ after loading the checkpoint")
	}
	if err := b.LoadCheckpoint(s, first); err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("loading the parent checkpoint kept the trained weights")
	}
}

func TestShapeErrors(t *testing.T) {
	m := MustNew(small())
	good := sineWindows(t, 40, 15)
	wrongWindow, _ := datasets.Windows(datasets.Sine(40, 8, 0, 1), 12, 4)
	rank2 := series.Matrix(2, 16, make([]float32, 32))
	for name, x := range map[string]*tensor.Dense{
		"window": wrongWindow,
		"rank":   rank2,
		"nil":    nil,
	} {
		if _, err := m.Predict(x); err == nil {
			t.Errorf("%s: Predict accepted", name)
		}
		if _, err := m.Fit(good, x, FitOptions{Epochs: 1}); err == nil {
			t.Errorf("%s: Fit accepted as validation set", name)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"zero window":      func(c *Config) { c.WindowLength = 0 },
		"factor too large": func(c *Config) { c.LatentSampleRate = 17 },
		"no dilations":     func(c *Config) { c.Dilations = nil },
		"valid padding":    func(c *Config) { c.Padding = "valid" },
		"unknown padding":  func(c *Config) { c.Padding = "reflect" },
		"unknown pooler":   func(c *Config) { c.Pooler = "median" },
		"unknown loss":     func(c *Config) { c.Loss = "hinge" },
		"unknown init":     func(c *Config) { c.ConvKernelInit = "orthogonal" },
		"unknown act":      func(c *Config) { c.ActivationConv1D = "gelu" },
		"dropout":          func(c *Config) { c.DropoutRate = 1 },
		"learning rate":    func(c *Config) { c.LearningRate = 0 },
		"optimizer":        func(c *Config) { c.Optimizer = "rmsprop" },
		"momentum":         func(c *Config) { c.Optimizer, c.Momentum = "sgd", 1 },
	} {
		c := small()
		mutate(&c)
		if _, err := New(c); err == nil {
			t.Errorf("%s accepted", name)
		}
	}
}

func TestSummary(t *testing.T) {
	m := MustNew(small())
	s := m.Summary()
	for _, want := range []string{"tcn-enc (TCN)", "tcn-dec (TCN)", "(None, 4, 2)", "(None, 16, 1)"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q:\n%s", want, s)
		}
	}
	if !strings.Contains(s, "Total params: ") || m.CountParams() == 0 {
		t.Errorf("summary:\n%s", s)
	}
}

func TestDropoutTraining(t *testing.T) {
	c := small()
	c.DropoutRate = 0.2
	m := MustNew(c)
	h, err := m.Fit(sineWindows(t, 100, 16), sineWindows(t, 40, 17), FitOptions{Epochs: 2})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range append(h.Loss, h.ValLoss...) {
		if math.IsNaN(v) || v < 0 {
			t.Fatalf("history %+v", h)
		}
	}
}

func TestEmptyBatch(t *testing.T) {
	m := MustNew(small())
	empty := tensor.New(tensor.WithShape(0, 16, 1), tensor.Of(tensor.Float32))
	if _, err := m.Predict(empty); err == nil {
		t.Error("Predict accepted an empty batch")
	}
	if _, err := m.Reconstruct(empty); err == nil {
		t.Error("Reconstruct accepted an empty batch")
	}
	_, err := m.Fit(empty, sineWindows(t, 40, 20), FitOptions{Epochs: 1})
	if err == nil || !strings.Contains(err.Error(), "empty training set") {
		t.Errorf("Fit on an empty training set: %v", err)
	}
	h, err := m.Fit(sineWindows(t, 40, 21), empty, FitOptions{Epochs: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(h.ValLoss[0]) {
		t.Errorf("val_loss %v without validation series", h.ValLoss[0])
	}
}

func TestThreadsPerModel(t *testing.T) {
	ca, cb := small(), small()
	ca.Threads, cb.Threads = 1, 3
	a, b := MustNew(ca), MustNew(cb)
	for name, m := range map[string]*TCNAE{"a": a, "b": b} {
		want := m.Config().Threads
		if got := m.net.Threads(); got != want {
			t.Errorf("%s: network threads %d, want %d", name, got, want)
		}
		if got := m.net.GetNode(1).(*conv1d.Conv1D).Threads(); got != want {
			t.Errorf("%s: conv1d threads %d, want %d", name, got, want)
		}
		if got := m.net.GetNode(7).(*dense.Dense).Threads(); got != want {
			t.Errorf("%s: dense threads %d, want %d", name, got, want)
		}
	}
}

func TestShuffledByDefault(t *testing.T) {
	x, v := sineWindows(t, 100, 22), sineWindows(t, 40, 23)
	shuffled, ordered := MustNew(small()), MustNew(small())
	if _, err := shuffled.Fit(x, v, FitOptions{Epochs: 1, BatchSize: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := ordered.Fit(x, v, FitOptions{Epochs: 1, BatchSize: 4, KeepOrder: true}); err != nil {
		t.Fatal(err)
	}
	if shuffled.Fingerprint() == ordered.Fingerprint() {
		t.Error("zero FitOptions trained in the original order")
	}
}

func TestVerboseEpochs(t *testing.T) {
	m := MustNew(small())
	var buf bytes.Buffer
	m.SetLogger(&buf)
	if _, err := m.Fit(sineWindows(t, 60, 24), sineWindows(t, 40, 25), FitOptions{Epochs: 2, Verbose: 1}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"> Starting the Training...", "Epoch 1/2", "Epoch 2/2", "> Training Time :"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestSGDOptimizer(t *testing.T) {
	c := small()
	c.Optimizer = "sgd"
	c.Momentum = 0.9
	c.LearningRate = 0.01
	hp, err := c.hyperParameters()
	if err != nil {
		t.Fatal(err)
	}
	if hp.Optimizer != "sgd" || hp.Momentum != 0.9 {
		t.Fatalf("hyperparameters %+v", hp)
	}
	m := MustNew(c)
	before := m.Fingerprint()
	h, err := m.Fit(sineWindows(t, 100, 26), sineWindows(t, 40, 27), FitOptions{Epochs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if m.Fingerprint() == before {
		t.Error("sgd left the parameters unchanged")
	}
	for _, v := range append(h.Loss, h.ValLoss...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("history %+v", h)
		}
	}
}

func TestCheckpointFingerprintMismatch(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	m := MustNew(small())
	w := m.net.Weights()
	for i := range w {
		w[i] += 1
	}
	rec, err := s.SaveCheckpoint(store.Checkpoint{Weights: w, Fingerprint: m.Fingerprint()})
	if err != nil {
		t.Fatal(err)
	}
	before := m.Fingerprint()
	if err := m.LoadCheckpoint(s, rec.VersionID); err == nil {
		t.Fatal("checkpoint with a foreign fingerprint loaded")
	}
	if m.Fingerprint() != before {
		t.Error("rejected checkpoint replaced the weights")
	}
	if m.LastCheckpoint() == rec.VersionID {
		t.Error("rejected checkpoint recorded as loaded")
	}
}
