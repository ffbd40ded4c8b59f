package trainer

import "bytes"
import "errors"
import "log"
import "math"
import "math/rand"
import "strings"
import "testing"

import "github.com/neurlang/tcnae/series"

// scripted pretends to train: its single weight is the epoch counter and the
// validation loss of each epoch is read from a script.
type scripted struct {
	script  []float64
	weight  float32
	batches int
	samples int
	nan     bool
}

func (s *scripted) TrainBatch(x *series.Batch) (float64, error) {
	s.batches++
	s.samples += x.Len
	if s.nan {
		return math.NaN(), nil
	}
	return 1, nil
}

func (s *scripted) Loss(x *series.Batch) (float64, error) {
	// called once per epoch for small validation sets
	s.weight++
	return s.script[int(s.weight)-1], nil
}

func (s *scripted) Weights() []float32 { return []float32{s.weight} }

func (s *scripted) SetWeights(w []float32) error {
	if len(w) != 1 {
		return errors.New("bad weights")
	}
	s.weight = w[0]
	return nil
}

func batch(n int) *series.Batch {
	return series.New(n, 4, 1)
}

func TestBatches(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bs := Batches(10, 4, rng)
	if len(bs) != 3 || len(bs[2]) != 2 {
		t.Fatalf("batch sizes %v", bs)
	}
	seen := make(map[int]bool)
	for _, b := range bs {
		for _, i := range b {
			if seen[i] {
				t.Fatalf("index %d repeated", i)
			}
			seen[i] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("%d distinct indexes", len(seen))
	}
	plain := Batches(5, 0, nil)
	if len(plain) != 1 || plain[0][4] != 4 {
		t.Errorf("unshuffled batches %v", plain)
	}
}

func TestFitRunsAllEpochs(t *testing.T) {
	m := &scripted{script: []float64{5, 4, 3, 2, 1}}
	h, err := Fit(m, batch(10), batch(2), Options{BatchSize: 3, Epochs: 5, Shuffle: true})
	if err != nil {
		t.Fatal(err)
	}
	if h.Epochs() != 5 || h.StoppedEpoch != -1 || h.BestEpoch != 4 {
		t.Errorf("history %+v", h)
	}
	if m.batches != 20 || m.samples != 50 {
		t.Errorf("%d batches of %d samples", m.batches, m.samples)
	}
}

func TestEarlyStoppingRestoresBest(t *testing.T) {
	m := &scripted{script: []float64{5, 3, 3.00005, 4, 1, 1}}
	var buf bytes.Buffer
	h, err := Fit(m, batch(4), batch(2), Options{
		BatchSize:     4,
		Epochs:        6,
		EarlyStopping: NewEarlyStopping(2, 1e-4),
		Logger:        log.New(&buf, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if h.StoppedEpoch != 3 || h.Epochs() != 4 {
		t.Errorf("stopped at %d after %d epochs", h.StoppedEpoch, h.Epochs())
	}
	if m.weight != 2 {
		t.Errorf("weights of epoch %v restored, want 2", m.weight)
	}
	if h.BestValLoss() != 3 {
		t.Errorf("best val loss %f", h.BestValLoss())
	}
	if !strings.Contains(buf.String(), "Epoch 1/6") || !strings.Contains(buf.String(), "early stopping") {
		t.Errorf("log output %q", buf.String())
	}
}

func TestFitRejectsNaN(t *testing.T) {
	m := &scripted{script: []float64{1}, nan: true}
	if _, err := Fit(m, batch(2), batch(1), Options{Epochs: 1}); err == nil {
		t.Error("NaN loss accepted")
	}
	if _, err := Fit(m, batch(0), batch(1), Options{Epochs: 1}); err == nil {
		t.Error("empty training set accepted")
	}
}

type recorder struct{ name string }

func (r *recorder) ReadCompressedWeightsFromFile(name string) error {
	r.name = name
	return nil
}

func TestResume(t *testing.T) {
	var r recorder
	yes, no := true, false
	file := "model.json.lzw"
	if err := Resume(&r, &no, &file); err != nil || r.name != "" {
		t.Error("resumed without the flag")
	}
	if err := Resume(&r, &yes, &file); err != nil || r.name != file {
		t.Errorf("resume read %q, %v", r.name, err)
	}
}
