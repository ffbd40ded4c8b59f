package feedforward

import "bytes"
import "math/rand"
import "strings"
import "testing"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/layer/activation"
import "github.com/neurlang/tcnae/layer/conv1d"
import "github.com/neurlang/tcnae/layer/dense"
import "github.com/neurlang/tcnae/layer/layertest"

func small(seed int64) *FeedforwardNetwork {
	var net FeedforwardNetwork
	net.NewLayer("Conv1D", conv1d.MustNew(4, 3, 1, layer.Same, "glorot_uniform"))
	net.NewLayer("Activation", activation.MustNew("tanh"))
	net.NewLayer("Dense", dense.MustNew(2, "glorot_uniform"))
	if err := net.Build(layer.Shape{Steps: 6, Channels: 2}, rand.New(rand.NewSource(seed))); err != nil {
		panic(err)
	}
	return &net
}

func TestForwardShape(t *testing.T) {
	net := small(1)
	y := net.Forward(layertest.RandomBatch(rand.New(rand.NewSource(2)), 3, 6, 2), false)
	if y.Len != 3 || y.Steps != 6 || y.Channels != 2 {
		t.Fatalf("output (%d, %d, %d)", y.Len, y.Steps, y.Channels)
	}
	if net.CountParams() != 4*3*2+4+2*4+2 {
		t.Errorf("%d params", net.CountParams())
	}
	if s := net.Summary("test"); !strings.Contains(s, "Total params: 38") {
		t.Errorf("summary:\n%s", s)
	}
}

func TestWeightsFileRoundTrip(t *testing.T) {
	a, b := small(1), small(2)
	x := layertest.RandomBatch(rand.New(rand.NewSource(3)), 2, 6, 2)
	var buf bytes.Buffer
	if err := a.WriteCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	if err := b.ReadCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	ya, yb := a.Forward(x, false), b.Forward(x, false)
	for i := range ya.Data {
		if ya.Data[i] != yb.Data[i] {
			t.Fatalf("outputs differ after loading weights")
		}
	}
}

func TestWeightsFileMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := small(1).WriteCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	var other FeedforwardNetwork
	other.NewLayer("Dense", dense.MustNew(3, "zeros"))
	if err := other.Build(layer.Shape{Steps: 6, Channels: 2}, rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	if err := other.ReadCompressedWeights(&buf); err == nil {
		t.Error("mismatched weights file accepted")
	}
}

func TestSetWeights(t *testing.T) {
	net := small(1)
	w := net.Weights()
	for i := range w {
		w[i] = 0
	}
	if err := net.SetWeights(w); err != nil {
		t.Fatal(err)
	}
	for _, v := range net.Weights() {
		if v != 0 {
			t.Fatal("weights not restored")
		}
	}
	if err := net.SetWeights(w[1:]); err == nil {
		t.Error("short weight vector accepted")
	}
}

func TestGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	net := small(5)
	layertest.CheckGradients(t, &chain{net}, layertest.RandomBatch(rng, 2, 6, 2), rng)
}

// chain adapts the network to the node contract for gradient checking.
type chain struct{ *FeedforwardNetwork }

func (c *chain) Name() string { return "chain" }
