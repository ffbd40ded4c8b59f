package dropout

import "math/rand"
import "testing"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

func ones(n, steps, ch int) *series.Batch {
	b := series.New(n, steps, ch)
	for i := range b.Data {
		b.Data[i] = 1
	}
	return b
}

func TestInference(t *testing.T) {
	node := MustNew(0.5).Node(layer.Shape{Steps: 4, Channels: 3}, rand.New(rand.NewSource(1)))
	x := ones(2, 4, 3)
	if y := node.Forward(x, false); y != x {
		t.Error("dropout altered inference input")
	}
}

func TestSpatial(t *testing.T) {
	node := MustNew(0.5).Node(layer.Shape{Steps: 6, Channels: 16}, rand.New(rand.NewSource(1)))
	x := ones(8, 6, 16)
	y := node.Forward(x, true)
	var kept, total int
	for n := 0; n < y.Len; n++ {
		for c := 0; c < y.Channels; c++ {
			first := y.At(n, 0, c)
			if first != 0 && first != 2 {
				t.Fatalf("value %f is neither dropped nor scaled", first)
			}
			for s := 1; s < y.Steps; s++ {
				if y.At(n, s, c) != first {
					t.Fatalf("channel %d of series %d not dropped as a whole", c, n)
				}
			}
			if first != 0 {
				kept++
			}
			total++
		}
	}
	if kept == 0 || kept == total {
		t.Errorf("kept %d of %d channels", kept, total)
	}
	dx := node.Backward(ones(8, 6, 16))
	for i := range dx.Data {
		if dx.Data[i] != y.Data[i] {
			t.Fatal("gradient mask differs from forward mask")
		}
	}
}

func TestMasksChange(t *testing.T) {
	node := MustNew(0.5).Node(layer.Shape{Steps: 1, Channels: 64}, rand.New(rand.NewSource(1)))
	a := node.Forward(ones(1, 1, 64), true)
	b := node.Forward(ones(1, 1, 64), true)
	same := true
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			same = false
		}
	}
	if same {
		t.Error("consecutive training passes used the same mask")
	}
}

func TestRate(t *testing.T) {
	if _, err := New(1); err == nil {
		t.Error("rate 1 accepted")
	}
	if _, err := New(-0.1); err == nil {
		t.Error("negative rate accepted")
	}
}
