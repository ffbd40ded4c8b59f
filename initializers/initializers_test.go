package initializers

import "math"
import "math/rand"
import "testing"

func TestGlorotUniformBounds(t *testing.T) {
	ws := make([]float32, 10000)
	GlorotUniform(ws, 20, 30, rand.New(rand.NewSource(1)))
	limit := float32(math.Sqrt(6.0 / 50))
	for i, w := range ws {
		if w < -limit || w > limit {
			t.Fatalf("weight %d = %f outside ±%f", i, w, limit)
		}
	}
}

func TestNormalVariance(t *testing.T) {
	for _, tc := range []struct {
		name  string
		want  float64
		fanIn int
		fanOu int
	}{
		{"glorot_normal", 2.0 / 60, 20, 40},
		{"he_normal", 2.0 / 20, 20, 40},
		{"lecun_normal", 1.0 / 20, 20, 40},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Get(tc.name)
			if err != nil {
				t.Fatal(err)
			}
			ws := make([]float32, 200000)
			f(ws, tc.fanIn, tc.fanOu, rand.New(rand.NewSource(2)))
			var sum, sq float64
			for _, w := range ws {
				sum += float64(w)
				sq += float64(w) * float64(w)
			}
			mean := sum / float64(len(ws))
			variance := sq/float64(len(ws)) - mean*mean
			if math.Abs(variance-tc.want) > 0.1*tc.want {
				t.Errorf("variance %f, want about %f", variance, tc.want)
			}
		})
	}
}

func TestUnknown(t *testing.T) {
	if _, err := Get("orthogonal"); err == nil {
		t.Error("unknown initializer accepted")
	}
	if len(Names()) != 7 {
		t.Errorf("names %v", Names())
	}
}
