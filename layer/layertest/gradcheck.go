// Package layertest holds finite difference gradient checks shared by the
// layer package tests.
package layertest

import "math"
import "math/rand"
import "testing"

import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/series"

// RandomBatch fills a batch with values uniform in [-1, 1).
func RandomBatch(rng *rand.Rand, n, steps, channels int) *series.Batch {
	b := series.New(n, steps, channels)
	for i := range b.Data {
		b.Data[i] = float32(2*rng.Float64() - 1)
	}
	return b
}

func weighted(y, r *series.Batch) (s float64) {
	for i := range y.Data {
		s += float64(y.Data[i]) * float64(r.Data[i])
	}
	return
}

// CheckGradients compares the analytic gradients of node against central
// differences of the loss sum(y * r) for a random projection r.
func CheckGradients(t *testing.T, node layer.Node, x *series.Batch, rng *rand.Rand) {
	t.Helper()
	const eps = 1e-2
	const tol = 2e-2

	y := node.Forward(x, true)
	out := node.Out()
	if y.Steps != out.Steps || y.Channels != out.Channels || y.Len != x.Len {
		t.Fatalf("%s: output (%d, %d, %d) does not match declared shape %+v",
			node.Name(), y.Len, y.Steps, y.Channels, out)
	}
	r := RandomBatch(rng, y.Len, y.Steps, y.Channels)
	for _, p := range node.Params() {
		p.ZeroGrad()
	}
	dx := node.Backward(r)
	if !series.SameShape(dx, x) {
		t.Fatalf("%s: input gradient shape (%d, %d, %d) differs from input", node.Name(), dx.Len, dx.Steps, dx.Channels)
	}

	check := func(what string, i int, v *float32, analytic float32) {
		orig := *v
		*v = orig + eps
		up := weighted(node.Forward(x, false), r)
		*v = orig - eps
		down := weighted(node.Forward(x, false), r)
		*v = orig
		numeric := (up - down) / (2 * eps)
		scale := math.Max(1, math.Max(math.Abs(numeric), math.Abs(float64(analytic))))
		if math.Abs(numeric-float64(analytic)) > tol*scale {
			t.Errorf("%s: %s[%d] analytic %f numeric %f", node.Name(), what, i, analytic, numeric)
		}
	}
	for i := range x.Data {
		check("input", i, &x.Data[i], dx.Data[i])
	}
	for _, p := range node.Params() {
		for i := range p.Value {
			check(p.Name, i, &p.Value[i], p.Grad[i])
		}
	}
}
