package tcnae_test

import (
	"fmt"

	"github.com/neurlang/tcnae/datasets"
	"github.com/neurlang/tcnae/net/tcnae"
)

func Example() {
	signal := datasets.Sine(2000, 50, 0.05, 1)
	_ = datasets.InjectAnomaly(signal, 1500, 1520, 2)

	x, err := datasets.Windows(signal, 128, 16)
	if err != nil {
		panic(err)
	}
	train, valid, err := datasets.Split(x, 0.8, nil)
	if err != nil {
		panic(err)
	}

	cfg := tcnae.DefaultConfig()
	cfg.Verbose = 0
	model := tcnae.MustNew(cfg)
	if _, err := model.Fit(train, valid, tcnae.FitOptions{Epochs: 5}); err != nil {
		panic(err)
	}

	errs, err := model.Predict(x)
	if err != nil {
		panic(err)
	}
	scores, err := datasets.Unwindow(errs, 16, len(signal))
	if err != nil {
		panic(err)
	}
	var worst int
	for t, s := range scores {
		if s > scores[worst] {
			worst = t
		}
	}
	fmt.Println("most anomalous step:", worst)
}
