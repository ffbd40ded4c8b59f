package tcnae

import "github.com/pkg/errors"

import "github.com/neurlang/tcnae/initializers"
import "github.com/neurlang/tcnae/layer"
import "github.com/neurlang/tcnae/layer/activation"
import "github.com/neurlang/tcnae/learning"
import "github.com/neurlang/tcnae/layer/pool1d"
import "github.com/neurlang/tcnae/losses"

// Config holds the hyperparameters of a TCN autoencoder.
type Config struct {
	TSDimension        int     `json:"ts_dimension"`       // channels per timestep
	WindowLength       int     `json:"window_length"`      // timesteps per series
	Dilations          []int   `json:"dilations"`          // dilation of each residual block in a stack
	NbFilters          int     `json:"nb_filters"`         // filters of every TCN convolution
	KernelSize         int     `json:"kernel_size"`        // kernel size of every TCN convolution
	NbStacks           int     `json:"nb_stacks"`          // repetitions of the dilation list
	Padding            string  `json:"padding"`            // "same" or "causal"
	DropoutRate        float32 `json:"dropout_rate"`       // spatial dropout inside the residual blocks
	FiltersConv1D      int     `json:"filters_conv1d"`     // channels of the latent representation
	ActivationConv1D   string  `json:"activation_conv1d"`  // activation of the channel projection
	LatentSampleRate   int     `json:"latent_sample_rate"` // pooling and upsampling factor
	Pooler             string  `json:"pooler"`             // "average" or "max"
	LearningRate       float32 `json:"learning_rate"`
	Optimizer          string  `json:"optimizer,omitempty"` // "adam" (empty) or "sgd"
	Momentum           float32 `json:"momentum,omitempty"`  // sgd momentum
	ConvKernelInit     string  `json:"conv_kernel_init"`
	Loss               string  `json:"loss"`
	UseEarlyStopping   bool    `json:"use_early_stopping"`
	TCNActivation      string  `json:"tcn_activation"`
	UseSkipConnections bool    `json:"use_skip_connections"`
	Patience           int     `json:"patience"`
	MinDelta           float64 `json:"min_delta"`
	Seed               int64   `json:"seed"`    // 0 seeds from the clock
	Threads            int     `json:"threads"` // 0 uses the detected parallelism
	Verbose            int     `json:"verbose"`
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		TSDimension:        1,
		WindowLength:       128,
		Dilations:          []int{1, 2, 4, 8, 16},
		NbFilters:          20,
		KernelSize:         20,
		NbStacks:           1,
		Padding:            "same",
		DropoutRate:        0.00,
		FiltersConv1D:      8,
		ActivationConv1D:   "linear",
		LatentSampleRate:   42,
		Pooler:             "average",
		LearningRate:       0.001,
		ConvKernelInit:     "glorot_normal",
		Loss:               "mean_squared_error",
		UseEarlyStopping:   false,
		TCNActivation:      "relu",
		UseSkipConnections: true,
		Patience:           2,
		MinDelta:           1e-4,
		Verbose:            1,
	}
}

func (c *Config) clone() Config {
	o := *c
	o.Dilations = append([]int(nil), c.Dilations...)
	return o
}

// Validate reports the first invalid hyperparameter.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"ts_dimension", c.TSDimension},
		{"window_length", c.WindowLength},
		{"nb_filters", c.NbFilters},
		{"kernel_size", c.KernelSize},
		{"nb_stacks", c.NbStacks},
		{"filters_conv1d", c.FiltersConv1D},
		{"latent_sample_rate", c.LatentSampleRate},
	}
	for _, p := range positive {
		if p.value < 1 {
			return errors.Errorf("tcnae: %s must be positive, got %d", p.name, p.value)
		}
	}
	if len(c.Dilations) == 0 {
		return errors.New("tcnae: dilations must not be empty")
	}
	for _, d := range c.Dilations {
		if d < 1 {
			return errors.Errorf("tcnae: dilation %d must be positive", d)
		}
	}
	if c.LatentSampleRate > c.WindowLength {
		return errors.Errorf("tcnae: latent_sample_rate %d exceeds window_length %d", c.LatentSampleRate, c.WindowLength)
	}
	if p, err := layer.ParsePadding(c.Padding); err != nil {
		return err
	} else if p == layer.Valid {
		return errors.New("tcnae: valid padding would shorten the series inside the residual blocks")
	}
	if _, err := pool1d.ParsePooler(c.Pooler); err != nil {
		return err
	}
	if c.DropoutRate < 0 || c.DropoutRate >= 1 {
		return errors.Errorf("tcnae: dropout_rate %f outside [0, 1)", c.DropoutRate)
	}
	if !(c.LearningRate > 0) {
		return errors.Errorf("tcnae: learning_rate must be positive, got %f", c.LearningRate)
	}
	if _, err := c.hyperParameters(); err != nil {
		return errors.Wrap(err, "tcnae")
	}
	for _, name := range []string{c.ActivationConv1D, c.TCNActivation} {
		if _, err := activation.Get(name); err != nil {
			return err
		}
	}
	if _, err := initializers.Get(c.ConvKernelInit); err != nil {
		return err
	}
	if _, err := losses.Get(c.Loss); err != nil {
		return err
	}
	if c.UseEarlyStopping && c.Patience < 1 {
		return errors.Errorf("tcnae: patience must be positive, got %d", c.Patience)
	}
	return nil
}

// hyperParameters describes the optimizer of the model. Adam always runs
// with AMSGrad.
func (c *Config) hyperParameters() (learning.HyperParameters, error) {
	var hp learning.HyperParameters
	switch c.Optimizer {
	case "", "adam":
		hp = learning.Adam(c.LearningRate)
	case "sgd":
		hp = learning.SGD(c.LearningRate, c.Momentum)
	default:
		return hp, errors.Errorf("unknown optimizer %q", c.Optimizer)
	}
	return hp, hp.Validate()
}
