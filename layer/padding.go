package layer

import "github.com/pkg/errors"

// Padding selects how a convolution treats the series boundaries.
type Padding string

const (
	// Causal pads only on the left so output t sees inputs up to t.
	Causal Padding = "causal"
	// Same pads symmetrically (extra step on the right) keeping the length.
	Same Padding = "same"
	// Valid does not pad and shortens the series.
	Valid Padding = "valid"
)

// ParsePadding validates a padding name.
func ParsePadding(s string) (Padding, error) {
	switch Padding(s) {
	case Causal, Same, Valid:
		return Padding(s), nil
	}
	return "", errors.Errorf("layer: unknown padding %q (want causal, same or valid)", s)
}

// Left is the number of zero steps inserted before the series for a kernel
// of size kernel with the given dilation.
func (p Padding) Left(kernel, dilation int) int {
	switch p {
	case Causal:
		return (kernel - 1) * dilation
	case Same:
		return (kernel - 1) * dilation / 2
	}
	return 0
}

// OutSteps is the output length for an input of steps timesteps.
func (p Padding) OutSteps(steps, kernel, dilation int) int {
	if p == Valid {
		return steps - (kernel-1)*dilation
	}
	return steps
}
