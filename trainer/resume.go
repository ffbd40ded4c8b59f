package trainer

import "github.com/pkg/errors"

// WeightsReader loads parameters from a weights file.
type WeightsReader interface {
	ReadCompressedWeightsFromFile(name string) error
}

// Resume loads the weights in dstmodel into net when resume is requested.
// A missing flag or file name is not an error.
func Resume(net WeightsReader, resume *bool, dstmodel *string) error {
	if resume == nil || !*resume || dstmodel == nil || *dstmodel == "" {
		return nil
	}
	if err := net.ReadCompressedWeightsFromFile(*dstmodel); err != nil {
		return errors.Wrapf(err, "resume from %s", *dstmodel)
	}
	return nil
}
