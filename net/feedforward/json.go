package feedforward

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

type jsonParam struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Value []float32 `json:"value"`
}

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (f *FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)

	_, err := lw.Write([]byte("[\n"))
	if err != nil {
		return err
	}
	for i, p := range f.Params() {
		if i != 0 {
			_, err = lw.Write([]byte(",\n"))
			if err != nil {
				return err
			}
		}
		buf, err := json.Marshal(jsonParam{Name: p.Name, Shape: p.Shape, Value: p.Value})
		if err != nil {
			return err
		}
		_, err = lw.Write(buf)
		if err != nil {
			return err
		}
	}
	_, err = lw.Write([]byte("\n]\n"))
	if err != nil {
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = f.ReadCompressedWeights(file)
	file.Close()
	return err
}

// ReadCompressedWeights reads model weights from a reader. Parameters must
// match the built network by order, name and shape. Nothing is modified
// unless the whole file matches.
func (f *FeedforwardNetwork) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var params []jsonParam
	if err := json.NewDecoder(lr).Decode(&params); err != nil {
		return errors.Wrap(err, "decode weights")
	}
	mine := f.Params()
	if len(params) != len(mine) {
		return errors.Errorf("weights file has %d parameters, network has %d", len(params), len(mine))
	}
	for i, p := range mine {
		q := params[i]
		if q.Name != p.Name || !sameShape(q.Shape, p.Shape) || len(q.Value) != p.Len() {
			return errors.Errorf("weights file parameter %d is %s%v, network expects %s%v",
				i, q.Name, q.Shape, p.Name, p.Shape)
		}
	}
	for i, p := range mine {
		copy(p.Value, params[i].Value)
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
