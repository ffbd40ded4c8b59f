package tcnae

import (
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/neurlang/tcnae/parallel"
	"github.com/neurlang/tcnae/store"
)

// Fingerprint is the hex SHA-256 digest of all parameters in order.
func (m *TCNAE) Fingerprint() string {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.fingerprint()
}

func (m *TCNAE) fingerprint() string {
	return fingerprint(m.net.Weights(), m.net.Threads())
}

// fingerprint hashes the flattened parameters w.
func fingerprint(w []float32, threads int) string {
	h := parallel.NewFloat32Hasher(len(w))
	parallel.ForChunks(len(w), threads, func(from, to int) {
		for i := from; i < to; i++ {
			h.MustPutFloat32(i, w[i])
		}
	})
	sum := h.Sum()
	return hex.EncodeToString(sum[:])
}

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (m *TCNAE) WriteCompressedWeightsToFile(name string) error {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.net.WriteCompressedWeightsToFile(name)
}

// WriteCompressedWeights writes model weights to a writer
func (m *TCNAE) WriteCompressedWeights(w io.Writer) error {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.net.WriteCompressedWeights(w)
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (m *TCNAE) ReadCompressedWeightsFromFile(name string) error {
	m.mut.Lock()
	defer m.mut.Unlock()
	return m.net.ReadCompressedWeightsFromFile(name)
}

// ReadCompressedWeights reads model weights from a reader
func (m *TCNAE) ReadCompressedWeights(r io.Reader) error {
	m.mut.Lock()
	defer m.mut.Unlock()
	return m.net.ReadCompressedWeights(r)
}

// SaveCheckpoint stores the configuration, weights and last training history
// as a new version whose parent is parent, returning the version id.
func (m *TCNAE) SaveCheckpoint(s *store.Store, parent string) (string, error) {
	m.mut.Lock()
	defer m.mut.Unlock()
	return m.saveCheckpoint(s, parent)
}

func (m *TCNAE) saveCheckpoint(s *store.Store, parent string) (string, error) {
	cfg, err := json.Marshal(m.cfg)
	if err != nil {
		return "", errors.Wrap(err, "marshal config")
	}
	var hist []byte
	if m.history != nil {
		if hist, err = json.Marshal(m.history); err != nil {
			return "", errors.Wrap(err, "marshal history")
		}
	}
	rec, err := s.SaveCheckpoint(store.Checkpoint{
		ParentID:    parent,
		Config:      cfg,
		Weights:     m.net.Weights(),
		Fingerprint: m.fingerprint(),
		History:     hist,
	})
	if err != nil {
		return "", err
	}
	m.checkpoint = rec.VersionID
	return rec.VersionID, nil
}

// LastCheckpoint is the version id of the last checkpoint saved or loaded.
func (m *TCNAE) LastCheckpoint() string {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return m.checkpoint
}

// LoadCheckpoint loads the weights of version id. The checkpoint must have
// been saved from a model with the same architecture.
func (m *TCNAE) LoadCheckpoint(s *store.Store, id string) error {
	rec, err := s.GetCheckpoint(id)
	if err != nil {
		return err
	}
	m.mut.Lock()
	defer m.mut.Unlock()
	if rec.Fingerprint != "" && rec.Fingerprint != fingerprint(rec.Weights, m.net.Threads()) {
		return errors.Errorf("checkpoint %s: fingerprint mismatch", id)
	}
	if err := m.net.SetWeights(rec.Weights); err != nil {
		return errors.Wrapf(err, "checkpoint %s", id)
	}
	m.checkpoint = rec.VersionID
	return nil
}

// LoadConfig decodes the configuration stored with a checkpoint, so a model
// with the matching architecture can be created before LoadCheckpoint.
func LoadConfig(s *store.Store, id string) (Config, error) {
	rec, err := s.GetCheckpoint(id)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(rec.Config, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "checkpoint %s config", id)
	}
	return cfg, nil
}
