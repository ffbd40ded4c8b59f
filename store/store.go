// Package store keeps versioned model checkpoints in a SQLite database.
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL UNIQUE,
	parent_id     TEXT,
	config_json   TEXT NOT NULL,
	weights       BLOB NOT NULL,
	fingerprint   TEXT NOT NULL,
	history_json  TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES checkpoints(version_id)
);
`

// ErrNotFound is returned when no checkpoint matches.
var ErrNotFound = errors.New("store: checkpoint not found")

// Checkpoint is one saved version of a model.
type Checkpoint struct {
	VersionID   string
	ParentID    string
	Config      json.RawMessage
	Weights     []float32
	Fingerprint string
	History     json.RawMessage
	CreatedAt   time.Time
}

// Store manages checkpoints in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma fk")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCheckpoint inserts c as a new version. A missing version id is
// generated, the creation time is set and the stored record is returned.
func (s *Store) SaveCheckpoint(c Checkpoint) (Checkpoint, error) {
	if c.VersionID == "" {
		c.VersionID = uuid.New().String()
	}
	if len(c.Config) == 0 {
		c.Config = json.RawMessage("{}")
	}
	c.CreatedAt = time.Now().UTC()

	var parent, history interface{}
	if c.ParentID != "" {
		parent = c.ParentID
	}
	if len(c.History) > 0 {
		history = string(c.History)
	}
	_, err := s.db.Exec(
		`INSERT INTO checkpoints (version_id, parent_id, config_json, weights, fingerprint, history_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.VersionID, parent, string(c.Config), encodeWeights(c.Weights), c.Fingerprint, history,
		c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Checkpoint{}, errors.Wrapf(err, "insert checkpoint %s", c.VersionID)
	}
	return c, nil
}

const columns = `version_id, parent_id, config_json, weights, fingerprint, history_json, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(row scanner, withWeights bool) (Checkpoint, error) {
	var c Checkpoint
	var parent, history sql.NullString
	var config, created string
	var blob []byte
	if err := row.Scan(&c.VersionID, &parent, &config, &blob, &c.Fingerprint, &history, &created); err != nil {
		return Checkpoint{}, err
	}
	c.ParentID = parent.String
	c.Config = json.RawMessage(config)
	if history.Valid {
		c.History = json.RawMessage(history.String)
	}
	if withWeights {
		w, err := decodeWeights(blob)
		if err != nil {
			return Checkpoint{}, errors.Wrapf(err, "checkpoint %s", c.VersionID)
		}
		c.Weights = w
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Checkpoint{}, errors.Wrapf(err, "checkpoint %s created_at", c.VersionID)
	}
	c.CreatedAt = t
	return c, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrap(err, what)
}

// GetCheckpoint retrieves a checkpoint by version id.
func (s *Store) GetCheckpoint(id string) (Checkpoint, error) {
	c, err := scan(s.db.QueryRow(`SELECT `+columns+` FROM checkpoints WHERE version_id = ?`, id), true)
	if err != nil {
		return Checkpoint{}, notFound(err, "get checkpoint "+id)
	}
	return c, nil
}

// Latest retrieves the most recently saved checkpoint.
func (s *Store) Latest() (Checkpoint, error) {
	c, err := scan(s.db.QueryRow(`SELECT `+columns+` FROM checkpoints ORDER BY seq DESC LIMIT 1`), true)
	if err != nil {
		return Checkpoint{}, notFound(err, "latest checkpoint")
	}
	return c, nil
}

// ListCheckpoints returns all checkpoints oldest first, without weights.
func (s *Store) ListCheckpoints() ([]Checkpoint, error) {
	rows, err := s.db.Query(`SELECT ` + columns + ` FROM checkpoints ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "list checkpoints")
	}
	defer rows.Close()
	var o []Checkpoint
	for rows.Next() {
		c, err := scan(rows, false)
		if err != nil {
			return nil, errors.Wrap(err, "scan checkpoint")
		}
		o = append(o, c)
	}
	return o, errors.Wrap(rows.Err(), "list checkpoints")
}

func encodeWeights(w []float32) []byte {
	buf := make([]byte, len(w)*4)
	for i, f := range w {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeWeights(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Errorf("weights blob of %d bytes is not float32 aligned", len(b))
	}
	w := make([]float32, len(b)/4)
	for i := range w {
		w[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return w, nil
}
