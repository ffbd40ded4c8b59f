package parallel

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math"
	"sync"
)

// values per 64 byte block, the first 4 bytes hold the written marks
const perBlock = 15

const fullMark = 1<<perBlock - 1

// Hasher digests n float32 values which may be written concurrently and in
// any order. The digest equals the one obtained by writing them sequentially.
type Hasher struct {
	mut  sync.Mutex
	sha  hash.Hash
	ate  int
	n    int
	data [][64]byte
}

// NewFloat32Hasher prepares a hasher for n values.
func NewFloat32Hasher(n int) *Hasher {
	return &Hasher{
		sha:  sha256.New(),
		n:    n,
		data: make([][64]byte, (perBlock-1+n)/perBlock),
	}
}

func (h *Hasher) ready() bool {
	if h.ate >= len(h.data) {
		return false
	}
	return binary.BigEndian.Uint32(h.data[h.ate][0:4]) == fullMark
}

func (h *Hasher) eat() {
	h.sha.Write(h.data[h.ate][:])
	h.ate++
}

// MustPutFloat32 stores value at position n. It panics on duplicate writes
// or writes past the declared length.
func (h *Hasher) MustPutFloat32(n int, value float32) {
	if n < 0 || n >= h.n {
		panic("float32 write out of range")
	}
	block := n / perBlock
	position := n % perBlock

	h.mut.Lock()
	defer h.mut.Unlock()

	if block < h.ate {
		panic("already consumed block")
	}

	mark := binary.BigEndian.Uint32(h.data[block][0:4])
	if mark&(1<<position) != 0 {
		panic("duplicate write")
	}
	binary.LittleEndian.PutUint32(h.data[block][4+4*position:], math.Float32bits(value))
	binary.BigEndian.PutUint32(h.data[block][0:4], mark|1<<position)

	for h.ready() {
		h.eat()
	}
}

// Sum finalizes the digest. Unwritten values hash as absent.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()
	for h.ate < len(h.data) {
		h.eat()
	}
	copy(ret[:], h.sha.Sum(nil))
	return
}
