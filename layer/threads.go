package layer

import "github.com/neurlang/tcnae/learning/avx"

// Threads reports the default number of goroutines a node may use for one
// pass.
func Threads() int {
	return avx.Parallelism()
}

// Threaded is implemented by nodes which run their passes in parallel.
type Threaded interface {

	// SetThreads limits the goroutines of one pass. Values below 1 select
	// the default.
	SetThreads(n int)
}

// Limit is the goroutine limit of one node. The zero value uses Threads.
type Limit struct {
	n int
}

// SetThreads sets the limit. Values below 1 select the default.
func (l *Limit) SetThreads(n int) {
	if n < 1 {
		n = 0
	}
	l.n = n
}

// Threads is the effective limit.
func (l *Limit) Threads() int {
	if l.n > 0 {
		return l.n
	}
	return Threads()
}

// SetThreads applies n to every node which implements Threaded.
func SetThreads(n int, nodes ...Node) {
	for _, node := range nodes {
		if t, ok := node.(Threaded); ok {
			t.SetThreads(n)
		}
	}
}
