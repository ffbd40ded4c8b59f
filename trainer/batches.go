package trainer

import "math/rand"

// Batches splits the sample indexes 0..n-1 into minibatches of at most size
// indexes, in shuffled order when rng is not nil. The last batch may be short.
func Batches(n, size int, rng *rand.Rand) (o [][]int) {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size > n {
		size = n
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		o = append(o, order[from:to])
	}
	return
}
