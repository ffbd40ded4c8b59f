// Package parallel contains the bounded parallel ForEach used by the layers
// and an order-independent Hasher for parameter fingerprints.
package parallel

import "sync"

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1 // Default to 1 if limit is zero or negative
	}
	if length <= 0 {
		return // No iterations to perform
	}
	if limit == 1 || length == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	sem := make(chan struct{}, limit) // Semaphore with buffer size 'limit'
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{} // Acquire semaphore
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore after function exits

			body(i)
		}(i)
	}

	wg.Wait() // Wait for all goroutines to finish
}

// ForChunks splits [0, length) into at most limit contiguous chunks and runs
// body(from, to) for each chunk concurrently.
func ForChunks(length, limit int, body func(from, to int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}
	chunk := (length + limit - 1) / limit
	ForEach(limit, limit, func(i int) {
		from := i * chunk
		to := from + chunk
		if to > length {
			to = length
		}
		if from < to {
			body(from, to)
		}
	})
}
