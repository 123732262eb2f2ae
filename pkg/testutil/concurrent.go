// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "pincheck/pkg/domain-errors"
)

// ConcurrentResult tallies outcomes of operations run in parallel.
type ConcurrentResult struct {
	Successes int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.NotFounds + r.Errors
}

// RunConcurrent calls fn from n goroutines at once and waits for all of them.
// Errors carrying dErrors.CodeNotFound are counted apart from other errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg                        sync.WaitGroup
		start                     = make(chan struct{})
		successes, missing, other atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				missing.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		NotFounds: missing.Load(),
		Errors:    other.Load(),
	}
}
