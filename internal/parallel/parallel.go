// Package parallel fans independent work items out over a bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Maximum number of goroutines to use.
	MinItems   int  // Below this many items, run sequentially.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinItems:   2,
	}
}

// Sequential returns a config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{}
}

// For executes f(i) for i in [0, n) and returns when all calls are done.
// Falls back to sequential execution if parallelism is disabled or n is too small.
//
// Each index is passed to exactly one call. f must be safe to call from
// several goroutines at once when parallelism is enabled.
func For(n int, f func(i int), cfg Config) {
	if n <= 0 {
		return
	}
	workers := min(cfg.NumWorkers, n)
	if !cfg.Enabled || workers < 2 || n < cfg.MinItems {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
