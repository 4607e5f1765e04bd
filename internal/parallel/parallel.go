// Package parallel provides bounded parallel loops for the copy engine.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of concurrent goroutines.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a config that always runs inline.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

func (cfg Config) workers() int {
	if cfg.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return cfg.NumWorkers
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// Iterations must write disjoint memory.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.workers()
	if !cfg.Enabled || workers == 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	_ = g.Wait() // Workers never fail.
}

// Each runs f(i) for i in [0, n) with at most cfg.NumWorkers running at once,
// regardless of MinChunkSize. It is meant for a handful of coarse tasks, such
// as one task per concatenation source. The first error is returned after all
// tasks finish.
func Each(n int, f func(i int) error, cfg Config) error {
	if !cfg.Enabled || n <= 1 {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(cfg.workers())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return f(i)
		})
	}
	return g.Wait()
}
