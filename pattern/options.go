package pattern

import (
	"math/rand/v2"

	"github.com/ezoic/vipattern/pkg/log"
)

// Option configures an Engine.
type Option func(*Engine)

// WithBinSize sets the number of bins every discretization uses. It must be
// even and at least 2; other values are ignored with a warning and the
// default is kept.
func WithBinSize(n int) Option {
	return func(e *Engine) {
		e.binSize = n
	}
}

// WithRandomSource sets the source for the random bin assignment of
// zero-width ranges.
func WithRandomSource(src rand.Source) Option {
	return func(e *Engine) {
		e.src = src
	}
}

// WithSeed is WithRandomSource with a PCG source seeded from seed.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
}

// WithWorkers bounds the goroutines used by the matrix operations. n <= 0
// selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger replaces the engine logger.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}
