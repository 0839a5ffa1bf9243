// Package options is the explicit parameter record threaded through every
// layer of the counting engine instead of any package-level global (spec.md
// §5/§9 "Global state... scope both to an options record threaded through
// every public call"). It lives in its own leaf package, rather than the
// root barvinok package, purely so that every internal package (cone,
// count, exist, latpoint) can depend on it without an import cycle back
// through the root package's public API; the root package re-exports it as
// barvinok.Options.
package options

import (
	"context"
	"math/big"
	"math/rand"
)

// Options carries the RNG, cancellation context, debug flag and LLL delta
// that would otherwise be process-global state (spec.md §5 "The RNG used by
// lambda-selection is an owned field of the current counter, not a process
// global").
type Options struct {
	// Rand seeds the bounded random search for a generic lambda vector
	// (spec.md §4.6 "nonorthog"). Nil selects a deterministically-seeded
	// source so runs are reproducible by default.
	Rand *rand.Rand
	// Context is checked at the three cooperative-cancellation points
	// spec.md §5 names. Nil means "never cancelled".
	Context context.Context
	// Debug is carried in the record but read by no operation of this
	// module; it enables no additional checks.
	Debug bool
	// LLLDelta is the Lovász condition constant for the cone decomposer's
	// short-vector search (spec.md §4.1). Nil selects the default 3/4.
	LLLDelta *big.Rat
	// MaxTriangulationRays bounds polyhedron.TriangulateCone's ray budget
	// (spec.md §4.2). Zero selects a generous default.
	MaxTriangulationRays int
}

const defaultMaxTriangulationRays = 4096

// Rng returns o.Rand, or a freshly-seeded deterministic source if unset.
func (o Options) Rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(1))
}

// MaxRays returns o.MaxTriangulationRays, or the package default if unset.
func (o Options) MaxRays() int {
	if o.MaxTriangulationRays > 0 {
		return o.MaxTriangulationRays
	}
	return defaultMaxTriangulationRays
}

// Cancelled reports whether o.Context has been cancelled.
func (o Options) Cancelled() bool {
	if o.Context == nil {
		return false
	}
	select {
	case <-o.Context.Done():
		return true
	default:
		return false
	}
}
