// Package anneal - RNG utilities for annealing chains.
//
// This file centralizes deterministic random generation for drivers built on
// the evaluator.
//
// Goals:
//   - Determinism: same seed ⇒ identical acceptance sequences across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Safety: no panics or logging.
//   - Performance: O(1) helpers, nothing called from hot loops.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across
//     chains. Use DeriveRNG to create independent streams for parallel
//     restarts, each paired with its own State clone.
package anneal

import "math/rand"

// defaultRNGSeed is the fixed “zero” seed used when callers pass seed==0.
// The value is arbitrary but stable to keep reproducible defaults.
const defaultRNGSeed int64 = 1

// NewRNG returns a deterministic *rand.Rand for one chain.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func NewRNG(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}

	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed.
//
// Rationale:
//   - Parallel restarts need independent substreams derived from one base seed.
//   - A SplitMix64-style avalanche mix eliminates correlations between
//     consecutive stream ids.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	// SplitMix64-style finalizer; see Vigna 2014 for the constants and rationale.
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// DeriveRNG creates an independent deterministic RNG stream from a base RNG
// and a stream identifier. If base==nil, defaultRNGSeed is used as the
// parent. Otherwise base.Int63() is consumed once to decorrelate consecutive
// derivations, then mixed with the stream via deriveSeed.
//
// Usage: call during setup (not in hot loops) to create per-chain RNGs for
// parallel restarts.
//
// Complexity: O(1).
func DeriveRNG(base *rand.Rand, stream uint64) *rand.Rand {
	var parent int64
	if base == nil {
		parent = defaultRNGSeed
	} else {
		// Int63() advances base state; this is intentional to avoid identical
		// children when the same stream id is reused by mistake.
		parent = base.Int63()
	}

	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}
