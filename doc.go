// Package keylayout is an optimization toolkit for designing discrete
// key→role assignments — the kernel of an encoding-scheme designer that
// searches for layouts with few code collisions, low typing effort and
// balanced key load.
//
// 🚀 What is keylayout?
//
//	A small, deterministic library built around one hot loop:
//		• anneal/ — the simulated-annealing move evaluator: a single swap
//		  step with incremental aggregate maintenance and exact sparse
//		  rollback on rejection
//		• scheme/ — a concrete, table-driven problem context: role→key
//		  permissions, item composition, xxhash code derivation, pairwise
//		  key-effort tables, a reference objective and a JSON loader
//
// ✨ Why choose keylayout?
//
//   - Incremental by design – a trial swap costs O(items touched), never O(n)
//   - Exact rollback – rejected moves restore state bit-for-bit
//   - Deterministic – all randomness flows through a caller-supplied RNG;
//     same seed ⇒ same run, with derived streams for parallel restarts
//   - Pure Go – no cgo, no services, no hidden state
//
// The evaluator owns nothing but the mutable optimizer state handed to it;
// the driver loop (move proposals, temperature schedule, reporting) stays
// with the caller. See anneal.Evaluator.TrySwap for the full contract and
// examples/ for an end-to-end annealing chain.
//
//	go get github.com/katalvlaran/keylayout/anneal
package keylayout
