// Package anneal provides the incremental move evaluator at the heart of a
// swap-based simulated-annealing search over key→role assignments.
//
// One call does one thing: Evaluator.TrySwap proposes exchanging the keys
// held by two roles, recomputes only the objective terms touched by the
// affected items, accepts or rejects the move by the Metropolis criterion,
// and on rejection restores the exact prior state from a sparse snapshot.
//
// The moving parts:
//
//   - State     — the exclusively-owned mutable optimizer state: per-item
//     cached codes, key lists and equivalence contributions; per-code bucket
//     occupancy and frequency sums; global collision and equivalence
//     aggregates; per-key weighted usage.
//   - Evaluator — orchestrates propose → diff → score → accept/reject →
//     (restore). Holds the read-only Context and the external ScoreFunc.
//   - Context   — the caller-supplied problem description: permissions,
//     affected-item indices, frequencies and the two pure derivation
//     functions (code+keys; average equivalence).
//
// Invariants maintained before and after every completed move (and restored
// exactly on rejection):
//
//  1. bucket occupancy/frequency match the items' current codes;
//  2. the collision count equals the number of buckets with occupancy > 1;
//  3. the collision frequency equals the summed frequency of all colliding
//     items;
//  4. the equivalence sums equal the totals of the per-item cached
//     contributions;
//  5. per-key usage equals the frequency-weighted occurrence count of each
//     key;
//  6. every assignment entry stays within its role's permitted key set.
//
// Cost model: a trial swap is O(U·L) where U is the number of items affected
// by the two roles and L ≤ MaxItemKeys — never O(total items). There is no
// I/O, no suspension point and no shared mutable state: one State belongs to
// exactly one search chain. Parallel restarts clone the State and share the
// immutable Context; see DeriveRNG for independent random streams.
//
// Use State.Verify in tests or debug builds to cross-check the incremental
// aggregates against a from-scratch recomputation.
package anneal
