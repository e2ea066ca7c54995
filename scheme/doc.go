// Package scheme provides a concrete, table-driven problem context for the
// anneal evaluator: an encoding scheme described by roles (assignment slots
// with permitted key sets), items (weighted compositions of roles) and
// key-effort tables.
//
// It implements anneal.Context:
//
//   - Derive folds an item's key list through xxhash and masks the sum into
//     a power-of-two code space, so collision buckets stay dense regardless
//     of alphabet size.
//   - AvgEquivalence averages a pairwise key-transition effort table over
//     adjacent keys (single-key items use a per-key base effort).
//   - Role→affected-item indices and role→allowed-key bitsets are
//     precomputed once in NewTable; a Table is immutable afterwards and may
//     back any number of concurrent chains.
//
// The package also ships WeightedScore, a reference objective over the
// evaluator's aggregates (collisions, equivalence variance, key-load
// imbalance), and LoadJSON, a problem-definition reader. Neither is consumed
// by the core implicitly: the objective formula and the driver loop remain
// the caller's.
package scheme
