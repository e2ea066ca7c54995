// Package anneal - shared data model, collaborator contracts and sentinel errors.
//
// Everything the move evaluator touches is declared here:
//   - KeyList       — a small fixed-capacity key sequence cached per item.
//   - Context       — the read-only problem description supplied by the caller.
//   - Aggregates    — the running totals handed to the external objective.
//   - ScoreFunc     — the external scalar objective (this package never
//     defines the formula, only keeps the inputs exact).
//
// Error policy: strict sentinel errors only, matched with
// errors.Is; no fmt.Errorf in hot paths. Precondition breaches that cannot be
// reported without corrupting the hot loop (negative bucket occupancy) panic
// with a stable, package-prefixed message.
package anneal

import "errors"

// MaxItemKeys bounds the number of keys a single item's code may be derived
// from. Items are small compositions (an encoded unit rarely exceeds a
// handful of parts); the fixed capacity keeps KeyList copyable by value and
// free of per-move allocations.
const MaxItemKeys = 6

// KeyList is a fixed-capacity sequence of key ids with an explicit length.
// The zero value is the empty list. KeyList is a value type: assignment and
// comparison copy the whole array, which is exactly what snapshot/restore
// relies on.
type KeyList struct {
	// Keys holds the key ids; only Keys[:Len] is meaningful.
	Keys [MaxItemKeys]uint8

	// Len is the number of valid entries in Keys.
	Len uint8
}

// Slice returns the meaningful prefix of the key list.
// The returned slice aliases the receiver; callers must not retain it across
// mutations of the list.
func (kl *KeyList) Slice() []uint8 { return kl.Keys[:kl.Len] }

// Context is the read-only problem description shared by every chain.
// It is built once per optimization run and never mutated afterwards, so a
// single Context may back any number of concurrent States without locking.
//
// Contracts:
//   - Role and item indices are dense: roles in [0..NumRoles), items in
//     [0..NumItems). Out-of-range indices are a caller contract breach.
//   - Derive must be a pure function of (item, assignment) and must return a
//     code in [0..CodeSpace) and at most MaxItemKeys keys. For a given item,
//     equal codes must imply equal key lists: the diff updater treats an
//     unchanged code as "nothing about this item moved" and skips it.
//   - AvgEquivalence must be a pure function of its key list.
//   - Frequency must be non-negative (enforced by the uint64 type) and stable
//     for the lifetime of the run.
//   - AffectedItems(r) must list exactly the items whose Derive result can
//     change when assignment[r] changes; order is arbitrary but stable.
type Context interface {
	// NumRoles reports the number of assignment slots.
	NumRoles() int

	// NumItems reports the number of encoded items.
	NumItems() int

	// NumKeys reports the size of the key alphabet (max 256).
	NumKeys() int

	// CodeSpace reports the number of distinct codes Derive can produce;
	// bucket storage is sized to exactly this.
	CodeSpace() int

	// Allows reports whether role may hold key.
	Allows(role int, key uint8) bool

	// AffectedItems returns the indices of items whose code depends on role.
	// The returned slice is owned by the Context and must not be mutated.
	AffectedItems(role int) []int

	// Frequency returns the non-negative weight of item.
	Frequency(item int) uint64

	// Derive computes the item's code and key list under assignment.
	Derive(item int, assignment []uint8) (code int, keys KeyList)

	// AvgEquivalence computes the average per-item equivalence cost
	// (e.g. typing effort) of a key list.
	AvgEquivalence(keys KeyList) float64
}

// Aggregates is the snapshot of running totals fed to the external objective.
//
// KeyUsage is a live view into the optimizer state's per-key usage vector;
// score functions must treat it as read-only and must not retain it.
type Aggregates struct {
	// Items is the total number of items (constant per run).
	Items int

	// Collisions is the number of codes currently shared by 2+ items.
	Collisions int

	// CollisionFreq is the summed frequency of every item that shares its
	// code with at least one other item.
	CollisionFreq uint64

	// EquivWeighted is Σ over items of frequency·avgEquivalence.
	EquivWeighted float64

	// EquivSqWeighted is Σ over items of frequency·avgEquivalence².
	EquivSqWeighted float64

	// KeyUsage[k] is Σ over items, over each occurrence of key k in the
	// item's key list, of the item's frequency.
	KeyUsage []float64
}

// ScoreFunc maps the running aggregates to the scalar being minimized.
// The formula is owned by the caller; the evaluator only guarantees the
// aggregates are exact after every mutation.
type ScoreFunc func(Aggregates) float64

var (
	// ErrNilContext is returned when a nil Context is supplied.
	ErrNilContext = errors.New("anneal: nil context")

	// ErrNilScore is returned when a nil ScoreFunc is supplied.
	ErrNilScore = errors.New("anneal: nil score function")

	// ErrAssignmentLength is returned when len(assignment) != NumRoles.
	ErrAssignmentLength = errors.New("anneal: assignment length does not match role count")

	// ErrKeyNotAllowed is returned when an assignment maps a role to a key
	// outside that role's permitted set.
	ErrKeyNotAllowed = errors.New("anneal: assigned key not permitted for role")

	// ErrStateDrift is returned by State.Verify when the incrementally
	// maintained aggregates diverge from a from-scratch recomputation.
	ErrStateDrift = errors.New("anneal: incremental state drifted from recomputation")
)

// Internal panic messages (no magic strings in call sites).
const (
	panicBucketUnderflow     = "anneal: bucket occupancy underflow (internal consistency violated)"
	panicBucketFreqUnderflow = "anneal: bucket frequency underflow (internal consistency violated)"
)
