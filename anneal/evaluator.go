// Package anneal - move evaluator: propose → diff → score → accept/reject →
// (restore).
//
// Design:
//   - One Evaluator drives one State; the pair forms a single search chain.
//     Nothing here is goroutine-safe — parallel restarts clone the State,
//     build their own Evaluator and share the immutable Context.
//   - Atomicity from the caller's perspective: either the full move's
//     effects persist (assignment entries swapped, state updated), or none
//     do (entries reverted, snapshot restored bit-for-bit).
//   - Strict sentinels at construction only; TrySwap itself reports nothing
//     but acceptance. Out-of-range role indices and non-positive
//     temperatures are caller contract breaches, not reported conditions.
//   - Hot-path discipline: the affected-union buffer is reused between
//     calls; the fast-rejection path allocates nothing and mutates nothing.
//
// Complexity per call: O(U·L) for U affected items, plus two ScoreFunc
// evaluations.
package anneal

import (
	"math"
	"math/rand"
)

// Evaluator binds a read-only problem Context to an external objective and
// performs single swap-based annealing steps against a State.
type Evaluator struct {
	ctx   Context
	score ScoreFunc

	affected []int // reusable buffer for the deduplicated affected union

	// Accepted and Rejected count evaluated moves (fast rejections are
	// counted separately in Skipped). Read-only bookkeeping for the driver.
	Accepted uint64
	Rejected uint64
	Skipped  uint64
}

// NewEvaluator validates the collaborators and returns a ready evaluator.
//
// Errors: ErrNilContext, ErrNilScore.
func NewEvaluator(ctx Context, score ScoreFunc) (*Evaluator, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if score == nil {
		return nil, ErrNilScore
	}

	return &Evaluator{ctx: ctx, score: score}, nil
}

// TrySwap proposes exchanging the keys held by roleA and roleB, evaluates
// the move incrementally and applies the Metropolis acceptance rule:
// accept when the score delta is ≤ 0, otherwise accept with probability
// exp(−delta/temperature) against one uniform draw from rng.
//
// On acceptance the mutated assignment and state persist and TrySwap returns
// true. On rejection (including the fast preconditions below) assignment and
// state are exactly as before the call and TrySwap returns false.
//
// Fast rejection, with no mutation and no randomness consumed:
//   - roleA == roleB;
//   - roleA is not permitted to hold roleB's current key, or vice versa.
//
// Contracts (breaches are undefined behavior, not reported errors):
//   - role indices are within [0..NumRoles) and len(assignment)==NumRoles;
//   - temperature is strictly positive;
//   - rng is non-nil and uniform on [0,1) via Float64.
func (e *Evaluator) TrySwap(st *State, assignment []uint8, roleA, roleB int, temperature float64, rng *rand.Rand) bool {
	keyA := assignment[roleA]
	keyB := assignment[roleB]

	// Fast filter: self-swap or permission violation.
	if roleA == roleB || !e.ctx.Allows(roleA, keyB) || !e.ctx.Allows(roleB, keyA) {
		e.Skipped++

		return false
	}

	oldScore := st.Score(e.score)

	// Deduplicated union of the items affected by either role.
	affectedA := e.ctx.AffectedItems(roleA)
	affectedB := e.ctx.AffectedItems(roleB)
	e.affected = e.affected[:0]
	e.affected = append(e.affected, affectedA...)
	var item int
	for _, item = range affectedB {
		if !containsInt(affectedA, item) {
			e.affected = append(e.affected, item)
		}
	}

	// Snapshot exactly what the trial can touch, then mutate.
	snap := st.captureSwap(e.affected)
	assignment[roleA] = keyB
	assignment[roleB] = keyA
	st.applyDiff(e.ctx, assignment, e.affected, snap)

	newScore := st.Score(e.score)
	delta := newScore - oldScore

	if delta <= 0 || rng.Float64() < math.Exp(-delta/temperature) {
		e.Accepted++

		return true
	}

	// Reject: revert the two assignment entries and undo the state mutation.
	assignment[roleA] = keyA
	assignment[roleB] = keyB
	st.restoreSwap(snap)
	e.Rejected++

	return false
}

// containsInt reports whether a contains v. Affected-item lists are short;
// a linear scan beats any set structure at this scale.
func containsInt(a []int, v int) bool {
	for _, x := range a {
		if x == v {
			return true
		}
	}

	return false
}
