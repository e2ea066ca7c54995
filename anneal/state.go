// Package anneal - optimizer state: construction, cloning and verification.
//
// State is the single mutable structure of the search. It is built once from
// a caller-supplied starting assignment by a full recomputation, then mutated
// exclusively through accepted moves for the lifetime of the run.
//
// Design:
//   - No ambient/static state: State is passed by exclusive reference into
//     the evaluator and the diff updater.
//   - The from-scratch build in NewState doubles as the reference
//     recomputation for Verify, so the incremental path and the full path
//     can never silently disagree about the definition of an aggregate.
//   - usageScratch is a reusable buffer for the diff updater's batched
//     write-back; it carries no state between moves.
//
// Complexity:
//   - NewState/Verify: O(items·L + codeSpace), L ≤ MaxItemKeys.
//   - Clone: O(items + codeSpace + keys).
package anneal

import "math"

// verifyEps is the tolerance for comparing incrementally maintained float
// aggregates against a recomputation. Integer-backed aggregates (collisions,
// bucket counters, frequencies) are compared exactly.
const verifyEps = 1e-6

// State holds every mutable quantity of one search chain.
// All fields are maintained incrementally by the diff updater; NewState and
// Verify define their exact meaning.
type State struct {
	// Per-item caches.
	codes          []int     // codes[i] = current derived code of item i
	keys           []KeyList // keys[i] = current derived key list of item i
	equivContrib   []float64 // equivContrib[i] = freq(i)·avgEquiv(keys[i])
	equivSqContrib []float64 // equivSqContrib[i] = freq(i)·avgEquiv(keys[i])²

	// Per-code buckets.
	bucketCount []uint32 // bucketCount[c] = number of items with code c
	bucketFreq  []uint64 // bucketFreq[c] = Σ frequency of items with code c

	// Global aggregates.
	collisions      int     // number of codes with bucketCount > 1
	collisionFreq   uint64  // Σ frequency of items in colliding buckets
	equivWeighted   float64 // Σ equivContrib
	equivSqWeighted float64 // Σ equivSqContrib

	// Per-key weighted usage and the diff updater's write-back buffer.
	keyUsage     []float64
	usageScratch []float64
}

// NewState builds the optimizer state for assignment by full recomputation.
//
// Contracts:
//   - ctx must be non-nil; len(assignment) must equal ctx.NumRoles().
//   - Every assignment entry must be permitted for its role (invariant 6);
//     violations return ErrKeyNotAllowed and no state is produced.
//
// Errors: ErrNilContext, ErrAssignmentLength, ErrKeyNotAllowed.
//
// Complexity: O(items·L + codeSpace).
func NewState(ctx Context, assignment []uint8) (*State, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if len(assignment) != ctx.NumRoles() {
		return nil, ErrAssignmentLength
	}

	var r int
	for r = 0; r < len(assignment); r++ {
		if !ctx.Allows(r, assignment[r]) {
			return nil, ErrKeyNotAllowed
		}
	}

	var (
		n  = ctx.NumItems()
		cs = ctx.CodeSpace()
		nk = ctx.NumKeys()
	)
	s := &State{
		codes:          make([]int, n),
		keys:           make([]KeyList, n),
		equivContrib:   make([]float64, n),
		equivSqContrib: make([]float64, n),
		bucketCount:    make([]uint32, cs),
		bucketFreq:     make([]uint64, cs),
		keyUsage:       make([]float64, nk),
		usageScratch:   make([]float64, nk),
	}
	s.recompute(ctx, assignment)

	return s, nil
}

// recompute fills every field of s from scratch under assignment.
// Callers guarantee the slices are already sized for ctx.
func (s *State) recompute(ctx Context, assignment []uint8) {
	var (
		n    = ctx.NumItems()
		i    int
		j    int
		code int
		kl   KeyList
		freq uint64
		avg  float64
	)

	clearInts(s.bucketCount)
	clearUints(s.bucketFreq)
	clearFloats(s.keyUsage)
	s.equivWeighted = 0
	s.equivSqWeighted = 0

	for i = 0; i < n; i++ {
		code, kl = ctx.Derive(i, assignment)
		freq = ctx.Frequency(i)
		avg = ctx.AvgEquivalence(kl)

		s.codes[i] = code
		s.keys[i] = kl
		s.equivContrib[i] = avg * float64(freq)
		s.equivSqContrib[i] = avg * avg * float64(freq)
		s.equivWeighted += s.equivContrib[i]
		s.equivSqWeighted += s.equivSqContrib[i]

		s.bucketCount[code]++
		s.bucketFreq[code] += freq

		for j = 0; j < int(kl.Len); j++ {
			s.keyUsage[kl.Keys[j]] += float64(freq)
		}
	}

	// Collision totals are a pure function of the filled buckets.
	s.collisions = 0
	s.collisionFreq = 0
	for code = 0; code < len(s.bucketCount); code++ {
		if s.bucketCount[code] > 1 {
			s.collisions++
			s.collisionFreq += s.bucketFreq[code]
		}
	}
}

// Aggregates returns the current running totals.
// The KeyUsage field aliases internal storage: read-only, do not retain.
func (s *State) Aggregates() Aggregates {
	return Aggregates{
		Items:           len(s.codes),
		Collisions:      s.collisions,
		CollisionFreq:   s.collisionFreq,
		EquivWeighted:   s.equivWeighted,
		EquivSqWeighted: s.equivSqWeighted,
		KeyUsage:        s.keyUsage,
	}
}

// Score applies the external objective to the current aggregates.
func (s *State) Score(score ScoreFunc) float64 {
	return score(s.Aggregates())
}

// Collisions reports the number of codes currently shared by 2+ items.
func (s *State) Collisions() int { return s.collisions }

// CollisionFreq reports the summed frequency of all colliding items.
func (s *State) CollisionFreq() uint64 { return s.collisionFreq }

// Code reports item's currently cached code.
func (s *State) Code(item int) int { return s.codes[item] }

// Keys reports item's currently cached key list.
func (s *State) Keys(item int) KeyList { return s.keys[item] }

// KeyUsage reports the weighted usage of key k.
func (s *State) KeyUsage(k uint8) float64 { return s.keyUsage[k] }

// Clone returns an independent deep copy of s for a parallel chain.
// The copy shares nothing mutable with the original; both may be driven by
// separate evaluators against the same immutable Context.
func (s *State) Clone() *State {
	c := &State{
		codes:          append([]int(nil), s.codes...),
		keys:           append([]KeyList(nil), s.keys...),
		equivContrib:   append([]float64(nil), s.equivContrib...),
		equivSqContrib: append([]float64(nil), s.equivSqContrib...),
		bucketCount:    append([]uint32(nil), s.bucketCount...),
		bucketFreq:     append([]uint64(nil), s.bucketFreq...),
		keyUsage:       append([]float64(nil), s.keyUsage...),
		usageScratch:   make([]float64, len(s.usageScratch)),

		collisions:      s.collisions,
		collisionFreq:   s.collisionFreq,
		equivWeighted:   s.equivWeighted,
		equivSqWeighted: s.equivSqWeighted,
	}

	return c
}

// Verify cross-checks every incrementally maintained quantity against a
// from-scratch recomputation under assignment. Intended for tests and debug
// builds; cost is a full rebuild.
//
// Integer aggregates (codes, bucket counters, collision totals) must match
// exactly; float aggregates must match within verifyEps to absorb the
// reordering of floating-point additions between the two paths.
//
// Errors: ErrStateDrift on any divergence; construction errors from NewState
// are forwarded as-is.
func (s *State) Verify(ctx Context, assignment []uint8) error {
	fresh, err := NewState(ctx, assignment)
	if err != nil {
		return err
	}

	var i int
	for i = 0; i < len(s.codes); i++ {
		if s.codes[i] != fresh.codes[i] || s.keys[i] != fresh.keys[i] {
			return ErrStateDrift
		}
		if math.Abs(s.equivContrib[i]-fresh.equivContrib[i]) > verifyEps {
			return ErrStateDrift
		}
		if math.Abs(s.equivSqContrib[i]-fresh.equivSqContrib[i]) > verifyEps {
			return ErrStateDrift
		}
	}
	for i = 0; i < len(s.bucketCount); i++ {
		if s.bucketCount[i] != fresh.bucketCount[i] || s.bucketFreq[i] != fresh.bucketFreq[i] {
			return ErrStateDrift
		}
	}
	for i = 0; i < len(s.keyUsage); i++ {
		if math.Abs(s.keyUsage[i]-fresh.keyUsage[i]) > verifyEps {
			return ErrStateDrift
		}
	}
	if s.collisions != fresh.collisions || s.collisionFreq != fresh.collisionFreq {
		return ErrStateDrift
	}
	if math.Abs(s.equivWeighted-fresh.equivWeighted) > verifyEps {
		return ErrStateDrift
	}
	if math.Abs(s.equivSqWeighted-fresh.equivSqWeighted) > verifyEps {
		return ErrStateDrift
	}

	return nil
}

// clearInts zeroes a uint32 slice in place.
func clearInts(a []uint32) {
	for i := range a {
		a[i] = 0
	}
}

// clearUints zeroes a uint64 slice in place.
func clearUints(a []uint64) {
	for i := range a {
		a[i] = 0
	}
}

// clearFloats zeroes a float64 slice in place.
func clearFloats(a []float64) {
	for i := range a {
		a[i] = 0
	}
}
