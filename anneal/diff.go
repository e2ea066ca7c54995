// Package anneal - incremental diff updater.
//
// applyDiff is the one-pass "delta accumulator": every item mutation emits
// matching add/remove contributions into every dependent aggregate, so the
// incremental path mirrors the full recomputation in State.recompute term by
// term.
//
// Design:
//   - Aggregate deltas accumulate in locals and are written back once at the
//     end — a batched commit equivalent to one atomic update of the global
//     aggregates.
//   - The key-usage vector commits the same way through the reusable
//     usageScratch buffer (copy in, mutate, copy out); no allocation per move.
//   - Items whose code is unchanged are skipped entirely: by definition their
//     bucket membership, key list and equivalence contribution are unchanged.
//   - When two affected items share a bucket code, the second item's deltas
//     are computed against bucket state already mutated by the first. The
//     per-item loop is strictly sequential; the delta arithmetic is exact
//     under that ordering (covered by an explicit aliasing test).
//
// Complexity: O(U·L) for U affected items and key lists of length L ≤
// MaxItemKeys.
package anneal

// applyDiff applies the current assignment to every item in affected,
// updating per-item caches, buckets and global aggregates in one pass.
//
// When snap is non-nil, the bucket an item enters is appended to the undo
// log just before its first mutation; buckets being left were already
// captured up front (an item's cached code cannot change before its own
// iteration). Pass snap == nil when no rollback is possible.
func (s *State) applyDiff(ctx Context, assignment []uint8, affected []int, snap *swapSnapshot) {
	var (
		localCollisions   = s.collisions
		localCollisionFrq = int64(s.collisionFreq)
		localEquiv        = s.equivWeighted
		localEquivSq      = s.equivSqWeighted
		usage             = s.usageScratch
	)
	copy(usage, s.keyUsage)

	var (
		item     int
		j        int
		oldCode  int
		newCode  int
		oldKeys  KeyList
		newKeys  KeyList
		freq     uint64
		freqF    float64
		colDelta int
		frqDelta int64
		avg      float64
		contrib  float64
		sqCtrb   float64
	)
	for _, item = range affected {
		oldCode = s.codes[item]
		newCode, newKeys = ctx.Derive(item, assignment)

		if newCode == oldCode {
			// Bucket membership unchanged ⇒ nothing about this item moved.
			continue
		}

		freq = ctx.Frequency(item)
		freqF = float64(freq)

		// Buckets and collision aggregates. The entered bucket may be
		// unknown to the up-front capture; log it before mutating.
		if snap != nil {
			snap.recordBucket(s, newCode)
		}
		colDelta, frqDelta = s.moveBucket(oldCode, newCode, freq)
		localCollisions += colDelta
		localCollisionFrq += frqDelta

		// Equivalence aggregates: remove the cached contribution, add the
		// freshly derived one.
		avg = ctx.AvgEquivalence(newKeys)
		contrib = avg * freqF
		sqCtrb = avg * avg * freqF
		localEquiv += contrib - s.equivContrib[item]
		localEquivSq += sqCtrb - s.equivSqContrib[item]
		s.equivContrib[item] = contrib
		s.equivSqContrib[item] = sqCtrb

		// Per-key usage: every old occurrence leaves, every new one enters.
		oldKeys = s.keys[item]
		for j = 0; j < int(oldKeys.Len); j++ {
			usage[oldKeys.Keys[j]] -= freqF
		}
		for j = 0; j < int(newKeys.Len); j++ {
			usage[newKeys.Keys[j]] += freqF
		}

		// Per-item caches.
		s.codes[item] = newCode
		s.keys[item] = newKeys
	}

	// Batched commit of the accumulated aggregates.
	s.collisions = localCollisions
	s.collisionFreq = uint64(localCollisionFrq)
	s.equivWeighted = localEquiv
	s.equivSqWeighted = localEquivSq
	copy(s.keyUsage, usage)
}
