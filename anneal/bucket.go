// Package anneal - bucket delta engine.
//
// moveBucket is the pure arithmetic core that translates a single item's
// code change into signed deltas for the two collision aggregates, while
// mutating the bucket counters themselves.
//
// The collision count is the number of buckets with occupancy > 1, so it
// only changes on 1↔2 occupancy transitions; the collision frequency is the
// summed frequency of every item in such a bucket, so it tracks the moving
// item at any colliding occupancy. The transition cases (occupancies read
// BEFORE the counter mutation):
//
//	leaving old code:
//	  occupancy > 1  → the item was colliding: freq−f
//	  occupancy == 2 → the bucket leaves collision entirely: collisions−1,
//	                   and the remaining occupant's frequency (oldFreqSum − f)
//	                   leaves the collision frequency too
//	entering new code:
//	  occupancy ≥ 1  → the bucket holds a collision afterwards: freq+f
//	  occupancy == 1 → the bucket enters collision: collisions+1, and the
//	                   existing occupant's frequency (the bucket's freq sum
//	                   before the add) joins the collision frequency too
//
// Occupancy counters are unsigned; instead of letting them wrap past zero we
// assert the invariant with a checked decrement and treat any underflow as a
// fatal internal-consistency error (panic with a stable message).
//
// Complexity: O(1), no allocations.
package anneal

// moveBucket moves one item of weight freq from oldCode's bucket to
// newCode's bucket and returns the signed deltas to apply to the collision
// count and the collision frequency. Callers guarantee oldCode != newCode.
func (s *State) moveBucket(oldCode, newCode int, freq uint64) (collisionDelta int, freqDelta int64) {
	// Leave the old bucket.
	oldCount := s.bucketCount[oldCode]
	if oldCount == 0 {
		panic(panicBucketUnderflow)
	}
	if s.bucketFreq[oldCode] < freq {
		panic(panicBucketFreqUnderflow)
	}
	if oldCount > 1 {
		freqDelta -= int64(freq)
		if oldCount == 2 {
			// The bucket drops out of collision: the other occupant's
			// frequency must leave the collision total as well.
			collisionDelta--
			freqDelta -= int64(s.bucketFreq[oldCode] - freq)
		}
	}
	s.bucketCount[oldCode] = oldCount - 1
	s.bucketFreq[oldCode] -= freq

	// Enter the new bucket.
	newCount := s.bucketCount[newCode]
	if newCount >= 1 {
		freqDelta += int64(freq)
		if newCount == 1 {
			// The bucket enters collision: the existing occupant's
			// frequency joins the collision total as well.
			collisionDelta++
			freqDelta += int64(s.bucketFreq[newCode])
		}
	}
	s.bucketCount[newCode] = newCount + 1
	s.bucketFreq[newCode] += freq

	return collisionDelta, freqDelta
}
