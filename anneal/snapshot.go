// Package anneal - sparse snapshot manager.
//
// A swapSnapshot captures exactly the sub-state one trial move can touch:
// the affected items' caches, every bucket the move reads or writes, the
// four scalar aggregates and the per-key usage vector. It exists only for
// the duration of one move evaluation — discarded on acceptance, consumed by
// restore on rejection.
//
// Design:
//   - Item and bucket records form association lists keyed by item/bucket
//     index. Buckets the affected items currently occupy are recorded up
//     front; buckets they *enter* are only known mid-diff, so the diff
//     updater appends those records just before the first mutation.
//   - The bucket list is therefore an undo log: records are replayed
//     newest-to-oldest so that the earliest (pre-move) record for a bucket
//     always lands last. Duplicate capture of a shared bucket is intentional
//     and exact under this discipline.
//   - The usage vector is copied wholesale: a swap of two roles can touch
//     most of a small alphabet, so per-element tracking would buy nothing.
//
// Complexity: capture and restore are O(U + keys) for U affected items.
package anneal

// itemRecord is one affected item's pre-move cache.
type itemRecord struct {
	item      int
	code      int
	keys      KeyList
	contrib   float64
	sqContrib float64
}

// bucketRecord is one touched bucket's counters as of capture time.
type bucketRecord struct {
	code  int
	count uint32
	freq  uint64
}

// swapSnapshot is the transient capture of everything one trial swap mutates.
type swapSnapshot struct {
	items   []itemRecord
	buckets []bucketRecord // undo log; replay newest-to-oldest

	collisions      int
	collisionFreq   uint64
	equivWeighted   float64
	equivSqWeighted float64
	keyUsage        []float64
}

// captureSwap records the pre-move state of every item in affected, the
// buckets they currently occupy, and the global aggregates. Buckets entered
// later are appended by the diff updater via recordBucket.
func (s *State) captureSwap(affected []int) *swapSnapshot {
	// Capacity 2·U: each item leaves one bucket and enters at most one more.
	snap := &swapSnapshot{
		items:   make([]itemRecord, 0, len(affected)),
		buckets: make([]bucketRecord, 0, 2*len(affected)),

		collisions:      s.collisions,
		collisionFreq:   s.collisionFreq,
		equivWeighted:   s.equivWeighted,
		equivSqWeighted: s.equivSqWeighted,
		keyUsage:        append([]float64(nil), s.keyUsage...),
	}

	var (
		item int
		code int
	)
	for _, item = range affected {
		code = s.codes[item]
		snap.items = append(snap.items, itemRecord{
			item:      item,
			code:      code,
			keys:      s.keys[item],
			contrib:   s.equivContrib[item],
			sqContrib: s.equivSqContrib[item],
		})
		snap.recordBucket(s, code)
	}

	return snap
}

// recordBucket appends code's current counters to the undo log.
// Must be called before the bucket is mutated.
func (snap *swapSnapshot) recordBucket(s *State, code int) {
	snap.buckets = append(snap.buckets, bucketRecord{
		code:  code,
		count: s.bucketCount[code],
		freq:  s.bucketFreq[code],
	})
}

// restoreSwap writes every recorded entry back and overwrites the scalar
// aggregates and the usage vector wholesale. Bucket records are replayed in
// reverse capture order so the oldest record of any bucket wins, yielding a
// state bit-identical to the capture point.
func (s *State) restoreSwap(snap *swapSnapshot) {
	s.collisions = snap.collisions
	s.collisionFreq = snap.collisionFreq
	s.equivWeighted = snap.equivWeighted
	s.equivSqWeighted = snap.equivSqWeighted
	copy(s.keyUsage, snap.keyUsage)

	var i int
	for i = 0; i < len(snap.items); i++ {
		rec := &snap.items[i]
		s.codes[rec.item] = rec.code
		s.keys[rec.item] = rec.keys
		s.equivContrib[rec.item] = rec.contrib
		s.equivSqContrib[rec.item] = rec.sqContrib
	}
	for i = len(snap.buckets) - 1; i >= 0; i-- {
		s.bucketCount[snap.buckets[i].code] = snap.buckets[i].count
		s.bucketFreq[snap.buckets[i].code] = snap.buckets[i].freq
	}
}
