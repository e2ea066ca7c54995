// Package anneal_test - shared fixtures for evaluator/state tests.
//
// stubContext is a hand-controllable Context: items are role sequences,
// frequencies are explicit, and the code derivation is chosen per test:
//
//   - packed mode: code = k0 + K·k1 + K²·k2 … (injective in the key tuple;
//     collisions only between identical tuples — the mode for consistency
//     and random-walk tests).
//   - sum mode: code = Σ keys (deliberately non-injective so a swap can
//     force two distinct tuples into one bucket — the mode for collision
//     scenarios and the skip-path test).
//
// AvgEquivalence is the mean of the key ids, so contributions are exact and
// order-independent in both modes.
package anneal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/keylayout/anneal"
)

// stubItem is one fixture item: a role sequence plus a weight.
type stubItem struct {
	roles []int
	freq  uint64
}

// stubContext implements anneal.Context over explicit tables.
type stubContext struct {
	numKeys  int
	allowed  [][]uint8 // per role
	items    []stubItem
	affected [][]int // derived in newStubContext
	sumCodes bool    // sum mode when true, packed mode when false
	maxParts int     // longest item role sequence, for sizing CodeSpace
}

// newStubContext builds the role→affected-items index and returns the fixture.
func newStubContext(numKeys int, allowed [][]uint8, items []stubItem, sumCodes bool) *stubContext {
	ctx := &stubContext{
		numKeys:  numKeys,
		allowed:  allowed,
		items:    items,
		affected: make([][]int, len(allowed)),
		sumCodes: sumCodes,
	}
	for i, it := range items {
		if len(it.roles) > ctx.maxParts {
			ctx.maxParts = len(it.roles)
		}
		for _, r := range it.roles {
			if !containsIdx(ctx.affected[r], i) {
				ctx.affected[r] = append(ctx.affected[r], i)
			}
		}
	}

	return ctx
}

func containsIdx(a []int, v int) bool {
	for _, x := range a {
		if x == v {
			return true
		}
	}

	return false
}

func (c *stubContext) NumRoles() int { return len(c.allowed) }
func (c *stubContext) NumItems() int { return len(c.items) }
func (c *stubContext) NumKeys() int  { return c.numKeys }

// CodeSpace sizes buckets to the fixture: Σ keys stays below K·maxParts in
// sum mode, and positional packing needs K^maxParts in packed mode.
func (c *stubContext) CodeSpace() int {
	if c.sumCodes {
		return c.numKeys*c.maxParts + 1
	}
	space := 1
	for i := 0; i < c.maxParts; i++ {
		space *= c.numKeys
	}

	return space
}

func (c *stubContext) Allows(role int, key uint8) bool {
	for _, k := range c.allowed[role] {
		if k == key {
			return true
		}
	}

	return false
}

func (c *stubContext) AffectedItems(role int) []int { return c.affected[role] }

func (c *stubContext) Frequency(item int) uint64 { return c.items[item].freq }

func (c *stubContext) Derive(item int, assignment []uint8) (int, anneal.KeyList) {
	var kl anneal.KeyList
	roles := c.items[item].roles
	for j, r := range roles {
		kl.Keys[j] = assignment[r]
	}
	kl.Len = uint8(len(roles))

	code := 0
	if c.sumCodes {
		for j := 0; j < len(roles); j++ {
			code += int(kl.Keys[j])
		}
	} else {
		mul := 1
		for j := 0; j < len(roles); j++ {
			code += int(kl.Keys[j]) * mul
			mul *= c.numKeys
		}
	}

	return code, kl
}

func (c *stubContext) AvgEquivalence(keys anneal.KeyList) float64 {
	if keys.Len == 0 {
		return 0
	}
	var sum float64
	for j := 0; j < int(keys.Len); j++ {
		sum += float64(keys.Keys[j])
	}

	return sum / float64(keys.Len)
}

// collisionScore minimizes the collision count only; improving moves are the
// ones that uncollide buckets.
func collisionScore(agg anneal.Aggregates) float64 {
	return float64(agg.Collisions)
}

// fullScore exercises every aggregate so incremental errors in any of them
// surface as acceptance-path differences.
func fullScore(agg anneal.Aggregates) float64 {
	s := float64(agg.Collisions) + 0.01*float64(agg.CollisionFreq)
	s += 0.001*agg.EquivWeighted + 0.0001*agg.EquivSqWeighted
	for _, u := range agg.KeyUsage {
		s += 1e-6 * u * u
	}

	return s
}

// stateDigest captures everything observable about a state + assignment so
// rollback tests can demand exact equality.
type stateDigest struct {
	assignment []uint8
	codes      []int
	keys       []anneal.KeyList
	agg        anneal.Aggregates
	usage      []float64
}

func digest(st *anneal.State, ctx *stubContext, assignment []uint8) stateDigest {
	d := stateDigest{
		assignment: append([]uint8(nil), assignment...),
		agg:        st.Aggregates(),
	}
	d.usage = append([]float64(nil), d.agg.KeyUsage...)
	d.agg.KeyUsage = nil
	for i := 0; i < ctx.NumItems(); i++ {
		d.codes = append(d.codes, st.Code(i))
		d.keys = append(d.keys, st.Keys(i))
	}

	return d
}

// requireSameDigest asserts two digests are identical field by field.
func requireSameDigest(t *testing.T, want, got stateDigest) {
	t.Helper()
	require.Equal(t, want.assignment, got.assignment, "assignment must match")
	require.Equal(t, want.codes, got.codes, "cached codes must match")
	require.Equal(t, want.keys, got.keys, "cached key lists must match")
	require.Equal(t, want.agg, got.agg, "scalar aggregates must match")
	require.Equal(t, want.usage, got.usage, "key usage vector must match")
}

// collisionFixture is the forced-collision fixture: two roles whose alternate key
// is exactly the other's current key, frequencies {10, 5}, and a sum-mode
// derivation so the swap forces both items into one bucket.
//
//	role 0 allowed {6, 3}, item 0 = [role0, role0], freq 10 → code 2·k0
//	role 1 allowed {3, 6}, item 1 = [role1],        freq 5  → code k1
//
// assignment {6, 3}: codes {12, 3} — no collision.
// assignment {3, 6}: codes {6, 6}  — one collision of frequency 15.
func collisionFixture() (*stubContext, []uint8) {
	ctx := newStubContext(
		16,
		[][]uint8{{6, 3}, {3, 6}},
		[]stubItem{
			{roles: []int{0, 0}, freq: 10},
			{roles: []int{1}, freq: 5},
		},
		true,
	)

	return ctx, []uint8{6, 3}
}
