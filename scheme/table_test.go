// Package scheme_test - compiled Table: validation, Context contract,
// integration with the anneal evaluator.
package scheme_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/keylayout/anneal"
	"github.com/katalvlaran/keylayout/scheme"
)

// validConfig returns a small well-formed problem: 4 keys, 3 roles, 4 items.
func validConfig() scheme.Config {
	return scheme.Config{
		NumKeys:  4,
		CodeBits: 8,
		Roles: []scheme.RoleConfig{
			{Allowed: []uint8{0, 1, 2, 3}},
			{Allowed: []uint8{1, 2}},
			{Allowed: []uint8{0, 3}},
		},
		Items: []scheme.ItemConfig{
			{Roles: []int{0}, Frequency: 100},
			{Roles: []int{0, 1}, Frequency: 60},
			{Roles: []int{1, 1}, Frequency: 30}, // same role twice
			{Roles: []int{2, 0, 1}, Frequency: 10},
		},
		PairEffort: [][]float64{
			{1.0, 1.2, 1.4, 1.6},
			{1.2, 1.0, 1.1, 1.3},
			{1.4, 1.1, 1.0, 1.2},
			{1.6, 1.3, 1.2, 1.0},
		},
		BaseEffort: []float64{0.5, 0.6, 0.7, 0.8},
	}
}

// validAssignment satisfies every role's permitted set in validConfig.
func validAssignment() []uint8 { return []uint8{2, 1, 3} }

func TestNewTable_Validation(t *testing.T) {
	nan := 0.0
	nan /= nan

	tests := []struct {
		name   string
		mutate func(*scheme.Config)
		want   error
	}{
		{"alphabet too small", func(c *scheme.Config) { c.NumKeys = 0 }, scheme.ErrBadKeyAlphabet},
		{"alphabet too large", func(c *scheme.Config) { c.NumKeys = 257 }, scheme.ErrBadKeyAlphabet},
		{"code bits zero", func(c *scheme.Config) { c.CodeBits = 0 }, scheme.ErrBadCodeBits},
		{"code bits huge", func(c *scheme.Config) { c.CodeBits = 31 }, scheme.ErrBadCodeBits},
		{"no roles", func(c *scheme.Config) { c.Roles = nil }, scheme.ErrNoRoles},
		{"no items", func(c *scheme.Config) { c.Items = nil }, scheme.ErrNoItems},
		{"role with empty key set", func(c *scheme.Config) { c.Roles[1].Allowed = nil }, scheme.ErrNoAllowedKeys},
		{"key outside alphabet", func(c *scheme.Config) { c.Roles[0].Allowed = []uint8{4} }, scheme.ErrKeyOutOfRange},
		{"item with unknown role", func(c *scheme.Config) { c.Items[0].Roles = []int{3} }, scheme.ErrRoleOutOfRange},
		{"item with negative role", func(c *scheme.Config) { c.Items[0].Roles = []int{-1} }, scheme.ErrRoleOutOfRange},
		{"item with no roles", func(c *scheme.Config) { c.Items[0].Roles = nil }, scheme.ErrTooManyParts},
		{"item too long", func(c *scheme.Config) { c.Items[0].Roles = []int{0, 0, 0, 0, 0, 0, 0} }, scheme.ErrTooManyParts},
		{"base effort wrong length", func(c *scheme.Config) { c.BaseEffort = c.BaseEffort[:2] }, scheme.ErrBadEffortTable},
		{"pair effort ragged", func(c *scheme.Config) { c.PairEffort[2] = c.PairEffort[2][:1] }, scheme.ErrBadEffortTable},
		{"pair effort NaN", func(c *scheme.Config) { c.PairEffort[0][0] = nan }, scheme.ErrBadEffortTable},
		{"pair effort negative", func(c *scheme.Config) { c.PairEffort[0][1] = -1 }, scheme.ErrBadEffortTable},
		{"base effort negative", func(c *scheme.Config) { c.BaseEffort[3] = -0.1 }, scheme.ErrBadEffortTable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			_, err := scheme.NewTable(cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := scheme.NewTable(validConfig())
	assert.NoError(t, err, "the unmutated config must compile")
}

func TestTable_Dimensions(t *testing.T) {
	tab, err := scheme.NewTable(validConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, tab.NumRoles())
	assert.Equal(t, 4, tab.NumItems())
	assert.Equal(t, 4, tab.NumKeys())
	assert.Equal(t, 1<<8, tab.CodeSpace())
	assert.Equal(t, uint64(100+60+30+10), tab.TotalFrequency())
	assert.Equal(t, uint64(30), tab.Frequency(2))
}

func TestTable_Allows(t *testing.T) {
	tab, err := scheme.NewTable(validConfig())
	require.NoError(t, err)

	assert.True(t, tab.Allows(0, 0))
	assert.True(t, tab.Allows(1, 2))
	assert.False(t, tab.Allows(1, 0), "key 0 is not permitted for role 1")
	assert.False(t, tab.Allows(2, 1))
}

// TestTable_AffectedItems checks the inverted index, including single listing
// of an item that uses one role twice.
func TestTable_AffectedItems(t *testing.T) {
	tab, err := scheme.NewTable(validConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 3}, tab.AffectedItems(0))
	assert.Equal(t, []int{1, 2, 3}, tab.AffectedItems(1), "item 2 uses role 1 twice but is listed once")
	assert.Equal(t, []int{3}, tab.AffectedItems(2))
}

func TestTable_Derive(t *testing.T) {
	tab, err := scheme.NewTable(validConfig())
	require.NoError(t, err)
	assignment := validAssignment()

	// Key lists follow the item's role order exactly.
	_, kl := tab.Derive(3, assignment) // roles {2, 0, 1}
	assert.Equal(t, []uint8{3, 2, 1}, kl.Slice())

	// Pure: repeated calls agree; codes stay inside the masked space.
	var item int
	for item = 0; item < tab.NumItems(); item++ {
		c1, k1 := tab.Derive(item, assignment)
		c2, k2 := tab.Derive(item, assignment)
		assert.Equal(t, c1, c2)
		assert.Equal(t, k1, k2)
		assert.GreaterOrEqual(t, c1, 0)
		assert.Less(t, c1, tab.CodeSpace())
	}
}

func TestTable_AvgEquivalence(t *testing.T) {
	tab, err := scheme.NewTable(validConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, tab.AvgEquivalence(anneal.KeyList{}))

	one := anneal.KeyList{Keys: [anneal.MaxItemKeys]uint8{2}, Len: 1}
	assert.Equal(t, 0.7, tab.AvgEquivalence(one), "single key falls back to base effort")

	// Three keys: mean of pair[0][1] and pair[1][3].
	three := anneal.KeyList{Keys: [anneal.MaxItemKeys]uint8{0, 1, 3}, Len: 3}
	assert.InDelta(t, (1.2+1.3)/2, tab.AvgEquivalence(three), 1e-12)
}

// chainConfig widens the code space for the chain tests: with a hashed
// derivation, distinct key tuples of one item must be overwhelmingly unlikely
// to alias into the same bucket, or cached key lists could go stale.
func chainConfig() scheme.Config {
	cfg := validConfig()
	cfg.CodeBits = 20
	return cfg
}

// TestTable_AnnealChain runs a short annealing chain end to end on a compiled
// Table and cross-checks the incremental state against recomputation.
func TestTable_AnnealChain(t *testing.T) {
	tab, err := scheme.NewTable(chainConfig())
	require.NoError(t, err)

	assignment := validAssignment()
	st, err := anneal.NewState(tab, assignment)
	require.NoError(t, err)

	score := scheme.WeightedScore(scheme.DefaultWeights(), tab.TotalFrequency())
	ev, err := anneal.NewEvaluator(tab, score)
	require.NoError(t, err)

	rng := anneal.NewRNG(3)
	var step int
	for step = 0; step < 300; step++ {
		roleA := rng.Intn(tab.NumRoles())
		roleB := rng.Intn(tab.NumRoles())
		ev.TrySwap(st, assignment, roleA, roleB, 2.0/(1.0+float64(step)/25.0), rng)
	}

	require.NoError(t, st.Verify(tab, assignment), "incremental state must match recomputation")
	assert.Equal(t, uint64(300), ev.Accepted+ev.Rejected+ev.Skipped)
}

// TestTable_ChainDeterminism: identical seeds reproduce the exact trajectory.
func TestTable_ChainDeterminism(t *testing.T) {
	run := func() ([]uint8, uint64, float64) {
		tab, err := scheme.NewTable(chainConfig())
		require.NoError(t, err)
		assignment := validAssignment()
		st, err := anneal.NewState(tab, assignment)
		require.NoError(t, err)
		score := scheme.WeightedScore(scheme.DefaultWeights(), tab.TotalFrequency())
		ev, err := anneal.NewEvaluator(tab, score)
		require.NoError(t, err)

		rng := anneal.NewRNG(11)
		var step int
		for step = 0; step < 200; step++ {
			ev.TrySwap(st, assignment, rng.Intn(3), rng.Intn(3), 1.0, rng)
		}

		return assignment, ev.Accepted, st.Score(score)
	}

	a1, acc1, s1 := run()
	a2, acc2, s2 := run()
	assert.Equal(t, a1, a2)
	assert.Equal(t, acc1, acc2)
	assert.Equal(t, s1, s2)
}
