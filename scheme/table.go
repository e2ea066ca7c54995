// Package scheme - Table: the immutable anneal.Context implementation.
//
// Design:
//   - All lookups the evaluator makes per move are precomputed here once:
//     role→allowed-key bitsets (256-bit, O(1) Allows), role→affected-item
//     indices, flattened pair-effort table.
//   - Derive hashes the key list with xxhash and masks into a power-of-two
//     code space (the same derivation discipline used for shard/bucket keys
//     elsewhere in the ecosystem). Hash collisions between distinct key
//     lists land in the same bucket and simply count as code collisions,
//     which is exactly what the objective is minimizing.
//   - A Table is never mutated after NewTable returns; any number of chains
//     may share one Table without locking.
//
// Complexity: NewTable is O(roles·keys + items·L); every Context method is
// O(1) or O(L) with L ≤ anneal.MaxItemKeys.
package scheme

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/keylayout/anneal"
)

// keyBitsetWords is the number of 64-bit words covering the 256-key alphabet.
const keyBitsetWords = 4

// keyBitset is a fixed 256-bit set of key ids.
type keyBitset [keyBitsetWords]uint64

// set marks key k as present.
func (b *keyBitset) set(k uint8) { b[k>>6] |= 1 << (k & 63) }

// has reports whether key k is present.
func (b *keyBitset) has(k uint8) bool { return b[k>>6]&(1<<(k&63)) != 0 }

// Table is a compiled, immutable problem context.
type Table struct {
	numKeys   int
	codeSpace int
	codeMask  uint64

	allowed   []keyBitset // per role
	affected  [][]int     // per role: item indices whose code depends on it
	itemRoles [][]int     // per item: role sequence
	freq      []uint64    // per item
	totalFreq uint64

	pair []float64 // flattened NumKeys×NumKeys transition efforts
	base []float64 // per-key efforts for single-key items
}

// NewTable validates cfg and compiles it into a Table.
//
// Errors: ErrBadKeyAlphabet, ErrBadCodeBits, ErrNoRoles, ErrNoItems,
// ErrNoAllowedKeys, ErrKeyOutOfRange, ErrRoleOutOfRange, ErrTooManyParts,
// ErrBadEffortTable.
func NewTable(cfg Config) (*Table, error) {
	if cfg.NumKeys < 1 || cfg.NumKeys > 256 {
		return nil, ErrBadKeyAlphabet
	}
	if cfg.CodeBits < 1 || cfg.CodeBits > 30 {
		return nil, ErrBadCodeBits
	}
	if len(cfg.Roles) == 0 {
		return nil, ErrNoRoles
	}
	if len(cfg.Items) == 0 {
		return nil, ErrNoItems
	}

	t := &Table{
		numKeys:   cfg.NumKeys,
		codeSpace: 1 << cfg.CodeBits,
		codeMask:  uint64(1<<cfg.CodeBits) - 1,
		allowed:   make([]keyBitset, len(cfg.Roles)),
		affected:  make([][]int, len(cfg.Roles)),
		itemRoles: make([][]int, len(cfg.Items)),
		freq:      make([]uint64, len(cfg.Items)),
		pair:      make([]float64, cfg.NumKeys*cfg.NumKeys),
		base:      make([]float64, cfg.NumKeys),
	}

	// Roles: compile permitted keys into bitsets.
	var (
		r int
		k uint8
	)
	for r = 0; r < len(cfg.Roles); r++ {
		if len(cfg.Roles[r].Allowed) == 0 {
			return nil, ErrNoAllowedKeys
		}
		for _, k = range cfg.Roles[r].Allowed {
			if int(k) >= cfg.NumKeys {
				return nil, ErrKeyOutOfRange
			}
			t.allowed[r].set(k)
		}
	}

	// Items: copy role sequences, frequencies, and invert into the
	// role→affected-items index (each item at most once per role).
	var (
		i    int
		role int
		seen bool
		prev int
	)
	for i = 0; i < len(cfg.Items); i++ {
		if len(cfg.Items[i].Roles) == 0 || len(cfg.Items[i].Roles) > anneal.MaxItemKeys {
			return nil, ErrTooManyParts
		}
		t.itemRoles[i] = append([]int(nil), cfg.Items[i].Roles...)
		t.freq[i] = cfg.Items[i].Frequency
		t.totalFreq += cfg.Items[i].Frequency

		for _, role = range t.itemRoles[i] {
			if role < 0 || role >= len(cfg.Roles) {
				return nil, ErrRoleOutOfRange
			}
			// Dedup within one item: a role occurring twice still affects
			// the item once.
			seen = false
			for _, prev = range t.affected[role] {
				if prev == i {
					seen = true

					break
				}
			}
			if !seen {
				t.affected[role] = append(t.affected[role], i)
			}
		}
	}

	// Effort tables: exact shape, finite, non-negative.
	if len(cfg.PairEffort) != cfg.NumKeys || len(cfg.BaseEffort) != cfg.NumKeys {
		return nil, ErrBadEffortTable
	}
	var (
		a int
		b int
		x float64
	)
	for a = 0; a < cfg.NumKeys; a++ {
		if len(cfg.PairEffort[a]) != cfg.NumKeys {
			return nil, ErrBadEffortTable
		}
		for b = 0; b < cfg.NumKeys; b++ {
			x = cfg.PairEffort[a][b]
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return nil, ErrBadEffortTable
			}
			t.pair[a*cfg.NumKeys+b] = x
		}
		x = cfg.BaseEffort[a]
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return nil, ErrBadEffortTable
		}
		t.base[a] = x
	}

	return t, nil
}

// NumRoles reports the number of assignment slots.
func (t *Table) NumRoles() int { return len(t.allowed) }

// NumItems reports the number of encoded items.
func (t *Table) NumItems() int { return len(t.itemRoles) }

// NumKeys reports the key alphabet size.
func (t *Table) NumKeys() int { return t.numKeys }

// CodeSpace reports the number of distinct codes Derive can produce.
func (t *Table) CodeSpace() int { return t.codeSpace }

// TotalFrequency reports the summed frequency over all items.
func (t *Table) TotalFrequency() uint64 { return t.totalFreq }

// Allows reports whether role may hold key.
func (t *Table) Allows(role int, key uint8) bool { return t.allowed[role].has(key) }

// AffectedItems returns the items whose code depends on role.
// The returned slice is owned by the Table; callers must not mutate it.
func (t *Table) AffectedItems(role int) []int { return t.affected[role] }

// Frequency returns item's weight.
func (t *Table) Frequency(item int) uint64 { return t.freq[item] }

// Derive computes item's key list under assignment and folds it into the
// code space: code = xxhash(keys) & mask. Pure and allocation-free.
//
// The anneal.Context contract wants equal codes to imply equal key lists per
// item; under a masked hash that holds only statistically. Size CodeBits so
// that 1<<CodeBits vastly exceeds the number of key tuples any single item
// can take, and the aliasing probability is negligible.
func (t *Table) Derive(item int, assignment []uint8) (int, anneal.KeyList) {
	var kl anneal.KeyList
	roles := t.itemRoles[item]
	var j int
	for j = 0; j < len(roles); j++ {
		kl.Keys[j] = assignment[roles[j]]
	}
	kl.Len = uint8(len(roles))

	return int(xxhash.Sum64(kl.Keys[:kl.Len]) & t.codeMask), kl
}

// AvgEquivalence averages the pairwise transition effort over adjacent keys.
// Single-key items fall back to the per-key base effort; an empty list
// costs nothing.
func (t *Table) AvgEquivalence(keys anneal.KeyList) float64 {
	n := int(keys.Len)
	switch n {
	case 0:
		return 0
	case 1:
		return t.base[keys.Keys[0]]
	}

	var (
		sum float64
		j   int
	)
	for j = 1; j < n; j++ {
		sum += t.pair[int(keys.Keys[j-1])*t.numKeys+int(keys.Keys[j])]
	}

	return sum / float64(n-1)
}
