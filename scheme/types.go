// Package scheme - configuration types and sentinel errors.
package scheme

import "errors"

// RoleConfig describes one assignment slot.
type RoleConfig struct {
	// Allowed lists the key ids this role may hold. Must be non-empty;
	// every id must be < Config.NumKeys.
	Allowed []uint8
}

// ItemConfig describes one encoded item.
type ItemConfig struct {
	// Roles is the ordered sequence of role indices the item's code is
	// derived from. Length must be in [1..anneal.MaxItemKeys].
	Roles []int

	// Frequency is the item's non-negative weight.
	Frequency uint64
}

// Config is the full problem definition consumed by NewTable.
//
// Fields:
//   - NumKeys   — size of the key alphabet, in [1..256].
//   - CodeBits  — code space is 1<<CodeBits buckets, CodeBits in [1..30].
//   - Roles     — assignment slots with their permitted keys.
//   - Items     — weighted role compositions.
//   - PairEffort — NumKeys×NumKeys transition efforts; PairEffort[a][b] is
//     the cost of key b following key a. All entries finite and ≥ 0.
//   - BaseEffort — per-key effort used for single-key items; len NumKeys,
//     finite and ≥ 0.
type Config struct {
	NumKeys    int
	CodeBits   int
	Roles      []RoleConfig
	Items      []ItemConfig
	PairEffort [][]float64
	BaseEffort []float64
}

var (
	// ErrBadKeyAlphabet indicates NumKeys outside [1..256].
	ErrBadKeyAlphabet = errors.New("scheme: key alphabet size must be in [1..256]")

	// ErrBadCodeBits indicates CodeBits outside [1..30].
	ErrBadCodeBits = errors.New("scheme: code bits must be in [1..30]")

	// ErrNoRoles indicates an empty role list.
	ErrNoRoles = errors.New("scheme: at least one role is required")

	// ErrNoItems indicates an empty item list.
	ErrNoItems = errors.New("scheme: at least one item is required")

	// ErrNoAllowedKeys indicates a role with an empty permitted key set.
	ErrNoAllowedKeys = errors.New("scheme: role permits no keys")

	// ErrKeyOutOfRange indicates a key id ≥ NumKeys.
	ErrKeyOutOfRange = errors.New("scheme: key id outside the alphabet")

	// ErrRoleOutOfRange indicates an item referencing a role index outside
	// [0..len(Roles)).
	ErrRoleOutOfRange = errors.New("scheme: item references unknown role")

	// ErrTooManyParts indicates an item composed of zero roles or more than
	// anneal.MaxItemKeys roles.
	ErrTooManyParts = errors.New("scheme: item role count outside [1..MaxItemKeys]")

	// ErrBadEffortTable indicates a malformed, non-finite or negative
	// effort table.
	ErrBadEffortTable = errors.New("scheme: malformed effort table")

	// ErrBadJSON indicates a problem definition that is not valid JSON or
	// holds out-of-range scalar values.
	ErrBadJSON = errors.New("scheme: malformed problem definition JSON")
)
