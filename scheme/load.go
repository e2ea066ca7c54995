// Package scheme - problem-definition ingestion.
//
// LoadJSON reads the designer's problem file into a Config. Expected shape:
//
//	{
//	  "keys": 26,
//	  "codeBits": 16,
//	  "roles": [ {"allowed": [0, 1, 2]}, ... ],
//	  "items": [ {"roles": [0, 3], "frequency": 1200}, ... ],
//	  "effort": {
//	    "base":  [1.0, 1.1, ...],
//	    "pairs": [[1.0, 1.3, ...], ...]
//	  }
//	}
//
// The loader checks JSON shape and scalar ranges only; structural validation
// (role references, effort-table dimensions, alphabet bounds) stays in
// NewTable so hand-built Configs pass through the same checks.
package scheme

import "github.com/tidwall/gjson"

// LoadJSON parses a problem definition. Returns ErrBadJSON for syntactically
// invalid input or scalars outside their types' ranges.
func LoadJSON(data []byte) (Config, error) {
	if !gjson.ValidBytes(data) {
		return Config{}, ErrBadJSON
	}
	root := gjson.ParseBytes(data)

	cfg := Config{
		NumKeys:  int(root.Get("keys").Int()),
		CodeBits: int(root.Get("codeBits").Int()),
	}

	bad := false // sticky flag; ForEach callbacks cannot return errors

	root.Get("roles").ForEach(func(_, role gjson.Result) bool {
		var rc RoleConfig
		role.Get("allowed").ForEach(func(_, k gjson.Result) bool {
			id := k.Int()
			if id < 0 || id > 255 {
				bad = true

				return false
			}
			rc.Allowed = append(rc.Allowed, uint8(id))

			return true
		})
		cfg.Roles = append(cfg.Roles, rc)

		return !bad
	})

	root.Get("items").ForEach(func(_, item gjson.Result) bool {
		ic := ItemConfig{Frequency: item.Get("frequency").Uint()}
		item.Get("roles").ForEach(func(_, r gjson.Result) bool {
			ic.Roles = append(ic.Roles, int(r.Int()))

			return true
		})
		cfg.Items = append(cfg.Items, ic)

		return true
	})

	root.Get("effort.base").ForEach(func(_, e gjson.Result) bool {
		cfg.BaseEffort = append(cfg.BaseEffort, e.Float())

		return true
	})
	root.Get("effort.pairs").ForEach(func(_, row gjson.Result) bool {
		var r []float64
		row.ForEach(func(_, e gjson.Result) bool {
			r = append(r, e.Float())

			return true
		})
		cfg.PairEffort = append(cfg.PairEffort, r)

		return true
	})

	if bad {
		return Config{}, ErrBadJSON
	}

	return cfg, nil
}
