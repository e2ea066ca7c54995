// Package scheme - reference objective over the evaluator's aggregates.
//
// The anneal core treats the objective as an opaque external function; this
// file is the worked example of that contract. The formula combines:
//
//   - a collision term: count of colliding codes plus their frequency mass
//     (normalized by total frequency so weights stay comparable across
//     problem sizes);
//   - an equivalence variance term: Var[x] = E[x²] − E[x]² over the
//     frequency-weighted equivalence cost, computed from the two running
//     sums;
//   - a balance term: squared coefficient of variation of per-key weighted
//     usage, penalizing uneven key load.
//
// Lower is better everywhere; the evaluator minimizes.
package scheme

import "github.com/katalvlaran/keylayout/anneal"

// Weights scales the three objective terms.
type Weights struct {
	// Collision multiplies the colliding-bucket count.
	Collision float64

	// CollisionFreq multiplies the colliding frequency share in [0,1].
	CollisionFreq float64

	// Variance multiplies the equivalence variance term.
	Variance float64

	// Balance multiplies the key-load imbalance term.
	Balance float64
}

// DefaultWeights returns the weighting used by the encoding-scheme designer:
// collisions dominate, effort variance and key balance break ties.
func DefaultWeights() Weights {
	return Weights{
		Collision:     1.0,
		CollisionFreq: 100.0,
		Variance:      10.0,
		Balance:       1.0,
	}
}

// WeightedScore builds an anneal.ScoreFunc from w. totalFreq is the summed
// item frequency (see Table.TotalFrequency); it normalizes the frequency-
// dependent terms. A zero totalFreq degrades gracefully to the unweighted
// collision count plus the balance term.
func WeightedScore(w Weights, totalFreq uint64) anneal.ScoreFunc {
	tf := float64(totalFreq)

	return func(agg anneal.Aggregates) float64 {
		score := w.Collision * float64(agg.Collisions)

		if tf > 0 {
			score += w.CollisionFreq * (float64(agg.CollisionFreq) / tf)

			// Frequency-weighted variance from the two running sums.
			mean := agg.EquivWeighted / tf
			score += w.Variance * (agg.EquivSqWeighted/tf - mean*mean)
		}

		score += w.Balance * usageImbalance(agg.KeyUsage)

		return score
	}
}

// usageImbalance is the squared coefficient of variation of the usage
// vector: Var[u]/Mean[u]². Zero for perfectly even load, zero for an unused
// alphabet.
func usageImbalance(usage []float64) float64 {
	n := float64(len(usage))
	if n == 0 {
		return 0
	}

	var (
		sum float64
		u   float64
	)
	for _, u = range usage {
		sum += u
	}
	mean := sum / n
	if mean <= 0 {
		return 0
	}

	var varSum float64
	var d float64
	for _, u = range usage {
		d = u - mean
		varSum += d * d
	}

	return (varSum / n) / (mean * mean)
}
