package validator

import (
	"sort"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

// aggregateScore reduces a component run to one confidence score plus the
// list of violated categories. The score is the weighted average of firing
// components only; silent components neither dilute nor inflate it. When two
// or more distinct categories fire, the corroboration boost multiplies the
// score, capped at 1.0. Independent weak signals agreeing is stronger
// evidence than either signal alone.
func aggregateScore(results []types.ComponentResult, boost float64) (float64, []string) {
	var weightedSum, weightTotal float64
	categories := make(map[string]float64)

	for _, r := range results {
		if !r.Detection.Detected || r.Weight <= 0 {
			continue
		}
		weightedSum += r.Detection.Confidence * r.Weight
		weightTotal += r.Weight
		if c := r.Detection.Category; c != "" {
			if r.Detection.Confidence > categories[c] {
				categories[c] = r.Detection.Confidence
			}
		}
	}
	if weightTotal == 0 {
		return 0, nil
	}

	score := weightedSum / weightTotal
	if len(categories) >= 2 && boost > 1 {
		score *= boost
	}
	score = types.ClampConfidence(score)

	violations := make([]string, 0, len(categories))
	for c := range categories {
		violations = append(violations, c)
	}
	sort.Slice(violations, func(i, j int) bool {
		if categories[violations[i]] != categories[violations[j]] {
			return categories[violations[i]] > categories[violations[j]]
		}
		return violations[i] < violations[j]
	})
	return score, violations
}

// allFailed reports whether every slot of a non-empty run carries an error
// marker. A wholly failed run is an infrastructure outage, not a verdict.
func allFailed(results []types.ComponentResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.Detection.Error == "" {
			return false
		}
	}
	return true
}

// failedGates collects the union of protocol gates across firing components,
// ordered by first appearance.
func failedGates(results []types.ComponentResult) []types.ProtocolGate {
	seen := make(map[types.ProtocolGate]bool)
	var gates []types.ProtocolGate
	for _, r := range results {
		if !r.Detection.Detected {
			continue
		}
		for _, g := range r.Detection.Gates {
			if !seen[g] {
				seen[g] = true
				gates = append(gates, g)
			}
		}
	}
	return gates
}
