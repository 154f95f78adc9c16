package suggest

import "sort"

// RankSuggestions sorts suggestions by ImpactScore in descending order.
// Ties keep rule registration order.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImpactScore > sorted[j].ImpactScore
	})
	return sorted
}

// ComputeImpact calculates an impact score for a suggestion.
// Formula: (weight * relevance * benefit) / effort
//
// Parameters:
//   - weight: severity weight of the reminder (1 for low up to 3 for high)
//   - relevance: how well the suggestion fits the situation (0.0-1.0)
//   - benefit: estimated minutes of focus or rest recovered
//   - effort: estimated minutes the suggestion costs
//
// Returns 0 if effort is zero to avoid division by zero.
func ComputeImpact(weight int, relevance float64, benefit float64, effort float64) float64 {
	if effort <= 0 {
		return 0
	}
	return (float64(weight) * relevance * benefit) / effort
}

func severityWeight(ctx *ReminderContext) int {
	return int(ctx.Severity) + 1
}
