package coach

import "sort"

// Rank sorts recommendations by priority, then by impact (highest first).
// Ties keep rule order.
func Rank(recs []Recommendation) []Recommendation {
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Impact > sorted[j].Impact
	})
	return sorted
}

// ComputeImpact scores a deficiency as the fraction of affected reps times
// how far the session mean sits past the threshold, relative to tolerance.
//
// Returns 0 if tolerance is not positive.
func ComputeImpact(frequency, excess, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	return frequency * (1 + excess/tolerance)
}
