// Package coach summarizes a workout session into insights and prioritized
// recommendations.
package coach

import "github.com/blackwell-systems/formwatch/internal/workout"

// Priority levels for recommendations. Lower is more urgent.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// MaxRecommendations caps the recommendations attached to a session.
const MaxRecommendations = 3

// Recommendation is one actionable coaching cue.
type Recommendation struct {
	Category string  `json:"category"`
	Priority int     `json:"priority"`
	Text     string  `json:"text"`
	Impact   float64 `json:"impact"`
}

// SessionContext provides everything the recommendation rules need. It is
// built from the rep analyses by NewSessionContext.
type SessionContext struct {
	Exercise workout.Exercise

	// Reps are the aggregated rep analyses, in order.
	Reps []workout.WorkoutAnalysis

	// Score is the mean rep score.
	Score float64

	// Consistency is the 0-100 session consistency.
	Consistency float64

	// Means holds the per-key mean of every rep metric present in at least
	// one rep.
	Means map[string]float64

	// HoldDuration is the summed duration of all reps, in seconds.
	HoldDuration float64
}

// Mean returns the session mean of a rep metric and whether any rep had it.
func (c *SessionContext) Mean(key string) (float64, bool) {
	v, ok := c.Means[key]
	return v, ok
}

// Frequency returns the fraction of reps for which pred holds on the named
// metric. Reps without the metric count as not affected.
func (c *SessionContext) Frequency(key string, pred func(float64) bool) float64 {
	if len(c.Reps) == 0 {
		return 0
	}
	n := 0
	for _, r := range c.Reps {
		if v, ok := r.Metrics[key]; ok && pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(c.Reps))
}

// Rule examines a session and produces zero or more recommendations.
type Rule func(ctx *SessionContext) []Recommendation
