package coach

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/formwatch/internal/workout"
)

// NewSessionContext derives the summary statistics the rules and insights
// read from the rep analyses. reps must be non-empty.
func NewSessionContext(ex workout.Exercise, reps []workout.WorkoutAnalysis) *SessionContext {
	scores := make([]float64, len(reps))
	sums := make(map[string]float64)
	counts := make(map[string]int)
	hold := 0.0
	for i, r := range reps {
		scores[i] = r.Score
		for k, v := range r.Metrics {
			sums[k] += v
			counts[k]++
		}
		hold += r.EndTime - r.StartTime
	}

	means := make(map[string]float64, len(sums))
	for k, s := range sums {
		means[k] = s / float64(counts[k])
	}

	return &SessionContext{
		Exercise:     ex,
		Reps:         reps,
		Score:        workout.ClampScore(stat.Mean(scores, nil)),
		Consistency:  ScoreConsistency(scores),
		Means:        means,
		HoldDuration: hold,
	}
}

// ScoreConsistency maps the population standard deviation of rep scores to a
// 0-100 percentage: max(0, 100 - 100*stddev).
func ScoreConsistency(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return math.Max(0, 100-100*stat.PopStdDev(scores, nil))
}

// Summarize reduces a session's reps to a workout.Session with insights and
// at most MaxRecommendations recommendations. It returns
// workout.ErrNoRepsDetected when reps is empty. The caller assigns the ID.
func Summarize(ex workout.Exercise, reps []workout.WorkoutAnalysis) (workout.Session, error) {
	return NewEngine().Summarize(ex, reps)
}

// Summarize is Summarize using this engine's rules.
func (e *Engine) Summarize(ex workout.Exercise, reps []workout.WorkoutAnalysis) (workout.Session, error) {
	if len(reps) == 0 {
		return workout.Session{}, fmt.Errorf("summarize %s: %w", ex, workout.ErrNoRepsDetected)
	}

	ctx := NewSessionContext(ex, reps)
	scores := make([]float64, len(reps))
	for i, r := range reps {
		scores[i] = r.Score
	}

	recs := e.Run(ctx)
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Text
	}

	return workout.Session{
		Exercise:        ex,
		Reps:            reps,
		Score:           ctx.Score,
		BestRepScore:    floats.Max(scores),
		Consistency:     ctx.Consistency,
		Insights:        Insights(ctx),
		Recommendations: texts,
	}, nil
}
