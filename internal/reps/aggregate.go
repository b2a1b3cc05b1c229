package reps

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/formwatch/internal/scoring"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Aggregate reduces the frames of one rep (or one static hold) to a
// WorkoutAnalysis. Frames must be in timestamp order. It returns
// workout.ErrEmptySegment for an empty rep.
//
// Feedback is synthesized in a fixed order: overall tier, depth (or
// alignment) tier, consistency tier, range-of-motion tier, then tempo (or
// hold duration). Per-frame messages follow, deduplicated, minus those the
// synthesized lines already cover.
func Aggregate(ex workout.Exercise, frames []workout.FrameAnalysis) (workout.WorkoutAnalysis, error) {
	if len(frames) == 0 {
		return workout.WorkoutAnalysis{}, fmt.Errorf("aggregate %s: %w", ex, workout.ErrEmptySegment)
	}

	scores := make([]float64, len(frames))
	for i, fa := range frames {
		scores[i] = fa.Score
	}
	score := workout.ClampScore(stat.Mean(scores, nil))

	start, end := frames[0].Timestamp, frames[len(frames)-1].Timestamp
	duration := end - start

	metrics := meanMetrics(frames)
	metrics[workout.MetricRepDuration] = duration
	metrics[workout.MetricMinScore] = floats.Min(scores)
	metrics[workout.MetricMaxScore] = floats.Max(scores)

	feedback := []string{scoring.OverallTiers.Lookup(score).Message}

	if angles := primaryValues(ex, frames); len(angles) > 0 {
		deepest, peak := floats.Min(angles), floats.Max(angles)
		std := stat.PopStdDev(angles, nil)
		consistency := math.Max(0, 100-std)

		metrics[workout.MetricDeepestAngle] = deepest
		metrics[workout.MetricPeakAngle] = peak
		metrics[workout.MetricRangeOfMotion] = peak - deepest
		metrics[workout.MetricAngleStdDev] = std
		metrics[workout.MetricConsistencyScore] = consistency

		if ex.IsStatic() {
			feedback = append(feedback,
				scoring.PrimaryTable(ex).Lookup(stat.Mean(angles, nil)).Message,
				Consistency.Lookup(consistency).Message,
			)
		} else {
			feedback = append(feedback,
				scoring.PrimaryTable(ex).Lookup(deepest).Message,
				Consistency.Lookup(consistency).Message,
				RangeOfMotion.Lookup(peak-deepest).Message,
			)
		}
	}

	if ex.IsStatic() {
		feedback = append(feedback, HoldDuration.Lookup(duration).Message)
	} else {
		feedback = append(feedback, Tempo.Lookup(duration).Message)
	}

	primary := scoring.PrimaryTable(ex)
	for _, fa := range frames {
		for _, msg := range fa.Feedback {
			if slices.Contains(feedback, msg) || scoring.OverallTiers.HasMessage(msg) || primary.HasMessage(msg) {
				continue
			}
			feedback = append(feedback, msg)
		}
	}

	return workout.WorkoutAnalysis{
		Exercise:   ex,
		Score:      score,
		Feedback:   feedback,
		Metrics:    metrics,
		StartTime:  start,
		EndTime:    end,
		FrameCount: len(frames),
	}, nil
}

// primaryValues returns the primary metric of every frame that has it.
func primaryValues(ex workout.Exercise, frames []workout.FrameAnalysis) []float64 {
	key := ex.PrimaryMetric()
	var out []float64
	for _, fa := range frames {
		if v, ok := fa.Metric(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// meanMetrics averages every metric key present in all frames.
func meanMetrics(frames []workout.FrameAnalysis) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, fa := range frames {
		for k, v := range fa.Metrics {
			sums[k] += v
			counts[k]++
		}
	}
	out := make(map[string]float64, len(sums))
	for k, sum := range sums {
		if counts[k] == len(frames) {
			out[k] = sum / float64(len(frames))
		}
	}
	return out
}
