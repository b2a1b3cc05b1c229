package coach

import (
	"fmt"

	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Score tier thresholds.
const (
	RemedialBelow    = 0.6
	ProgressionAbove = 0.8
)

// Deficiency thresholds on session means.
const (
	AsymmetryLimit    = 10.0
	AlignmentMinimum  = 160.0
	TorsoLeanLimit    = 35.0
	KneeOverToeLimit  = 0.1
	HoldTarget        = 30.0
	ConsistencyTarget = 70.0
)

type depthLimits struct {
	shallow float64 // deepest angle above this is too shallow
	deep    float64 // deepest angle below this is too deep
}

var depthByExercise = map[workout.Exercise]depthLimits{
	workout.Squat:  {shallow: 110, deep: 70},
	workout.PushUp: {shallow: 110, deep: 50},
}

// ScoreTier suggests remedial drills for low-scoring sessions and a
// progression for high-scoring ones.
func ScoreTier(ctx *SessionContext) []Recommendation {
	switch {
	case ctx.Score < RemedialBelow:
		return []Recommendation{{
			Category: "fundamentals",
			Priority: PriorityCritical,
			Text:     remedial[ctx.Exercise],
			Impact:   ComputeImpact(1, RemedialBelow-ctx.Score, RemedialBelow),
		}}
	case ctx.Score > ProgressionAbove:
		return []Recommendation{{
			Category: "progression",
			Priority: PriorityLow,
			Text:     progression[ctx.Exercise],
			Impact:   ComputeImpact(1, ctx.Score-ProgressionAbove, 1-ProgressionAbove),
		}}
	}
	return nil
}

var remedial = map[workout.Exercise]string{
	workout.Squat:  "Practice box squats or goblet squats to groove the movement pattern",
	workout.PushUp: "Build strength with incline or knee push-ups before full reps",
	workout.Plank:  "Start with shorter holds or knee planks and focus on a neutral spine",
}

var progression = map[workout.Exercise]string{
	workout.Squat:  "Great squats! Try adding weight or slowing the descent to a 3-second count",
	workout.PushUp: "Strong push-ups! Progress to decline or diamond push-ups",
	workout.Plank:  "Solid plank! Try side planks or lifting one limb at a time",
}

// DepthRange flags reps that are consistently too shallow or too deep.
func DepthRange(ctx *SessionContext) []Recommendation {
	limits, ok := depthByExercise[ctx.Exercise]
	if !ok {
		return nil
	}
	deepest, ok := ctx.Mean(workout.MetricDeepestAngle)
	if !ok {
		return nil
	}

	joint := "knees"
	if ctx.Exercise == workout.PushUp {
		joint = "elbows"
	}

	switch {
	case deepest > limits.shallow:
		freq := ctx.Frequency(workout.MetricDeepestAngle, func(v float64) bool { return v > limits.shallow })
		return []Recommendation{{
			Category: "depth",
			Priority: PriorityHigh,
			Text:     fmt.Sprintf("Increase your depth: your %s only bent to %.0f° on average", joint, deepest),
			Impact:   ComputeImpact(freq, deepest-limits.shallow, 20),
		}}
	case deepest < limits.deep:
		freq := ctx.Frequency(workout.MetricDeepestAngle, func(v float64) bool { return v < limits.deep })
		return []Recommendation{{
			Category: "depth",
			Priority: PriorityMedium,
			Text:     "Control the bottom of each rep: you are going deeper than needed",
			Impact:   ComputeImpact(freq, limits.deep-deepest, 20),
		}}
	}
	return nil
}

// Asymmetry flags a consistent left/right imbalance.
func Asymmetry(ctx *SessionContext) []Recommendation {
	key, priority, side := workout.MetricKneeSymmetry, PriorityHigh, "legs"
	switch ctx.Exercise {
	case workout.Squat:
	case workout.PushUp:
		key, priority, side = workout.MetricElbowSymmetry, PriorityMedium, "arms"
	default:
		return nil
	}

	diff, ok := ctx.Mean(key)
	if !ok || diff <= AsymmetryLimit {
		return nil
	}
	freq := ctx.Frequency(key, func(v float64) bool { return v > AsymmetryLimit })
	return []Recommendation{{
		Category: "symmetry",
		Priority: priority,
		Text:     fmt.Sprintf("Balance your %s: they differ by %.0f° on average", side, diff),
		Impact:   ComputeImpact(freq, diff-AsymmetryLimit, AsymmetryLimit),
	}}
}

// BodyAlignment flags a broken body line in push-ups and planks.
func BodyAlignment(ctx *SessionContext) []Recommendation {
	var key, text string
	switch ctx.Exercise {
	case workout.PushUp:
		key, text = workout.MetricBodyAlignment, "Keep a straight line from shoulders to ankles: brace your core and squeeze your glutes"
	case workout.Plank:
		key, text = workout.MetricHipAlignment, "Align your hips with your shoulders and ankles: avoid sagging or piking"
	default:
		return nil
	}

	angle, ok := ctx.Mean(key)
	if !ok || angle >= AlignmentMinimum {
		return nil
	}
	freq := ctx.Frequency(key, func(v float64) bool { return v < AlignmentMinimum })
	return []Recommendation{{
		Category: "alignment",
		Priority: PriorityHigh,
		Text:     text,
		Impact:   ComputeImpact(freq, AlignmentMinimum-angle, 20),
	}}
}

// TorsoLean flags excessive forward lean in squats.
func TorsoLean(ctx *SessionContext) []Recommendation {
	if ctx.Exercise != workout.Squat {
		return nil
	}
	lean, ok := ctx.Mean(workout.MetricTorsoAngle)
	if !ok || lean <= TorsoLeanLimit {
		return nil
	}
	freq := ctx.Frequency(workout.MetricTorsoAngle, func(v float64) bool { return v > TorsoLeanLimit })
	return []Recommendation{{
		Category: "posture",
		Priority: PriorityMedium,
		Text:     fmt.Sprintf("Keep your chest up: your torso leaned %.0f° forward on average", lean),
		Impact:   ComputeImpact(freq, lean-TorsoLeanLimit, 15),
	}}
}

// KneeTracking flags knees travelling past the toes in squats.
func KneeTracking(ctx *SessionContext) []Recommendation {
	if ctx.Exercise != workout.Squat {
		return nil
	}
	offset, ok := ctx.Mean(workout.MetricKneeOverToe)
	if !ok || offset <= KneeOverToeLimit {
		return nil
	}
	freq := ctx.Frequency(workout.MetricKneeOverToe, func(v float64) bool { return v > KneeOverToeLimit })
	return []Recommendation{{
		Category: "posture",
		Priority: PriorityMedium,
		Text:     "Sit back into your hips so your knees stay behind your toes",
		Impact:   ComputeImpact(freq, offset-KneeOverToeLimit, KneeOverToeLimit),
	}}
}

// ShortHold flags plank holds under the target duration.
func ShortHold(ctx *SessionContext) []Recommendation {
	if ctx.Exercise != workout.Plank || ctx.HoldDuration >= HoldTarget {
		return nil
	}
	return []Recommendation{{
		Category: "endurance",
		Priority: PriorityMedium,
		Text:     fmt.Sprintf("Build endurance: work up from %.0fs to a %.0fs hold", ctx.HoldDuration, HoldTarget),
		Impact:   ComputeImpact(1, HoldTarget-ctx.HoldDuration, HoldTarget),
	}}
}

// Inconsistency flags sessions whose rep quality varies widely.
func Inconsistency(ctx *SessionContext) []Recommendation {
	if ctx.Exercise.IsStatic() || len(ctx.Reps) < 2 || ctx.Consistency >= ConsistencyTarget {
		return nil
	}
	return []Recommendation{{
		Category: "consistency",
		Priority: PriorityMedium,
		Text:     "Slow down and make every rep look the same: quality varied between reps",
		Impact:   ComputeImpact(1, ConsistencyTarget-ctx.Consistency, ConsistencyTarget),
	}}
}
