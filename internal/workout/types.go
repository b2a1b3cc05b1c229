// Package workout holds the data model shared by the scorer, the rep
// segmenter and aggregator, and the session summarizer.
package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Error taxonomy. None of these abort a pipeline: they are handled at the
// frame or segment boundary.
var (
	// ErrInsufficientData means required joints were missing, below the
	// confidence threshold, unavailable, or geometrically degenerate.
	ErrInsufficientData = errors.New("insufficient pose data")

	// ErrEmptySegment means a rep or session aggregation received no frames.
	ErrEmptySegment = errors.New("empty segment")

	// ErrNoRepsDetected means segmentation closed no reps. It is distinct
	// from a valid low-score session.
	ErrNoRepsDetected = errors.New("no repetitions detected")
)

// Exercise selects the rule set, segmentation and summary wording.
type Exercise int

const (
	Squat Exercise = iota
	PushUp
	Plank
)

// Exercises lists the supported exercises.
var Exercises = []Exercise{Squat, PushUp, Plank}

func (e Exercise) String() string {
	switch e {
	case Squat:
		return "squat"
	case PushUp:
		return "pushup"
	case Plank:
		return "plank"
	default:
		return fmt.Sprintf("exercise(%d)", int(e))
	}
}

// DisplayName is the human-facing name used by presentation code.
func (e Exercise) DisplayName() string {
	switch e {
	case Squat:
		return "Squat"
	case PushUp:
		return "Push-up"
	case Plank:
		return "Plank"
	default:
		return e.String()
	}
}

// PrimaryMetric is the joint-angle metric tracked across a rep. For dynamic
// exercises it also drives segmentation.
func (e Exercise) PrimaryMetric() string {
	switch e {
	case Squat:
		return MetricAvgKneeAngle
	case PushUp:
		return MetricAvgElbowAngle
	default:
		return MetricHipAlignment
	}
}

// IsStatic reports whether the exercise is an isometric hold analyzed as a
// single session rather than segmented into reps.
func (e Exercise) IsStatic() bool {
	return e == Plank
}

// ParseExercise resolves an exercise name.
func ParseExercise(s string) (Exercise, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "squat", "squats":
		return Squat, nil
	case "pushup", "push-up", "push_up", "pushups", "push-ups":
		return PushUp, nil
	case "plank":
		return Plank, nil
	}
	return 0, fmt.Errorf("unknown exercise %q (want squat, pushup or plank)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Exercise) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Exercise) UnmarshalText(b []byte) error {
	parsed, err := ParseExercise(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Frame-level metric names.
const (
	MetricAvgKneeAngle    = "avg_knee_angle"
	MetricLeftKneeAngle   = "left_knee_angle"
	MetricRightKneeAngle  = "right_knee_angle"
	MetricKneeSymmetry    = "knee_symmetry"
	MetricTorsoAngle      = "torso_angle"
	MetricKneeOverToe     = "knee_over_toe"
	MetricAvgElbowAngle   = "avg_elbow_angle"
	MetricLeftElbowAngle  = "left_elbow_angle"
	MetricRightElbowAngle = "right_elbow_angle"
	MetricElbowSymmetry   = "elbow_symmetry"
	MetricBodyAlignment   = "body_alignment"
	MetricHipAlignment    = "hip_alignment"
)

// Rep-level metric names, present only on aggregated analyses.
const (
	MetricDeepestAngle     = "deepest_angle"
	MetricPeakAngle        = "peak_angle"
	MetricRangeOfMotion    = "range_of_motion"
	MetricRepDuration      = "rep_duration"
	MetricAngleStdDev      = "angle_stddev"
	MetricConsistencyScore = "consistency_score"
	MetricMinScore         = "min_score"
	MetricMaxScore         = "max_score"
)

// FrameAnalysis is the scorer's verdict on one frame. Feedback[0] is the
// overall-score summary; per-criterion messages follow in evaluation order.
type FrameAnalysis struct {
	Exercise  Exercise           `json:"exercise"`
	Score     float64            `json:"score"`
	Feedback  []string           `json:"feedback"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp float64            `json:"timestamp"`
}

// Metric returns the named metric and whether it is present.
func (f FrameAnalysis) Metric(name string) (float64, bool) {
	v, ok := f.Metrics[name]
	return v, ok
}

// WorkoutAnalysis is one rep (or one static hold) reduced from its frames.
type WorkoutAnalysis struct {
	Exercise   Exercise           `json:"exercise"`
	Score      float64            `json:"score"`
	Feedback   []string           `json:"feedback"`
	Metrics    map[string]float64 `json:"metrics"`
	StartTime  float64            `json:"start_time"`
	EndTime    float64            `json:"end_time"`
	FrameCount int                `json:"frame_count"`
}

// Insight is one summary row for presentation.
type Insight struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Session is the result of one analysis request.
type Session struct {
	ID              string            `json:"id"`
	Exercise        Exercise          `json:"exercise"`
	Reps            []WorkoutAnalysis `json:"reps"`
	Score           float64           `json:"score"`
	BestRepScore    float64           `json:"best_rep_score"`
	Consistency     float64           `json:"consistency"`
	Insights        []Insight         `json:"insights"`
	Recommendations []string          `json:"recommendations"`
}

// RepCount returns the number of reps in the session.
func (s *Session) RepCount() int {
	return len(s.Reps)
}

// MarshalJSON adds the derived rep_count to the encoded session.
func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return json.Marshal(struct {
		plain
		RepCount int `json:"rep_count"`
	}{plain(s), len(s.Reps)})
}

// ClampScore bounds a score to [0, 1]. NaN becomes 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
