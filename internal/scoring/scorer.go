// Package scoring evaluates exercise form on a single pose frame.
//
// Each exercise has a RuleSet: an ordered list of criteria, each measuring a
// geometric feature and mapping it through a banded table to a feedback
// message and a score deduction. The score starts at 1.0, deductions are
// summed, and the result is floored at 0.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// DefaultMinConfidence is the 2D confidence a joint must exceed to be used.
const DefaultMinConfidence = 0.5

// Scorer evaluates frames against the built-in rule sets. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	rules         map[workout.Exercise]RuleSet
	minConfidence float64
}

// NewScorer creates a Scorer with all built-in rule sets registered.
func NewScorer(minConfidence float64) *Scorer {
	return &Scorer{
		rules: map[workout.Exercise]RuleSet{
			workout.Squat:  SquatRules(),
			workout.PushUp: PushUpRules(),
			workout.Plank:  PlankRules(),
		},
		minConfidence: minConfidence,
	}
}

// Rules returns the rule set for ex.
func (s *Scorer) Rules(ex workout.Exercise) (RuleSet, bool) {
	rs, ok := s.rules[ex]
	return rs, ok
}

// Score evaluates a single frame. It returns an error wrapping
// workout.ErrInsufficientData when a required joint is unusable or a
// feature is geometrically degenerate.
func (s *Scorer) Score(ex workout.Exercise, frame pose.Frame) (workout.FrameAnalysis, error) {
	rs, ok := s.rules[ex]
	if !ok {
		return workout.FrameAnalysis{}, fmt.Errorf("no rules for exercise %s", ex)
	}

	sk := frame.Skeleton(s.minConfidence)
	if missing := pose.Missing(sk, rs.Required()); len(missing) > 0 {
		return workout.FrameAnalysis{}, fmt.Errorf("%w: %s frame missing %s",
			workout.ErrInsufficientData, frame.Dim, jointList(missing))
	}

	metrics := make(map[string]float64)
	messages := make([]string, 0, len(rs.Criteria)+1)
	deductions := 0.0

	for _, c := range rs.Criteria {
		v, err := c.Measure(sk, metrics)
		if err != nil {
			return workout.FrameAnalysis{}, fmt.Errorf("%w: %s: %w", workout.ErrInsufficientData, c.Metric, err)
		}
		metrics[c.Metric] = v
		band := c.Table.Lookup(v)
		deductions += band.Deduction
		messages = append(messages, band.Message)
	}

	score := workout.ClampScore(1.0 - deductions)
	feedback := append([]string{OverallTiers.Lookup(score).Message}, messages...)

	return workout.FrameAnalysis{
		Exercise:  ex,
		Score:     score,
		Feedback:  feedback,
		Metrics:   metrics,
		Timestamp: frame.Timestamp,
	}, nil
}

// Analyze scores a capture, trying the 3D body first and falling back to the
// 2D body. The analysis is stamped with the capture's timestamp.
func (s *Scorer) Analyze(ex workout.Exercise, c pose.Capture) (workout.FrameAnalysis, error) {
	var errs []error
	for _, frame := range c.Candidates() {
		fa, err := s.Score(ex, frame)
		if err == nil {
			fa.Timestamp = c.Timestamp
			return fa, nil
		}
		if !errors.Is(err, workout.ErrInsufficientData) {
			return workout.FrameAnalysis{}, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return workout.FrameAnalysis{}, fmt.Errorf("%w: capture has no body", workout.ErrInsufficientData)
	}
	return workout.FrameAnalysis{}, errors.Join(errs...)
}

func jointList(joints []pose.Joint) string {
	names := make([]string, len(joints))
	for i, j := range joints {
		names[i] = j.String()
	}
	return strings.Join(names, ", ")
}
