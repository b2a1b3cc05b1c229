package scoring

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/blackwell-systems/formwatch/internal/bands"
	"github.com/blackwell-systems/formwatch/internal/geometry"
	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Criterion is one step of a rule set: it measures a geometric feature and
// bands it into a deduction and a feedback message.
type Criterion struct {
	// Metric is the key the banded value is recorded under.
	Metric string

	// Requires lists the joints the criterion reads. A frame missing any of
	// them is insufficient data.
	Requires []pose.Joint

	Table *bands.Table

	// Measure computes the banded value. It may record auxiliary metrics
	// (left/right components) into metrics.
	Measure func(sk pose.Skeleton, metrics map[string]float64) (float64, error)
}

// RuleSet is the ordered criteria for one exercise.
type RuleSet struct {
	Exercise workout.Exercise
	Criteria []Criterion
}

// Required returns the union of joints the rule set reads, in first-use order.
func (rs RuleSet) Required() []pose.Joint {
	seen := make(map[pose.Joint]bool)
	var out []pose.Joint
	for _, c := range rs.Criteria {
		for _, j := range c.Requires {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	return out
}

var (
	legJoints   = []pose.Joint{pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle}
	armJoints   = []pose.Joint{pose.LeftShoulder, pose.RightShoulder, pose.LeftElbow, pose.RightElbow, pose.LeftWrist, pose.RightWrist}
	torsoJoints = []pose.Joint{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip}
	ankleKnees  = []pose.Joint{pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle}
	plankJoints = []pose.Joint{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle}
)

// SquatRules: depth, symmetry, torso lean, knee tracking.
func SquatRules() RuleSet {
	return RuleSet{
		Exercise: workout.Squat,
		Criteria: []Criterion{
			{
				Metric:   workout.MetricAvgKneeAngle,
				Requires: legJoints,
				Table:    &SquatDepth,
				Measure: func(sk pose.Skeleton, m map[string]float64) (float64, error) {
					left, right, err := pairedAngles(sk, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.RightHip, pose.RightKnee, pose.RightAnkle)
					if err != nil {
						return 0, err
					}
					m[workout.MetricLeftKneeAngle] = left
					m[workout.MetricRightKneeAngle] = right
					return (left + right) / 2, nil
				},
			},
			{
				Metric:   workout.MetricKneeSymmetry,
				Requires: legJoints,
				Table:    &SquatSymmetry,
				Measure: func(sk pose.Skeleton, _ map[string]float64) (float64, error) {
					left, right, err := pairedAngles(sk, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.RightHip, pose.RightKnee, pose.RightAnkle)
					if err != nil {
						return 0, err
					}
					return math.Abs(left - right), nil
				},
			},
			{
				Metric:   workout.MetricTorsoAngle,
				Requires: torsoJoints,
				Table:    &SquatTorso,
				Measure: func(sk pose.Skeleton, _ map[string]float64) (float64, error) {
					shoulders := mid(sk, pose.LeftShoulder, pose.RightShoulder)
					hips := mid(sk, pose.LeftHip, pose.RightHip)
					return geometry.AxisDeviation(shoulders, hips, geometry.Vertical)
				},
			},
			{
				Metric:   workout.MetricKneeOverToe,
				Requires: ankleKnees,
				Table:    &SquatKneeTracking,
				Measure: func(sk pose.Skeleton, _ map[string]float64) (float64, error) {
					left := math.Abs(geometry.HorizontalOffset(pos(sk, pose.LeftKnee), pos(sk, pose.LeftAnkle)))
					right := math.Abs(geometry.HorizontalOffset(pos(sk, pose.RightKnee), pos(sk, pose.RightAnkle)))
					return math.Max(left, right), nil
				},
			},
		},
	}
}

// PushUpRules: depth, body line.
func PushUpRules() RuleSet {
	return RuleSet{
		Exercise: workout.PushUp,
		Criteria: []Criterion{
			{
				Metric:   workout.MetricAvgElbowAngle,
				Requires: armJoints,
				Table:    &PushUpDepth,
				Measure: func(sk pose.Skeleton, m map[string]float64) (float64, error) {
					left, right, err := pairedAngles(sk, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.RightShoulder, pose.RightElbow, pose.RightWrist)
					if err != nil {
						return 0, err
					}
					m[workout.MetricLeftElbowAngle] = left
					m[workout.MetricRightElbowAngle] = right
					m[workout.MetricElbowSymmetry] = math.Abs(left - right)
					return (left + right) / 2, nil
				},
			},
			{
				Metric:   workout.MetricBodyAlignment,
				Requires: torsoJoints,
				Table:    &PushUpBodyLine,
				Measure: func(sk pose.Skeleton, _ map[string]float64) (float64, error) {
					shoulders := mid(sk, pose.LeftShoulder, pose.RightShoulder)
					hips := mid(sk, pose.LeftHip, pose.RightHip)
					dev, err := geometry.AxisDeviation(shoulders, hips, geometry.Horizontal)
					if err != nil {
						return 0, err
					}
					return 180 - dev, nil
				},
			},
		},
	}
}

// PlankRules: hip alignment.
func PlankRules() RuleSet {
	return RuleSet{
		Exercise: workout.Plank,
		Criteria: []Criterion{
			{
				Metric:   workout.MetricHipAlignment,
				Requires: plankJoints,
				Table:    &PlankAlignment,
				Measure: func(sk pose.Skeleton, _ map[string]float64) (float64, error) {
					return geometry.AngleBetween(
						mid(sk, pose.LeftShoulder, pose.RightShoulder),
						mid(sk, pose.LeftHip, pose.RightHip),
						mid(sk, pose.LeftAnkle, pose.RightAnkle),
					)
				},
			},
		},
	}
}

// pos returns a joint the caller has already checked is present.
func pos(sk pose.Skeleton, j pose.Joint) mgl64.Vec3 {
	p, _ := sk.Position(j)
	return p
}

func mid(sk pose.Skeleton, a, b pose.Joint) mgl64.Vec3 {
	return geometry.Midpoint(pos(sk, a), pos(sk, b))
}

// pairedAngles returns the vertex angles of a left and a right joint chain.
func pairedAngles(sk pose.Skeleton, la, lb, lc, ra, rb, rc pose.Joint) (float64, float64, error) {
	left, err := geometry.AngleBetween(pos(sk, la), pos(sk, lb), pos(sk, lc))
	if err != nil {
		return 0, 0, err
	}
	right, err := geometry.AngleBetween(pos(sk, ra), pos(sk, rb), pos(sk, rc))
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}
