package reps

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/blackwell-systems/formwatch/internal/workout"
)

func squatFrame(ts, knee float64) workout.FrameAnalysis {
	return workout.FrameAnalysis{
		Exercise:  workout.Squat,
		Score:     0.9,
		Timestamp: ts,
		Metrics:   map[string]float64{workout.MetricAvgKneeAngle: knee},
	}
}

func squatFrames(angles ...float64) []workout.FrameAnalysis {
	out := make([]workout.FrameAnalysis, len(angles))
	for i, a := range angles {
		out[i] = squatFrame(float64(i)*0.5, a)
	}
	return out
}

func timestamps(frames []workout.FrameAnalysis) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Timestamp
	}
	return out
}

func TestSegment_LiteralSquatScenario(t *testing.T) {
	frames := squatFrames(180, 170, 150, 120, 90, 95, 130, 160, 175)

	got := Segment(workout.Squat, frames)
	if len(got) != 1 {
		t.Fatalf("expected 1 rep, got %d", len(got))
	}
	rep := got[0]
	if want := timestamps(frames[2:9]); !slices.Equal(timestamps(rep), want) {
		t.Errorf("rep spans %v, want indices 2-8 %v", timestamps(rep), want)
	}

	wa, err := Aggregate(workout.Squat, rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wa.Metrics[workout.MetricDeepestAngle] != 90 {
		t.Errorf("deepest angle = %v, want 90", wa.Metrics[workout.MetricDeepestAngle])
	}
	if wa.Feedback[1] != "Perfect squat depth!" {
		t.Errorf("depth feedback = %q, want top squat depth band", wa.Feedback[1])
	}
	if d := wa.EndTime - wa.StartTime; d != frames[8].Timestamp-frames[2].Timestamp {
		t.Errorf("duration = %v", d)
	}
	if wa.Metrics[workout.MetricRepDuration] != 3.0 {
		t.Errorf("rep_duration = %v, want 3", wa.Metrics[workout.MetricRepDuration])
	}
}

func TestSegment_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		ex     workout.Exercise
		angles []float64
		want   [][]int // frame indices per rep
	}{
		{
			name:   "two reps, second starts after closing frame",
			ex:     workout.Squat,
			angles: []float64{170, 120, 90, 175, 120, 90, 175},
			want:   [][]int{{0, 1, 2, 3}, {4, 5, 6}},
		},
		{
			name:   "dead zone never opens",
			ex:     workout.Squat,
			angles: []float64{160, 140, 131, 150, 135, 159, 130, 145},
			want:   nil,
		},
		{
			name:   "slow descent below delta never opens",
			ex:     workout.Squat,
			angles: []float64{140, 136, 132, 128, 124, 120, 116},
			want:   nil,
		},
		{
			name:   "oscillation inside open rep never closes",
			ex:     workout.Squat,
			angles: []float64{170, 120, 140, 158, 140, 158, 140},
			want:   [][]int{{0, 1, 2, 3, 4, 5, 6}},
		},
		{
			name:   "slow rise past ascend does not close",
			ex:     workout.Squat,
			angles: []float64{170, 120, 150, 155, 162, 168},
			want:   [][]int{{0, 1, 2, 3, 4, 5}},
		},
		{
			name:   "push-up uses its own descend threshold",
			ex:     workout.PushUp,
			angles: []float64{170, 145, 90, 120, 170},
			want:   [][]int{{0, 1, 2, 3, 4}},
		},
		{
			name:   "squat ignores push-up threshold",
			ex:     workout.Squat,
			angles: []float64{170, 145, 140, 170},
			want:   nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frames := make([]workout.FrameAnalysis, len(tc.angles))
			for i, a := range tc.angles {
				frames[i] = workout.FrameAnalysis{
					Exercise:  tc.ex,
					Timestamp: float64(i),
					Metrics:   map[string]float64{tc.ex.PrimaryMetric(): a},
				}
			}
			got := Segment(tc.ex, frames)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d reps, got %d", len(tc.want), len(got))
			}
			for r, idx := range tc.want {
				want := make([]float64, len(idx))
				for i, k := range idx {
					want[i] = float64(k)
				}
				if !slices.Equal(timestamps(got[r]), want) {
					t.Errorf("rep %d spans %v, want %v", r, timestamps(got[r]), want)
				}
			}
		})
	}
}

func TestSegment_MissingMetricFrames(t *testing.T) {
	frames := squatFrames(170, 150, 120, 90, 95, 170)
	gap := workout.FrameAnalysis{Exercise: workout.Squat, Timestamp: 1.75, Metrics: map[string]float64{}}
	frames = slices.Insert(frames, 4, gap)
	before := workout.FrameAnalysis{Exercise: workout.Squat, Timestamp: 0.25}
	frames = slices.Insert(frames, 1, before)

	got := Segment(workout.Squat, frames)
	if len(got) != 1 {
		t.Fatalf("expected 1 rep, got %d", len(got))
	}
	want := []float64{0.5, 1.0, 1.5, 1.75, 2.0, 2.5}
	if !slices.Equal(timestamps(got[0]), want) {
		t.Errorf("rep spans %v, want %v", timestamps(got[0]), want)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	frames := squatFrames(180, 120, 85, 175, 178, 125, 92, 170, 140, 110, 100)
	a := Segment(workout.Squat, frames)
	b := Segment(workout.Squat, frames)
	if !reflect.DeepEqual(a, b) {
		t.Error("segmenting the same sequence twice gave different reps")
	}
	if len(a) != 3 {
		t.Errorf("expected 3 reps (last one flushed), got %d", len(a))
	}
}

func TestSegmenter_FlushOpenRep(t *testing.T) {
	seg := NewSegmenter(workout.Squat)
	for _, fa := range squatFrames(170, 120, 100, 90, 110, 150) {
		if _, closed := seg.Push(fa); closed {
			t.Fatal("rep closed without crossing the ascend threshold")
		}
	}
	if seg.State() != InRep {
		t.Fatalf("expected InRep, got %s", seg.State())
	}

	rep, ok := seg.Flush()
	if !ok || len(rep) != 6 {
		t.Fatalf("expected flushed rep of 6 frames, got %d (ok=%v)", len(rep), ok)
	}
	if seg.State() != Idle {
		t.Errorf("expected Idle after flush, got %s", seg.State())
	}
	if _, ok := seg.Flush(); ok {
		t.Error("second flush should be empty")
	}
}

func TestSegmenter_StaticExercise(t *testing.T) {
	seg := NewSegmenter(workout.Plank)
	for i := 0; i < 5; i++ {
		fa := workout.FrameAnalysis{Exercise: workout.Plank, Timestamp: float64(i), Metrics: map[string]float64{workout.MetricHipAlignment: 100 + float64(i)*20}}
		if _, closed := seg.Push(fa); closed {
			t.Fatal("static exercise closed a rep mid-stream")
		}
	}
	rep, ok := seg.Flush()
	if !ok || len(rep) != 5 {
		t.Errorf("expected one session of 5 frames, got %d", len(rep))
	}
}

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(workout.Squat, nil)
	if !errors.Is(err, workout.ErrEmptySegment) {
		t.Errorf("expected ErrEmptySegment, got %v", err)
	}
}

func TestAggregate_Metrics(t *testing.T) {
	frames := []workout.FrameAnalysis{
		{Score: 0.6, Timestamp: 10, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 100, workout.MetricTorsoAngle: 20, workout.MetricKneeOverToe: 0.02}},
		{Score: 1.0, Timestamp: 11, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 80, workout.MetricTorsoAngle: 30}},
		{Score: 0.8, Timestamp: 12, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 100, workout.MetricTorsoAngle: 25}},
		{Score: 0.6, Timestamp: 13, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 80, workout.MetricTorsoAngle: 25}},
	}

	wa, err := Aggregate(workout.Squat, frames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string]float64{
		workout.MetricAvgKneeAngle:     90,
		workout.MetricTorsoAngle:       25,
		workout.MetricDeepestAngle:     80,
		workout.MetricPeakAngle:        100,
		workout.MetricRangeOfMotion:    20,
		workout.MetricAngleStdDev:      10,
		workout.MetricConsistencyScore: 90,
		workout.MetricRepDuration:      3,
		workout.MetricMinScore:         0.6,
		workout.MetricMaxScore:         1.0,
	}
	for k, want := range checks {
		if got := wa.Metrics[k]; math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", k, got, want)
		}
	}
	if _, ok := wa.Metrics[workout.MetricKneeOverToe]; ok {
		t.Error("metric missing from some frames should not be averaged")
	}
	if math.Abs(wa.Score-0.75) > 1e-9 {
		t.Errorf("score = %v, want 0.75", wa.Score)
	}
	if wa.FrameCount != 4 || wa.StartTime != 10 || wa.EndTime != 13 {
		t.Errorf("unexpected bounds: %+v", wa)
	}
}

func TestAggregate_FeedbackOrderAndDedup(t *testing.T) {
	frames := []workout.FrameAnalysis{
		{Score: 0.9, Timestamp: 0, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 170},
			Feedback: []string{"Great form!", "Not deep enough - bend your knees more", "Slight imbalance between legs", "Good torso angle"}},
		{Score: 0.9, Timestamp: 1, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 95},
			Feedback: []string{"Great form!", "Perfect squat depth!", "Slight imbalance between legs", "Knees tracking well"}},
		{Score: 0.9, Timestamp: 2, Metrics: map[string]float64{workout.MetricAvgKneeAngle: 170},
			Feedback: []string{"Great form!", "Not deep enough - bend your knees more", "Good torso angle"}},
	}

	wa, err := Aggregate(workout.Squat, frames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"Great form!",
		"Perfect squat depth!",
		Consistency.Lookup(wa.Metrics[workout.MetricConsistencyScore]).Message,
		"Full range of motion!",
		"Fast tempo - try a slower descent",
		"Slight imbalance between legs",
		"Good torso angle",
		"Knees tracking well",
	}
	if !slices.Equal(wa.Feedback, want) {
		t.Errorf("feedback =\n%q\nwant\n%q", wa.Feedback, want)
	}
}

func TestAggregate_PushUpUsesPushUpLanguage(t *testing.T) {
	frames := []workout.FrameAnalysis{
		{Score: 1, Timestamp: 0, Metrics: map[string]float64{workout.MetricAvgElbowAngle: 165}},
		{Score: 1, Timestamp: 1, Metrics: map[string]float64{workout.MetricAvgElbowAngle: 80}},
		{Score: 1, Timestamp: 2, Metrics: map[string]float64{workout.MetricAvgElbowAngle: 170}},
	}
	wa, err := Aggregate(workout.PushUp, frames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wa.Feedback[1] != "Perfect push-up depth!" {
		t.Errorf("depth feedback = %q", wa.Feedback[1])
	}
}

func TestAggregate_PlankHold(t *testing.T) {
	var frames []workout.FrameAnalysis
	for i := 0; i <= 40; i++ {
		frames = append(frames, workout.FrameAnalysis{
			Score:     1,
			Timestamp: float64(i),
			Metrics:   map[string]float64{workout.MetricHipAlignment: 170},
		})
	}
	wa, err := Aggregate(workout.Plank, frames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Excellent form!", "Perfect plank alignment!", "Very consistent movement!", "Strong hold!"}
	if !slices.Equal(wa.Feedback, want) {
		t.Errorf("feedback = %q, want %q", wa.Feedback, want)
	}
	if wa.Metrics[workout.MetricRepDuration] != 40 {
		t.Errorf("hold duration = %v", wa.Metrics[workout.MetricRepDuration])
	}
}

func TestTables_Valid(t *testing.T) {
	for _, tbl := range Tables() {
		if err := tbl.Validate(); err != nil {
			t.Error(err)
		}
	}
}
