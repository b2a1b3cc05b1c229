// Package reps splits a stream of frame analyses into repetitions and
// reduces each repetition to a single WorkoutAnalysis.
package reps

import (
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Thresholds configure the hysteresis of a dynamic exercise. A rep opens
// when the primary metric falls below Descend while dropping by more than
// MinDrop since the previous frame, and closes when it rises above Ascend
// while climbing by more than MinRise.
type Thresholds struct {
	Descend float64
	Ascend  float64
	MinDrop float64
	MinRise float64
}

var (
	SquatThresholds  = Thresholds{Descend: 130, Ascend: 160, MinDrop: 5, MinRise: 10}
	PushUpThresholds = Thresholds{Descend: 150, Ascend: 160, MinDrop: 5, MinRise: 10}
)

// ThresholdsFor returns the thresholds of a dynamic exercise. Static
// exercises have none.
func ThresholdsFor(ex workout.Exercise) (Thresholds, bool) {
	switch ex {
	case workout.Squat:
		return SquatThresholds, true
	case workout.PushUp:
		return PushUpThresholds, true
	}
	return Thresholds{}, false
}

// State is the segmenter's position in the rep cycle.
type State int

const (
	Idle State = iota
	InRep
)

func (s State) String() string {
	if s == InRep {
		return "in_rep"
	}
	return "idle"
}

// Segmenter is a streaming rep detector. Feed it analyses in timestamp order
// with Push and call Flush at end of stream. It is not safe for concurrent
// use.
//
// A rep starts with the last metric-bearing frame before the entry trigger
// (the top of the descent) unless that frame closed the previous rep.
// Frames without the primary metric never change state but are kept while a
// rep is open. Static exercises accumulate every frame into one rep.
type Segmenter struct {
	exercise   workout.Exercise
	metric     string
	thresholds Thresholds
	static     bool

	state   State
	current []workout.FrameAnalysis

	prev       workout.FrameAnalysis
	prevValue  float64
	hasPrev    bool
	prevClosed bool
}

// NewSegmenter creates a segmenter for ex.
func NewSegmenter(ex workout.Exercise) *Segmenter {
	th, dynamic := ThresholdsFor(ex)
	return &Segmenter{
		exercise:   ex,
		metric:     ex.PrimaryMetric(),
		thresholds: th,
		static:     !dynamic,
	}
}

// State returns the current state.
func (s *Segmenter) State() State {
	return s.state
}

// Exercise returns the exercise being segmented.
func (s *Segmenter) Exercise() workout.Exercise {
	return s.exercise
}

// Push feeds one analysis. It returns the frames of a rep when fa closes one.
func (s *Segmenter) Push(fa workout.FrameAnalysis) ([]workout.FrameAnalysis, bool) {
	if s.static {
		s.state = InRep
		s.current = append(s.current, fa)
		return nil, false
	}

	v, ok := fa.Metric(s.metric)
	if !ok {
		if s.state == InRep {
			s.current = append(s.current, fa)
		}
		return nil, false
	}

	var closed []workout.FrameAnalysis
	switch s.state {
	case Idle:
		if s.hasPrev && v < s.thresholds.Descend && s.prevValue-v > s.thresholds.MinDrop {
			s.state = InRep
			s.current = nil
			if !s.prevClosed {
				s.current = append(s.current, s.prev)
			}
			s.current = append(s.current, fa)
		}
	case InRep:
		s.current = append(s.current, fa)
		if s.hasPrev && v > s.thresholds.Ascend && v-s.prevValue > s.thresholds.MinRise {
			closed = s.current
			s.current = nil
			s.state = Idle
		}
	}

	s.prev = fa
	s.prevValue = v
	s.hasPrev = true
	s.prevClosed = closed != nil
	return closed, closed != nil
}

// Flush closes the open rep, if any, and resets the segmenter.
func (s *Segmenter) Flush() ([]workout.FrameAnalysis, bool) {
	rep := s.current
	*s = Segmenter{exercise: s.exercise, metric: s.metric, thresholds: s.thresholds, static: s.static}
	return rep, len(rep) > 0
}

// Segment runs a fresh segmenter over frames and returns every rep,
// including one left open at the end.
func Segment(ex workout.Exercise, frames []workout.FrameAnalysis) [][]workout.FrameAnalysis {
	seg := NewSegmenter(ex)
	var out [][]workout.FrameAnalysis
	for _, fa := range frames {
		if rep, ok := seg.Push(fa); ok {
			out = append(out, rep)
		}
	}
	if rep, ok := seg.Flush(); ok {
		out = append(out, rep)
	}
	return out
}
