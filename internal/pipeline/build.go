// Package pipeline wires the scorer, segmenter, aggregator and summarizer
// into the real-time and batch operating modes.
package pipeline

import (
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/formwatch/internal/coach"
	"github.com/blackwell-systems/formwatch/internal/reps"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// BuildSession sorts frames by timestamp, segments them into reps,
// aggregates each rep and summarizes the session. It returns an error
// wrapping workout.ErrNoRepsDetected when no rep closes.
func BuildSession(ex workout.Exercise, frames []workout.FrameAnalysis) (workout.Session, error) {
	return summarizeReps(ex, aggregateReps(ex, reps.Segment(ex, sortedFrames(frames))))
}

func sortedFrames(frames []workout.FrameAnalysis) []workout.FrameAnalysis {
	sorted := make([]workout.FrameAnalysis, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// aggregateReps reduces each segmented rep, skipping any that cannot be
// aggregated.
func aggregateReps(ex workout.Exercise, segments [][]workout.FrameAnalysis) []workout.WorkoutAnalysis {
	out := make([]workout.WorkoutAnalysis, 0, len(segments))
	for i, seg := range segments {
		wa, err := reps.Aggregate(ex, seg)
		if err != nil {
			log.WithError(err).WithField("rep", i+1).Debug("skipping rep")
			continue
		}
		out = append(out, wa)
	}
	return out
}

// summarizeReps summarizes reps and stamps the session with a fresh ID.
func summarizeReps(ex workout.Exercise, analyses []workout.WorkoutAnalysis) (workout.Session, error) {
	session, err := coach.Summarize(ex, analyses)
	if err != nil {
		return workout.Session{}, err
	}
	session.ID = uuid.NewString()
	return session, nil
}
