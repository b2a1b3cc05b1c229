package pipeline

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/blackwell-systems/formwatch/internal/workout"
)

// DefaultFeedbackWindow is how long stable feedback is shown without a newer
// analysis.
const DefaultFeedbackWindow = 3 * time.Second

// Snapshot is a consistent copy of the feedback state.
type Snapshot struct {
	// Analysis is the latest analysis, or nil if none arrived yet or the
	// feedback expired.
	Analysis  *workout.FrameAnalysis
	UpdatedAt time.Time
	Reps      int
	Stale     bool
}

// FeedbackState is the single "latest analysis" cell shared between the
// analysis goroutine and readers. All methods are safe for concurrent use.
type FeedbackState struct {
	mu        sync.Mutex
	window    time.Duration
	latest    *workout.FrameAnalysis
	updatedAt time.Time
	reps      int
}

// NewFeedbackState creates a state whose feedback goes stale after window.
func NewFeedbackState(window time.Duration) *FeedbackState {
	return &FeedbackState{window: window}
}

// Update stores fa as the latest analysis, observed at now.
func (s *FeedbackState) Update(fa workout.FrameAnalysis, now time.Time) {
	c := cloneAnalysis(fa)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &c
	s.updatedAt = now
}

// IsStale reports whether no analysis is held or the latest one is at least
// one window old at now.
func (s *FeedbackState) IsStale(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleLocked(now)
}

func (s *FeedbackState) staleLocked(now time.Time) bool {
	return s.latest == nil || now.Sub(s.updatedAt) >= s.window
}

// ClearIfStale drops the held analysis if it is stale at now and reports
// whether it did.
func (s *FeedbackState) ClearIfStale(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || !s.staleLocked(now) {
		return false
	}
	s.latest = nil
	return true
}

// SetReps records the number of reps detected so far.
func (s *FeedbackState) SetReps(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reps = n
}

// Snapshot returns a copy of the state as of now.
func (s *FeedbackState) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{UpdatedAt: s.updatedAt, Reps: s.reps, Stale: s.staleLocked(now)}
	if s.latest != nil {
		c := cloneAnalysis(*s.latest)
		snap.Analysis = &c
	}
	return snap
}

func cloneAnalysis(fa workout.FrameAnalysis) workout.FrameAnalysis {
	fa.Feedback = slices.Clone(fa.Feedback)
	fa.Metrics = maps.Clone(fa.Metrics)
	return fa
}
