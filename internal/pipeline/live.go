package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/formwatch/internal/metrics"
	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/reps"
	"github.com/blackwell-systems/formwatch/internal/scoring"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// DefaultMaxRate is the real-time analysis cap in analyses per second.
const DefaultMaxRate = 10.0

// ErrMonitorClosed is returned by Close once the session has been returned.
var ErrMonitorClosed = errors.New("monitor closed")

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Exercise workout.Exercise

	// MaxRate caps accepted captures per second. Zero or negative disables
	// the cap.
	MaxRate float64

	// FeedbackWindow is the decay window of stable feedback.
	FeedbackWindow time.Duration

	// Clock defaults to SystemClock.
	Clock Clock

	// OnExpire, if set, is called from the timer goroutine when stable
	// feedback is cleared.
	OnExpire func()

	// OnAnalysis, if set, is called from the analysis goroutine with every
	// successful frame analysis.
	OnAnalysis func(fa workout.FrameAnalysis)

	// OnRep, if set, is called from the analysis goroutine when a rep closes.
	OnRep func(index int, rep workout.WorkoutAnalysis)
}

// Monitor is the real-time operating mode. Captures are offered with Submit;
// at most one is analyzed at a time and captures arriving faster than the
// rate cap or while an analysis is running are dropped, never queued.
type Monitor struct {
	cfg         MonitorConfig
	scorer      *scoring.Scorer
	metrics     *metrics.Manager
	state       *FeedbackState
	minInterval time.Duration
	exercise    string

	busy atomic.Bool
	wg   sync.WaitGroup

	mu           sync.Mutex
	stopped      bool
	closed       bool
	hasAccepted  bool
	lastAccepted time.Time
	timer        Timer
	segmenter    *reps.Segmenter
	reps         []workout.WorkoutAnalysis
}

// NewMonitor creates a Monitor.
func NewMonitor(scorer *scoring.Scorer, m *metrics.Manager, cfg MonitorConfig) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.FeedbackWindow <= 0 {
		cfg.FeedbackWindow = DefaultFeedbackWindow
	}
	var minInterval time.Duration
	if cfg.MaxRate > 0 {
		minInterval = time.Duration(float64(time.Second) / cfg.MaxRate)
	}
	return &Monitor{
		cfg:         cfg,
		scorer:      scorer,
		metrics:     m,
		state:       NewFeedbackState(cfg.FeedbackWindow),
		minInterval: minInterval,
		exercise:    cfg.Exercise.String(),
		segmenter:   reps.NewSegmenter(cfg.Exercise),
	}
}

// Submit offers a capture for analysis and reports whether it was accepted.
// It never blocks on analysis.
func (m *Monitor) Submit(c pose.Capture) bool {
	m.metrics.CounterFramesReceived.Inc()
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return false
	}
	if m.hasAccepted && now.Sub(m.lastAccepted) < m.minInterval {
		m.mu.Unlock()
		m.metrics.CounterFramesDropped.WithLabelValues(metrics.DropRate).Inc()
		return false
	}
	if !m.busy.CompareAndSwap(false, true) {
		m.mu.Unlock()
		m.metrics.CounterFramesDropped.WithLabelValues(metrics.DropBusy).Inc()
		return false
	}
	m.hasAccepted = true
	m.lastAccepted = now
	m.wg.Add(1)
	m.mu.Unlock()

	go m.analyze(c)
	return true
}

func (m *Monitor) analyze(c pose.Capture) {
	defer m.wg.Done()
	defer m.busy.Store(false)

	start := time.Now()
	fa, err := m.scorer.Analyze(m.cfg.Exercise, c)
	m.metrics.HistAnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.metrics.CounterFramesInsufficient.WithLabelValues(m.exercise).Inc()
		log.WithError(err).WithField("t", c.Timestamp).Debug("frame skipped")
		return
	}
	m.metrics.CounterFramesAnalyzed.WithLabelValues(m.exercise).Inc()
	m.metrics.HistFrameScore.WithLabelValues(m.exercise).Observe(fa.Score)
	m.metrics.GaugeLastScore.Set(fa.Score)

	m.mu.Lock()
	m.state.Update(fa, m.cfg.Clock.Now())
	m.resetTimerLocked()
	var (
		closed workout.WorkoutAnalysis
		index  int
		ok     bool
	)
	if frames, done := m.segmenter.Push(fa); done {
		closed, index, ok = m.addRepLocked(frames)
	}
	m.mu.Unlock()

	if m.cfg.OnAnalysis != nil {
		m.cfg.OnAnalysis(fa)
	}
	if ok && m.cfg.OnRep != nil {
		m.cfg.OnRep(index, closed)
	}
}

// resetTimerLocked restarts the decay timer. m.mu must be held.
func (m *Monitor) resetTimerLocked() {
	if m.timer == nil {
		m.timer = m.cfg.Clock.AfterFunc(m.cfg.FeedbackWindow, m.expire)
		return
	}
	m.timer.Stop()
	m.timer.Reset(m.cfg.FeedbackWindow)
}

func (m *Monitor) expire() {
	if !m.state.ClearIfStale(m.cfg.Clock.Now()) {
		return
	}
	m.metrics.CounterFeedbackExpired.Inc()
	if m.cfg.OnExpire != nil {
		m.cfg.OnExpire()
	}
}

// addRepLocked aggregates a closed rep. m.mu must be held.
func (m *Monitor) addRepLocked(frames []workout.FrameAnalysis) (workout.WorkoutAnalysis, int, bool) {
	wa, err := reps.Aggregate(m.cfg.Exercise, frames)
	if err != nil {
		log.WithError(err).Debug("skipping rep")
		return workout.WorkoutAnalysis{}, 0, false
	}
	m.reps = append(m.reps, wa)
	m.state.SetReps(len(m.reps))
	m.metrics.CounterRepsDetected.WithLabelValues(m.exercise).Inc()
	m.metrics.HistRepDuration.WithLabelValues(m.exercise).Observe(wa.EndTime - wa.StartTime)
	m.metrics.GaugeSessionReps.Set(float64(len(m.reps)))

	log.WithFields(log.Fields{
		"exercise": m.exercise,
		"rep":      len(m.reps),
		"score":    wa.Score,
		"duration": wa.EndTime - wa.StartTime,
	}).Info("rep closed")
	return wa, len(m.reps), true
}

// Wait blocks until the in-flight analysis, if any, has finished.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Latest returns a consistent snapshot of the latest analysis.
func (m *Monitor) Latest() Snapshot {
	return m.state.Snapshot(m.cfg.Clock.Now())
}

// Close stops intake, waits for the in-flight analysis, stops the decay
// timer, flushes the open rep and summarizes the session. It returns an
// error wrapping workout.ErrNoRepsDetected when no rep was detected.
//
// If ctx ends first, Close returns ctx.Err() with intake still stopped and
// every rep kept, so it may be called again. Once a session has been
// returned, further calls return ErrMonitorClosed.
func (m *Monitor) Close(ctx context.Context) (workout.Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return workout.Session{}, ErrMonitorClosed
	}
	m.stopped = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return workout.Session{}, ctx.Err()
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return workout.Session{}, ErrMonitorClosed
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
	}
	if frames, ok := m.segmenter.Flush(); ok {
		m.addRepLocked(frames)
	}
	analyses := make([]workout.WorkoutAnalysis, len(m.reps))
	copy(analyses, m.reps)
	m.mu.Unlock()

	return summarizeReps(m.cfg.Exercise, analyses)
}
