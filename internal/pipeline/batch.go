package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/formwatch/internal/metrics"
	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/reps"
	"github.com/blackwell-systems/formwatch/internal/scoring"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Batch defaults.
const (
	DefaultSampleRate = 5.0
	DefaultWorkers    = 4
)

// sampleSlack absorbs rounding in durations derived from large timestamps,
// in frames.
const sampleSlack = 1e-3

// Progress milestones. Extraction fills [0, ExtractionShare]; the rest is
// reserved for post-processing.
const (
	ExtractionShare   = 0.9
	SegmentedProgress = 0.95
)

// Extractor yields the pose at a point in time of an offline source.
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Start is the timestamp of the beginning of the source. Timestamps
	// have an arbitrary origin.
	Start() float64

	// Duration is the source length in seconds, measured from Start.
	Duration() float64

	// PoseAt returns the capture at t, or an error wrapping pose.ErrNoPose
	// when no body was detected.
	PoseAt(ctx context.Context, t float64) (pose.Capture, error)
}

// ProgressFunc receives a monotonically non-decreasing fraction in [0, 1].
type ProgressFunc func(fraction float64)

// ProcessorConfig configures a Processor.
type ProcessorConfig struct {
	// SampleRate is the extraction rate in frames per second.
	SampleRate float64

	// Workers bounds concurrent extractions.
	Workers int
}

// Processor is the batch operating mode.
type Processor struct {
	cfg     ProcessorConfig
	scorer  *scoring.Scorer
	metrics *metrics.Manager
}

// NewProcessor creates a Processor, applying defaults to unset config.
func NewProcessor(scorer *scoring.Scorer, m *metrics.Manager, cfg ProcessorConfig) *Processor {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Processor{cfg: cfg, scorer: scorer, metrics: m}
}

// SampleTimes returns the extraction timestamps for a source beginning at
// start and lasting duration seconds: start + i/rate for i in
// [0, floor(duration*rate)].
func SampleTimes(start, duration, rate float64) []float64 {
	if duration < 0 || rate <= 0 || math.IsNaN(start) || math.IsInf(start, 0) {
		return nil
	}
	n := int(math.Floor(duration*rate+sampleSlack)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)/rate
	}
	return out
}

// Run extracts and analyzes the source, then segments, aggregates and
// summarizes it. Per-sample failures are skipped. Only context cancellation
// aborts a run. progress may be nil.
func (p *Processor) Run(ctx context.Context, ex workout.Exercise, src Extractor, progress ProgressFunc) (workout.Session, error) {
	report := newProgressReporter(progress)
	times := SampleTimes(src.Start(), src.Duration(), p.cfg.SampleRate)
	results := make([]*workout.FrameAnalysis, len(times))
	exercise := ex.String()

	logger := log.WithFields(log.Fields{"exercise": exercise, "samples": len(times)})
	logger.Debug("batch extraction started")

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, t := range times {
		i, t := i, t
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fa, err := p.sample(gctx, ex, src, t)
			if err != nil {
				return err
			}
			results[i] = fa

			mu.Lock()
			done++
			frac := ExtractionShare * float64(done) / float64(len(times))
			mu.Unlock()
			report.advance(frac)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return workout.Session{}, fmt.Errorf("batch extraction: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return workout.Session{}, err
	}
	report.advance(ExtractionShare)

	frames := make([]workout.FrameAnalysis, 0, len(results))
	for _, fa := range results {
		if fa != nil {
			frames = append(frames, *fa)
		}
	}
	logger.WithField("analyzed", len(frames)).Debug("batch extraction finished")

	segments := reps.Segment(ex, sortedFrames(frames))
	report.advance(SegmentedProgress)

	analyses := aggregateReps(ex, segments)
	for i, wa := range analyses {
		p.metrics.CounterRepsDetected.WithLabelValues(exercise).Inc()
		p.metrics.HistRepDuration.WithLabelValues(exercise).Observe(wa.EndTime - wa.StartTime)
		log.WithFields(log.Fields{
			"exercise": exercise,
			"rep":      i + 1,
			"score":    wa.Score,
			"duration": wa.EndTime - wa.StartTime,
		}).Info("rep closed")
	}

	session, err := summarizeReps(ex, analyses)
	report.advance(1)
	return session, err
}

// sample extracts and scores one timestamp. It returns (nil, nil) for a
// skipped sample and an error only for cancellation.
func (p *Processor) sample(ctx context.Context, ex workout.Exercise, src Extractor, t float64) (*workout.FrameAnalysis, error) {
	p.metrics.CounterFramesReceived.Inc()

	c, err := p.extract(ctx, src, t)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	fa, err := p.scorer.Analyze(ex, *c)
	if err != nil {
		p.metrics.CounterBatchSamples.WithLabelValues(metrics.SampleInsufficient).Inc()
		p.metrics.CounterFramesInsufficient.WithLabelValues(ex.String()).Inc()
		log.WithError(err).WithField("t", t).Debug("sample skipped")
		return nil, nil
	}
	p.metrics.CounterBatchSamples.WithLabelValues(metrics.SampleAnalyzed).Inc()
	p.metrics.CounterFramesAnalyzed.WithLabelValues(ex.String()).Inc()
	p.metrics.HistFrameScore.WithLabelValues(ex.String()).Observe(fa.Score)
	return &fa, nil
}

func (p *Processor) extract(ctx context.Context, src Extractor, t float64) (*pose.Capture, error) {
	c, err := src.PoseAt(ctx, t)
	switch {
	case err == nil:
		return &c, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(err, pose.ErrNoPose):
		p.metrics.CounterBatchSamples.WithLabelValues(metrics.SampleNoPose).Inc()
	default:
		p.metrics.CounterBatchSamples.WithLabelValues(metrics.SampleError).Inc()
	}
	log.WithError(err).WithField("t", t).Debug("extraction failed")
	return nil, nil
}

// progressReporter forwards only increasing fractions, serialized.
type progressReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last float64
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

func (r *progressReporter) advance(frac float64) {
	if r.fn == nil {
		return
	}
	frac = math.Max(0, math.Min(1, frac))
	r.mu.Lock()
	defer r.mu.Unlock()
	if frac <= r.last {
		return
	}
	r.last = frac
	r.fn(frac)
}
