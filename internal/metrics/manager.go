// Package metrics holds the Prometheus instruments of the analysis
// pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for CounterFramesDropped.
const (
	DropRate = "rate"
	DropBusy = "busy"
)

// Batch sample outcomes for CounterBatchSamples.
const (
	SampleAnalyzed     = "analyzed"
	SampleNoPose       = "no_pose"
	SampleInsufficient = "insufficient"
	SampleError        = "error"
)

type Manager struct {
	// counters
	CounterFramesReceived     prometheus.Counter
	CounterFramesDropped      *prometheus.CounterVec
	CounterFramesAnalyzed     *prometheus.CounterVec
	CounterFramesInsufficient *prometheus.CounterVec
	CounterRepsDetected       *prometheus.CounterVec
	CounterBatchSamples       *prometheus.CounterVec
	CounterFeedbackExpired    prometheus.Counter

	// gauges
	GaugeLastScore   prometheus.Gauge
	GaugeSessionReps prometheus.Gauge

	// histograms
	HistAnalysisDuration prometheus.Histogram
	HistFrameScore       *prometheus.HistogramVec
	HistRepDuration      *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("formwatch", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("formwatch", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterFramesReceived := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_received",
		Help:      "The total number of captures submitted for analysis",
	})
	counterFramesDropped := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_dropped",
		Help:      "Captures dropped before analysis, by reason",
	}, []string{"reason"})
	counterFramesAnalyzed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_analyzed",
		Help:      "Frames scored successfully, by exercise",
	}, []string{"exercise"})
	counterFramesInsufficient := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_insufficient",
		Help:      "Frames skipped for missing or unreliable joints, by exercise",
	}, []string{"exercise"})
	counterRepsDetected := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps_detected",
		Help:      "Repetitions closed by the segmenter, by exercise",
	}, []string{"exercise"})
	counterBatchSamples := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "batch_samples",
		Help:      "Batch extraction samples, by outcome",
	}, []string{"outcome"})
	counterFeedbackExpired := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "feedback_expired",
		Help:      "Times stable feedback was cleared by the decay timer",
	})

	gaugeLastScore := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_score",
		Help:      "Score of the most recent analyzed frame",
	})
	gaugeSessionReps := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_reps",
		Help:      "Repetitions in the current live session",
	})

	histAnalysisDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets: []float64{
			0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005,
			0.001, 0.0025, 0.005, 0.01, 0.05, 0.1,
		},
		Name: "analysis_duration_seconds",
		Help: "Time to score one capture in seconds",
	})
	histFrameScore := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{0.5, 0.7, 0.85, 0.95, 1},
		Name:      "frame_score",
		Help:      "Distribution of frame scores",
	}, []string{"exercise"})
	histRepDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{1.5, 2.5, 4, 6, 10, 30, 60},
		Name:      "rep_duration_seconds",
		Help:      "Duration of detected repetitions in seconds",
	}, []string{"exercise"})

	return &Manager{
		CounterFramesReceived:     counterFramesReceived,
		CounterFramesDropped:      counterFramesDropped,
		CounterFramesAnalyzed:     counterFramesAnalyzed,
		CounterFramesInsufficient: counterFramesInsufficient,
		CounterRepsDetected:       counterRepsDetected,
		CounterBatchSamples:       counterBatchSamples,
		CounterFeedbackExpired:    counterFeedbackExpired,
		GaugeLastScore:            gaugeLastScore,
		GaugeSessionReps:          gaugeSessionReps,
		HistAnalysisDuration:      histAnalysisDuration,
		HistFrameScore:            histFrameScore,
		HistRepDuration:           histRepDuration,
	}
}

// WriteTextfile writes every metric of g to path in the Prometheus text
// exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
