package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/formwatch/internal/output"
	"github.com/blackwell-systems/formwatch/internal/pipeline"
	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/scoring"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

var (
	liveExercise string
	liveRealtime bool
	liveFrames   bool
	liveMaxRate  float64
)

// closeTimeout bounds the wait for the in-flight analysis on shutdown.
const closeTimeout = 5 * time.Second

var liveCmd = &cobra.Command{
	Use:   "live [recording.jsonl | -]",
	Short: "Analyze a pose stream as it arrives (real-time mode)",
	Long: `Live feeds captures to the real-time monitor. Analyses are rate capped
and a capture arriving while the previous one is still being analyzed is
dropped. Reps are printed as they close and the session is summarized when
the stream ends.

By default captures are replayed on their own timestamps, so results do not
depend on how fast the input is read. With --realtime they are paced on the
wall clock instead, as a camera would deliver them.

Examples:
  formwatch live squats.jsonl --exercise squat
  pose-tracker | formwatch live - --exercise pushup --realtime
  formwatch live plank.jsonl --exercise plank --frames`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLive,
}

func init() {
	liveCmd.Flags().StringVarP(&liveExercise, "exercise", "e", "squat", "Exercise: squat, pushup, plank")
	liveCmd.Flags().BoolVar(&liveRealtime, "realtime", false, "Pace captures on the wall clock")
	liveCmd.Flags().BoolVar(&liveFrames, "frames", false, "Print every analyzed frame")
	liveCmd.Flags().Float64Var(&liveMaxRate, "max-rate", 0, "Analyses per second (default from config)")
	rootCmd.AddCommand(liveCmd)
}

// syncWriter serializes writes from the monitor's callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func runLive(cmd *cobra.Command, args []string) error {
	ex, err := workout.ParseExercise(liveExercise)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening stream: %w", err)
		}
		defer func() { _ = f.Close() }()
		in, source = f, args[0]
	}

	m, reg := newMetrics()
	defer exportMetrics(reg)

	out := &syncWriter{w: cmd.OutOrStdout()}
	monCfg := pipeline.MonitorConfig{
		Exercise:       ex,
		MaxRate:        cfg.Live.MaxRate,
		FeedbackWindow: cfg.Live.FeedbackWindow,
		OnExpire: func() {
			log.Debug("feedback expired")
		},
	}
	if liveMaxRate > 0 {
		monCfg.MaxRate = liveMaxRate
	}
	if !flagJSON {
		monCfg.OnRep = func(index int, rep workout.WorkoutAnalysis) {
			renderRep(out, index, rep)
		}
		if liveFrames {
			monCfg.OnAnalysis = func(fa workout.FrameAnalysis) {
				renderFrame(out, fa)
				if flagVerbose {
					renderMetrics(out, fa.Metrics)
				}
			}
		}
	}

	var (
		replay *pipeline.ManualClock
		epoch  = time.Unix(0, 0).UTC()
	)
	if !liveRealtime {
		replay = pipeline.NewManualClock(epoch)
		monCfg.Clock = replay
	}
	mon := pipeline.NewMonitor(scoring.NewScorer(cfg.Scoring.MinConfidence), m, monCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.WithFields(log.Fields{
		"source":   source,
		"exercise": ex.String(),
		"realtime": liveRealtime,
		"max_rate": monCfg.MaxRate,
	}).Info("monitoring stream")

	if !flagJSON {
		fmt.Fprintln(out, output.Section(fmt.Sprintf("Live %s", ex.DisplayName()), cfg.Output.Width))
	}

	var (
		accepted, total int
		first           float64
		pace            = newPacer()
	)
	scanErr := pose.ScanCaptures(ctx, in, func(c pose.Capture) error {
		total++
		if total == 1 {
			first = c.Timestamp
		}
		if replay != nil {
			// Timestamps have an arbitrary origin; replay time starts at the
			// first capture.
			replay.AdvanceTo(epoch.Add(seconds(c.Timestamp - first)))
			if mon.Submit(c) {
				accepted++
			}
			mon.Wait()
			return nil
		}
		if err := pace.wait(ctx, c.Timestamp); err != nil {
			return err
		}
		if mon.Submit(c) {
			accepted++
		}
		return nil
	})

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	session, err := mon.Close(closeCtx)

	log.WithFields(log.Fields{
		"captures": total,
		"accepted": accepted,
		"reps":     session.RepCount(),
	}).Info("stream ended")

	if scanErr != nil && ctx.Err() == nil {
		return fmt.Errorf("reading stream: %w", scanErr)
	}
	return reportSession(out, ex, session, err)
}

func seconds(t float64) time.Duration {
	return time.Duration(t * float64(time.Second))
}

// pacer sleeps so captures are released at their timestamp offsets from the
// first capture.
type pacer struct {
	started bool
	start   time.Time
	first   float64
}

func newPacer() *pacer {
	return &pacer{}
}

func (p *pacer) wait(ctx context.Context, ts float64) error {
	if !p.started {
		p.started, p.start, p.first = true, time.Now(), ts
		return nil
	}
	delay := time.Until(p.start.Add(seconds(ts - p.first)))
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
