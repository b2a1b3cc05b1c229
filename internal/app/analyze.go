package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/formwatch/internal/pipeline"
	"github.com/blackwell-systems/formwatch/internal/pose"
	"github.com/blackwell-systems/formwatch/internal/scoring"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

var (
	analyzeExercise   string
	analyzeSampleRate float64
	analyzeWorkers    int
	analyzeNoProgress bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <recording.jsonl>",
	Short: "Analyze a recorded pose stream (batch mode)",
	Long: `Analyze samples a recorded pose stream at a fixed rate, scores every
sample with a bounded worker pool, segments the scores into reps, and prints
a session summary with per-rep results, insights and recommendations.

Samples without a detected body or with too few confident joints are
skipped. Interrupting the run discards its results.

Examples:
  formwatch analyze squats.jsonl --exercise squat
  formwatch analyze plank.jsonl --exercise plank --sample-rate 10
  formwatch analyze pushups.jsonl --exercise pushup --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeExercise, "exercise", "e", "squat", "Exercise: squat, pushup, plank")
	analyzeCmd.Flags().Float64Var(&analyzeSampleRate, "sample-rate", 0, "Samples per second (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Concurrent analyses (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoProgress, "no-progress", false, "Hide the progress bar")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ex, err := workout.ParseExercise(analyzeExercise)
	if err != nil {
		return err
	}

	rec, err := pose.OpenRecording(args[0], cfg.Batch.PoseTolerance.Seconds())
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}

	m, reg := newMetrics()
	defer exportMetrics(reg)

	procCfg := pipeline.ProcessorConfig{
		SampleRate: cfg.Batch.SampleRate,
		Workers:    cfg.Batch.Workers,
	}
	if analyzeSampleRate > 0 {
		procCfg.SampleRate = analyzeSampleRate
	}
	if analyzeWorkers > 0 {
		procCfg.Workers = analyzeWorkers
	}
	proc := pipeline.NewProcessor(scoring.NewScorer(cfg.Scoring.MinConfidence), m, procCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.WithFields(log.Fields{
		"file":        args[0],
		"exercise":    ex.String(),
		"captures":    rec.Len(),
		"duration":    rec.Duration(),
		"sample_rate": procCfg.SampleRate,
		"workers":     procCfg.Workers,
	}).Info("analyzing recording")

	session, err := runWithProgress(ctx, proc, ex, rec)
	if err == nil {
		log.WithFields(log.Fields{
			"session": session.ID,
			"reps":    session.RepCount(),
			"score":   session.Score,
		}).Info("analysis complete")
	}
	return reportSession(cmd.OutOrStdout(), ex, session, err)
}

// runWithProgress runs the processor, rendering progress on stderr when it
// is a terminal.
func runWithProgress(ctx context.Context, proc *pipeline.Processor, ex workout.Exercise, src pipeline.Extractor) (workout.Session, error) {
	if analyzeNoProgress || !isatty.IsTerminal(os.Stderr.Fd()) {
		return proc.Run(ctx, ex, src, nil)
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	session, err := proc.Run(ctx, ex, src, func(frac float64) {
		_ = bar.Set(int(frac * 100))
	})
	_ = bar.Finish()
	return session, err
}
