package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/formwatch/internal/output"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// OutcomeNoReps is the JSON outcome of a session in which no rep closed.
const OutcomeNoReps = "no_reps_detected"

// noRepsReport is the JSON form of a session without reps.
type noRepsReport struct {
	Exercise workout.Exercise `json:"exercise"`
	Outcome  string           `json:"outcome"`
	RepCount int              `json:"rep_count"`
}

// reportSession writes the result of an analysis. A session without reps is
// a valid outcome and is reported, not returned as an error.
func reportSession(w io.Writer, ex workout.Exercise, session workout.Session, err error) error {
	switch {
	case errors.Is(err, workout.ErrNoRepsDetected):
		log.WithField("exercise", ex.String()).Info("no repetitions detected")
		if flagJSON {
			return writeJSON(w, noRepsReport{Exercise: ex, Outcome: OutcomeNoReps})
		}
		renderNoReps(w, ex, outputWidth())
		return nil
	case err != nil:
		return err
	case flagJSON:
		return writeJSON(w, session)
	default:
		renderSession(w, session, outputWidth())
		return nil
	}
}

func outputWidth() int {
	if cfg == nil {
		return 0
	}
	return cfg.Output.Width
}

// renderNoReps prints the outcome of a session in which no rep closed.
func renderNoReps(w io.Writer, ex workout.Exercise, width int) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("%s Session", ex.DisplayName()), width))
	fmt.Fprintf(w, " %s\n", output.StyleBold.Render("No repetitions detected"))
	hint := "Make sure your whole body is in frame and complete each rep through its full range."
	if ex.IsStatic() {
		hint = "Make sure your whole body is in frame while holding the position."
	}
	fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render(hint))
}

// writeJSON encodes v with indentation.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderSession prints a session summary, its reps, insights and
// recommendations.
func renderSession(w io.Writer, s workout.Session, width int) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("%s Session", s.Exercise.DisplayName()), width))
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Overall score"), output.ScoreBar(s.Score, 20))
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Best rep"), output.ScoreText(s.BestRepScore))
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Consistency"), output.StyleValue.Render(fmt.Sprintf("%.0f/100", s.Consistency)))
	if s.Exercise.IsStatic() {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Hold"), output.StyleValue.Render(fmt.Sprintf("%.1fs", holdDuration(s))))
	} else {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Reps"), output.StyleValue.Render(fmt.Sprintf("%d", s.RepCount())))
	}

	fmt.Fprintln(w, output.Section("Reps", width))
	renderReps(w, s)

	if len(s.Insights) > 0 {
		fmt.Fprintln(w, output.Section("Insights", width))
		for _, in := range s.Insights {
			fmt.Fprintf(w, " %s %s %s\n", in.Icon, output.StyleLabel.Render(in.Title), output.StyleBold.Render(in.Value))
			fmt.Fprintf(w, "   %s\n", output.StyleMuted.Render(in.Text))
		}
	}

	if len(s.Recommendations) > 0 {
		fmt.Fprintln(w, output.Section("Recommendations", width))
		for i, r := range s.Recommendations {
			fmt.Fprintf(w, " %d. %s\n", i+1, r)
		}
	}
	fmt.Fprintln(w)
}

func renderReps(w io.Writer, s workout.Session) {
	primary := s.Exercise.PrimaryMetric()
	tbl := output.NewTable("#", "Score", "Time", "Depth", "ROM", "Trend", "Feedback")
	prev := -1.0
	for i, r := range s.Reps {
		trend := ""
		if prev >= 0 {
			trend = output.TrendArrow((r.Score-prev)*100, true)
		}
		prev = r.Score

		depth := r.Metrics[workout.MetricDeepestAngle]
		if s.Exercise.IsStatic() {
			depth = r.Metrics[primary]
		}
		tbl.AddRow(
			fmt.Sprintf("%d", i+1),
			output.ScoreText(r.Score),
			fmt.Sprintf("%.1f-%.1fs", r.StartTime, r.EndTime),
			fmt.Sprintf("%.0f°", depth),
			fmt.Sprintf("%.0f°", r.Metrics[workout.MetricRangeOfMotion]),
			trend,
			repFeedback(r),
		)
	}
	fmt.Fprint(w, indent(tbl.Render()))
}

// repFeedback joins the tier messages after the overall summary.
func repFeedback(r workout.WorkoutAnalysis) string {
	if len(r.Feedback) <= 1 {
		return strings.Join(r.Feedback, "; ")
	}
	return strings.Join(r.Feedback[1:], "; ")
}

func holdDuration(s workout.Session) float64 {
	var total float64
	for _, r := range s.Reps {
		total += r.Metrics[workout.MetricRepDuration]
	}
	return total
}

// renderFrame prints one live analysis line.
func renderFrame(w io.Writer, fa workout.FrameAnalysis) {
	msg := ""
	if len(fa.Feedback) > 0 {
		msg = fa.Feedback[0]
	}
	fmt.Fprintf(w, " %6.2fs  %s  %s\n", fa.Timestamp, output.ScoreText(fa.Score), msg)
}

// renderRep prints a rep as soon as it closes.
func renderRep(w io.Writer, index int, r workout.WorkoutAnalysis) {
	fmt.Fprintf(w, " %s %s  %s\n",
		output.StyleBold.Render(fmt.Sprintf("Rep %d", index)),
		output.ScoreBar(r.Score, 10),
		output.StyleMuted.Render(repFeedback(r)))
}

// renderMetrics prints a frame's metrics in name order.
func renderMetrics(w io.Writer, metrics map[string]float64) {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "   %s %s\n", output.StyleLabel.Render(k), output.StyleValue.Render(fmt.Sprintf("%.2f", metrics[k])))
	}
}

func indent(s string) string {
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(l)
	}
	return sb.String()
}
