package app

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/formwatch/internal/bands"
	"github.com/blackwell-systems/formwatch/internal/coach"
	"github.com/blackwell-systems/formwatch/internal/output"
	"github.com/blackwell-systems/formwatch/internal/reps"
	"github.com/blackwell-systems/formwatch/internal/scoring"
)

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Print and validate the scoring tables",
	Long: `Bands prints every banded table used to score frames, aggregate reps
and summarize sessions: each range with its score deduction and feedback.
It exits non-zero if any table is malformed.`,
	Args: cobra.NoArgs,
	RunE: runBands,
}

func init() {
	rootCmd.AddCommand(bandsCmd)
}

// tableGroup is a titled set of tables.
type tableGroup struct {
	Title  string         `json:"title"`
	Tables []*bands.Table `json:"tables"`
}

func tableGroups() []tableGroup {
	return []tableGroup{
		{Title: "Frame scoring", Tables: scoring.Tables()},
		{Title: "Rep aggregation", Tables: reps.Tables()},
		{Title: "Session insights", Tables: coach.InsightTables()},
	}
}

// validateTables validates every table, joining all failures.
func validateTables(groups []tableGroup) error {
	var errs []error
	for _, g := range groups {
		for _, t := range g.Tables {
			if err := t.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func runBands(cmd *cobra.Command, args []string) error {
	groups := tableGroups()
	if err := validateTables(groups); err != nil {
		return fmt.Errorf("invalid tables: %w", err)
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), groups)
	}
	renderTables(cmd.OutOrStdout(), groups, outputWidth())
	return nil
}

func renderTables(w io.Writer, groups []tableGroup, width int) {
	for _, g := range groups {
		fmt.Fprintln(w, output.Section(g.Title, width))
		for _, t := range g.Tables {
			fmt.Fprintf(w, "\n %s\n", output.StyleBold.Render(t.Name))
			tbl := output.NewTable("Range", "Deduction", "Message")
			for _, b := range t.All() {
				tbl.AddRow(formatRange(b), fmt.Sprintf("%.2f", b.Deduction), b.Message)
			}
			fmt.Fprint(w, indent(tbl.Render()))
		}
	}
	fmt.Fprintln(w)
}

func formatRange(b bands.Band) string {
	switch {
	case math.IsInf(b.Min, -1):
		return fmt.Sprintf("< %g", b.Max)
	case math.IsInf(b.Max, 1):
		return fmt.Sprintf(">= %g", b.Min)
	default:
		return fmt.Sprintf("[%g, %g)", b.Min, b.Max)
	}
}
