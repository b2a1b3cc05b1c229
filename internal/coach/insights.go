package coach

import (
	"fmt"

	"github.com/blackwell-systems/formwatch/internal/bands"
	"github.com/blackwell-systems/formwatch/internal/workout"
)

// Insight tables are coarser than the scorer's and carry no deductions.

var squatDepthInsight = bands.Table{
	Name:  "insight: squat depth",
	Below: bands.Band{Message: "Very deep squats - keep control at the bottom"},
	Bands: []bands.Band{
		{Min: 0, Max: 80, Message: "Very deep squats - keep control at the bottom"},
		{Min: 80, Max: 100, Message: "Thighs reaching parallel - ideal depth"},
		{Min: 100, Max: 120, Message: "Close to parallel - a little deeper"},
	},
	Above: bands.Band{Message: "Shallow squats - work on mobility and depth"},
}

var pushUpDepthInsight = bands.Table{
	Name:  "insight: push-up depth",
	Below: bands.Band{Message: "Very deep push-ups - keep control at the bottom"},
	Bands: []bands.Band{
		{Min: 0, Max: 70, Message: "Very deep push-ups - keep control at the bottom"},
		{Min: 70, Max: 90, Message: "Chest reaching the floor - ideal depth"},
		{Min: 90, Max: 120, Message: "Partial depth - lower your chest further"},
	},
	Above: bands.Band{Message: "Shallow push-ups - bend your elbows more"},
}

var rangeInsight = bands.Table{
	Name:  "insight: range of motion",
	Below: bands.Band{Message: "Limited movement - use the full range"},
	Bands: []bands.Band{
		{Min: 0, Max: 40, Message: "Limited movement - use the full range"},
		{Min: 40, Max: 70, Message: "Moderate range of motion"},
	},
	Above: bands.Band{Message: "Full range of motion"},
}

var symmetryInsight = bands.Table{
	Name:  "insight: symmetry",
	Below: bands.Band{Message: "Well balanced left and right"},
	Bands: []bands.Band{
		{Min: 0, Max: 5, Message: "Well balanced left and right"},
		{Min: 5, Max: 15, Message: "Slight imbalance between sides"},
	},
	Above: bands.Band{Message: "Clear imbalance - favor your weaker side"},
}

var durationInsight = bands.Table{
	Name:  "insight: hold duration",
	Below: bands.Band{Message: "Short hold - aim for 30 seconds"},
	Bands: []bands.Band{
		{Min: 0, Max: 30, Message: "Short hold - aim for 30 seconds"},
		{Min: 30, Max: 60, Message: "Good hold duration"},
	},
	Above: bands.Band{Message: "Excellent endurance"},
}

var alignmentInsight = bands.Table{
	Name:  "insight: plank alignment",
	Below: bands.Band{Message: "Hips out of line - engage your core"},
	Bands: []bands.Band{
		{Min: 0, Max: 150, Message: "Hips out of line - engage your core"},
		{Min: 150, Max: 165, Message: "Nearly straight body line"},
	},
	Above: bands.Band{Message: "Straight body line"},
}

var stabilityInsight = bands.Table{
	Name:  "insight: stability (angle std-dev)",
	Below: bands.Band{Message: "Rock solid"},
	Bands: []bands.Band{
		{Min: 0, Max: 3, Message: "Rock solid"},
		{Min: 3, Max: 8, Message: "Mostly steady"},
	},
	Above: bands.Band{Message: "Shaky hold - reduce the duration and stay tight"},
}

// InsightTables returns every insight table.
func InsightTables() []*bands.Table {
	return []*bands.Table{
		&squatDepthInsight, &pushUpDepthInsight, &rangeInsight, &symmetryInsight,
		&durationInsight, &alignmentInsight, &stabilityInsight,
	}
}

// Insights extracts the exercise's summary rows from a session context.
// Rows whose metric no rep carries are omitted.
func Insights(ctx *SessionContext) []workout.Insight {
	var out []workout.Insight
	add := func(icon, title, value string, table *bands.Table, v float64) {
		out = append(out, workout.Insight{Icon: icon, Title: title, Value: value, Text: table.Lookup(v).Message})
	}

	if ctx.Exercise.IsStatic() {
		add("⏱️", "Hold Duration", fmt.Sprintf("%.1fs", ctx.HoldDuration), &durationInsight, ctx.HoldDuration)
		if v, ok := ctx.Mean(workout.MetricHipAlignment); ok {
			add("📐", "Alignment", fmt.Sprintf("%.0f°", v), &alignmentInsight, v)
		}
		if v, ok := ctx.Mean(workout.MetricAngleStdDev); ok {
			add("🧘", "Stability", fmt.Sprintf("±%.1f°", v), &stabilityInsight, v)
		}
		return out
	}

	depthTable, symKey := &squatDepthInsight, workout.MetricKneeSymmetry
	if ctx.Exercise == workout.PushUp {
		depthTable, symKey = &pushUpDepthInsight, workout.MetricElbowSymmetry
	}
	if v, ok := ctx.Mean(workout.MetricDeepestAngle); ok {
		add("📏", "Average Depth", fmt.Sprintf("%.0f°", v), depthTable, v)
	}
	if v, ok := ctx.Mean(workout.MetricRangeOfMotion); ok {
		add("↕️", "Range of Motion", fmt.Sprintf("%.0f°", v), &rangeInsight, v)
	}
	if v, ok := ctx.Mean(symKey); ok {
		add("⚖️", "Symmetry", fmt.Sprintf("%.0f° difference", v), &symmetryInsight, v)
	}
	return out
}
