package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual bar for a score in [0, 1].
// Example: "████████░░ 80%"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", ScoreStyle(score).Render(bar), StyleMuted.Render(Percent(score)))
}

// ScoreText renders a score in [0, 1] as a colored percentage.
func ScoreText(score float64) string {
	return ScoreStyle(score).Render(Percent(score))
}

// Percent formats a score in [0, 1] as a whole percentage.
func Percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The higherIsBetter parameter indicates whether higher values are better.
func TrendArrow(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := (isPositive && higherIsBetter) || (!isPositive && !higherIsBetter)

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if isImproved {
		return TierStyle(TierGood).Render(arrow)
	}
	return TierStyle(TierPoor).Render(arrow)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string, width int) string {
	if width <= 0 {
		width = 66
	}
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", width))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
