// Package output provides styled terminal rendering helpers for formwatch.
package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/formwatch/internal/coach"
)

// Palette. Score colors follow the coaching tiers: scores above
// coach.ProgressionAbove are good, scores below coach.RemedialBelow are poor.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorGood marks scores earning progression advice and improving reps.
	ColorGood = lipgloss.Color("#66bb6a")

	// ColorFair marks scores between the remedial and progression tiers.
	ColorFair = lipgloss.Color("#fff59d")

	// ColorPoor marks scores needing remedial work and regressing reps.
	ColorPoor = lipgloss.Color("#ef5350")

	// ColorMuted is used for secondary text and rules.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles. They are rebuilt by SetNoColor.
var (
	// StyleHeader is used for section headers and table headers.
	StyleHeader lipgloss.Style

	// StyleGood, StyleFair and StylePoor render values by score tier.
	StyleGood lipgloss.Style
	StyleFair lipgloss.Style
	StylePoor lipgloss.Style

	// StyleMuted is used for de-emphasized text.
	StyleMuted lipgloss.Style

	// StyleBold is used for emphasized text.
	StyleBold lipgloss.Style

	// StyleLabel is used for metric labels.
	StyleLabel lipgloss.Style

	// StyleValue is used for metric values such as angles and scores.
	StyleValue lipgloss.Style
)

// noColor tracks whether color output is disabled.
var noColor bool

func init() {
	applyStyles(true)
}

// applyStyles rebuilds every package-level style.
func applyStyles(color bool) {
	base := lipgloss.NewStyle()
	fg := func(c lipgloss.Color) lipgloss.Style {
		if !color {
			return base
		}
		return base.Foreground(c)
	}

	StyleHeader = fg(ColorPrimary).Bold(color)
	StyleGood = fg(ColorGood)
	StyleFair = fg(ColorFair)
	StylePoor = fg(ColorPoor)
	StyleMuted = fg(ColorMuted)
	StyleBold = base.Bold(color)
	StyleLabel = base.Width(24)
	StyleValue = base.Bold(color).Width(12)
}

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(!disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// Tier is the presentation band of a score in [0, 1].
type Tier int

const (
	TierPoor Tier = iota
	TierFair
	TierGood
)

// ScoreTier bands a score the way the coaching rules do.
func ScoreTier(score float64) Tier {
	switch {
	case score > coach.ProgressionAbove:
		return TierGood
	case score < coach.RemedialBelow:
		return TierPoor
	default:
		return TierFair
	}
}

// ScoreStyle picks the style for a score in [0, 1].
func ScoreStyle(score float64) lipgloss.Style {
	return TierStyle(ScoreTier(score))
}

// TierStyle returns the style of a tier.
func TierStyle(t Tier) lipgloss.Style {
	switch t {
	case TierGood:
		return StyleGood
	case TierPoor:
		return StylePoor
	default:
		return StyleFair
	}
}
