package output

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/formwatch/internal/coach"
)

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	if !IsNoColor() {
		t.Error("expected color flag set")
	}
	if rendered := StyleHeader.Render("test"); strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	if StyleGood.GetForeground() == ColorGood {
		t.Error("expected tier colors cleared")
	}

	SetNoColor(false)
	if IsNoColor() {
		t.Error("expected color flag cleared")
	}
	if StyleGood.GetForeground() != ColorGood || StylePoor.GetForeground() != ColorPoor {
		t.Error("expected tier colors restored")
	}
}

func TestScoreTier(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{1, TierGood},
		{coach.ProgressionAbove + 0.01, TierGood},
		{coach.ProgressionAbove, TierFair},
		{0.7, TierFair},
		{coach.RemedialBelow, TierFair},
		{coach.RemedialBelow - 0.01, TierPoor},
		{0, TierPoor},
	}
	for _, tc := range tests {
		if got := ScoreTier(tc.score); got != tc.want {
			t.Errorf("ScoreTier(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestScoreStyle_FollowsTier(t *testing.T) {
	defer SetNoColor(false)
	SetNoColor(false)

	if ScoreStyle(0.9).GetForeground() != ColorGood {
		t.Error("expected good color above the progression tier")
	}
	if ScoreStyle(0.7).GetForeground() != ColorFair {
		t.Error("expected fair color between tiers")
	}
	if ScoreStyle(0.3).GetForeground() != ColorPoor {
		t.Error("expected poor color below the remedial tier")
	}
}
