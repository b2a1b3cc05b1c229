package output

import (
	"strings"
	"testing"
)

func TestScoreBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		name   string
		score  float64
		width  int
		filled int
		label  string
	}{
		{"full", 1, 10, 10, "100%"},
		{"partial", 0.8, 10, 8, "80%"},
		{"empty", 0, 10, 0, "0%"},
		{"clamped high", 1.5, 10, 10, "150%"},
		{"clamped low", -0.2, 10, 0, "-20%"},
		{"default width", 0.5, 0, 10, "50%"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreBar(tc.score, tc.width)
			if n := strings.Count(got, "█"); n != tc.filled {
				t.Errorf("filled = %d, want %d (%q)", n, tc.filled, got)
			}
			if !strings.HasSuffix(got, tc.label) {
				t.Errorf("expected label %q in %q", tc.label, got)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.754); got != "75%" {
		t.Errorf("Percent(0.754) = %q", got)
	}
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := TrendArrow(0, true); got != "─" {
		t.Errorf("zero delta = %q", got)
	}
	if got := TrendArrow(5, true); got != "▲ +5.0" {
		t.Errorf("positive delta = %q", got)
	}
	if got := TrendArrow(-2.5, true); got != "▼ -2.5" {
		t.Errorf("negative delta = %q", got)
	}
}

func TestSection(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := Section("Reps", 4)
	if !strings.Contains(got, "Reps") || !strings.Contains(got, "────") {
		t.Errorf("unexpected section %q", got)
	}
}
