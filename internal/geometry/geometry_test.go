package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tolerance = 1e-6

func TestAngleBetween_RightAngle(t *testing.T) {
	got, err := AngleBetween(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-90) > tolerance {
		t.Errorf("expected 90, got %v", got)
	}
}

func TestAngleBetween_Colinear(t *testing.T) {
	got, err := AngleBetween(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0}, mgl64.Vec3{1, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-180) > tolerance {
		t.Errorf("expected 180, got %v", got)
	}
}

func TestAngleBetween_SameDirection(t *testing.T) {
	got, err := AngleBetween(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got) > tolerance {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestAngleBetween_3D(t *testing.T) {
	got, err := AngleBetween(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-90) > tolerance {
		t.Errorf("expected 90, got %v", got)
	}
}

func TestAngleBetween_Degenerate(t *testing.T) {
	p := mgl64.Vec3{0.3, 0.3, 0}
	_, err := AngleBetween(p, p, mgl64.Vec3{1, 1, 0})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
}

func TestAngleBetween_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randVec := func() mgl64.Vec3 {
		return mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	}
	for i := 0; i < 10000; i++ {
		got, err := AngleBetween(randVec(), randVec(), randVec())
		if err != nil {
			continue
		}
		if got < 0 || got > 180 || math.IsNaN(got) {
			t.Fatalf("angle out of range: %v", got)
		}
	}
}

func TestAlignmentAngle(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 mgl64.Vec3
		ref    mgl64.Vec3
		want   float64
	}{
		{"straight down vs vertical", mgl64.Vec3{0.5, 0.2, 0}, mgl64.Vec3{0.5, 0.6, 0}, Vertical, 0},
		{"straight up vs vertical", mgl64.Vec3{0.5, 0.6, 0}, mgl64.Vec3{0.5, 0.2, 0}, Vertical, 180},
		{"diagonal vs horizontal", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 0}, Horizontal, 45},
		{"leftward vs horizontal", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 0}, Horizontal, 180},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AlignmentAngle(tc.p1, tc.p2, tc.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > tolerance {
				t.Errorf("AlignmentAngle() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAxisDeviation_FoldsDirection(t *testing.T) {
	up, err := AxisDeviation(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.1, 0, 0}, Vertical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	down, err := AxisDeviation(mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{0, 1, 0}, Vertical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(up-down) > tolerance {
		t.Errorf("expected equal deviations, got %v and %v", up, down)
	}
	if up > 90 {
		t.Errorf("expected deviation <= 90, got %v", up)
	}
}

func TestHorizontalOffset(t *testing.T) {
	got := HorizontalOffset(mgl64.Vec3{0.7, 0.1, 0}, mgl64.Vec3{0.5, 0.9, 0})
	if math.Abs(got-0.2) > tolerance {
		t.Errorf("expected 0.2, got %v", got)
	}
	got = HorizontalOffset(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.7, 0, 0})
	if math.Abs(got+0.2) > tolerance {
		t.Errorf("expected -0.2, got %v", got)
	}
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 2, 4})
	want := mgl64.Vec3{0.5, 1, 2}
	if !got.ApproxEqual(want) {
		t.Errorf("Midpoint() = %v, want %v", got, want)
	}
}

func TestTranslation(t *testing.T) {
	m := mgl64.Translate3D(0.1, -0.4, 1.5)
	got := Translation(m)
	want := mgl64.Vec3{0.1, -0.4, 1.5}
	if !got.ApproxEqual(want) {
		t.Errorf("Translation() = %v, want %v", got, want)
	}
}
