package pose

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParseJoint_RoundTripsNames(t *testing.T) {
	for _, j := range Joints() {
		got, err := ParseJoint(j.String())
		if err != nil {
			t.Fatalf("ParseJoint(%q): %v", j.String(), err)
		}
		if got != j {
			t.Errorf("ParseJoint(%q) = %v, want %v", j.String(), got, j)
		}
	}
}

func TestParseJoint_Unknown(t *testing.T) {
	if _, err := ParseJoint("left_tail"); err == nil {
		t.Error("expected error for unknown joint")
	}
}

func TestSkeleton2D_ConfidenceGate(t *testing.T) {
	f := Frame{
		Dim: Dim2D,
		Points: map[Joint]Point{
			LeftKnee:  {X: 0.4, Y: 0.6, Confidence: 0.9},
			RightKnee: {X: 0.6, Y: 0.6, Confidence: 0.5},
		},
	}
	sk := f.Skeleton(0.5)

	if p, ok := sk.Position(LeftKnee); !ok || p.X() != 0.4 || p.Z() != 0 {
		t.Errorf("expected left knee at (0.4, 0.6, 0), got %v ok=%v", p, ok)
	}
	// Exactly at the threshold is not "above" it.
	if _, ok := sk.Position(RightKnee); ok {
		t.Error("expected right knee at confidence 0.5 to be rejected")
	}
	if _, ok := sk.Position(LeftAnkle); ok {
		t.Error("expected absent joint to be rejected")
	}
}

func TestSkeleton3D_AvailabilityGate(t *testing.T) {
	f := Frame{
		Dim: Dim3D,
		Joints3D: map[Joint]Joint3D{
			LeftHip:  {Transform: mgl64.Translate3D(0.1, 0.9, -0.2), Available: true},
			RightHip: {Transform: mgl64.Translate3D(-0.1, 0.9, -0.2), Available: false},
		},
	}
	// The confidence threshold is irrelevant for 3D frames.
	sk := f.Skeleton(0.99)

	p, ok := sk.Position(LeftHip)
	if !ok {
		t.Fatal("expected available 3D joint")
	}
	if !p.ApproxEqual(mgl64.Vec3{0.1, 0.9, -0.2}) {
		t.Errorf("expected translation component, got %v", p)
	}
	if _, ok := sk.Position(RightHip); ok {
		t.Error("expected unavailable 3D joint to be rejected")
	}
}

func TestMissing(t *testing.T) {
	f := Frame{Dim: Dim2D, Points: map[Joint]Point{LeftHip: {Confidence: 1}}}
	missing := Missing(f.Skeleton(0.5), []Joint{LeftHip, RightHip, LeftKnee})
	if len(missing) != 2 || missing[0] != RightHip || missing[1] != LeftKnee {
		t.Errorf("unexpected missing joints: %v", missing)
	}
}

func TestCaptureUnmarshal(t *testing.T) {
	line := `{"t": 1.5,
		"joints2d": {"left_knee": {"x": 0.4, "y": 0.6, "c": 0.8}, "right_knee": {"x": 0.6, "y": 0.6}},
		"joints3d": {"left_knee": {"position": [0.1, 0.5, 0.0]}, "right_knee": {"position": [0.2, 0.5, 0.0], "available": false}}}`

	var c Capture
	if err := json.Unmarshal([]byte(line), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Timestamp != 1.5 {
		t.Errorf("expected timestamp 1.5, got %v", c.Timestamp)
	}
	if c.Body2D == nil || c.Body3D == nil {
		t.Fatal("expected both bodies")
	}
	if c.Body2D.Points[RightKnee].Confidence != 1 {
		t.Errorf("expected default confidence 1, got %v", c.Body2D.Points[RightKnee].Confidence)
	}
	if !c.Body3D.Joints3D[LeftKnee].Available {
		t.Error("expected default availability true")
	}
	if c.Body3D.Joints3D[RightKnee].Available {
		t.Error("expected explicit availability false")
	}

	cands := c.Candidates()
	if len(cands) != 2 || cands[0].Dim != Dim3D || cands[1].Dim != Dim2D {
		t.Errorf("expected 3D then 2D candidates, got %+v", cands)
	}
}

func TestCaptureUnmarshal_Transform(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3)
	raw, err := json.Marshal(map[string]any{
		"t":        0,
		"joints3d": map[string]any{"nose": map[string]any{"transform": m[:]}},
	})
	if err != nil {
		t.Fatal(err)
	}
	var c Capture
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, ok := c.Body3D.Skeleton(0).Position(Nose)
	if !ok || !p.ApproxEqual(mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected nose at (1,2,3), got %v ok=%v", p, ok)
	}
}

func TestCaptureUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown joint", `{"t": 0, "joints2d": {"tail": {"x": 0, "y": 0}}}`},
		{"3D joint without position", `{"t": 0, "joints3d": {"nose": {}}}`},
		{"not json", `nope`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Capture
			if err := json.Unmarshal([]byte(tc.line), &c); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCaptures_SkipsBlankLinesAndReportsLine(t *testing.T) {
	input := `{"t": 0.0, "joints2d": {"nose": {"x": 0.5, "y": 0.1}}}

{"t": 0.2, "joints2d": {"nose": {"x": 0.5, "y": 0.1}}}
`
	captures, err := ReadCaptures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(captures))
	}

	_, err = ReadCaptures(strings.NewReader("{\"t\": 0}\n{bad\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestScanCaptures_StopsOnCallbackError(t *testing.T) {
	input := "{\"t\": 0}\n{\"t\": 1}\n{\"t\": 2}\n"
	stop := errors.New("stop")
	seen := 0
	err := ScanCaptures(context.Background(), strings.NewReader(input), func(Capture) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected stop error, got %v", err)
	}
	if seen != 2 {
		t.Errorf("expected 2 callbacks, got %d", seen)
	}
}

func TestRecording_PoseAt(t *testing.T) {
	body := &Frame{Dim: Dim2D, Points: map[Joint]Point{Nose: {X: 0.5, Y: 0.1, Confidence: 1}}}
	rec := NewRecording([]Capture{
		{Timestamp: 1.0, Body2D: body},
		{Timestamp: 0.0, Body2D: body},
		{Timestamp: 0.5, Body2D: body},
	}, 0.1)

	if rec.Duration() != 1.0 {
		t.Errorf("expected duration 1.0, got %v", rec.Duration())
	}
	if rec.Len() != 3 {
		t.Errorf("expected 3 captures, got %d", rec.Len())
	}

	c, err := rec.PoseAt(context.Background(), 0.55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Timestamp != 0.55 || c.Body2D.Timestamp != 0.55 {
		t.Errorf("expected capture re-stamped to 0.55, got %v / %v", c.Timestamp, c.Body2D.Timestamp)
	}
	if body.Timestamp != 0 {
		t.Error("re-stamping must not mutate the recorded frame")
	}

	if _, err := rec.PoseAt(context.Background(), 0.25); !errors.Is(err, ErrNoPose) {
		t.Errorf("expected ErrNoPose between captures, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rec.PoseAt(ctx, 0.5); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecording_OffsetOrigin(t *testing.T) {
	body := &Frame{Dim: Dim2D, Points: map[Joint]Point{Nose: {X: 0.5, Y: 0.1, Confidence: 1}}}
	rec := NewRecording([]Capture{
		{Timestamp: 1000.0, Body2D: body},
		{Timestamp: 1001.5, Body2D: body},
	}, 0.1)

	if rec.Start() != 1000.0 {
		t.Errorf("expected start 1000, got %v", rec.Start())
	}
	if rec.Duration() != 1.5 {
		t.Errorf("expected duration measured from the first capture, got %v", rec.Duration())
	}
	if _, err := rec.PoseAt(context.Background(), 1001.5); err != nil {
		t.Errorf("unexpected error at last capture: %v", err)
	}
}

func TestRecording_Empty(t *testing.T) {
	rec := NewRecording(nil, 0.1)
	if rec.Start() != 0 {
		t.Errorf("expected zero start, got %v", rec.Start())
	}
	if rec.Duration() != 0 {
		t.Errorf("expected zero duration, got %v", rec.Duration())
	}
	if _, err := rec.PoseAt(context.Background(), 0); !errors.Is(err, ErrNoPose) {
		t.Errorf("expected ErrNoPose, got %v", err)
	}
}
