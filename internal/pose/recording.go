package pose

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoPose is returned when no pose was detected near the requested time.
var ErrNoPose = errors.New("no pose detected")

const maxLineSize = 4 * 1024 * 1024

type pointJSON struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Confidence *float64 `json:"c"`
}

type joint3DJSON struct {
	Position  *[3]float64  `json:"position"`
	Transform *[16]float64 `json:"transform"`
	Available *bool        `json:"available"`
}

type captureJSON struct {
	Timestamp float64               `json:"t"`
	Joints2D  map[Joint]pointJSON   `json:"joints2d"`
	Joints3D  map[Joint]joint3DJSON `json:"joints3d"`
}

// UnmarshalJSON decodes one recorded capture. 2D confidence defaults to 1
// and 3D availability to true when omitted.
func (c *Capture) UnmarshalJSON(data []byte) error {
	var raw captureJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Capture{Timestamp: raw.Timestamp}

	if len(raw.Joints3D) > 0 {
		joints := make(map[Joint]Joint3D, len(raw.Joints3D))
		for j, rj := range raw.Joints3D {
			jt := Joint3D{Available: true}
			switch {
			case rj.Transform != nil:
				jt.Transform = mgl64.Mat4(*rj.Transform)
			case rj.Position != nil:
				p := rj.Position
				jt.Transform = mgl64.Translate3D(p[0], p[1], p[2])
			default:
				return fmt.Errorf("joint %s: needs position or transform", j)
			}
			if rj.Available != nil {
				jt.Available = *rj.Available
			}
			joints[j] = jt
		}
		out.Body3D = &Frame{Timestamp: raw.Timestamp, Dim: Dim3D, Joints3D: joints}
	}

	if len(raw.Joints2D) > 0 {
		points := make(map[Joint]Point, len(raw.Joints2D))
		for j, rp := range raw.Joints2D {
			p := Point{X: rp.X, Y: rp.Y, Confidence: 1}
			if rp.Confidence != nil {
				p.Confidence = *rp.Confidence
			}
			points[j] = p
		}
		out.Body2D = &Frame{Timestamp: raw.Timestamp, Dim: Dim2D, Points: points}
	}

	*c = out
	return nil
}

// ScanCaptures reads JSONL captures from r and calls fn for each one in
// order. Blank lines are skipped. Reading stops at the first error from the
// decoder, from fn, or from ctx.
func ScanCaptures(ctx context.Context, r io.Reader, fn func(Capture) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var c Capture
		if err := json.Unmarshal(b, &c); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadCaptures reads every capture from r.
func ReadCaptures(r io.Reader) ([]Capture, error) {
	var out []Capture
	err := ScanCaptures(context.Background(), r, func(c Capture) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

// Recording is a recorded pose stream that can be sampled at arbitrary times,
// standing in for video frame extraction plus pose detection.
type Recording struct {
	captures  []Capture
	tolerance float64
}

// NewRecording sorts captures by timestamp. A sample matches a capture only
// if it lies within tolerance seconds of it.
func NewRecording(captures []Capture, tolerance float64) *Recording {
	sorted := make([]Capture, len(captures))
	copy(sorted, captures)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Recording{captures: sorted, tolerance: tolerance}
}

// OpenRecording reads a JSONL recording from path.
func OpenRecording(path string, tolerance float64) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	captures, err := ReadCaptures(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewRecording(captures, tolerance), nil
}

// Len returns the number of captures in the recording.
func (r *Recording) Len() int {
	return len(r.captures)
}

// Start returns the timestamp of the first capture. Timestamps have an
// arbitrary origin, so sampling is relative to it.
func (r *Recording) Start() float64 {
	if len(r.captures) == 0 {
		return 0
	}
	return r.captures[0].Timestamp
}

// Duration returns the span in seconds from the first capture to the last.
func (r *Recording) Duration() float64 {
	if len(r.captures) == 0 {
		return 0
	}
	return r.captures[len(r.captures)-1].Timestamp - r.captures[0].Timestamp
}

// PoseAt returns the capture nearest to t, re-stamped to t.
func (r *Recording) PoseAt(ctx context.Context, t float64) (Capture, error) {
	if err := ctx.Err(); err != nil {
		return Capture{}, err
	}
	if len(r.captures) == 0 {
		return Capture{}, ErrNoPose
	}

	i := sort.Search(len(r.captures), func(i int) bool {
		return r.captures[i].Timestamp >= t
	})
	best := -1
	bestDist := math.Inf(1)
	for _, k := range []int{i - 1, i} {
		if k < 0 || k >= len(r.captures) {
			continue
		}
		if d := math.Abs(r.captures[k].Timestamp - t); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best < 0 || bestDist > r.tolerance {
		return Capture{}, ErrNoPose
	}

	c := r.captures[best]
	return c.at(t), nil
}

// at returns a copy of c with every timestamp set to t.
func (c Capture) at(t float64) Capture {
	out := Capture{Timestamp: t}
	if c.Body3D != nil {
		f := *c.Body3D
		f.Timestamp = t
		out.Body3D = &f
	}
	if c.Body2D != nil {
		f := *c.Body2D
		f.Timestamp = t
		out.Body2D = &f
	}
	return out
}
