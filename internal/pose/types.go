// Package pose defines the joint data delivered by the upstream pose
// estimator and the Skeleton view the scorer reads it through.
package pose

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/blackwell-systems/formwatch/internal/geometry"
)

// Joint is a named anatomical landmark.
type Joint int

const (
	Nose Joint = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

var jointNames = [...]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
	LeftKnee:      "left_knee",
	RightKnee:     "right_knee",
	LeftAnkle:     "left_ankle",
	RightAnkle:    "right_ankle",
}

// Joints lists every joint in enumeration order.
func Joints() []Joint {
	out := make([]Joint, len(jointNames))
	for i := range jointNames {
		out[i] = Joint(i)
	}
	return out
}

func (j Joint) String() string {
	if j < 0 || int(j) >= len(jointNames) {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJoint resolves a joint name such as "left_knee".
func ParseJoint(name string) (Joint, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, jn := range jointNames {
		if jn == n {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// MarshalText implements encoding.TextMarshaler so joints can key JSON maps.
func (j Joint) MarshalText() ([]byte, error) {
	if j < 0 || int(j) >= len(jointNames) {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *Joint) UnmarshalText(b []byte) error {
	parsed, err := ParseJoint(string(b))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// Dimension tags a frame as 2D or 3D.
type Dimension int

const (
	Dim2D Dimension = iota
	Dim3D
)

func (d Dimension) String() string {
	if d == Dim3D {
		return "3d"
	}
	return "2d"
}

// Point is a 2D joint position normalized to [0,1]x[0,1] (origin top-left,
// Y growing downward) with the detector's confidence in [0,1].
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"c"`
}

// Joint3D is a 3D joint expressed as a 4x4 transform relative to the body
// origin. 3D joints carry no confidence; Available stands in for it.
type Joint3D struct {
	Transform mgl64.Mat4
	Available bool
}

// Frame is the set of joints observed at one instant. Exactly one of Points
// (Dim2D) or Joints3D (Dim3D) is populated.
type Frame struct {
	Timestamp float64
	Dim       Dimension
	Points    map[Joint]Point
	Joints3D  map[Joint]Joint3D
}

// Capture is one instant as delivered by the estimator: a 3D body, a 2D
// body, or both. Body3D is preferred when it satisfies the scorer.
type Capture struct {
	Timestamp float64
	Body3D    *Frame
	Body2D    *Frame
}

// Candidates returns the frames of c in preference order (3D first).
func (c Capture) Candidates() []Frame {
	var out []Frame
	if c.Body3D != nil {
		out = append(out, *c.Body3D)
	}
	if c.Body2D != nil {
		out = append(out, *c.Body2D)
	}
	return out
}

// Skeleton is the capability the scorer needs from a frame: the position of
// a joint when it is usable. 2D frames gate on confidence and 3D frames on
// availability; both report positions as mgl64.Vec3.
type Skeleton interface {
	Position(j Joint) (mgl64.Vec3, bool)
}

// Skeleton returns the view of f the scorer reads. minConfidence only
// applies to 2D frames.
func (f Frame) Skeleton(minConfidence float64) Skeleton {
	if f.Dim == Dim3D {
		return skeleton3D(f.Joints3D)
	}
	return skeleton2D{points: f.Points, minConfidence: minConfidence}
}

type skeleton2D struct {
	points        map[Joint]Point
	minConfidence float64
}

func (s skeleton2D) Position(j Joint) (mgl64.Vec3, bool) {
	p, ok := s.points[j]
	if !ok || p.Confidence <= s.minConfidence {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{p.X, p.Y, 0}, true
}

type skeleton3D map[Joint]Joint3D

func (s skeleton3D) Position(j Joint) (mgl64.Vec3, bool) {
	jt, ok := s[j]
	if !ok || !jt.Available {
		return mgl64.Vec3{}, false
	}
	return geometry.Translation(jt.Transform), true
}

// Missing returns the joints in required that sk cannot provide.
func Missing(sk Skeleton, required []Joint) []Joint {
	var missing []Joint
	for _, j := range required {
		if _, ok := sk.Position(j); !ok {
			missing = append(missing, j)
		}
	}
	return missing
}
