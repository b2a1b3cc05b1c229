// Package geometry provides the vector math used to turn joint positions into
// form features: joint angles, segment alignment and horizontal tracking.
//
// Every function is pure. 2D positions are carried as mgl64.Vec3 with Z = 0,
// so the same formulas serve both 2D and 3D input.
package geometry

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerate is returned when a vector used in an angle computation has
// zero length and the angle is undefined.
var ErrDegenerate = errors.New("degenerate geometry: zero-length vector")

// Reference axes for AlignmentAngle.
var (
	Vertical   = mgl64.Vec3{0, 1, 0}
	Horizontal = mgl64.Vec3{1, 0, 0}
)

// minLength is the magnitude below which a vector is treated as zero.
const minLength = 1e-9

// AngleBetween returns the angle at vertex b formed by the rays b->a and b->c,
// in degrees within [0, 180].
func AngleBetween(a, b, c mgl64.Vec3) (float64, error) {
	return vectorAngle(a.Sub(b), c.Sub(b))
}

// AlignmentAngle returns the angle in degrees between the vector p2-p1 and
// the reference axis.
func AlignmentAngle(p1, p2, reference mgl64.Vec3) (float64, error) {
	return vectorAngle(p2.Sub(p1), reference)
}

// AxisDeviation is AlignmentAngle folded onto [0, 90]: the angle between the
// segment and the reference axis regardless of which way either points.
// It makes lean and body-line checks independent of facing direction and of
// whether the Y axis points up (3D) or down (normalized image space).
func AxisDeviation(p1, p2, reference mgl64.Vec3) (float64, error) {
	angle, err := AlignmentAngle(p1, p2, reference)
	if err != nil {
		return 0, err
	}
	return math.Min(angle, 180-angle), nil
}

// HorizontalOffset returns the signed difference a.x - b.x.
func HorizontalOffset(a, b mgl64.Vec3) float64 {
	return a.X() - b.X()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Mul(0.5)
}

// Translation projects a 4x4 joint transform to its translation component.
func Translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

func vectorAngle(u, v mgl64.Vec3) (float64, error) {
	lu, lv := u.Len(), v.Len()
	if lu < minLength || lv < minLength {
		return 0, ErrDegenerate
	}
	// Clamp before Acos: rounding can push the cosine just outside [-1, 1].
	cos := mgl64.Clamp(u.Dot(v)/(lu*lv), -1, 1)
	return mgl64.RadToDeg(math.Acos(cos)), nil
}
