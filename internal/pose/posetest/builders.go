// Package posetest builds synthetic pose frames with exact joint angles for
// tests of the scorer and the pipelines built on it.
package posetest

import (
	"encoding/json"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/blackwell-systems/formwatch/internal/pose"
)

// Confidence is the detector confidence given to every built joint.
const Confidence = 0.9

// DefaultLean is a torso lean inside the ideal squat band.
const DefaultLean = 25.0

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// Squat returns a side-on 2D squat frame where the left and right knee
// angles are left and right degrees and the torso leans lean degrees from
// vertical. Knees sit directly over the ankles.
func Squat(ts, left, right, lean float64) pose.Frame {
	pts := make(map[pose.Joint]pose.Point)
	leg := func(x, knee float64, hipJ, kneeJ, ankleJ, shoulderJ pose.Joint) {
		ankle := mgl64.Vec2{x, 0.9}
		k := mgl64.Vec2{x, 0.7}
		hip := k.Add(mgl64.Vec2{-math.Sin(rad(knee)), math.Cos(rad(knee))}.Mul(0.2))
		shoulder := hip.Add(mgl64.Vec2{math.Sin(rad(lean)), -math.Cos(rad(lean))}.Mul(0.3))
		pts[ankleJ] = point(ankle)
		pts[kneeJ] = point(k)
		pts[hipJ] = point(hip)
		pts[shoulderJ] = point(shoulder)
	}
	leg(0.45, left, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.LeftShoulder)
	leg(0.55, right, pose.RightHip, pose.RightKnee, pose.RightAnkle, pose.RightShoulder)
	return pose.Frame{Timestamp: ts, Dim: pose.Dim2D, Points: pts}
}

// SquatAt is a symmetric squat frame with the default lean.
func SquatAt(ts, knee float64) pose.Frame {
	return Squat(ts, knee, knee, DefaultLean)
}

// PushUp returns a side-on 2D push-up frame with both elbows at elbow
// degrees. hipDrop lowers the hips (normalized units) to bend the body line.
func PushUp(ts, elbow, hipDrop float64) pose.Frame {
	pts := make(map[pose.Joint]pose.Point)
	side := func(z float64, shoulderJ, elbowJ, wristJ, hipJ, ankleJ pose.Joint) {
		shoulder := mgl64.Vec2{0.4, 0.5 + z}
		e := shoulder.Add(mgl64.Vec2{0, 0.15})
		wrist := e.Add(mgl64.Vec2{math.Sin(rad(elbow)), -math.Cos(rad(elbow))}.Mul(0.15))
		pts[shoulderJ] = point(shoulder)
		pts[elbowJ] = point(e)
		pts[wristJ] = point(wrist)
		pts[hipJ] = point(mgl64.Vec2{0.6, 0.5 + z + hipDrop})
		pts[ankleJ] = point(mgl64.Vec2{0.8, 0.5 + z})
	}
	side(-0.01, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftHip, pose.LeftAnkle)
	side(0.01, pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip, pose.RightAnkle)
	return pose.Frame{Timestamp: ts, Dim: pose.Dim2D, Points: pts}
}

// Plank returns a side-on 2D plank frame whose shoulder-hip-ankle angle is
// hip degrees.
func Plank(ts, hip float64) pose.Frame {
	pts := make(map[pose.Joint]pose.Point)
	side := func(z float64, shoulderJ, hipJ, ankleJ pose.Joint) {
		h := mgl64.Vec2{0.5, 0.5 + z}
		pts[hipJ] = point(h)
		pts[shoulderJ] = point(h.Add(mgl64.Vec2{-0.25, 0}))
		pts[ankleJ] = point(h.Add(mgl64.Vec2{-math.Cos(rad(hip)), math.Sin(rad(hip))}.Mul(0.3)))
	}
	side(-0.01, pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle)
	side(0.01, pose.RightShoulder, pose.RightHip, pose.RightAnkle)
	return pose.Frame{Timestamp: ts, Dim: pose.Dim2D, Points: pts}
}

// To3D converts a 2D frame to a 3D frame with the same coordinates and every
// joint available.
func To3D(f pose.Frame) pose.Frame {
	joints := make(map[pose.Joint]pose.Joint3D, len(f.Points))
	for j, p := range f.Points {
		joints[j] = pose.Joint3D{Transform: mgl64.Translate3D(p.X, p.Y, 0), Available: true}
	}
	return pose.Frame{Timestamp: f.Timestamp, Dim: pose.Dim3D, Joints3D: joints}
}

// WithConfidence returns a copy of a 2D frame with joint j set to confidence c.
func WithConfidence(f pose.Frame, j pose.Joint, c float64) pose.Frame {
	pts := make(map[pose.Joint]pose.Point, len(f.Points))
	for k, p := range f.Points {
		pts[k] = p
	}
	p := pts[j]
	p.Confidence = c
	pts[j] = p
	f.Points = pts
	return f
}

// Without returns a copy of f with joint j removed.
func Without(f pose.Frame, j pose.Joint) pose.Frame {
	if f.Dim == pose.Dim3D {
		joints := make(map[pose.Joint]pose.Joint3D, len(f.Joints3D))
		for k, v := range f.Joints3D {
			if k != j {
				joints[k] = v
			}
		}
		f.Joints3D = joints
		return f
	}
	pts := make(map[pose.Joint]pose.Point, len(f.Points))
	for k, v := range f.Points {
		if k != j {
			pts[k] = v
		}
	}
	f.Points = pts
	return f
}

// Capture wraps a 2D frame as a capture.
func Capture(f pose.Frame) pose.Capture {
	return pose.Capture{Timestamp: f.Timestamp, Body2D: &f}
}

// WriteRecording writes 2D frames as JSONL captures in recording format.
func WriteRecording(w io.Writer, frames ...pose.Frame) error {
	type pointJSON struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		C float64 `json:"c"`
	}
	enc := json.NewEncoder(w)
	for _, f := range frames {
		joints := make(map[string]pointJSON, len(f.Points))
		for j, p := range f.Points {
			joints[j.String()] = pointJSON{X: p.X, Y: p.Y, C: p.Confidence}
		}
		line := struct {
			T        float64              `json:"t"`
			Joints2D map[string]pointJSON `json:"joints2d"`
		}{f.Timestamp, joints}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func point(v mgl64.Vec2) pose.Point {
	return pose.Point{X: v.X(), Y: v.Y(), Confidence: Confidence}
}
