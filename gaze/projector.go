package gaze

import (
	"log/slog"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// EyeSample is eye position and line of sight expressed in the sensor (camera) frame
type EyeSample struct {
	Position  r3.Vector
	Direction r3.Vector
}

// EyeSampleFromPoses composes eye pose (relative to head) with head pose (relative to camera).
// Position is the composed translation column, direction is the composed forward (Z) axis.
func EyeSampleFromPoses(headPose, eyeLocalPose Pose) EyeSample {
	eye := Compose(headPose, eyeLocalPose)
	return EyeSample{
		Position:  eye.Position(),
		Direction: eye.Forward(),
	}
}

// rayPlaneParameter returns t such that position + t * direction lies on plane z = 0.
// Second value is false when ray is parallel to the plane
func rayPlaneParameter(eyePosition, eyeDirection r3.Vector) (float64, bool) {
	if eyeDirection.Z == 0 {
		return 0, false
	}
	return -eyePosition.Z / eyeDirection.Z, true
}

// IntersectGazeRay intersects ray eyePosition + t * eyeDirection with the screen plane z = 0.
// Second value is false when the ray is parallel to the plane.
// Negative t (plane is "behind" the eye) is not rejected here, see Projector for that.
func IntersectGazeRay(eyePosition, eyeDirection r3.Vector) (r3.Vector, bool) {
	t, ok := rayPlaneParameter(eyePosition, eyeDirection)
	if !ok {
		return r3.Vector{}, false
	}
	hit := eyePosition.Add(eyeDirection.Mul(t))
	hit.Z = 0
	return hit, true
}

// ProjectToScreen converts point on the screen plane (meters, sensor at origin) into logical screen coordinates.
// Vertical coordinate is shifted by half of the screen height since the sensor is the vertical reference.
// Result is not clamped.
//
// Panics if screen geometry is invalid: projecting with unknown device constants gives wrong coordinates silently.
func ProjectToScreen(point r3.Vector, screen Screen) r2.Point {
	if err := screen.Validate(); err != nil {
		panic(errors.Wrap(err, "can't project gaze point"))
	}
	return r2.Point{
		X: screen.metersToLogical(point.X),
		Y: screen.metersToLogical(point.Y) + screen.LogicalSize().Y/2.0,
	}
}

// EstimateGazePoint is the whole projection chain: poses -> gaze ray -> plane intersection -> screen point.
// Second value is false for rays parallel to the screen plane
func EstimateGazePoint(headPose, eyeLocalPose Pose, screen Screen) (r2.Point, bool) {
	eye := EyeSampleFromPoses(headPose, eyeLocalPose)
	hit, ok := IntersectGazeRay(eye.Position, eye.Direction)
	if !ok {
		return r2.Point{}, false
	}
	return ProjectToScreen(hit, screen), true
}

// Projector is GazeProjector bound to validated screen geometry.
// It is immutable and safe for concurrent use.
type Projector struct {
	screen      Screen
	allowBehind bool
	logger      *slog.Logger
}

// ProjectorOption configures Projector
type ProjectorOption func(*Projector)

// WithLogger sets logger for rejected frames (debug level)
func WithLogger(logger *slog.Logger) ProjectorOption {
	return func(p *Projector) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAllowBehindEye accepts intersections with negative ray parameter.
// By default they are rejected: the user can't look through the back of the head
func WithAllowBehindEye(allow bool) ProjectorOption {
	return func(p *Projector) {
		p.allowBehind = allow
	}
}

// NewProjector creates projector for given screen. Returns ErrInvalidScreen when device constants are missing
func NewProjector(screen Screen, options ...ProjectorOption) (*Projector, error) {
	if err := screen.Validate(); err != nil {
		return nil, errors.Wrap(err, "can't create projector")
	}
	p := &Projector{
		screen: screen,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// Screen returns screen geometry of projector
func (p *Projector) Screen() Screen {
	return p.screen
}

// Project converts eye sample into raw (uncalibrated) screen point.
// Second value is false for rays parallel to the screen and, unless allowed, for rays pointing away from it
func (p *Projector) Project(eye EyeSample) (r2.Point, bool) {
	t, ok := rayPlaneParameter(eye.Position, eye.Direction)
	if !ok {
		p.logger.Debug("gaze ray is parallel to screen plane", "position", eye.Position, "direction", eye.Direction)
		return r2.Point{}, false
	}
	if t < 0 && !p.allowBehind {
		p.logger.Debug("screen plane is behind the eye", "t", t, "position", eye.Position, "direction", eye.Direction)
		return r2.Point{}, false
	}
	hit, _ := IntersectGazeRay(eye.Position, eye.Direction)
	return ProjectToScreen(hit, p.screen), true
}

// Estimate composes poses and projects resulting eye sample
func (p *Projector) Estimate(headPose, eyeLocalPose Pose) (r2.Point, bool) {
	return p.Project(EyeSampleFromPoses(headPose, eyeLocalPose))
}
