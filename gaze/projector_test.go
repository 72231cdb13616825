package gaze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// iPad mini (6th generation) in landscape
var testScreen = Screen{
	WidthPixels:   2266,
	HeightPixels:  1488,
	PixelsPerInch: 326,
	Scale:         2,
}

func TestIntersectGazeRayLookingAtCamera(t *testing.T) {
	intersection, ok := IntersectGazeRay(NewVector(0, 0, 0), NewVector(0, 0, -1))
	if !ok {
		t.Fatal("Intersection should exist")
	}
	if intersection != NewVector(0, 0, 0) {
		t.Errorf("Wrong answer: %v, correct answer: %v", intersection, NewVector(0, 0, 0))
	}
}

func TestIntersectGazeRayNonZeroOrigin(t *testing.T) {
	intersection, ok := IntersectGazeRay(NewVector(1, 1, 1), NewVector(0, 0, -1))
	if !ok {
		t.Fatal("Intersection should exist")
	}
	if intersection != NewVector(1, 1, 0) {
		t.Errorf("Wrong answer: %v, correct answer: %v", intersection, NewVector(1, 1, 0))
	}
}

func TestIntersectGazeRayParallel(t *testing.T) {
	if _, ok := IntersectGazeRay(NewVector(0, 0, 1), NewVector(1, 0, 0)); ok {
		t.Error("Ray parallel to the plane should not intersect it")
	}
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		position := NewVector(rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64())
		direction := NewVector(rnd.NormFloat64(), rnd.NormFloat64(), 0)
		if _, ok := IntersectGazeRay(position, direction); ok {
			t.Errorf("Ray %v + t*%v should not intersect plane z=0", position, direction)
		}
	}
}

func TestIntersectGazeRayLiesOnPlane(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		position := NewVector(rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64())
		direction := NewVector(rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64())
		if direction.Z == 0 {
			continue
		}
		hit, ok := IntersectGazeRay(position, direction)
		if !ok {
			t.Fatalf("Ray %v + t*%v should intersect plane z=0", position, direction)
		}
		if hit.Z != 0 {
			t.Errorf("Intersection %v is not on plane z=0", hit)
		}
		// Intersection must stay on the ray
		tParam := -position.Z / direction.Z
		expected := position.Add(direction.Mul(tParam))
		if math.Abs(hit.X-expected.X) > eps || math.Abs(hit.Y-expected.Y) > eps {
			t.Errorf("Wrong answer: %v, correct answer: %v", hit, expected)
		}
	}
}

func TestIntersectGazeRayBehindEye(t *testing.T) {
	// Eye in front of the screen looking away from it still intersects (t < 0)
	hit, ok := IntersectGazeRay(NewVector(0.1, 0.2, -0.3), NewVector(0, 0, -1))
	if !ok {
		t.Fatal("Intersection should exist")
	}
	if !approxEqualVector(hit, NewVector(0.1, 0.2, 0), eps) {
		t.Errorf("Wrong answer: %v, correct answer: %v", hit, NewVector(0.1, 0.2, 0))
	}
}

func TestProjectToScreenBoundaries(t *testing.T) {
	physical := testScreen.PhysicalSize()
	logical := testScreen.LogicalSize()
	tests := []struct {
		name     string
		point    r3.Vector
		expected r2.Point
	}{
		{"right edge, vertical center", NewVector(physical.X, 0, 0), NewPoint(float64(testScreen.WidthPixels)/testScreen.Scale, float64(testScreen.HeightPixels)/(2*testScreen.Scale))},
		{"left edge, vertical center", NewVector(0, 0, 0), NewPoint(0, logical.Y/2)},
		{"bottom edge", NewVector(0, -physical.Y/2, 0), NewPoint(0, 0)},
		{"top edge", NewVector(0, physical.Y/2, 0), NewPoint(0, logical.Y)},
		{"outside is not clamped", NewVector(-physical.X, physical.Y, 0), NewPoint(-logical.X, 1.5*logical.Y)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projected := ProjectToScreen(tt.point, testScreen)
			if Distance(projected, tt.expected) > 1e-6 {
				t.Errorf("Wrong answer: %v, correct answer: %v", projected, tt.expected)
			}
		})
	}
}

func TestProjectToScreenPanicsWithoutDeviceConstants(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Projection with unknown pixel density should panic")
		}
	}()
	ProjectToScreen(NewVector(0, 0, 0), Screen{WidthPixels: 100, HeightPixels: 100, Scale: 1})
}

func TestEstimateGazePoint(t *testing.T) {
	// Head 30 cm in front of the screen, eye 3 cm to the right of head center, looking at the screen
	head := TranslationPose(NewVector(0, 0, -0.3))
	eye := TranslationPose(NewVector(0.03, 0, 0))
	point, ok := EstimateGazePoint(head, eye, testScreen)
	if !ok {
		t.Fatal("Gaze point should exist")
	}
	expected := NewPoint(0.03/0.0254*326/2, 1488.0/2/2)
	if Distance(point, expected) > 1e-6 {
		t.Errorf("Wrong answer: %v, correct answer: %v", point, expected)
	}

	// Eye turned 90° around Y looks parallel to the screen
	sideways := Compose(eye, RotationPose(NewVector(0, 1, 0), math.Pi/2))
	sideways.Z.Z = 0
	if _, ok := EstimateGazePoint(head, sideways, testScreen); ok {
		t.Error("Gaze parallel to the screen should not produce a point")
	}
}

func TestEyeSampleFromPosesUsesRotation(t *testing.T) {
	// Head rotated by 180° around Y: eye forward axis (local +Z) points to -Z in camera frame
	head := Compose(TranslationPose(NewVector(0, 0, -0.3)), RotationPose(NewVector(0, 1, 0), math.Pi))
	eye := TranslationPose(NewVector(0.03, 0, 0))
	sample := EyeSampleFromPoses(head, eye)
	if !approxEqualVector(sample.Position, NewVector(-0.03, 0, -0.3), eps) {
		t.Errorf("Wrong position: %v", sample.Position)
	}
	if !approxEqualVector(sample.Direction, NewVector(0, 0, -1), eps) {
		t.Errorf("Wrong direction: %v", sample.Direction)
	}
}

func TestProjectorRejectsBehindEye(t *testing.T) {
	head := Compose(TranslationPose(NewVector(0, 0, -0.3)), RotationPose(NewVector(0, 1, 0), math.Pi))
	eye := IdentityPose()

	if _, ok := EstimateGazePoint(head, eye, testScreen); !ok {
		t.Error("Plain estimation keeps intersections behind the eye")
	}

	projector, err := NewProjector(testScreen)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := projector.Estimate(head, eye); ok {
		t.Error("Projector should reject intersections behind the eye by default")
	}

	permissive, err := NewProjector(testScreen, WithAllowBehindEye(true))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := permissive.Estimate(head, eye); !ok {
		t.Error("Projector should accept intersections behind the eye when allowed")
	}
}

func TestProjectorMatchesEstimateGazePoint(t *testing.T) {
	projector, err := NewProjector(testScreen)
	if err != nil {
		t.Fatal(err)
	}
	head := Compose(TranslationPose(NewVector(0.02, -0.01, -0.35)), RotationPose(NewVector(0.2, 1, 0), 0.15))
	eye := Compose(TranslationPose(NewVector(0.03, 0.02, 0.01)), RotationPose(NewVector(1, 0, 0), -0.1))
	expected, ok := EstimateGazePoint(head, eye, testScreen)
	if !ok {
		t.Fatal("Gaze point should exist")
	}
	got, ok := projector.Estimate(head, eye)
	if !ok {
		t.Fatal("Projector should produce a point")
	}
	if Distance(got, expected) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", got, expected)
	}
}

func TestNewProjectorInvalidScreen(t *testing.T) {
	invalid := []Screen{
		{},
		{WidthPixels: 2266, HeightPixels: 1488, Scale: 2},
		{WidthPixels: 2266, HeightPixels: 1488, PixelsPerInch: 326},
		{WidthPixels: -1, HeightPixels: 1488, PixelsPerInch: 326, Scale: 2},
	}
	for i, screen := range invalid {
		_, err := NewProjector(screen)
		if !errors.Is(err, ErrInvalidScreen) {
			t.Errorf("Screen #%d: expected ErrInvalidScreen, got %v", i, err)
		}
	}
}

func TestScreenClamp(t *testing.T) {
	logical := testScreen.LogicalSize()
	tests := []struct {
		in       r2.Point
		expected r2.Point
	}{
		{NewPoint(-10, -10), NewPoint(0, 0)},
		{NewPoint(logical.X+5, 100), NewPoint(logical.X, 100)},
		{NewPoint(500, 300), NewPoint(500, 300)},
	}
	for _, tt := range tests {
		got := testScreen.Clamp(tt.in)
		if Distance(got, tt.expected) > eps {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}
