package gaze

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	// metersPerInch is the exact length of an international inch
	metersPerInch = 0.0254
)

// NewPoint creates 2D screen point
func NewPoint(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

// NewVector creates 3D point (or direction)
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// MetersToInches converts meters to inches
func MetersToInches(meters float64) float64 {
	return meters / metersPerInch
}

// InchesToMeters converts inches to meters
func InchesToMeters(inches float64) float64 {
	return inches * metersPerInch
}

// Distance returns euclidean distance between two screen points
func Distance(p1, p2 r2.Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// Mean returns the centroid of given points.
// Second value is false for an empty slice
func Mean(points []r2.Point) (r2.Point, bool) {
	if len(points) == 0 {
		return r2.Point{}, false
	}
	sum := r2.Point{}
	for _, pt := range points {
		sum = sum.Add(pt)
	}
	return sum.Mul(1.0 / float64(len(points))), true
}

func approxEqualVector(v1, v2 r3.Vector, tol float64) bool {
	return math.Abs(v1.X-v2.X) <= tol && math.Abs(v1.Y-v2.Y) <= tol && math.Abs(v1.Z-v2.Z) <= tol
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
