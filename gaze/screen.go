package gaze

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Screen describes surface gaze is projected onto.
// The sensor sits at the origin of the screen plane (z = 0); physical
// coordinates are meters, output coordinates are logical units.
type Screen struct {
	// Native resolution in physical pixels
	WidthPixels  int
	HeightPixels int
	// Physical density (physical pixels per inch)
	PixelsPerInch float64
	// Physical pixels per logical unit (e.g. 2.0 for a "retina" display)
	Scale float64
}

// NewScreen creates screen geometry and validates it
func NewScreen(widthPixels, heightPixels int, pixelsPerInch, scale float64) (Screen, error) {
	screen := Screen{
		WidthPixels:   widthPixels,
		HeightPixels:  heightPixels,
		PixelsPerInch: pixelsPerInch,
		Scale:         scale,
	}
	return screen, screen.Validate()
}

// Validate checks that every device constant is known
func (screen Screen) Validate() error {
	if screen.WidthPixels <= 0 || screen.HeightPixels <= 0 {
		return errors.Wrapf(ErrInvalidScreen, "resolution must be positive, got %dx%d", screen.WidthPixels, screen.HeightPixels)
	}
	if !(screen.PixelsPerInch > 0) {
		return errors.Wrapf(ErrInvalidScreen, "pixels per inch must be positive, got %v", screen.PixelsPerInch)
	}
	if !(screen.Scale > 0) {
		return errors.Wrapf(ErrInvalidScreen, "logical scale must be positive, got %v", screen.Scale)
	}
	return nil
}

// LogicalSize returns width and height in logical units
func (screen Screen) LogicalSize() r2.Point {
	return r2.Point{
		X: float64(screen.WidthPixels) / screen.Scale,
		Y: float64(screen.HeightPixels) / screen.Scale,
	}
}

// PhysicalSize returns width and height in meters
func (screen Screen) PhysicalSize() r2.Point {
	return r2.Point{
		X: InchesToMeters(float64(screen.WidthPixels) / screen.PixelsPerInch),
		Y: InchesToMeters(float64(screen.HeightPixels) / screen.PixelsPerInch),
	}
}

// Bounds returns rectangle [0, width] x [0, height] in logical units
func (screen Screen) Bounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{}, screen.LogicalSize())
}

// Clamp pulls point onto the screen bounds
func (screen Screen) Clamp(p r2.Point) r2.Point {
	return screen.Bounds().ClampPoint(p)
}

// metersToLogical converts physical length into logical units
func (screen Screen) metersToLogical(meters float64) float64 {
	return MetersToInches(meters) * screen.PixelsPerInch / screen.Scale
}
