package gaze

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// minLinearSamples is number of unknowns per output axis (x, y, intercept)
	minLinearSamples = 3
	// collinearityTolerance is relative threshold for determinant of gaze covariance
	collinearityTolerance = 1e-9
)

// LinearCalibrator maps raw gaze point to target with affine transform fitted by least squares:
//
//	target.X = a0*gaze.X + a1*gaze.Y + a2
//	target.Y = b0*gaze.X + b1*gaze.Y + b2
//
// Unlike offset calibrators it also corrects scale and rotation of the estimate.
// It implements Calibrator interface.
type LinearCalibrator struct {
	// row-major 2x3: [a0 a1 a2; b0 b1 b2]
	coefficients [2][3]float64
}

// NewLinearCalibrator fits calibrator to samples.
// Needs at least 3 samples whose gaze points are not collinear
func NewLinearCalibrator(samples []CalibrationSample) (*LinearCalibrator, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(samples) < minLinearSamples {
		return nil, errors.Wrapf(ErrNotEnoughSamples, "linear calibration needs %d samples, got %d", minLinearSamples, len(samples))
	}
	if collinear(samples) {
		return nil, errors.Wrap(ErrSingularFit, "gaze points are collinear")
	}

	n := len(samples)
	design := mat.NewDense(n, 3, nil)
	targets := mat.NewDense(n, 2, nil)
	for i, sample := range samples {
		design.SetRow(i, []float64{sample.Gaze.X, sample.Gaze.Y, 1})
		targets.SetRow(i, []float64{sample.Target.X, sample.Target.Y})
	}

	var solution mat.Dense
	if err := solution.Solve(design, targets); err != nil {
		return nil, errors.Wrapf(ErrSingularFit, "least squares: %v", err)
	}

	calibrator := &LinearCalibrator{}
	for axis := 0; axis < 2; axis++ {
		for j := 0; j < 3; j++ {
			calibrator.coefficients[axis][j] = solution.At(j, axis)
		}
	}
	return calibrator, nil
}

// collinear checks whether gaze points span less than a plane
func collinear(samples []CalibrationSample) bool {
	gazes := make([]r2.Point, len(samples))
	for i := range samples {
		gazes[i] = samples[i].Gaze
	}
	center, _ := Mean(gazes)
	var sxx, syy, sxy float64
	for _, g := range gazes {
		d := g.Sub(center)
		sxx += d.X * d.X
		syy += d.Y * d.Y
		sxy += d.X * d.Y
	}
	trace := sxx + syy
	if trace == 0 {
		return true
	}
	return sxx*syy-sxy*sxy <= collinearityTolerance*trace*trace
}

// Correct applies fitted affine mapping
func (c *LinearCalibrator) Correct(raw r2.Point) r2.Point {
	a, b := c.coefficients[0], c.coefficients[1]
	return r2.Point{
		X: a[0]*raw.X + a[1]*raw.Y + a[2],
		Y: b[0]*raw.X + b[1]*raw.Y + b[2],
	}
}

// Strategy returns calibration strategy
func (c *LinearCalibrator) Strategy() Strategy {
	return StrategyLinear
}

// Coefficients returns fitted affine coefficients row by row: [a0 a1 a2; b0 b1 b2]
func (c *LinearCalibrator) Coefficients() [2][3]float64 {
	return c.coefficients
}
