package gaze

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultReferenceForward is nominal viewing direction: head facing the screen along +Z of camera frame
var DefaultReferenceForward = r3.Vector{X: 0, Y: 0, Z: 1}

// WeightedOffsetCalibrator corrects gaze by mean of error vectors weighted by head forwardness:
// samples captured while the head faced the reference direction are trusted more,
// samples with head turned away (forwardness <= 0) are ignored.
// It implements OffsetCalibrator interface.
type WeightedOffsetCalibrator struct {
	offsetCalibrator
	reference   r3.Vector
	totalWeight float64
}

type weightedSettings struct {
	reference r3.Vector
}

// WeightedOption configures forward-weighted calibration
type WeightedOption func(*weightedSettings)

// WithReferenceForward overrides nominal viewing direction (normalized internally)
func WithReferenceForward(reference r3.Vector) WeightedOption {
	return func(s *weightedSettings) {
		s.reference = reference
	}
}

// Forwardness returns cosine between face forward axis and reference direction clamped at zero.
// Both vectors are normalized first; zero vectors give zero forwardness
func Forwardness(facePose Pose, reference r3.Vector) float64 {
	forward := facePose.Forward()
	if forward.Norm2() == 0 || reference.Norm2() == 0 {
		return 0
	}
	return maxFloat64(0, forward.Normalize().Dot(reference.Normalize()))
}

// NewWeightedOffsetCalibrator creates calibrator from non-empty sample list.
// Returns ErrNoSamples for empty list and ErrZeroTotalWeight when no sample faces the reference direction
func NewWeightedOffsetCalibrator(samples []CalibrationSample, options ...WeightedOption) (*WeightedOffsetCalibrator, error) {
	settings := weightedSettings{
		reference: DefaultReferenceForward,
	}
	for _, option := range options {
		option(&settings)
	}
	if settings.reference.Norm2() == 0 {
		return nil, errors.Wrap(ErrDegeneratePose, "reference forward direction is zero")
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	weights := make([]float64, len(samples))
	for i, sample := range samples {
		weights[i] = Forwardness(sample.FacePose, settings.reference)
	}
	totalWeight := floats.Sum(weights)
	if !(totalWeight > 0) {
		return nil, errors.Wrapf(ErrZeroTotalWeight, "%d samples", len(samples))
	}

	xs, ys := errorComponents(samples)
	return &WeightedOffsetCalibrator{
		offsetCalibrator: offsetCalibrator{
			offset:   r2.Point{X: stat.Mean(xs, weights), Y: stat.Mean(ys, weights)},
			strategy: StrategyWeightedOffset,
		},
		reference:   settings.reference.Normalize(),
		totalWeight: totalWeight,
	}, nil
}

// Reference returns normalized reference forward direction
func (c *WeightedOffsetCalibrator) Reference() r3.Vector {
	return c.reference
}

// TotalWeight returns sum of sample weights the offset was computed with
func (c *WeightedOffsetCalibrator) TotalWeight() float64 {
	return c.totalWeight
}
