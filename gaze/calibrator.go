package gaze

import (
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// CalibrationSample is a single fixation trial: the target user was asked to look at,
// the raw gaze estimate recorded meanwhile and the head pose at capture time
type CalibrationSample struct {
	Target   r2.Point
	Gaze     r2.Point
	FacePose Pose
}

// Error returns estimation error vector of the sample (gaze - target)
func (sample CalibrationSample) Error() r2.Point {
	return sample.Gaze.Sub(sample.Target)
}

// Calibrator maps raw gaze point to corrected one.
// Implementations are immutable once built and safe for concurrent use.
type Calibrator interface {
	// Correct returns corrected gaze point
	Correct(raw r2.Point) r2.Point
	// Strategy returns strategy the calibrator has been built with
	Strategy() Strategy
}

// OffsetCalibrator is a Calibrator correcting a constant bias
type OffsetCalibrator interface {
	Calibrator
	// Offset returns bias subtracted from raw points
	Offset() r2.Point
}

// Strategy is type of calibration
type Strategy uint16

const (
	// StrategyMeanOffset averages error vectors of every sample equally
	StrategyMeanOffset Strategy = iota
	// StrategyWeightedOffset averages error vectors weighted by head forwardness
	StrategyWeightedOffset
	// StrategyLinear fits affine mapping from raw gaze to target with least squares
	StrategyLinear
)

// Strategies lists every supported strategy
var Strategies = []Strategy{StrategyMeanOffset, StrategyWeightedOffset, StrategyLinear}

// String returns strategy name as used in configuration
func (strategy Strategy) String() string {
	switch strategy {
	case StrategyMeanOffset:
		return "mean"
	case StrategyWeightedOffset:
		return "weighted"
	case StrategyLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseStrategy parses strategy name (case-insensitive)
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mean", "average", "mean_offset":
		return StrategyMeanOffset, nil
	case "weighted", "weighted_offset":
		return StrategyWeightedOffset, nil
	case "linear", "linear_regression":
		return StrategyLinear, nil
	default:
		return 0, errors.Wrapf(ErrUnknownStrategy, "'%s'", name)
	}
}

// Build creates calibrator of given strategy from the whole sample list.
// Options are used by strategies which support them and ignored by the others
func Build(strategy Strategy, samples []CalibrationSample, options ...WeightedOption) (Calibrator, error) {
	var (
		calibrator Calibrator
		err        error
	)
	switch strategy {
	case StrategyMeanOffset:
		calibrator, err = NewMeanOffsetCalibrator(samples)
	case StrategyWeightedOffset:
		calibrator, err = NewWeightedOffsetCalibrator(samples, options...)
	case StrategyLinear:
		calibrator, err = NewLinearCalibrator(samples)
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "strategy %d", strategy)
	}
	if err != nil {
		// Do not leak typed nil pointer through the interface
		return nil, err
	}
	return calibrator, nil
}

// errorComponents splits error vectors of samples into X and Y series
func errorComponents(samples []CalibrationSample) ([]float64, []float64) {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, sample := range samples {
		e := sample.Error()
		xs[i] = e.X
		ys[i] = e.Y
	}
	return xs, ys
}

// offsetCalibrator applies constant offset. Shared by offset-based strategies
type offsetCalibrator struct {
	offset   r2.Point
	strategy Strategy
}

// Correct subtracts offset from raw point
func (c *offsetCalibrator) Correct(raw r2.Point) r2.Point {
	return raw.Sub(c.offset)
}

// Offset returns estimated bias
func (c *offsetCalibrator) Offset() r2.Point {
	return c.offset
}

// Strategy returns calibration strategy
func (c *offsetCalibrator) Strategy() Strategy {
	return c.strategy
}
