package gaze

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/stat"
)

// MeanOffsetCalibrator corrects gaze by the unweighted mean of per-sample error vectors.
// It implements OffsetCalibrator interface.
type MeanOffsetCalibrator struct {
	offsetCalibrator
}

// NewMeanOffsetCalibrator creates calibrator from non-empty sample list
func NewMeanOffsetCalibrator(samples []CalibrationSample) (*MeanOffsetCalibrator, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	xs, ys := errorComponents(samples)
	return &MeanOffsetCalibrator{
		offsetCalibrator: offsetCalibrator{
			offset:   r2.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)},
			strategy: StrategyMeanOffset,
		},
	}, nil
}
