package gaze

import "github.com/pkg/errors"

var (
	// ErrNoSamples is returned when calibrator is built from empty sample list
	ErrNoSamples = errors.New("no calibration samples")
	// ErrZeroTotalWeight is returned when every sample got zero forwardness weight
	ErrZeroTotalWeight = errors.New("total calibration weight is zero: no sample was captured facing the reference direction")
	// ErrNotEnoughSamples is returned when strategy needs more samples than provided
	ErrNotEnoughSamples = errors.New("not enough calibration samples")
	// ErrSingularFit is returned when samples do not determine a unique regression
	ErrSingularFit = errors.New("calibration samples are degenerate, can't fit mapping")
	// ErrUnknownStrategy is returned for unsupported calibration strategy name
	ErrUnknownStrategy = errors.New("unknown calibration strategy")
	// ErrInvalidScreen is returned when device constants (density, scale, size) are missing
	ErrInvalidScreen = errors.New("invalid screen geometry")
	// ErrDegeneratePose is returned when reference direction can't be normalized
	ErrDegeneratePose = errors.New("degenerate direction")
)
