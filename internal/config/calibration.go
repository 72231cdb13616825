package config

import (
	"log/slog"

	"github.com/LdDl/gaze-go/gaze"
	"github.com/pkg/errors"
)

// CalibrationConfig selects calibration strategy and tunes the estimation pipeline.
// Fields omitted from JSON fall back to defaults through Get* methods
type CalibrationConfig struct {
	Strategy         *string     `json:"strategy,omitempty"`
	ReferenceForward *[3]float64 `json:"reference_forward,omitempty"`
	AllowBehindEye   *bool       `json:"allow_behind_eye,omitempty"`
	ClampToScreen    *bool       `json:"clamp_to_screen,omitempty"`

	// Smoothing params
	Smoothing        *bool    `json:"smoothing,omitempty"`
	SmoothingDt      *float64 `json:"smoothing_dt,omitempty"` // seconds between frames
	ProcessNoise     *float64 `json:"process_noise,omitempty"`
	MeasurementNoise *float64 `json:"measurement_noise,omitempty"`
	MaxMisses        *int     `json:"max_misses,omitempty"`

	// Evaluation params
	Folds *int `json:"folds,omitempty"`
}

// DefaultCalibrationConfig returns config with every field set to its default
func DefaultCalibrationConfig() *CalibrationConfig {
	reference := [3]float64{gaze.DefaultReferenceForward.X, gaze.DefaultReferenceForward.Y, gaze.DefaultReferenceForward.Z}
	return &CalibrationConfig{
		Strategy:         ptrString(gaze.StrategyWeightedOffset.String()),
		ReferenceForward: &reference,
		AllowBehindEye:   ptrBool(false),
		ClampToScreen:    ptrBool(true),
		Smoothing:        ptrBool(false),
		SmoothingDt:      ptrFloat64(gaze.DefaultSmootherDt),
		ProcessNoise:     ptrFloat64(gaze.DefaultProcessNoise),
		MeasurementNoise: ptrFloat64(gaze.DefaultMeasurementNoise),
		MaxMisses:        ptrInt(gaze.DefaultMaxMisses),
		Folds:            ptrInt(5),
	}
}

// LoadCalibrationConfig loads config from JSON file. Partial configs are fine
func LoadCalibrationConfig(path string) (*CalibrationConfig, error) {
	cfg := &CalibrationConfig{}
	if err := readJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *CalibrationConfig) Validate() error {
	if c.Strategy != nil {
		if _, err := gaze.ParseStrategy(*c.Strategy); err != nil {
			return err
		}
	}
	if c.ReferenceForward != nil {
		r := *c.ReferenceForward
		if r[0] == 0 && r[1] == 0 && r[2] == 0 {
			return errors.New("reference_forward must be non-zero")
		}
	}
	if c.SmoothingDt != nil && !(*c.SmoothingDt > 0) {
		return errors.Errorf("smoothing_dt must be positive, got %f", *c.SmoothingDt)
	}
	if c.ProcessNoise != nil && !(*c.ProcessNoise > 0) {
		return errors.Errorf("process_noise must be positive, got %f", *c.ProcessNoise)
	}
	if c.MeasurementNoise != nil && !(*c.MeasurementNoise > 0) {
		return errors.Errorf("measurement_noise must be positive, got %f", *c.MeasurementNoise)
	}
	if c.MaxMisses != nil && *c.MaxMisses < 0 {
		return errors.Errorf("max_misses must be non-negative, got %d", *c.MaxMisses)
	}
	if c.Folds != nil && *c.Folds < 2 {
		return errors.Errorf("folds must be at least 2, got %d", *c.Folds)
	}
	return nil
}

// GetStrategy returns configured strategy. Validate guarantees the name parses
func (c *CalibrationConfig) GetStrategy() gaze.Strategy {
	if c.Strategy != nil {
		if strategy, err := gaze.ParseStrategy(*c.Strategy); err == nil {
			return strategy
		}
	}
	return gaze.StrategyWeightedOffset
}

func (c *CalibrationConfig) GetReferenceForward() [3]float64 {
	if c.ReferenceForward != nil {
		return *c.ReferenceForward
	}
	return [3]float64{gaze.DefaultReferenceForward.X, gaze.DefaultReferenceForward.Y, gaze.DefaultReferenceForward.Z}
}

func (c *CalibrationConfig) GetAllowBehindEye() bool {
	if c.AllowBehindEye != nil {
		return *c.AllowBehindEye
	}
	return false
}

func (c *CalibrationConfig) GetClampToScreen() bool {
	if c.ClampToScreen != nil {
		return *c.ClampToScreen
	}
	return true
}

func (c *CalibrationConfig) GetSmoothing() bool {
	if c.Smoothing != nil {
		return *c.Smoothing
	}
	return false
}

func (c *CalibrationConfig) GetSmoothingDt() float64 {
	if c.SmoothingDt != nil {
		return *c.SmoothingDt
	}
	return gaze.DefaultSmootherDt
}

func (c *CalibrationConfig) GetProcessNoise() float64 {
	if c.ProcessNoise != nil {
		return *c.ProcessNoise
	}
	return gaze.DefaultProcessNoise
}

func (c *CalibrationConfig) GetMeasurementNoise() float64 {
	if c.MeasurementNoise != nil {
		return *c.MeasurementNoise
	}
	return gaze.DefaultMeasurementNoise
}

func (c *CalibrationConfig) GetMaxMisses() int {
	if c.MaxMisses != nil {
		return *c.MaxMisses
	}
	return gaze.DefaultMaxMisses
}

func (c *CalibrationConfig) GetFolds() int {
	if c.Folds != nil {
		return *c.Folds
	}
	return 5
}

// WeightedOptions converts config into options of forward-weighted calibrator
func (c *CalibrationConfig) WeightedOptions() []gaze.WeightedOption {
	r := c.GetReferenceForward()
	return []gaze.WeightedOption{gaze.WithReferenceForward(gaze.NewVector(r[0], r[1], r[2]))}
}

// NewPipeline builds estimation pipeline for screen as configured. Nil logger discards output
func (c *CalibrationConfig) NewPipeline(screen gaze.Screen, logger *slog.Logger, options ...gaze.PipelineOption) (*gaze.Pipeline, error) {
	projector, err := gaze.NewProjector(screen, gaze.WithAllowBehindEye(c.GetAllowBehindEye()), gaze.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	pipelineOptions := []gaze.PipelineOption{gaze.WithClamp(c.GetClampToScreen()), gaze.WithPipelineLogger(logger)}
	if c.GetSmoothing() {
		smoother := gaze.NewSmoother(
			c.GetSmoothingDt(),
			gaze.WithSmoothingNoise(c.GetProcessNoise(), c.GetMeasurementNoise()),
			gaze.WithMaxMisses(c.GetMaxMisses()),
		)
		pipelineOptions = append(pipelineOptions, gaze.WithSmoother(smoother))
	}
	return gaze.NewPipeline(projector, append(pipelineOptions, options...)...)
}
