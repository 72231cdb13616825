package gaze

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

const (
	// DefaultSmootherDt is frame interval of face tracker (60 Hz)
	DefaultSmootherDt = 1.0 / 60.0
	// DefaultProcessNoise is standard deviation of gaze acceleration, logical units per second squared
	DefaultProcessNoise = 400.0
	// DefaultMeasurementNoise is standard deviation of raw estimate, logical units
	DefaultMeasurementNoise = 15.0
	// DefaultMaxMisses is number of dropped frames Hold keeps predicting through
	DefaultMaxMisses = 5
)

// Smoother filters stream of gaze points with constant velocity Kalman filter.
// It is not safe for concurrent use
type Smoother struct {
	dt               float64
	processNoise     float64
	measurementNoise float64
	maxMisses        int

	tracker *kalman_filter.Kalman2D
	current r2.Point
	misses  int
}

// SmootherOption configures Smoother
type SmootherOption func(*Smoother)

// WithSmoothingNoise sets standard deviations of acceleration and measurement
func WithSmoothingNoise(process, measurement float64) SmootherOption {
	return func(s *Smoother) {
		s.processNoise = process
		s.measurementNoise = measurement
	}
}

// WithMaxMisses sets number of consecutive dropped frames to predict through
func WithMaxMisses(maxMisses int) SmootherOption {
	return func(s *Smoother) {
		s.maxMisses = maxMisses
	}
}

// NewSmoother creates smoother for points arriving every dt seconds.
// Non-positive dt falls back to DefaultSmootherDt
func NewSmoother(dt float64, options ...SmootherOption) *Smoother {
	if dt <= 0 {
		dt = DefaultSmootherDt
	}
	s := &Smoother{
		dt:               dt,
		processNoise:     DefaultProcessNoise,
		measurementNoise: DefaultMeasurementNoise,
		maxMisses:        DefaultMaxMisses,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Update feeds a new raw point and returns the smoothed one.
// First point after creation or Reset is returned as is
func (s *Smoother) Update(p r2.Point) (r2.Point, error) {
	if s.tracker == nil {
		/* No control input: gaze has no known acceleration */
		s.tracker = kalman_filter.NewKalman2D(s.dt, 0, 0, s.processNoise, s.measurementNoise, s.measurementNoise, kalman_filter.WithState2D(p.X, p.Y))
		s.current = p
		s.misses = 0
		return p, nil
	}
	s.tracker.Predict()
	err := s.tracker.Update(p.X, p.Y)
	if err != nil {
		return s.current, errors.Wrap(err, "Can't update gaze smoother")
	}
	stateX, stateY := s.tracker.GetState()
	s.current = r2.Point{X: stateX, Y: stateY}
	s.misses = 0
	return s.current, nil
}

// Hold extrapolates through a frame without estimate.
// Returns false once more than maxMisses consecutive frames have been held or nothing was observed yet;
// the last known point is returned then
func (s *Smoother) Hold() (r2.Point, bool) {
	if s.tracker == nil || s.misses >= s.maxMisses {
		return s.current, false
	}
	s.tracker.Predict()
	stateX, stateY := s.tracker.GetState()
	s.current = r2.Point{X: stateX, Y: stateY}
	s.misses++
	return s.current, true
}

// Current returns last smoothed point
func (s *Smoother) Current() r2.Point {
	return s.current
}

// Misses returns number of consecutive held frames
func (s *Smoother) Misses() int {
	return s.misses
}

// Reset forgets filter state. Next Update starts a new track
func (s *Smoother) Reset() {
	s.tracker = nil
	s.current = r2.Point{}
	s.misses = 0
}
