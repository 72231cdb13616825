package gaze

import (
	"log/slog"
	"sync/atomic"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Pipeline turns pose frames of one face tracker into screen points:
// projection, calibration, clamping to screen bounds and optional smoothing.
//
// Process must be driven by a single goroutine. SetCalibrator may be called from any goroutine:
// calibrator is swapped wholesale, so every frame is corrected either by the old one or by the new one
type Pipeline struct {
	projector  *Projector
	calibrator atomic.Pointer[calibratorBox]
	clamp      bool
	smoother   *Smoother
	logger     *slog.Logger
}

// calibratorBox lets interface value live behind atomic.Pointer
type calibratorBox struct {
	calibrator Calibrator
}

// PipelineOption configures Pipeline
type PipelineOption func(*Pipeline)

// WithCalibrator sets initial calibrator
func WithCalibrator(calibrator Calibrator) PipelineOption {
	return func(p *Pipeline) {
		p.SetCalibrator(calibrator)
	}
}

// WithClamp toggles clamping of output to screen bounds (enabled by default)
func WithClamp(clamp bool) PipelineOption {
	return func(p *Pipeline) {
		p.clamp = clamp
	}
}

// WithSmoother enables smoothing of output points
func WithSmoother(smoother *Smoother) PipelineOption {
	return func(p *Pipeline) {
		p.smoother = smoother
	}
}

// WithPipelineLogger sets logger
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates pipeline on top of projector. Without calibrator raw points are emitted
func NewPipeline(projector *Projector, options ...PipelineOption) (*Pipeline, error) {
	if projector == nil {
		return nil, errors.New("projector is required")
	}
	p := &Pipeline{
		projector: projector,
		clamp:     true,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// SetCalibrator replaces calibrator. Nil disables correction
func (p *Pipeline) SetCalibrator(calibrator Calibrator) {
	if calibrator == nil {
		p.calibrator.Store(nil)
		return
	}
	p.calibrator.Store(&calibratorBox{calibrator: calibrator})
	p.logger.Info("calibrator replaced", "strategy", calibrator.Strategy().String())
}

// Calibrator returns current calibrator or nil
func (p *Pipeline) Calibrator() Calibrator {
	box := p.calibrator.Load()
	if box == nil {
		return nil
	}
	return box.calibrator
}

// Process estimates screen point for a frame.
// When gaze does not hit the screen the smoother (if any) holds the previous point for a few frames;
// false is returned once there is nothing to show
func (p *Pipeline) Process(headPose, eyeLocalPose Pose) (r2.Point, bool) {
	point, ok := p.projector.Estimate(headPose, eyeLocalPose)
	if !ok {
		if p.smoother != nil {
			return p.smoother.Hold()
		}
		return r2.Point{}, false
	}
	if box := p.calibrator.Load(); box != nil {
		point = box.calibrator.Correct(point)
	}
	if p.clamp {
		point = p.projector.Screen().Clamp(point)
	}
	if p.smoother != nil {
		smoothed, err := p.smoother.Update(point)
		if err != nil {
			p.logger.Warn("can't smooth gaze point", "error", err)
			p.smoother.Reset()
			return point, true
		}
		point = smoothed
	}
	return point, true
}

// Reset drops smoothing state, e.g. when face tracking is lost
func (p *Pipeline) Reset() {
	if p.smoother != nil {
		p.smoother.Reset()
	}
}
