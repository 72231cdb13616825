package gaze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

func TestEvaluateRaw(t *testing.T) {
	samples := []CalibrationSample{
		{Target: NewPoint(0, 0), Gaze: NewPoint(3, 4)},
		{Target: NewPoint(10, 20), Gaze: NewPoint(10, 20)},
	}
	metrics, err := EvaluateRaw(samples)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.Count != 2 {
		t.Errorf("Wrong count: %d", metrics.Count)
	}
	// (9 + 16 + 0 + 0) / 4
	if math.Abs(metrics.MSE-6.25) > eps {
		t.Errorf("Wrong MSE: %v, correct answer: %v", metrics.MSE, 6.25)
	}
	if math.Abs(metrics.RMSE-2.5) > eps {
		t.Errorf("Wrong RMSE: %v, correct answer: %v", metrics.RMSE, 2.5)
	}
	if math.Abs(metrics.MeanError-2.5) > eps {
		t.Errorf("Wrong mean error: %v, correct answer: %v", metrics.MeanError, 2.5)
	}
}

func TestEvaluateCalibrated(t *testing.T) {
	samples := samplesWithError(calibrationGrid, NewPoint(-15, 22), IdentityPose())
	raw, err := EvaluateRaw(samples)
	if err != nil {
		t.Fatal(err)
	}
	calibrator, err := NewMeanOffsetCalibrator(samples)
	if err != nil {
		t.Fatal(err)
	}
	calibrated, err := Evaluate(calibrator, samples)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(raw.MeanError-math.Hypot(15, 22)) > eps {
		t.Errorf("Wrong raw mean error: %v", raw.MeanError)
	}
	if calibrated.MSE > eps || calibrated.MeanError > eps {
		t.Errorf("Calibrated estimates should be exact: %+v", calibrated)
	}
	if math.Abs(calibrated.R2-1) > eps {
		t.Errorf("Wrong R2: %v", calibrated.R2)
	}
	if raw.R2 >= calibrated.R2 {
		t.Errorf("Calibration should improve R2: raw %v, calibrated %v", raw.R2, calibrated.R2)
	}
}

func TestEvaluateConstantTargets(t *testing.T) {
	target := NewPoint(200, 300)
	exact := []CalibrationSample{
		{Target: target, Gaze: target},
		{Target: target, Gaze: target},
	}
	metrics, err := EvaluateRaw(exact)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.R2 != 1 {
		t.Errorf("Exact estimates of constant target should give R2 = 1, got %v", metrics.R2)
	}
	off := []CalibrationSample{
		{Target: target, Gaze: NewPoint(201, 300)},
		{Target: target, Gaze: NewPoint(199, 300)},
	}
	metrics, err = EvaluateRaw(off)
	if err != nil {
		t.Fatal(err)
	}
	// X axis scores 0, Y axis is exact
	if math.Abs(metrics.R2-0.5) > eps {
		t.Errorf("Wrong R2: %v, correct answer: %v", metrics.R2, 0.5)
	}
	if math.IsNaN(metrics.R2) {
		t.Error("R2 must not be NaN")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if _, err := EvaluateRaw(nil); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Expected ErrNoSamples, got %v", err)
	}
	if _, err := CrossValidate(StrategyMeanOffset, nil, 3); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Expected ErrNoSamples, got %v", err)
	}
}

func TestCrossValidate(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	samples := make([]CalibrationSample, 0, 27)
	for i := 0; i < 3; i++ {
		for _, target := range calibrationGrid {
			noise := NewPoint(40+rnd.NormFloat64()*5, 25+rnd.NormFloat64()*5)
			samples = append(samples, CalibrationSample{Target: target, Gaze: target.Add(noise), FacePose: IdentityPose()})
		}
	}
	raw, err := EvaluateRaw(samples)
	if err != nil {
		t.Fatal(err)
	}
	for _, strategy := range Strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			metrics, err := CrossValidate(strategy, samples, 3)
			if err != nil {
				t.Fatal(err)
			}
			if metrics.Count != len(samples) {
				t.Errorf("Every sample should be held out once, got %d of %d", metrics.Count, len(samples))
			}
			if metrics.MeanError >= raw.MeanError {
				t.Errorf("Held out error %v should be below raw error %v", metrics.MeanError, raw.MeanError)
			}
		})
	}
}

func TestCrossValidateFolds(t *testing.T) {
	samples := samplesWithError(calibrationGrid, NewPoint(1, 1), IdentityPose())
	for _, folds := range []int{0, 1, len(samples) + 1} {
		if _, err := CrossValidate(StrategyMeanOffset, samples, folds); !errors.Is(err, ErrNotEnoughSamples) {
			t.Errorf("%d folds: expected ErrNotEnoughSamples, got %v", folds, err)
		}
	}
	// Leave-one-out with constant error is still exact
	metrics, err := CrossValidate(StrategyMeanOffset, samples, len(samples))
	if err != nil {
		t.Fatal(err)
	}
	if metrics.MeanError > eps {
		t.Errorf("Wrong mean error: %v", metrics.MeanError)
	}
	// Training folds of linear strategy become too small
	if _, err := CrossValidate(StrategyLinear, samples[:3], 3); !errors.Is(err, ErrNotEnoughSamples) {
		t.Errorf("Expected ErrNotEnoughSamples from linear fold, got %v", err)
	}
}
