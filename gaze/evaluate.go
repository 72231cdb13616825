package gaze

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics is accuracy of gaze estimates against their targets.
// MSE and R2 are averaged uniformly over X and Y axes
type Metrics struct {
	Count int
	// MSE is mean squared error per axis, logical units squared
	MSE float64
	// RMSE is square root of MSE
	RMSE float64
	// R2 is coefficient of determination averaged over axes
	R2 float64
	// MeanError is mean Euclidean distance between estimate and target, logical units
	MeanError float64
}

// EvaluateRaw measures uncalibrated gaze points of samples
func EvaluateRaw(samples []CalibrationSample) (Metrics, error) {
	return Evaluate(identityCalibrator{}, samples)
}

// Evaluate measures corrected gaze points of samples
func Evaluate(calibrator Calibrator, samples []CalibrationSample) (Metrics, error) {
	if len(samples) == 0 {
		return Metrics{}, ErrNoSamples
	}
	estimates := make([]r2.Point, len(samples))
	for i, sample := range samples {
		estimates[i] = calibrator.Correct(sample.Gaze)
	}
	return measure(estimates, samples), nil
}

// CrossValidate estimates how strategy generalizes to unseen samples.
// Samples are dealt round-robin into folds so every fold covers the whole capture sequence;
// each fold is corrected by calibrator built on the others and metrics are computed over all held out estimates
func CrossValidate(strategy Strategy, samples []CalibrationSample, folds int, options ...WeightedOption) (Metrics, error) {
	if len(samples) == 0 {
		return Metrics{}, ErrNoSamples
	}
	if folds < 2 || folds > len(samples) {
		return Metrics{}, errors.Wrapf(ErrNotEnoughSamples, "%d folds for %d samples", folds, len(samples))
	}
	estimates := make([]r2.Point, len(samples))
	for fold := 0; fold < folds; fold++ {
		train := make([]CalibrationSample, 0, len(samples))
		for i := range samples {
			if i%folds != fold {
				train = append(train, samples[i])
			}
		}
		calibrator, err := Build(strategy, train, options...)
		if err != nil {
			return Metrics{}, errors.Wrapf(err, "fold %d", fold)
		}
		for i := fold; i < len(samples); i += folds {
			estimates[i] = calibrator.Correct(samples[i].Gaze)
		}
	}
	return measure(estimates, samples), nil
}

func measure(estimates []r2.Point, samples []CalibrationSample) Metrics {
	n := len(samples)
	estX, estY := make([]float64, n), make([]float64, n)
	trueX, trueY := make([]float64, n), make([]float64, n)
	squared := make([]float64, 2*n)
	distances := make([]float64, n)
	for i := range samples {
		estX[i], estY[i] = estimates[i].X, estimates[i].Y
		trueX[i], trueY[i] = samples[i].Target.X, samples[i].Target.Y
		d := estimates[i].Sub(samples[i].Target)
		squared[2*i], squared[2*i+1] = d.X*d.X, d.Y*d.Y
		distances[i] = d.Norm()
	}
	mse := stat.Mean(squared, nil)
	return Metrics{
		Count:     n,
		MSE:       mse,
		RMSE:      math.Sqrt(mse),
		R2:        (rSquared(estX, trueX) + rSquared(estY, trueY)) / 2,
		MeanError: floats.Sum(distances) / float64(n),
	}
}

// rSquared follows the usual convention for constant targets: 1 for exact estimates, 0 otherwise
func rSquared(estimates, values []float64) float64 {
	if len(values) < 2 || stat.Variance(values, nil) == 0 {
		if floats.Equal(estimates, values) {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(estimates, values, nil)
}

type identityCalibrator struct{}

func (identityCalibrator) Correct(raw r2.Point) r2.Point { return raw }

func (identityCalibrator) Strategy() Strategy { return Strategy(math.MaxUint16) }
