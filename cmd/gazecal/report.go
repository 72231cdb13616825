package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/LdDl/gaze-go/gaze"
	"github.com/LdDl/gaze-go/internal/store"
	"gonum.org/v1/gonum/stat"
)

func (a *app) report(w io.Writer, session *store.Session) error {
	samples := session.CalibrationSamples()
	logical := a.profile.Screen().LogicalSize()
	fmt.Fprintf(w, "Session %s: user=%q device=%q samples=%d\n", session.ID, session.Username, session.Device, len(samples))
	fmt.Fprintf(w, "Screen %s: %.0fx%.0f logical units\n\n", a.profile.Name, logical.X, logical.Y)

	raw, err := gaze.EvaluateRaw(samples)
	if err != nil {
		return err
	}

	calibrators := make(map[gaze.Strategy]gaze.Calibrator, len(a.strategies))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tCORRECTION\tRMSE\tR2\tMEAN ERR\tCV RMSE\tCV MEAN ERR")
	fmt.Fprintf(tw, "raw\t-\t%.2f\t%.3f\t%.2f\t-\t-\n", raw.RMSE, raw.R2, raw.MeanError)
	for _, strategy := range a.strategies {
		calibrator, err := gaze.Build(strategy, samples, a.cfg.WeightedOptions()...)
		if err != nil {
			a.logger.Warn("can't build calibrator", "strategy", strategy.String(), "error", err)
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\n", strategy, "n/a")
			continue
		}
		calibrators[strategy] = calibrator
		fitted, err := gaze.Evaluate(calibrator, samples)
		if err != nil {
			return err
		}
		cv := "-\t-"
		validated, err := gaze.CrossValidate(strategy, samples, a.folds, a.cfg.WeightedOptions()...)
		if err != nil {
			a.logger.Warn("cross validation failed", "strategy", strategy.String(), "folds", a.folds, "error", err)
		} else {
			cv = fmt.Sprintf("%.2f\t%.2f", validated.RMSE, validated.MeanError)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.3f\t%.2f\t%s\n", strategy, describe(calibrator), fitted.RMSE, fitted.R2, fitted.MeanError, cv)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nMean error by head position:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "POSITION\tN\tPITCH\tYAW\traw")
	for _, strategy := range a.strategies {
		if calibrators[strategy] != nil {
			fmt.Fprintf(tw, "\t%s", strategy)
		}
	}
	fmt.Fprintln(tw)
	for _, position := range gaze.HeadPositions {
		subset := session.SamplesAt(position)
		if len(subset) == 0 {
			continue
		}
		pitch, yaw := meanHeadAngles(subset)
		rawSubset, err := gaze.EvaluateRaw(subset)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.2f", position, len(subset), pitch, yaw, rawSubset.MeanError)
		for _, strategy := range a.strategies {
			calibrator := calibrators[strategy]
			if calibrator == nil {
				continue
			}
			metrics, err := gaze.Evaluate(calibrator, subset)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "\t%.2f", metrics.MeanError)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// describe formats correction applied by calibrator
func describe(calibrator gaze.Calibrator) string {
	switch c := calibrator.(type) {
	case gaze.OffsetCalibrator:
		offset := c.Offset()
		return fmt.Sprintf("offset (%.2f, %.2f)", offset.X, offset.Y)
	case *gaze.LinearCalibrator:
		k := c.Coefficients()
		return fmt.Sprintf("x=%.3fx%+.3fy%+.2f y=%.3fx%+.3fy%+.2f", k[0][0], k[0][1], k[0][2], k[1][0], k[1][1], k[1][2])
	default:
		return "-"
	}
}

// meanHeadAngles returns mean pitch and yaw of face poses, degrees
func meanHeadAngles(samples []gaze.CalibrationSample) (float64, float64) {
	pitches := make([]float64, len(samples))
	yaws := make([]float64, len(samples))
	for i := range samples {
		_, pitches[i], yaws[i] = samples[i].FacePose.EulerAngles()
	}
	return stat.Mean(pitches, nil), stat.Mean(yaws, nil)
}
