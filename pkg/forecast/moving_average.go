package forecast

import (
	"iter"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the moving average window used when none is configured
const DefaultWindow = 7

// MovingAverage forecasts the mean of the trailing window as a flat line
type MovingAverage struct {
	Window int
}

// NewMovingAverage creates a moving average forecaster; window <= 0 uses DefaultWindow
func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MovingAverage{Window: window}
}

func (m *MovingAverage) Name() string         { return MethodMovingAverage }
func (m *MovingAverage) MinObservations() int { return 1 }

// Fit computes the trailing mean and the spread of one-step-ahead errors
func (m *MovingAverage) Fit(series Series) (Model, error) {
	if err := checkLength(m, series); err != nil {
		return nil, err
	}

	values := series.Values
	residuals := make([]float64, 0, len(values)-1)
	for t := 1; t < len(values); t++ {
		residuals = append(residuals, values[t]-stat.Mean(trailing(values[:t], m.Window), nil))
	}

	return &flatModel{
		level: stat.Mean(trailing(values, m.Window), nil),
		sigma: rmse(residuals),
	}, nil
}

func trailing(values []float64, window int) []float64 {
	if len(values) > window {
		return values[len(values)-window:]
	}
	return values
}

// flatModel repeats a single level for every step
type flatModel struct {
	level float64
	sigma float64
}

func (f *flatModel) Predict(horizon int, confidence float64) iter.Seq[Prediction] {
	return bounded(horizon, confidence, f.sigma, func(int) float64 { return f.level })
}
