// Package forecast provides interchangeable demand forecasting models.
//
// A Forecaster validates that a Series is long enough and fits a Model. Models produce lazy,
// restartable prediction sequences with confidence bounds that widen with the square root of
// the step. Three models ship with the package:
//
//   - HoltWinters: additive level, trend and seasonality
//   - ExponentialSmoothing: level only
//   - MovingAverage: mean of the trailing window, used as the naive fallback
package forecast

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Method names
const (
	MethodHoltWinters          = "holt_winters"
	MethodExponentialSmoothing = "exponential_smoothing"
	MethodMovingAverage        = "moving_average"
)

// Forecaster fits a model to a series
type Forecaster interface {
	Name() string
	MinObservations() int
	Fit(series Series) (Model, error)
}

// Model projects a fitted series forward
type Model interface {
	// Predict yields exactly horizon predictions, one per step, each time it is ranged over
	Predict(horizon int, confidence float64) iter.Seq[Prediction]
}

// Prediction is the estimate for one future step (1-based)
type Prediction struct {
	Step  int
	Value float64
	Lower float64
	Upper float64
}

// Config selects and parameterises a forecaster
type Config struct {
	Method       string
	SeasonLength int
	Alpha        float64
	Beta         float64
	Gamma        float64
	Window       int
}

// New builds the forecaster named by cfg.Method
func New(cfg Config) (Forecaster, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Method)) {
	case MethodHoltWinters, "holt-winters", "hw", "":
		return NewHoltWinters(cfg.SeasonLength, cfg.Alpha, cfg.Beta, cfg.Gamma), nil
	case MethodExponentialSmoothing, "ses":
		return NewExponentialSmoothing(cfg.Alpha), nil
	case MethodMovingAverage, "naive", "ma":
		return NewMovingAverage(cfg.Window), nil
	default:
		return nil, fmt.Errorf("invalid forecast method: %s (expected: holt_winters, exponential_smoothing, or moving_average)", cfg.Method)
	}
}

// ZScore returns the two-sided standard normal quantile for a confidence level in (0, 1)
func ZScore(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(0.5 + confidence/2)
}

func checkLength(f Forecaster, series Series) error {
	if n := series.Len(); n < f.MinObservations() {
		return &entities.InsufficientHistoryError{
			SKU:          series.SKU,
			Method:       f.Name(),
			Observations: n,
			Required:     f.MinObservations(),
		}
	}
	return nil
}

// rmse is the root mean square of one-step-ahead residuals; zero when there are none
func rmse(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(residuals, residuals) / float64(len(residuals)))
}

// bounded yields clamped predictions around a point forecast function
func bounded(horizon int, confidence, sigma float64, point func(step int) float64) iter.Seq[Prediction] {
	z := ZScore(confidence)
	return func(yield func(Prediction) bool) {
		for h := 1; h <= horizon; h++ {
			value := math.Max(0, point(h))
			width := z * sigma * math.Sqrt(float64(h))
			p := Prediction{
				Step:  h,
				Value: value,
				Lower: math.Max(0, value-width),
				Upper: value + width,
			}
			if !yield(p) {
				return
			}
		}
	}
}
