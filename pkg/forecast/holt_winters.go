package forecast

import (
	"iter"

	"gonum.org/v1/gonum/stat"
)

// Holt-Winters defaults
const (
	DefaultBeta         = 0.1
	DefaultGamma        = 0.2
	DefaultSeasonLength = 7
)

// HoltWinters is additive triple exponential smoothing
type HoltWinters struct {
	SeasonLength int
	Alpha        float64
	Beta         float64
	Gamma        float64
}

// NewHoltWinters creates a forecaster; out-of-range parameters fall back to the defaults
func NewHoltWinters(seasonLength int, alpha, beta, gamma float64) *HoltWinters {
	if seasonLength < 2 {
		seasonLength = DefaultSeasonLength
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	if beta <= 0 || beta > 1 {
		beta = DefaultBeta
	}
	if gamma <= 0 || gamma > 1 {
		gamma = DefaultGamma
	}
	return &HoltWinters{SeasonLength: seasonLength, Alpha: alpha, Beta: beta, Gamma: gamma}
}

func (hw *HoltWinters) Name() string { return MethodHoltWinters }

// MinObservations is two full seasons, needed to initialise trend and seasonal indices
func (hw *HoltWinters) MinObservations() int { return 2 * hw.SeasonLength }

// Fit initialises from the first two seasons and smooths across the whole series
func (hw *HoltWinters) Fit(series Series) (Model, error) {
	if err := checkLength(hw, series); err != nil {
		return nil, err
	}

	m := hw.SeasonLength
	values := series.Values

	mean1 := stat.Mean(values[:m], nil)
	mean2 := stat.Mean(values[m:2*m], nil)
	level := mean1
	trend := (mean2 - mean1) / float64(m)

	seasonal := make([]float64, m)
	for i := range m {
		seasonal[i] = ((values[i] - mean1) + (values[m+i] - mean2)) / 2
	}

	residuals := make([]float64, 0, len(values))
	for t, y := range values {
		s := seasonal[t%m]
		residuals = append(residuals, y-(level+trend+s))

		prevLevel := level
		level = hw.Alpha*(y-s) + (1-hw.Alpha)*(level+trend)
		trend = hw.Beta*(level-prevLevel) + (1-hw.Beta)*trend
		seasonal[t%m] = hw.Gamma*(y-level) + (1-hw.Gamma)*s
	}

	return &holtWintersModel{
		level:    level,
		trend:    trend,
		seasonal: seasonal,
		offset:   len(values),
		sigma:    rmse(residuals),
	}, nil
}

type holtWintersModel struct {
	level    float64
	trend    float64
	seasonal []float64
	offset   int // index of the first forecast period within the seasonal cycle
	sigma    float64
}

func (m *holtWintersModel) Predict(horizon int, confidence float64) iter.Seq[Prediction] {
	return bounded(horizon, confidence, m.sigma, func(step int) float64 {
		s := m.seasonal[(m.offset+step-1)%len(m.seasonal)]
		return m.level + float64(step)*m.trend + s
	})
}
