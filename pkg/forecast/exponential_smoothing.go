package forecast

// DefaultAlpha is the level smoothing factor used when none is configured
const DefaultAlpha = 0.3

// ExponentialSmoothing is simple exponential smoothing of the level
type ExponentialSmoothing struct {
	Alpha float64
}

// NewExponentialSmoothing creates a forecaster; alpha outside (0, 1] uses DefaultAlpha
func NewExponentialSmoothing(alpha float64) *ExponentialSmoothing {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &ExponentialSmoothing{Alpha: alpha}
}

func (e *ExponentialSmoothing) Name() string         { return MethodExponentialSmoothing }
func (e *ExponentialSmoothing) MinObservations() int { return 2 }

// Fit smooths the level from the first observation onward
func (e *ExponentialSmoothing) Fit(series Series) (Model, error) {
	if err := checkLength(e, series); err != nil {
		return nil, err
	}

	values := series.Values
	level := values[0]
	residuals := make([]float64, 0, len(values)-1)
	for _, y := range values[1:] {
		residuals = append(residuals, y-level)
		level = e.Alpha*y + (1-e.Alpha)*level
	}

	return &flatModel{level: level, sigma: rmse(residuals)}, nil
}
