package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NotApplicable is how an undefined Metric is rendered in text and CSV output
const NotApplicable = "n/a"

// Metric is a derived ratio that may be undefined, such as turnover with no stock on hand.
// An invalid Metric is reported as "not applicable" instead of dividing by zero.
type Metric struct {
	Value float64
	Valid bool
}

// Known wraps a defined value. NaN and infinities collapse to NA.
func Known(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA()
	}
	return Metric{Value: v, Valid: true}
}

// NA returns the not-applicable sentinel
func NA() Metric {
	return Metric{}
}

// Ratio divides num by den, returning NA when den is zero
func Ratio(num, den float64) Metric {
	if den == 0 {
		return NA()
	}
	return Known(num / den)
}

// Or returns the metric value, or fallback when not applicable
func (m Metric) Or(fallback float64) float64 {
	if !m.Valid {
		return fallback
	}
	return m.Value
}

// String renders the value with full precision, or "n/a"
func (m Metric) String() string {
	if !m.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// ParseMetric is the inverse of String
func ParseMetric(s string) (Metric, error) {
	if s == NotApplicable || s == "" {
		return NA(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA(), err
	}
	return Known(v), nil
}

// MarshalJSON renders NA as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = NA()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Known(v)
	return nil
}
