package entities

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

// Granularity is the length of one forecast period
type Granularity int

const (
	Daily Granularity = iota
	Weekly
)

// String method for Granularity enum
func (g Granularity) String() string {
	switch g {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	default:
		return "unknown"
	}
}

// Days returns the number of calendar days in one period
func (g Granularity) Days() int {
	if g == Weekly {
		return 7
	}
	return 1
}

// Next advances a period start date by one period
func (g Granularity) Next(date time.Time) time.Time {
	return date.AddDate(0, 0, g.Days())
}

// Bucket returns the start of the period containing date. Weeks start on Monday.
func (g Granularity) Bucket(date time.Time) time.Time {
	day := Day(date)
	if g != Weekly {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseGranularity converts "day" or "week" into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "d":
		return Daily, nil
	case "week", "weekly", "w":
		return Weekly, nil
	default:
		return Daily, fmt.Errorf("invalid granularity: %s (expected: day or week)", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (g Granularity) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ForecastPoint is the projected demand for one future period
type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted_units"`
	Lower     float64   `json:"lower_bound"`
	Upper     float64   `json:"upper_bound"`
}

// ForecastResult is a finite, restartable sequence of ForecastPoints for one SKU.
// Points are produced lazily each time the sequence is ranged over.
type ForecastResult struct {
	SKU         SKU
	Method      string
	Granularity Granularity
	Horizon     int
	Fallback    bool // produced by the naive fallback after insufficient history

	points iter.Seq[ForecastPoint]
}

// NewForecastResult wraps a point generator. The generator must yield at most horizon points.
func NewForecastResult(sku SKU, method string, granularity Granularity, horizon int, points iter.Seq[ForecastPoint]) *ForecastResult {
	return &ForecastResult{
		SKU:         sku,
		Method:      method,
		Granularity: granularity,
		Horizon:     horizon,
		points:      points,
	}
}

// Points returns the forecast sequence. Each call restarts from the first period.
func (f *ForecastResult) Points() iter.Seq[ForecastPoint] {
	horizon := f.Horizon
	gen := f.points
	return func(yield func(ForecastPoint) bool) {
		if gen == nil {
			return
		}
		n := 0
		for p := range gen {
			if n >= horizon || !yield(p) {
				return
			}
			n++
		}
	}
}

// Collect materialises the sequence
func (f *ForecastResult) Collect() []ForecastPoint {
	return slices.Collect(f.Points())
}

// TotalPredicted sums the point estimates across the horizon
func (f *ForecastResult) TotalPredicted() float64 {
	total := 0.0
	for p := range f.Points() {
		total += p.Predicted
	}
	return total
}

// AvgDailyDemand converts the mean point estimate into units per day
func (f *ForecastResult) AvgDailyDemand() float64 {
	if f.Horizon <= 0 {
		return 0
	}
	return f.TotalPredicted() / float64(f.Horizon*f.Granularity.Days())
}

// InRange reports whether the period starts within [from, to]; zero bounds are open
func (p ForecastPoint) InRange(from, to time.Time) bool {
	return Period{Start: from, End: to}.Contains(p.Date)
}

type forecastResultJSON struct {
	SKU         SKU             `json:"sku"`
	Method      string          `json:"method"`
	Granularity Granularity     `json:"granularity"`
	Horizon     int             `json:"horizon"`
	Fallback    bool            `json:"fallback"`
	Points      []ForecastPoint `json:"points"`
}

// MarshalJSON materialises the points
func (f *ForecastResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(forecastResultJSON{
		SKU:         f.SKU,
		Method:      f.Method,
		Granularity: f.Granularity,
		Horizon:     f.Horizon,
		Fallback:    f.Fallback,
		Points:      f.Collect(),
	})
}

// UnmarshalJSON restores a result whose sequence replays the decoded points
func (f *ForecastResult) UnmarshalJSON(data []byte) error {
	var raw forecastResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = *NewForecastResult(raw.SKU, raw.Method, raw.Granularity, raw.Horizon, slices.Values(raw.Points))
	f.Fallback = raw.Fallback
	return nil
}
