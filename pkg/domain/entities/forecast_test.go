package entities

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"
)

func TestMetric(t *testing.T) {
	tests := []struct {
		name     string
		metric   Metric
		valid    bool
		rendered string
		json     string
	}{
		{"known", Known(2.5), true, "2.5", "2.5"},
		{"ratio", Ratio(30, 87.5), true, Known(30 / 87.5).String(), ""},
		{"zero denominator", Ratio(30, 0), false, NotApplicable, "null"},
		{"nan", Known(math.NaN()), false, NotApplicable, "null"},
		{"infinity", Known(math.Inf(1)), false, NotApplicable, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, tt.metric.Valid)
			}
			if got := tt.metric.String(); got != tt.rendered {
				t.Errorf("Expected %q, got %q", tt.rendered, got)
			}

			parsed, err := ParseMetric(tt.metric.String())
			if err != nil {
				t.Fatalf("ParseMetric failed: %v", err)
			}
			if parsed != tt.metric {
				t.Errorf("Expected %v after parsing, got %v", tt.metric, parsed)
			}

			if tt.json == "" {
				return
			}
			data, err := json.Marshal(tt.metric)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Expected JSON %s, got %s", tt.json, data)
			}
		})
	}

	if got := NA().Or(7); got != 7 {
		t.Errorf("Expected fallback 7, got %v", got)
	}
}

func TestGranularity_Bucket(t *testing.T) {
	wednesday := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	if got := Weekly.Bucket(wednesday); !got.Equal(monday) {
		t.Errorf("Expected week of %v to start %v, got %v", wednesday, monday, got)
	}
	if got := Weekly.Bucket(sunday); !got.Equal(monday) {
		t.Errorf("Expected Sunday to belong to the week starting %v, got %v", monday, got)
	}
	if got := Daily.Bucket(wednesday); !got.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected daily bucket to truncate to the day, got %v", got)
	}
	if got := Weekly.Next(monday); !got.Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("Expected next week to start %v, got %v", monday.AddDate(0, 0, 7), got)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"day", "Daily", " d "} {
		if g, err := ParseGranularity(s); err != nil || g != Daily {
			t.Errorf("Expected %q to parse as day, got %v (%v)", s, g, err)
		}
	}
	for _, s := range []string{"week", "WEEKLY", "w"} {
		if g, err := ParseGranularity(s); err != nil || g != Weekly {
			t.Errorf("Expected %q to parse as week, got %v (%v)", s, g, err)
		}
	}
	if _, err := ParseGranularity("month"); err == nil {
		t.Error("Expected error for month")
	}
}

func TestForecastResult_RestartableAndBounded(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	gen := func(yield func(ForecastPoint) bool) {
		calls++
		for i := 0; ; i++ {
			p := ForecastPoint{Date: start.AddDate(0, 0, i), Predicted: 10, Lower: 8, Upper: 12}
			if !yield(p) {
				return
			}
		}
	}

	fc := NewForecastResult("COLA-330", "moving_average", Daily, 3, gen)

	first := fc.Collect()
	second := fc.Collect()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Expected 3 points on every pass, got %d and %d", len(first), len(second))
	}
	if calls != 2 {
		t.Errorf("Expected the generator to restart for each pass, got %d calls", calls)
	}
	if !slices.Equal(first, second) {
		t.Error("Expected identical points on every pass")
	}
	if fc.TotalPredicted() != 30 {
		t.Errorf("Expected total 30, got %v", fc.TotalPredicted())
	}

	weekly := NewForecastResult("COLA-330", "moving_average", Weekly, 2, gen)
	if got := weekly.AvgDailyDemand(); math.Abs(got-10.0/7) > 1e-9 {
		t.Errorf("Expected %v units per day, got %v", 10.0/7, got)
	}
}

func TestForecastResult_JSON(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	points := []ForecastPoint{
		{Date: start, Predicted: 10, Lower: 8, Upper: 12},
		{Date: start.AddDate(0, 0, 7), Predicted: 11, Lower: 9, Upper: 13},
	}
	fc := NewForecastResult("CHIPS-150", "holt_winters", Weekly, 2, slices.Values(points))
	fc.Fallback = true

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ForecastResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.SKU != fc.SKU || decoded.Granularity != Weekly || !decoded.Fallback {
		t.Errorf("Unexpected header after round trip: %+v", decoded)
	}
	got := decoded.Collect()
	if len(got) != 2 || !got[1].Date.Equal(points[1].Date) || got[1].Predicted != 11 {
		t.Errorf("Unexpected points after round trip: %+v", got)
	}
}

func TestPeriod_Contains(t *testing.T) {
	from := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	p := Period{Start: from, End: to}

	tests := []struct {
		date     time.Time
		expected bool
	}{
		{from, true},
		{to, true},
		{from.AddDate(0, 0, -1), false},
		{to.AddDate(0, 0, 1), false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.date); got != tt.expected {
			t.Errorf("Contains(%v): expected %v, got %v", tt.date, tt.expected, got)
		}
	}

	if !(Period{}).Contains(from) {
		t.Error("Expected an open period to contain every date")
	}
}

func TestPeriod_Truncate(t *testing.T) {
	p := Period{
		Start: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC),
	}.Truncate()

	if !p.Start.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start 2024-01-05, got %v", p.Start)
	}
	if !p.End.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected end 2024-01-10, got %v", p.End)
	}
	if !p.Contains(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected the truncated period to contain its first day")
	}

	open := Period{End: time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)}.Truncate()
	if !open.Start.IsZero() {
		t.Errorf("Expected an open start to stay open, got %v", open.Start)
	}
}
