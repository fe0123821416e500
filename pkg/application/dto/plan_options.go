package dto

import (
	"fmt"
	"strings"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/forecast"
)

// FallbackPolicy decides what happens to a SKU whose history is too short for the chosen method
type FallbackPolicy string

const (
	// FallbackNaive forecasts the SKU with a moving average instead
	FallbackNaive FallbackPolicy = "naive"
	// FallbackSkip drops the SKU from forecasts and recommendations
	FallbackSkip FallbackPolicy = "skip"
)

// ParseFallbackPolicy converts a policy name into a FallbackPolicy
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case FallbackNaive, "":
		return FallbackNaive, nil
	case FallbackSkip:
		return FallbackSkip, nil
	default:
		return FallbackNaive, fmt.Errorf("invalid fallback policy: %s (expected: naive or skip)", s)
	}
}

// PlanOptions is the explicit configuration of one planning run
type PlanOptions struct {
	Horizon        int                  `json:"horizon" toml:"horizon"`
	Granularity    entities.Granularity `json:"granularity" toml:"granularity"`
	Confidence     float64              `json:"confidence" toml:"confidence"`
	ServiceLevel   float64              `json:"service_level" toml:"service_level"`
	CycleStockDays float64              `json:"cycle_stock_days" toml:"cycle_stock_days"`

	Method         string         `json:"method" toml:"method"`
	SeasonLength   int            `json:"season_length" toml:"season_length"`
	Alpha          float64        `json:"alpha" toml:"alpha"`
	Beta           float64        `json:"beta" toml:"beta"`
	Gamma          float64        `json:"gamma" toml:"gamma"`
	Window         int            `json:"window" toml:"window"`
	FallbackPolicy FallbackPolicy `json:"fallback_policy" toml:"fallback_policy"`
	Workers        int            `json:"workers" toml:"workers"`

	MinSpeedWeight    float64 `json:"min_speed_weight" toml:"min_speed_weight"`
	MaxSpeedWeight    float64 `json:"max_speed_weight" toml:"max_speed_weight"`
	DefaultDistanceKm float64 `json:"default_distance_km" toml:"default_distance_km"`

	MediumUrgencyThreshold float64 `json:"medium_urgency_threshold" toml:"medium_urgency_threshold"`
	HighUrgencyThreshold   float64 `json:"high_urgency_threshold" toml:"high_urgency_threshold"`

	Period entities.Period `json:"period" toml:"-"`
	SKUs   []entities.SKU  `json:"skus,omitempty" toml:"skus"`
}

// DefaultPlanOptions returns the options used when nothing is configured
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		Horizon:                28,
		Granularity:            entities.Daily,
		Confidence:             0.95,
		ServiceLevel:           0.95,
		CycleStockDays:         7,
		Method:                 forecast.MethodHoltWinters,
		SeasonLength:           forecast.DefaultSeasonLength,
		Alpha:                  forecast.DefaultAlpha,
		Beta:                   forecast.DefaultBeta,
		Gamma:                  forecast.DefaultGamma,
		Window:                 forecast.DefaultWindow,
		FallbackPolicy:         FallbackNaive,
		Workers:                4,
		MinSpeedWeight:         0.2,
		MaxSpeedWeight:         0.8,
		DefaultDistanceKm:      0,
		MediumUrgencyThreshold: 0.4,
		HighUrgencyThreshold:   0.75,
	}
}

// OptionsError reports an invalid planning option
type OptionsError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid option '%s': %s", e.Field, e.Reason)
}

// Validate checks every option range
func (o PlanOptions) Validate() error {
	switch {
	case o.Horizon < 1:
		return &OptionsError{Field: "horizon", Reason: "must be at least 1"}
	case o.Confidence <= 0 || o.Confidence >= 1:
		return &OptionsError{Field: "confidence", Reason: "must be between 0 and 1 exclusive"}
	case o.ServiceLevel <= 0 || o.ServiceLevel >= 1:
		return &OptionsError{Field: "service_level", Reason: "must be between 0 and 1 exclusive"}
	case o.CycleStockDays < 0:
		return &OptionsError{Field: "cycle_stock_days", Reason: "cannot be negative"}
	case o.Workers < 1:
		return &OptionsError{Field: "workers", Reason: "must be at least 1"}
	case o.MinSpeedWeight < 0 || o.MaxSpeedWeight > 1 || o.MinSpeedWeight > o.MaxSpeedWeight:
		return &OptionsError{Field: "speed_weight", Reason: "requires 0 <= min <= max <= 1"}
	case o.DefaultDistanceKm < 0:
		return &OptionsError{Field: "default_distance_km", Reason: "cannot be negative"}
	case o.MediumUrgencyThreshold < 0 || o.HighUrgencyThreshold > 1 || o.MediumUrgencyThreshold > o.HighUrgencyThreshold:
		return &OptionsError{Field: "urgency_threshold", Reason: "requires 0 <= medium <= high <= 1"}
	case o.Period.Bounded() && o.Period.End.Before(o.Period.Start):
		return &OptionsError{Field: "period", Reason: "end is before start"}
	}

	if _, err := ParseFallbackPolicy(string(o.FallbackPolicy)); err != nil {
		return &OptionsError{Field: "fallback_policy", Reason: err.Error()}
	}
	if _, err := forecast.New(o.ForecastConfig()); err != nil {
		return &OptionsError{Field: "method", Reason: err.Error()}
	}
	return nil
}

// ForecastConfig selects the forecaster for these options
func (o PlanOptions) ForecastConfig() forecast.Config {
	return forecast.Config{
		Method:       o.Method,
		SeasonLength: o.SeasonLength,
		Alpha:        o.Alpha,
		Beta:         o.Beta,
		Gamma:        o.Gamma,
		Window:       o.Window,
	}
}

// IncludesSKU reports whether a SKU passes the SKU filter; an empty filter includes all
func (o PlanOptions) IncludesSKU(sku entities.SKU) bool {
	if len(o.SKUs) == 0 {
		return true
	}
	for _, s := range o.SKUs {
		if s == sku {
			return true
		}
	}
	return false
}
