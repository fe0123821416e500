package events

import (
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const (
	RunStartedEvent   = "run.started"
	RunCompletedEvent = "run.completed"
	RunFailedEvent    = "run.failed"

	DatasetValidatedEvent = "dataset.validated"

	ForecastCompletedEvent = "forecast.completed"
	ForecastFallbackEvent  = "forecast.fallback"
	SKUSkippedEvent        = "sku.skipped"

	RecommendationComputedEvent = "recommendation.computed"
)

// AllEventTypes lists every event published by the planning pipeline
var AllEventTypes = []string{
	RunStartedEvent,
	RunCompletedEvent,
	RunFailedEvent,
	DatasetValidatedEvent,
	ForecastCompletedEvent,
	ForecastFallbackEvent,
	SKUSkippedEvent,
	RecommendationComputedEvent,
}

type RunStarted struct {
	SKUCount int         `json:"sku_count"`
	Options  interface{} `json:"options"`
}

type RunCompleted struct {
	SKUCount        int           `json:"sku_count"`
	Recommendations int           `json:"recommendations"`
	Issues          int           `json:"issues"`
	Duration        time.Duration `json:"duration_ns"`
}

type RunFailed struct {
	Error string `json:"error"`
}

type DatasetValidated struct {
	Rows     map[string]int `json:"rows"`
	Warnings []string       `json:"warnings,omitempty"`
}

type ForecastCompleted struct {
	SKU            entities.SKU `json:"sku"`
	Method         string       `json:"method"`
	Horizon        int          `json:"horizon"`
	TotalPredicted float64      `json:"total_predicted"`
}

type ForecastFallback struct {
	SKU    entities.SKU `json:"sku"`
	Method string       `json:"method"`
	Reason string       `json:"reason"`
}

type SKUSkipped struct {
	SKU    entities.SKU `json:"sku"`
	Reason string       `json:"reason"`
}

type RecommendationComputed struct {
	SKU           entities.SKU           `json:"sku"`
	OrderQty      float64                `json:"recommended_order_qty"`
	SupplierID    entities.SupplierID    `json:"supplier_id"`
	TransportMode entities.TransportMode `json:"transport_mode"`
	Urgency       entities.UrgencyLevel  `json:"urgency"`
}

func NewRunStartedEvent(runID string, skuCount int, options interface{}) Event {
	return NewEvent(RunStartedEvent, runID, RunStarted{SKUCount: skuCount, Options: options})
}

func NewRunCompletedEvent(runID string, skuCount, recommendations, issues int, duration time.Duration) Event {
	return NewEvent(RunCompletedEvent, runID, RunCompleted{
		SKUCount:        skuCount,
		Recommendations: recommendations,
		Issues:          issues,
		Duration:        duration,
	})
}

func NewRunFailedEvent(runID string, err error) Event {
	return NewEvent(RunFailedEvent, runID, RunFailed{Error: err.Error()})
}

func NewDatasetValidatedEvent(runID string, ds *entities.Dataset, warnings []string) Event {
	rows := make(map[string]int, len(entities.AllDatasetKinds))
	for _, kind := range entities.AllDatasetKinds {
		rows[kind.String()] = ds.Len(kind)
	}
	return NewEvent(DatasetValidatedEvent, runID, DatasetValidated{Rows: rows, Warnings: warnings})
}

func NewForecastCompletedEvent(runID string, forecast *entities.ForecastResult) Event {
	return NewEvent(ForecastCompletedEvent, runID, ForecastCompleted{
		SKU:            forecast.SKU,
		Method:         forecast.Method,
		Horizon:        forecast.Horizon,
		TotalPredicted: forecast.TotalPredicted(),
	})
}

func NewForecastFallbackEvent(runID string, sku entities.SKU, method string, reason error) Event {
	return NewEvent(ForecastFallbackEvent, runID, ForecastFallback{SKU: sku, Method: method, Reason: reason.Error()})
}

func NewSKUSkippedEvent(runID string, sku entities.SKU, reason error) Event {
	return NewEvent(SKUSkippedEvent, runID, SKUSkipped{SKU: sku, Reason: reason.Error()})
}

func NewRecommendationComputedEvent(runID string, rec *entities.Recommendation) Event {
	return NewEvent(RecommendationComputedEvent, runID, RecommendationComputed{
		SKU:           rec.SKU,
		OrderQty:      rec.RecommendedOrderQty,
		SupplierID:    rec.SupplierID,
		TransportMode: rec.TransportMode,
		Urgency:       rec.Urgency,
	})
}
