package dto

import (
	"slices"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Issue is a per-SKU problem that did not stop the run
type Issue struct {
	SKU    entities.SKU `json:"sku"`
	Stage  string       `json:"stage"`
	Reason string       `json:"reason"`
}

// Pipeline stages reported in issues
const (
	StageForecast = "forecast"
	StageReorder  = "reorder"
	StageSourcing = "sourcing"
)

// PlanResult contains the complete output of a planning run
type PlanResult struct {
	RunID           string                     `json:"run_id"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Options         PlanOptions                `json:"options"`
	KPIs            []*entities.KPISet         `json:"kpis"`
	Summary         entities.KPISummary        `json:"summary"`
	Forecasts       []*entities.ForecastResult `json:"forecasts"`
	Recommendations []*entities.Recommendation `json:"recommendations"`
	SourcingOptions []entities.SourcingOption  `json:"sourcing_options"`
	Issues          []Issue                    `json:"issues,omitempty"`
	Warnings        []string                   `json:"warnings,omitempty"`
}

// Report returns the exportable tables of the run
func (r *PlanResult) Report() entities.PlanReport {
	return entities.PlanReport{
		KPIs:            r.KPIs,
		Summary:         r.Summary,
		Forecasts:       r.Forecasts,
		Recommendations: r.Recommendations,
		Options:         r.SourcingOptions,
	}
}

// FilterOptions narrows a result to selected SKUs, suppliers and a date range.
// Empty fields do not filter.
type FilterOptions struct {
	SKUs      []entities.SKU
	Suppliers []entities.SupplierID
	From      time.Time
	To        time.Time
}

// IsZero reports whether no filter is set
func (f FilterOptions) IsZero() bool {
	return len(f.SKUs) == 0 && len(f.Suppliers) == 0 && f.From.IsZero() && f.To.IsZero()
}

// Filter returns a copy of the result restricted by the filter options.
// The supplier filter applies to recommendations and sourcing options; the date range applies to
// forecast points. SKU filtering applies to every table. The summary is left as computed.
func (r *PlanResult) Filter(f FilterOptions) *PlanResult {
	if f.IsZero() {
		return r
	}

	skus := make(map[entities.SKU]bool, len(f.SKUs))
	for _, s := range f.SKUs {
		skus[s] = true
	}
	suppliers := make(map[entities.SupplierID]bool, len(f.Suppliers))
	for _, s := range f.Suppliers {
		suppliers[s] = true
	}
	skuOK := func(sku entities.SKU) bool { return len(skus) == 0 || skus[sku] }
	supplierOK := func(id entities.SupplierID) bool { return len(suppliers) == 0 || suppliers[id] }

	out := *r
	out.KPIs = nil
	out.Forecasts = nil
	out.Recommendations = nil
	out.SourcingOptions = nil
	out.Issues = nil

	for _, k := range r.KPIs {
		if skuOK(k.SKU) {
			out.KPIs = append(out.KPIs, k)
		}
	}
	for _, fc := range r.Forecasts {
		if skuOK(fc.SKU) {
			out.Forecasts = append(out.Forecasts, windowForecast(fc, f.From, f.To))
		}
	}
	for _, rec := range r.Recommendations {
		if skuOK(rec.SKU) && supplierOK(rec.SupplierID) {
			out.Recommendations = append(out.Recommendations, rec)
		}
	}
	for _, opt := range r.SourcingOptions {
		if skuOK(opt.SKU) && supplierOK(opt.SupplierID) {
			out.SourcingOptions = append(out.SourcingOptions, opt)
		}
	}
	for _, issue := range r.Issues {
		if skuOK(issue.SKU) {
			out.Issues = append(out.Issues, issue)
		}
	}
	return &out
}

// windowForecast restricts a forecast to points starting within [from, to]
func windowForecast(fc *entities.ForecastResult, from, to time.Time) *entities.ForecastResult {
	if from.IsZero() && to.IsZero() {
		return fc
	}

	var points []entities.ForecastPoint
	for p := range fc.Points() {
		if p.InRange(from, to) {
			points = append(points, p)
		}
	}

	windowed := entities.NewForecastResult(fc.SKU, fc.Method, fc.Granularity, len(points), slices.Values(points))
	windowed.Fallback = fc.Fallback
	return windowed
}
