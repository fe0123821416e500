package forecasting

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/forecast"
)

// Outcome is the forecasting result of one SKU
type Outcome struct {
	SKU    entities.SKU
	Result *entities.ForecastResult // nil when the SKU was skipped
	Reason error                    // why the SKU fell back or was skipped
}

// Skipped reports whether the SKU produced no forecast
func (o Outcome) Skipped() bool {
	return o.Result == nil
}

// Batch holds one outcome per forecast SKU, in SKU order
type Batch struct {
	Outcomes []Outcome
}

// Results returns the forecasts that were produced, in SKU order
func (b *Batch) Results() []*entities.ForecastResult {
	results := make([]*entities.ForecastResult, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.Result != nil {
			results = append(results, o.Result)
		}
	}
	return results
}

// Get returns the forecast of a SKU, or nil
func (b *Batch) Get(sku entities.SKU) *entities.ForecastResult {
	for _, o := range b.Outcomes {
		if o.SKU == sku {
			return o.Result
		}
	}
	return nil
}

// Service forecasts demand for every SKU with sales history
type Service struct{}

// NewService creates a new forecasting service
func NewService() *Service {
	return &Service{}
}

// ForecastAll fits the configured method to each SKU in sales that passes the SKU filter.
// SKUs are fitted concurrently by up to opts.Workers goroutines; outcomes keep SKU order.
// Insufficient history is handled per SKU according to opts.FallbackPolicy. Any other
// failure, including context cancellation, aborts the batch.
func (s *Service) ForecastAll(ctx context.Context, sales repositories.SalesRepository, opts dto.PlanOptions) (*Batch, error) {
	forecaster, err := forecast.New(opts.ForecastConfig())
	if err != nil {
		return nil, &dto.OptionsError{Field: "method", Reason: err.Error()}
	}

	var skus []entities.SKU
	for _, sku := range sales.GetSKUs() {
		if opts.IncludesSKU(sku) {
			skus = append(skus, sku)
		}
	}

	histories := make([][]*entities.SalesRecord, len(skus))
	for i, sku := range skus {
		if histories[i], err = sales.GetSales(sku); err != nil {
			return nil, fmt.Errorf("failed to read sales for %s: %w", sku, err)
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(skus))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sku := range skus {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := s.forecastSKU(forecaster, sku, histories[i], opts)
			if err != nil {
				return fmt.Errorf("failed to forecast %s: %w", sku, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Batch{Outcomes: outcomes}, nil
}

// Forecast fits one SKU's history; it is ForecastAll for a single series
func (s *Service) Forecast(sku entities.SKU, records []*entities.SalesRecord, opts dto.PlanOptions) (Outcome, error) {
	forecaster, err := forecast.New(opts.ForecastConfig())
	if err != nil {
		return Outcome{}, &dto.OptionsError{Field: "method", Reason: err.Error()}
	}
	return s.forecastSKU(forecaster, sku, records, opts)
}

func (s *Service) forecastSKU(forecaster forecast.Forecaster, sku entities.SKU, records []*entities.SalesRecord, opts dto.PlanOptions) (Outcome, error) {
	series := forecast.BuildSeries(sku, records, opts.Granularity, opts.Period)

	method := forecaster.Name()
	model, err := forecaster.Fit(series)
	var reason error
	if err != nil {
		if !errors.Is(err, entities.ErrInsufficientHistory) {
			return Outcome{}, err
		}
		reason = err
		if opts.FallbackPolicy == dto.FallbackSkip {
			return Outcome{SKU: sku, Reason: reason}, nil
		}

		naive := forecast.NewMovingAverage(opts.Window)
		if model, err = naive.Fit(series); err != nil {
			// nothing to average, e.g. every sale falls outside the period
			return Outcome{SKU: sku, Reason: err}, nil
		}
		method = naive.Name()
	}

	predictions := model.Predict(opts.Horizon, opts.Confidence)
	points := func(yield func(entities.ForecastPoint) bool) {
		for p := range predictions {
			point := entities.ForecastPoint{
				Date:      series.NextPeriod(p.Step),
				Predicted: p.Value,
				Lower:     p.Lower,
				Upper:     p.Upper,
			}
			if !yield(point) {
				return
			}
		}
	}

	result := entities.NewForecastResult(sku, method, opts.Granularity, opts.Horizon, points)
	result.Fallback = reason != nil
	return Outcome{SKU: sku, Result: result, Reason: reason}, nil
}
