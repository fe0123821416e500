package orchestration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/forecasting"
	"github.com/vsinha/supplyplan/pkg/application/services/kpi"
	"github.com/vsinha/supplyplan/pkg/application/services/replenishment"
	"github.com/vsinha/supplyplan/pkg/application/services/sourcing"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/domain/services"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

// PlanningOrchestrator runs the planning pipeline:
// validate options, validate dataset, KPIs, forecasts, reorder advice, then sourcing
type PlanningOrchestrator struct {
	validator  *services.DatasetValidator
	aggregator *kpi.Aggregator
	forecaster *forecasting.Service
	eventStore events.EventStore
	now        func() time.Time
}

// NewPlanningOrchestrator creates a new planning orchestrator. eventStore may be nil.
func NewPlanningOrchestrator(eventStore events.EventStore) *PlanningOrchestrator {
	return &PlanningOrchestrator{
		validator:  services.NewDatasetValidator(),
		aggregator: kpi.NewAggregator(),
		forecaster: forecasting.NewService(),
		eventStore: eventStore,
		now:        time.Now,
	}
}

// Run plans a dataset. Options and duplicate keys are checked before any work is done;
// problems affecting a single SKU are reported in the result's issues instead of failing the run.
func (po *PlanningOrchestrator) Run(ctx context.Context, ds *entities.Dataset, opts dto.PlanOptions) (*dto.PlanResult, error) {
	opts.Period = opts.Period.Truncate()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	validation := po.validator.Validate(ds)
	if validation.HasErrors() {
		return nil, fmt.Errorf("dataset validation failed: %w", duplicateError(validation))
	}

	tables, err := memory.NewTables(ds)
	if err != nil {
		return nil, err
	}

	result := &dto.PlanResult{
		RunID:       uuid.NewString(),
		GeneratedAt: po.now().UTC(),
		Options:     opts,
		Warnings:    validation.Warnings,
	}
	po.publish(events.NewDatasetValidatedEvent(result.RunID, ds, validation.Warnings))

	if err := po.plan(ctx, tables, result); err != nil {
		po.publish(events.NewRunFailedEvent(result.RunID, err))
		return nil, err
	}

	po.publish(events.NewRunCompletedEvent(result.RunID, len(result.KPIs), len(result.Recommendations),
		len(result.Issues), po.now().UTC().Sub(result.GeneratedAt)))
	return result, nil
}

func (po *PlanningOrchestrator) plan(ctx context.Context, tables repositories.Tables, result *dto.PlanResult) error {
	opts := result.Options

	var skus []entities.SKU
	for _, sku := range kpi.Universe(tables) {
		if opts.IncludesSKU(sku) {
			skus = append(skus, sku)
		}
	}
	po.publish(events.NewRunStartedEvent(result.RunID, len(skus), opts))

	// Step 1: descriptive KPIs
	report, err := po.aggregator.AggregateSKUs(ctx, tables, opts.Period, skus)
	if err != nil {
		return fmt.Errorf("failed to aggregate KPIs: %w", err)
	}
	result.KPIs = report.KPIs
	result.Summary = report.Summary

	// Step 2: demand forecasts for SKUs with sales
	batch, err := po.forecaster.ForecastAll(ctx, tables.Sales, opts)
	if err != nil {
		return fmt.Errorf("failed to forecast demand: %w", err)
	}
	skipped := make(map[entities.SKU]bool)
	for _, outcome := range batch.Outcomes {
		switch {
		case outcome.Skipped():
			skipped[outcome.SKU] = true
			result.Issues = append(result.Issues, dto.Issue{SKU: outcome.SKU, Stage: dto.StageForecast, Reason: outcome.Reason.Error()})
			po.publish(events.NewSKUSkippedEvent(result.RunID, outcome.SKU, outcome.Reason))
		case outcome.Result.Fallback:
			result.Issues = append(result.Issues, dto.Issue{
				SKU:    outcome.SKU,
				Stage:  dto.StageForecast,
				Reason: fmt.Sprintf("forecast with %s: %v", outcome.Result.Method, outcome.Reason),
			})
			po.publish(events.NewForecastFallbackEvent(result.RunID, outcome.SKU, outcome.Result.Method, outcome.Reason))
		}
		if outcome.Result != nil {
			po.publish(events.NewForecastCompletedEvent(result.RunID, outcome.Result))
		}
	}
	result.Forecasts = batch.Results()

	// Steps 3 and 4: reorder advice, then the supplier and lane to order from
	recommender := replenishment.NewRecommender(replenishment.PolicyFromOptions(opts))
	sourcer := sourcing.NewRecommenderFromOptions(opts)
	for _, k := range report.KPIs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if skipped[k.SKU] {
			continue
		}

		rec, ranking, err := po.recommend(tables, recommender, sourcer, k, batch.Get(k.SKU))
		if err != nil {
			return fmt.Errorf("failed to recommend %s: %w", k.SKU, err)
		}
		for _, note := range ranking.Notes {
			rec.AddNote(note)
			if note == entities.NoteNoSupplier && rec.NeedsOrder() {
				result.Issues = append(result.Issues, dto.Issue{SKU: k.SKU, Stage: dto.StageSourcing, Reason: "no supplier can replenish this SKU"})
			}
		}

		result.Recommendations = append(result.Recommendations, rec)
		result.SourcingOptions = append(result.SourcingOptions, ranking.Options...)
		po.publish(events.NewRecommendationComputedEvent(result.RunID, rec))
	}

	return nil
}

// recommend sizes the order with the mean supplier lead time, ranks the sourcing options at
// that urgency, then resizes the order with the chosen option's total lead time
func (po *PlanningOrchestrator) recommend(
	tables repositories.Tables,
	recommender *replenishment.Recommender,
	sourcer *sourcing.Recommender,
	kpis *entities.KPISet,
	fc *entities.ForecastResult,
) (*entities.Recommendation, sourcing.Ranking, error) {
	inventory, err := tables.Inventory.GetInventory(kpis.SKU)
	if err != nil {
		return nil, sourcing.Ranking{}, err
	}
	suppliers, err := tables.Procurement.GetSuppliers(kpis.SKU)
	if err != nil {
		return nil, sourcing.Ranking{}, err
	}
	lanes, err := tables.Logistics.GetLanes(kpis.SKU)
	if err != nil {
		return nil, sourcing.Ranking{}, err
	}

	in := replenishment.InputFromKPIs(kpis, fc, len(inventory) > 0)
	baseline := recommender.Recommend(in)

	ranking := sourcer.Rank(kpis.SKU, suppliers, lanes, baseline.RecommendedOrderQty, baseline.UrgencyScore)
	best, ok := ranking.Best()
	if !ok {
		return baseline, ranking, nil
	}

	in.LeadTimeDays = best.TotalDays
	rec := recommender.Recommend(in)
	rec.SupplierID = best.SupplierID
	rec.TransportMode = best.Mode
	return rec, ranking, nil
}

func (po *PlanningOrchestrator) publish(event events.Event) {
	if po.eventStore == nil {
		return
	}
	if err := po.eventStore.AppendEvent(event.RunID(), event); err != nil {
		log.Printf("⚠️  Failed to publish %s event: %v", event.Type(), err)
	}
}

// duplicateError reports the first duplicate key found by validation
func duplicateError(v *services.ValidationResult) error {
	kind, keys := entities.SalesDataset, v.DuplicateSales
	if len(keys) == 0 {
		kind, keys = entities.InventoryDataset, v.DuplicateInventory
	}
	if len(keys) == 0 {
		return fmt.Errorf("%v", v.Errors)
	}
	return &entities.DataFormatError{
		Dataset: kind.String(),
		Column:  "date",
		Value:   keys[0].Date.Format(entities.DateLayout),
		Reason:  fmt.Sprintf("duplicate record for sku %s (%d duplicate keys in total)", keys[0].SKU, len(v.DuplicateSales)+len(v.DuplicateInventory)),
	}
}
