package orchestration

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

func findRecommendation(t *testing.T, result *dto.PlanResult, sku entities.SKU) *entities.Recommendation {
	t.Helper()
	for _, rec := range result.Recommendations {
		if rec.SKU == sku {
			return rec
		}
	}
	t.Fatalf("No recommendation for %s", sku)
	return nil
}

func TestPlanningOrchestrator_Run_FMCGScenario(t *testing.T) {
	store := events.NewInMemoryEventStore()
	orchestrator := NewPlanningOrchestrator(store)

	result, err := orchestrator.Run(context.Background(), testhelpers.BuildFMCGTestData(), dto.DefaultPlanOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := uuid.Parse(result.RunID); err != nil {
		t.Errorf("Expected a UUID run id, got %q", result.RunID)
	}
	if len(result.KPIs) != 4 {
		t.Errorf("Expected 4 KPI sets, got %d", len(result.KPIs))
	}
	if len(result.Forecasts) != 3 {
		t.Errorf("Expected 3 forecasts, got %d", len(result.Forecasts))
	}
	if len(result.Recommendations) != 4 {
		t.Fatalf("Expected 4 recommendations, got %d", len(result.Recommendations))
	}

	for _, rec := range result.Recommendations {
		if rec.RecommendedOrderQty < 0 {
			t.Errorf("Expected non-negative order quantity for %s, got %v", rec.SKU, rec.RecommendedOrderQty)
		}
	}

	t.Run("seasonal SKU is sourced from a ranked option", func(t *testing.T) {
		cola := findRecommendation(t, result, testhelpers.SKUCola)
		if cola.Fallback {
			t.Error("Expected a full forecast")
		}
		if cola.SupplierID == "" {
			t.Fatal("Expected a supplier")
		}
		var options int
		for _, o := range result.SourcingOptions {
			if o.SKU != testhelpers.SKUCola {
				continue
			}
			options++
			if options == 1 && (o.SupplierID != cola.SupplierID || o.Mode != cola.TransportMode) {
				t.Errorf("Expected best option %s/%s to be chosen, got %s/%s", o.SupplierID, o.Mode, cola.SupplierID, cola.TransportMode)
			}
			if options == 1 && o.TotalDays != cola.LeadTimeDays {
				t.Errorf("Expected lead time %v from the chosen option, got %v", o.TotalDays, cola.LeadTimeDays)
			}
		}
		// two suppliers times one SKU lane and two global lanes
		if options != 6 {
			t.Errorf("Expected 6 sourcing options, got %d", options)
		}
	})

	t.Run("SKU without suppliers keeps reorder fields", func(t *testing.T) {
		soap := findRecommendation(t, result, testhelpers.SKUSoap)
		if soap.SupplierID != "" {
			t.Errorf("Expected no supplier, got %s", soap.SupplierID)
		}
		if !soap.NeedsOrder() {
			t.Error("Expected an order for an out-of-stock SKU with demand")
		}
		for _, note := range []string{entities.NoteNoSupplier, entities.NoteNaiveForecast} {
			if !slices.Contains(soap.Notes, note) {
				t.Errorf("Expected note %s, got %v", note, soap.Notes)
			}
		}
		if soap.Urgency != entities.HighUrgency {
			t.Errorf("Expected high urgency, got %s", soap.Urgency)
		}
	})

	t.Run("SKU without demand orders nothing", func(t *testing.T) {
		tea := findRecommendation(t, result, testhelpers.SKUTea)
		if tea.NeedsOrder() || !slices.Contains(tea.Notes, entities.NoteNoDemand) {
			t.Errorf("Expected no order with %s note, got %v %v", entities.NoteNoDemand, tea.RecommendedOrderQty, tea.Notes)
		}
	})

	t.Run("issues and events", func(t *testing.T) {
		stages := make(map[entities.SKU][]string)
		for _, issue := range result.Issues {
			stages[issue.SKU] = append(stages[issue.SKU], issue.Stage)
		}
		if !slices.Contains(stages[testhelpers.SKUChips], dto.StageForecast) {
			t.Errorf("Expected a forecast issue for %s, got %v", testhelpers.SKUChips, stages[testhelpers.SKUChips])
		}
		if !slices.Contains(stages[testhelpers.SKUSoap], dto.StageSourcing) {
			t.Errorf("Expected a sourcing issue for %s, got %v", testhelpers.SKUSoap, stages[testhelpers.SKUSoap])
		}

		recorded, err := store.ReadEvents(result.RunID, 0)
		if err != nil {
			t.Fatalf("ReadEvents failed: %v", err)
		}
		if len(recorded) == 0 {
			t.Fatal("Expected events for the run")
		}
		if recorded[0].Type() != events.DatasetValidatedEvent {
			t.Errorf("Expected first event %s, got %s", events.DatasetValidatedEvent, recorded[0].Type())
		}
		if last := recorded[len(recorded)-1]; last.Type() != events.RunCompletedEvent {
			t.Errorf("Expected last event %s, got %s", events.RunCompletedEvent, last.Type())
		}

		counts := make(map[string]int)
		for _, e := range recorded {
			counts[e.Type()]++
		}
		if counts[events.RecommendationComputedEvent] != 4 {
			t.Errorf("Expected 4 recommendation events, got %d", counts[events.RecommendationComputedEvent])
		}
		if counts[events.ForecastFallbackEvent] != 2 {
			t.Errorf("Expected 2 fallback events, got %d", counts[events.ForecastFallbackEvent])
		}
	})
}

func TestPlanningOrchestrator_Run_SkipPolicy(t *testing.T) {
	opts := dto.DefaultPlanOptions()
	opts.FallbackPolicy = dto.FallbackSkip

	result, err := NewPlanningOrchestrator(nil).Run(context.Background(), testhelpers.BuildFMCGTestData(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var skus []entities.SKU
	for _, rec := range result.Recommendations {
		skus = append(skus, rec.SKU)
	}
	expected := []entities.SKU{testhelpers.SKUCola, testhelpers.SKUTea}
	if !slices.Equal(skus, expected) {
		t.Errorf("Expected recommendations for %v, got %v", expected, skus)
	}
	if len(result.KPIs) != 4 {
		t.Errorf("Expected skipped SKUs to keep their KPIs, got %d KPI sets", len(result.KPIs))
	}
}

func TestPlanningOrchestrator_Run_SKUFilter(t *testing.T) {
	opts := dto.DefaultPlanOptions()
	opts.SKUs = []entities.SKU{testhelpers.SKUChips}

	result, err := NewPlanningOrchestrator(nil).Run(context.Background(), testhelpers.BuildFMCGTestData(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.KPIs) != 1 || len(result.Forecasts) != 1 || len(result.Recommendations) != 1 {
		t.Errorf("Expected one SKU throughout, got %d KPIs, %d forecasts, %d recommendations",
			len(result.KPIs), len(result.Forecasts), len(result.Recommendations))
	}
}

func TestPlanningOrchestrator_Run_InvalidOptions(t *testing.T) {
	opts := dto.DefaultPlanOptions()
	opts.ServiceLevel = 1.5

	_, err := NewPlanningOrchestrator(nil).Run(context.Background(), testhelpers.BuildFMCGTestData(), opts)
	var optErr *dto.OptionsError
	if !errors.As(err, &optErr) || optErr.Field != "service_level" {
		t.Errorf("Expected OptionsError on service_level, got %v", err)
	}
}

func TestPlanningOrchestrator_Run_DuplicateSales(t *testing.T) {
	ds := testhelpers.BuildFMCGTestData()
	ds.Sales = append(ds.Sales, testhelpers.MustSales(testhelpers.SKUCola, testhelpers.Day(3), 1, ""))

	_, err := NewPlanningOrchestrator(nil).Run(context.Background(), ds, dto.DefaultPlanOptions())
	var formatErr *entities.DataFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected DataFormatError, got %v", err)
	}
	if formatErr.Dataset != "sales" {
		t.Errorf("Expected sales dataset, got %s", formatErr.Dataset)
	}
}

func TestPlanningOrchestrator_Run_ReconciliationWarnings(t *testing.T) {
	ds := testhelpers.BuildFMCGTestData()
	// closing stock of day 5 no longer matches the opening stock of day 6
	ds.Inventory[5].ClosingStock += 3

	result, err := NewPlanningOrchestrator(nil).Run(context.Background(), ds, dto.DefaultPlanOptions())
	if err != nil {
		t.Fatalf("Expected reconciliation mismatches not to fail the run, got %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a reconciliation warning")
	}
}

func TestPlanningOrchestrator_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := events.NewInMemoryEventStore()
	if _, err := NewPlanningOrchestrator(store).Run(ctx, testhelpers.BuildFMCGTestData(), dto.DefaultPlanOptions()); err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) == 0 || all[len(all)-1].Type() != events.RunFailedEvent {
		t.Error("Expected the run to end with a failure event")
	}
}
