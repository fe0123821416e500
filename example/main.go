package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/forecasting"
	"github.com/vsinha/supplyplan/pkg/application/services/kpi"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/application/services/replenishment"
	"github.com/vsinha/supplyplan/pkg/application/services/sourcing"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	scenario := "example/fmcg_basic"
	if len(os.Args) > 1 {
		scenario = os.Args[1]
	}

	ds, err := csv.NewLoader().LoadScenario(scenario)
	if err != nil {
		fmt.Printf("❌ Failed to load %s: %v\n", scenario, err)
		os.Exit(1)
	}
	fmt.Printf("📂 Loaded %s: %d sales rows, %d inventory rows\n\n", scenario, len(ds.Sales), len(ds.Inventory))

	stepByStep(ctx, ds, "COLA-330")
	fullPipeline(ctx, ds)
}

// stepByStep runs each planning stage by hand for a single SKU
func stepByStep(ctx context.Context, ds *entities.Dataset, sku entities.SKU) {
	tables, err := memory.NewTables(ds)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	opts := dto.DefaultPlanOptions()
	opts.Horizon = 14

	report, err := kpi.NewAggregator().AggregateSKUs(ctx, tables, opts.Period, []entities.SKU{sku})
	if err != nil || len(report.KPIs) == 0 {
		fmt.Printf("❌ KPI aggregation failed: %v\n", err)
		return
	}
	k := report.KPIs[0]
	fmt.Printf("📊 %s over %d days\n", sku, k.Days)
	fmt.Printf("  Sold: %.0f units (%s revenue)\n", k.TotalUnitsSold, k.TotalRevenue.StringFixed(2))
	fmt.Printf("  Current stock: %.0f | Days of supply: %s | Turnover: %s\n", k.CurrentStock, k.DaysOfSupply, k.StockTurnover)
	fmt.Println()

	history, _ := tables.Sales.GetSales(sku)
	outcome, err := forecasting.NewService().Forecast(sku, history, opts)
	if err != nil || outcome.Skipped() {
		fmt.Printf("❌ Forecast failed: %v %v\n", err, outcome.Reason)
		return
	}
	fc := outcome.Result
	fmt.Printf("🔮 %s forecast, next %d days:\n", fc.Method, fc.Horizon)
	for p := range fc.Points() {
		fmt.Printf("  %s  %6.1f  [%6.1f, %6.1f]\n", p.Date.Format(entities.DateLayout), p.Predicted, p.Lower, p.Upper)
	}
	fmt.Println()

	rec := replenishment.NewRecommender(replenishment.PolicyFromOptions(opts)).
		Recommend(replenishment.InputFromKPIs(k, fc, true))
	fmt.Printf("📦 Reorder point %.1f, safety stock %.1f, order %.0f units (%s urgency)\n",
		rec.ReorderPoint, rec.SafetyStock, rec.RecommendedOrderQty, rec.Urgency)

	suppliers, _ := tables.Procurement.GetSuppliers(sku)
	lanes, _ := tables.Logistics.GetLanes(sku)
	ranking := sourcing.NewRecommenderFromOptions(opts).Rank(sku, suppliers, lanes, rec.RecommendedOrderQty, rec.UrgencyScore)
	fmt.Println("🚚 Sourcing options:")
	for _, o := range ranking.Options {
		landed := o.LandedUnitCost.Mul(decimal.NewFromFloat(rec.RecommendedOrderQty))
		fmt.Printf("  %-14s %-6s %4.0fd  %s/unit  %s total  score %.2f\n",
			o.SupplierID, o.Mode, o.TotalDays, o.LandedUnitCost.StringFixed(2), landed.StringFixed(2), o.Score)
	}
	fmt.Println()
}

// fullPipeline runs every stage through the orchestrator and prints the pipeline events
func fullPipeline(ctx context.Context, ds *entities.Dataset) {
	store := events.NewInMemoryEventStore()

	result, err := orchestration.NewPlanningOrchestrator(store).Run(ctx, ds, dto.DefaultPlanOptions())
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}

	fmt.Printf("🏁 Run %s planned %d SKUs\n", result.RunID, len(result.KPIs))
	for _, rec := range result.Recommendations {
		fmt.Printf("  %-12s order %6.0f from %-14s by %-6s (%s)\n",
			rec.SKU, rec.RecommendedOrderQty, rec.SupplierID, rec.TransportMode, rec.Urgency)
	}
	for _, issue := range result.Issues {
		fmt.Printf("  ⚠️  %s [%s]: %s\n", issue.SKU, issue.Stage, issue.Reason)
	}

	// the store stamps every event with its run, so the full history can be replayed
	history, _ := store.ReadEvents(result.RunID, 1)
	counts := make(map[string]int)
	for _, e := range history {
		counts[e.Type()]++
	}
	fmt.Printf("📜 %d events recorded for the run\n", len(history))
	for _, t := range events.AllEventTypes {
		if counts[t] > 0 {
			fmt.Printf("  %-24s %d\n", t, counts[t])
		}
	}
}
