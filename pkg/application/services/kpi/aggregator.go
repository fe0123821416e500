package kpi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// Report holds one KPI set per SKU, sorted by SKU, and the overall rollup
type Report struct {
	KPIs    []*entities.KPISet
	Summary entities.KPISummary
}

// Aggregator computes descriptive KPIs from the source tables
type Aggregator struct{}

// NewAggregator creates a new KPI aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Universe returns every SKU seen in sales or inventory, sorted
func Universe(tables repositories.Tables) []entities.SKU {
	seen := make(map[entities.SKU]bool)
	var skus []entities.SKU
	for _, list := range [][]entities.SKU{tables.Sales.GetSKUs(), tables.Inventory.GetSKUs()} {
		for _, sku := range list {
			if !seen[sku] {
				seen[sku] = true
				skus = append(skus, sku)
			}
		}
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}

// Aggregate computes KPIs for every SKU in the tables
func (a *Aggregator) Aggregate(ctx context.Context, tables repositories.Tables, period entities.Period) (*Report, error) {
	return a.AggregateSKUs(ctx, tables, period, Universe(tables))
}

// AggregateSKUs computes KPIs for the given SKUs over an inclusive period
func (a *Aggregator) AggregateSKUs(ctx context.Context, tables repositories.Tables, period entities.Period, skus []entities.SKU) (*Report, error) {
	window, err := a.resolvePeriod(tables, period)
	if err != nil {
		return nil, err
	}

	report := &Report{KPIs: make([]*entities.KPISet, 0, len(skus))}
	for _, sku := range skus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kpis, err := a.aggregateSKU(tables, sku, window)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate KPIs for %s: %w", sku, err)
		}
		report.KPIs = append(report.KPIs, kpis)
	}

	summary, err := a.summarize(tables, report.KPIs)
	if err != nil {
		return nil, err
	}
	report.Summary = summary
	return report, nil
}

// resolvePeriod fills open period bounds with the first and last observed sales or inventory date
func (a *Aggregator) resolvePeriod(tables repositories.Tables, period entities.Period) (entities.Period, error) {
	period = period.Truncate()
	if period.Bounded() {
		return period, nil
	}

	sales, err := tables.Sales.GetAllSales()
	if err != nil {
		return period, fmt.Errorf("failed to read sales: %w", err)
	}
	inventory, err := tables.Inventory.GetAllInventory()
	if err != nil {
		return period, fmt.Errorf("failed to read inventory: %w", err)
	}

	var first, last time.Time
	observe := func(d time.Time) {
		if !period.Contains(d) {
			return
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}
	for _, r := range sales {
		observe(r.Date)
	}
	for _, r := range inventory {
		observe(r.Date)
	}

	resolved := period
	if resolved.Start.IsZero() {
		resolved.Start = first
	}
	if resolved.End.IsZero() {
		resolved.End = last
	}
	return resolved, nil
}

func periodDays(p entities.Period) int {
	if !p.Bounded() {
		return 1
	}
	days := int(p.End.Sub(p.Start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func (a *Aggregator) aggregateSKU(tables repositories.Tables, sku entities.SKU, period entities.Period) (*entities.KPISet, error) {
	sales, err := tables.Sales.GetSales(sku)
	if err != nil {
		return nil, err
	}
	inventory, err := tables.Inventory.GetInventory(sku)
	if err != nil {
		return nil, err
	}
	suppliers, err := tables.Procurement.GetSuppliers(sku)
	if err != nil {
		return nil, err
	}
	lanes, err := tables.Logistics.GetLanes(sku)
	if err != nil {
		return nil, err
	}

	days := periodDays(period)
	kpis := &entities.KPISet{
		SKU:          sku,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		Days:         days,
		TotalRevenue: decimal.Zero,
	}

	daily := make([]float64, days)
	for _, r := range sales {
		if !period.Contains(r.Date) {
			continue
		}
		kpis.TotalUnitsSold += r.UnitsSold
		kpis.TotalRevenue = kpis.TotalRevenue.Add(r.Revenue())
		if idx := int(r.Date.Sub(period.Start).Hours() / 24); idx >= 0 && idx < days {
			daily[idx] += r.UnitsSold
		}
	}
	kpis.AvgDailySales = kpis.TotalUnitsSold / float64(days)
	if days > 1 {
		kpis.DailySalesStdDev = stat.StdDev(daily, nil)
	}

	a.inventoryKPIs(kpis, inventory, period)

	kpis.DaysOfSupply = entities.Ratio(kpis.CurrentStock, kpis.AvgDailySales)
	if kpis.DaysOfSupply.Valid && kpis.DaysOfSupply.Value < 0 {
		kpis.DaysOfSupply = entities.Known(0)
	}

	if len(suppliers) > 0 {
		leadTimes := make([]float64, len(suppliers))
		for i, s := range suppliers {
			leadTimes[i] = s.LeadTimeDays
		}
		kpis.AvgLeadTime = entities.Known(stat.Mean(leadTimes, nil))
		if len(leadTimes) > 1 {
			kpis.LeadTimeStdDev = stat.StdDev(leadTimes, nil)
		}
	}

	if len(lanes) > 0 {
		deliveries := make([]float64, len(lanes))
		tripCost := decimal.Zero
		units := 0.0
		for i, l := range lanes {
			deliveries[i] = l.DeliveryTimeDays
			tripCost = tripCost.Add(l.TripCost())
			units += l.UnitsShipped
		}
		kpis.AvgDeliveryTime = entities.Known(stat.Mean(deliveries, nil))
		kpis.LogisticsCostPerUnit = entities.Ratio(tripCost.InexactFloat64(), units)
	}

	return kpis, nil
}

// inventoryKPIs fills average stock, current stock, turnover and stockout days
func (a *Aggregator) inventoryKPIs(kpis *entities.KPISet, inventory []*entities.InventoryRecord, period entities.Period) {
	var (
		onHand  []float64
		current *entities.InventoryRecord
	)
	for _, r := range inventory {
		if !period.Contains(r.Date) {
			continue
		}
		onHand = append(onHand, r.AverageOnHand())
		current = r
		if r.ClosingStock <= 0 {
			kpis.StockoutDays++
		}
	}
	if current == nil && len(inventory) > 0 {
		current = inventory[len(inventory)-1]
	}
	if current != nil {
		kpis.CurrentStock = current.ClosingStock
	}

	if len(onHand) == 0 {
		kpis.StockTurnover = entities.NA()
		return
	}
	kpis.AvgStock = stat.Mean(onHand, nil)
	if kpis.AvgStock <= 0 {
		kpis.StockTurnover = entities.NA()
		return
	}
	kpis.StockTurnover = entities.Ratio(kpis.TotalUnitsSold, kpis.AvgStock)
}

func (a *Aggregator) summarize(tables repositories.Tables, kpis []*entities.KPISet) (entities.KPISummary, error) {
	summary := entities.KPISummary{SKUCount: len(kpis), TotalRevenue: decimal.Zero}
	if len(kpis) == 0 {
		return summary, nil
	}

	inUniverse := make(map[entities.SKU]bool, len(kpis))
	avgStock := 0.0
	atRisk := 0
	for _, k := range kpis {
		inUniverse[k.SKU] = true
		summary.TotalUnitsSold += k.TotalUnitsSold
		summary.TotalRevenue = summary.TotalRevenue.Add(k.TotalRevenue)
		avgStock += k.AvgStock
		if k.AtRisk() {
			atRisk++
		}
	}
	summary.AvgInventoryPerSKU = avgStock / float64(len(kpis))
	summary.StockoutRiskPct = 100 * float64(atRisk) / float64(len(kpis))

	procurement, err := tables.Procurement.GetAllProcurement()
	if err != nil {
		return summary, fmt.Errorf("failed to read procurement: %w", err)
	}
	var leadTimes []float64
	for _, r := range procurement {
		if inUniverse[r.SKU] {
			leadTimes = append(leadTimes, r.LeadTimeDays)
		}
	}
	if len(leadTimes) > 0 {
		summary.AvgLeadTimeDays = entities.Known(stat.Mean(leadTimes, nil))
	}

	logistics, err := tables.Logistics.GetAllLogistics()
	if err != nil {
		return summary, fmt.Errorf("failed to read logistics: %w", err)
	}
	var deliveries []float64
	for _, r := range logistics {
		if r.IsGlobal() || inUniverse[r.SKU] {
			deliveries = append(deliveries, r.DeliveryTimeDays)
		}
	}
	if len(deliveries) > 0 {
		summary.AvgDeliveryTimeDays = entities.Known(stat.Mean(deliveries, nil))
	}

	return summary, nil
}
