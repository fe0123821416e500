package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

// Scenario SKUs
const (
	SKUCola  entities.SKU = "COLA-330"  // four weeks of weekly-seasonal sales, two suppliers
	SKUChips entities.SKU = "CHIPS-150" // eight days of flat sales, one supplier
	SKUSoap  entities.SKU = "SOAP-500"  // three days of sales, too short for seasonal models
	SKUTea   entities.SKU = "TEA-100"   // stock but no sales
)

// ScenarioStart is the first sales date of the FMCG scenario (a Monday)
var ScenarioStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Day returns the scenario date n days after ScenarioStart
func Day(n int) time.Time {
	return ScenarioStart.AddDate(0, 0, n)
}

// MustSales is a helper for tests - panics on validation error
func MustSales(sku entities.SKU, date time.Time, units float64, price string) *entities.SalesRecord {
	var unitPrice decimal.NullDecimal
	if price != "" {
		unitPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	record, err := entities.NewSalesRecord(sku, date, units, unitPrice)
	if err != nil {
		panic(err)
	}
	return record
}

// MustInventory is a helper for tests - panics on validation error
func MustInventory(sku entities.SKU, date time.Time, opening, closing float64) *entities.InventoryRecord {
	record, err := entities.NewInventoryRecord(sku, date, opening, closing)
	if err != nil {
		panic(err)
	}
	return record
}

// MustProcurement is a helper for tests - panics on validation error
func MustProcurement(sku entities.SKU, supplier string, leadTime float64, unitCost string) *entities.ProcurementRecord {
	record, err := entities.NewProcurementRecord(sku, entities.SupplierID(supplier), leadTime, decimal.RequireFromString(unitCost))
	if err != nil {
		panic(err)
	}
	return record
}

// MustLane is a helper for tests - panics on validation error. An empty sku creates a global lane.
func MustLane(sku entities.SKU, mode entities.TransportMode, deliveryDays float64, costPerKm string, distanceKm float64) *entities.LogisticsRecord {
	shipment := ""
	if sku == "" {
		shipment = "LANE-" + mode.String()
	}
	record, err := entities.NewLogisticsRecord(sku, shipment, mode, deliveryDays, decimal.RequireFromString(costPerKm))
	if err != nil {
		panic(err)
	}
	record.DistanceKm = distanceKm
	return record
}

// colaPattern is one week of cola demand starting on Monday
var colaPattern = []float64{20, 22, 25, 24, 30, 45, 40}

// BuildFMCGTestData builds a small multi-SKU supply chain scenario
func BuildFMCGTestData() *entities.Dataset {
	ds := &entities.Dataset{}

	for d := 0; d < 28; d++ {
		ds.Sales = append(ds.Sales, MustSales(SKUCola, Day(d), colaPattern[d%7], "1.20"))
	}
	for d := 0; d < 8; d++ {
		ds.Sales = append(ds.Sales, MustSales(SKUChips, Day(20+d), 10, "2.50"))
	}
	for d := 0; d < 3; d++ {
		ds.Sales = append(ds.Sales, MustSales(SKUSoap, Day(25+d), 4, ""))
	}

	colaStock := 600.0
	for d := 0; d < 28; d++ {
		closing := colaStock - colaPattern[d%7]
		ds.Inventory = append(ds.Inventory, MustInventory(SKUCola, Day(d), colaStock, closing))
		colaStock = closing
	}
	ds.Inventory = append(ds.Inventory,
		MustInventory(SKUChips, Day(27), 40, 30),
		MustInventory(SKUSoap, Day(27), 12, 0),
		MustInventory(SKUTea, Day(27), 75, 75),
	)

	ds.Procurement = []*entities.ProcurementRecord{
		MustProcurement(SKUCola, "SUP-CHEAP", 7, "0.80"),
		MustProcurement(SKUCola, "SUP-FAST", 2, "1.00"),
		MustProcurement(SKUChips, "SUP-CHEAP", 5, "1.40"),
		MustProcurement(SKUTea, "SUP-FAST", 3, "2.00"),
	}

	ds.Logistics = []*entities.LogisticsRecord{
		MustLane("", entities.Road, 2, "1.00", 100),
		MustLane("", entities.Rail, 4, "0.50", 100),
		MustLane(SKUCola, entities.Air, 1, "5.00", 100),
	}

	return ds
}

// BuildFMCGTables indexes the FMCG scenario into in-memory repositories
func BuildFMCGTables() repositories.Tables {
	tables, err := memory.NewTables(BuildFMCGTestData())
	if err != nil {
		panic(err)
	}
	return tables
}

// ConstantSales builds n consecutive days of identical sales for one SKU
func ConstantSales(sku entities.SKU, units float64, n int) []*entities.SalesRecord {
	records := make([]*entities.SalesRecord, n)
	for d := range records {
		records[d] = MustSales(sku, Day(d), units, "")
	}
	return records
}
