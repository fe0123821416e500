package memory_test

import (
	"errors"
	"testing"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

func TestSalesRepository_OrdersBySKUAndDate(t *testing.T) {
	repo := memory.NewSalesRepository(4)
	err := repo.LoadSales([]*entities.SalesRecord{
		testhelpers.MustSales("B", testhelpers.Day(2), 5, ""),
		testhelpers.MustSales("A", testhelpers.Day(3), 7, "1.00"),
		testhelpers.MustSales("A", testhelpers.Day(1), 3, "1.00"),
		testhelpers.MustSales("B", testhelpers.Day(0), 4, ""),
	})
	if err != nil {
		t.Fatalf("Failed to load sales: %v", err)
	}

	skus := repo.GetSKUs()
	if len(skus) != 2 || skus[0] != "A" || skus[1] != "B" {
		t.Errorf("Expected sorted SKUs [A B], got %v", skus)
	}

	sales, err := repo.GetSales("A")
	if err != nil {
		t.Fatalf("Failed to get sales: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("Expected 2 sales records, got %d", len(sales))
	}
	if !sales[0].Date.Equal(testhelpers.Day(1)) || !sales[1].Date.Equal(testhelpers.Day(3)) {
		t.Errorf("Expected sales ordered by date, got %v then %v", sales[0].Date, sales[1].Date)
	}

	all, _ := repo.GetAllSales()
	if len(all) != 4 || all[0].SKU != "B" {
		t.Errorf("Expected all 4 records in load order, got %d", len(all))
	}

	if missing, _ := repo.GetSales("C"); len(missing) != 0 {
		t.Errorf("Expected no sales for unknown SKU, got %d", len(missing))
	}
}

func TestSalesRepository_RejectsDuplicateDay(t *testing.T) {
	repo := memory.NewSalesRepository(2)
	err := repo.LoadSales([]*entities.SalesRecord{
		testhelpers.MustSales("A", testhelpers.Day(1), 3, ""),
		testhelpers.MustSales("A", testhelpers.Day(1), 4, ""),
	})

	var formatErr *entities.DataFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected DataFormatError, got %v", err)
	}
	if formatErr.Dataset != "sales" {
		t.Errorf("Expected sales dataset, got %s", formatErr.Dataset)
	}
}

func TestInventoryRepository(t *testing.T) {
	repo := memory.NewInventoryRepository(3)
	err := repo.LoadInventory([]*entities.InventoryRecord{
		testhelpers.MustInventory("A", testhelpers.Day(2), 80, 70),
		testhelpers.MustInventory("A", testhelpers.Day(1), 90, 80),
	})
	if err != nil {
		t.Fatalf("Failed to load inventory: %v", err)
	}

	records, _ := repo.GetInventory("A")
	if len(records) != 2 || records[1].ClosingStock != 70 {
		t.Errorf("Expected the latest position last, got %+v", records)
	}

	if err := repo.AddInventory(*testhelpers.MustInventory("A", testhelpers.Day(2), 1, 1)); err == nil {
		t.Error("Expected error for a duplicate stock position")
	}
}

func TestLogisticsRepository_GlobalLanes(t *testing.T) {
	repo := memory.NewLogisticsRepository()
	err := repo.LoadLogistics([]*entities.LogisticsRecord{
		testhelpers.MustLane("", entities.Road, 2, "1.00", 100),
		testhelpers.MustLane("A", entities.Air, 1, "5.00", 100),
		testhelpers.MustLane("B", entities.Sea, 9, "0.20", 900),
	})
	if err != nil {
		t.Fatalf("Failed to load logistics: %v", err)
	}

	lanes, _ := repo.GetLanes("A")
	if len(lanes) != 2 {
		t.Fatalf("Expected SKU lane plus global lane, got %d", len(lanes))
	}
	if lanes[0].Mode != entities.Air || lanes[1].Mode != entities.Road {
		t.Errorf("Expected SKU lanes before global lanes, got %v then %v", lanes[0].Mode, lanes[1].Mode)
	}

	if lanes, _ := repo.GetLanes("C"); len(lanes) != 1 || !lanes[0].IsGlobal() {
		t.Errorf("Expected only the global lane for an unknown SKU, got %d lanes", len(lanes))
	}
}

func TestProcurementRepository(t *testing.T) {
	repo := memory.NewProcurementRepository()
	repo.LoadProcurement([]*entities.ProcurementRecord{
		testhelpers.MustProcurement("A", "SUP-2", 3, "1.10"),
		testhelpers.MustProcurement("A", "SUP-1", 7, "0.80"),
		testhelpers.MustProcurement("B", "SUP-1", 5, "2.00"),
	})

	suppliers, _ := repo.GetSuppliers("A")
	if len(suppliers) != 2 || suppliers[0].SupplierID != "SUP-2" {
		t.Errorf("Expected suppliers of A in load order, got %+v", suppliers)
	}
	if none, _ := repo.GetSuppliers("C"); len(none) != 0 {
		t.Errorf("Expected no suppliers for C, got %d", len(none))
	}
}

func TestNewTables(t *testing.T) {
	tables, err := memory.NewTables(testhelpers.BuildFMCGTestData())
	if err != nil {
		t.Fatalf("NewTables failed: %v", err)
	}
	if len(tables.Sales.GetSKUs()) != 3 {
		t.Errorf("Expected 3 SKUs with sales, got %v", tables.Sales.GetSKUs())
	}
	if len(tables.Inventory.GetSKUs()) != 4 {
		t.Errorf("Expected 4 SKUs with stock, got %v", tables.Inventory.GetSKUs())
	}

	ds := testhelpers.BuildFMCGTestData()
	ds.Inventory = append(ds.Inventory, ds.Inventory[0])
	if _, err := memory.NewTables(ds); err == nil {
		t.Error("Expected duplicate inventory to fail")
	}
}
