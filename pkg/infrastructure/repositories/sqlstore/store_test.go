package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "workspace.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ReplaceAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	first := &entities.Dataset{
		Sales: []*entities.SalesRecord{
			{SKU: "A", Date: day, UnitsSold: 5, UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("2.5"))},
			{SKU: "A", Date: day.AddDate(0, 0, 1), UnitsSold: 7},
		},
	}
	if err := store.Replace(ctx, entities.SalesDataset, first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	second := &entities.Dataset{
		Sales: []*entities.SalesRecord{{SKU: "B", Date: day, UnitsSold: 1}},
	}
	if err := store.Replace(ctx, entities.SalesDataset, second); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	logistics := &entities.Dataset{
		Logistics: []*entities.LogisticsRecord{
			{ShipmentID: "S1", Mode: entities.Sea, DeliveryTimeDays: 20, CostPerKm: decimal.RequireFromString("0.4"), DistanceKm: 900},
		},
	}
	if err := store.Replace(ctx, entities.LogisticsDataset, logistics); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	ds, err := store.Dataset(ctx)
	if err != nil {
		t.Fatalf("Dataset failed: %v", err)
	}
	if len(ds.Sales) != 1 || ds.Sales[0].SKU != "B" {
		t.Fatalf("Expected upload to replace the sales slot, got %+v", ds.Sales)
	}
	if !ds.Sales[0].Date.Equal(day) {
		t.Errorf("Expected date %v, got %v", day, ds.Sales[0].Date)
	}
	if ds.Sales[0].UnitPrice.Valid {
		t.Errorf("Expected missing unit price to stay absent")
	}
	if len(ds.Logistics) != 1 || ds.Logistics[0].Mode != entities.Sea || !ds.Logistics[0].IsGlobal() {
		t.Errorf("Unexpected logistics rows: %+v", ds.Logistics)
	}
	if !ds.Logistics[0].CostPerKm.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("Expected cost per km 0.4, got %s", ds.Logistics[0].CostPerKm)
	}
	if len(ds.Inventory) != 0 || len(ds.Procurement) != 0 {
		t.Errorf("Expected untouched slots to be empty")
	}
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.LatestRun(ctx); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("Expected ErrNoRuns, got %v", err)
	}

	now := time.Now()
	if err := store.SaveRun(ctx, "run-1", now.Add(-time.Hour), []byte(`{"run_id":"run-1"}`)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := store.SaveRun(ctx, "run-2", now, []byte(`{"run_id":"run-2"}`)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	payload, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if string(payload) != `{"run_id":"run-2"}` {
		t.Errorf("Expected latest run payload, got %s", payload)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", ""); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}
