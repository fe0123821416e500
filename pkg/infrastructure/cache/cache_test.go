package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func sampleDataset() *entities.Dataset {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entities.Dataset{
		Sales:       []*entities.SalesRecord{{SKU: "A", Date: day, UnitsSold: 10}},
		Inventory:   []*entities.InventoryRecord{{SKU: "A", Date: day, OpeningStock: 50, ClosingStock: 40}},
		Procurement: []*entities.ProcurementRecord{{SKU: "A", SupplierID: "S1", LeadTimeDays: 5, UnitCost: decimal.NewFromInt(3)}},
	}
}

func TestFingerprint(t *testing.T) {
	opts := map[string]interface{}{"horizon": 14}

	a, err := Fingerprint(sampleDataset(), opts)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, _ := Fingerprint(sampleDataset(), opts)
	if a != b {
		t.Errorf("Expected equal inputs to hash equally, got %s and %s", a, b)
	}

	changed := sampleDataset()
	changed.Sales[0].UnitsSold = 11
	c, _ := Fingerprint(changed, opts)
	if c == a {
		t.Error("Expected changed sales to change the fingerprint")
	}

	d, _ := Fingerprint(sampleDataset(), map[string]interface{}{"horizon": 28})
	if d == a {
		t.Error("Expected changed options to change the fingerprint")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", []int{1, 2}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got []int
	if err := store.Get(ctx, "k", &got); err != nil || len(got) != 2 {
		t.Fatalf("Expected cached value, got %v (err %v)", got, err)
	}

	now = now.Add(2 * time.Minute)
	if err := store.Get(ctx, "k", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("Expected ErrMiss after expiry, got %v", err)
	}
}

func TestPlanCache(t *testing.T) {
	ctx := context.Background()
	cache := NewPlanCache(NewMemoryStore(), 0)

	var out map[string]string
	if cache.Get(ctx, "fp", &out) {
		t.Fatal("Expected miss on empty cache")
	}
	if err := cache.Set(ctx, "fp", map[string]string{"run_id": "r1"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !cache.Get(ctx, "fp", &out) || out["run_id"] != "r1" {
		t.Errorf("Expected cached plan, got %v", out)
	}
	if err := cache.Invalidate(ctx, "fp"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if cache.Get(ctx, "fp", &out) {
		t.Error("Expected miss after invalidate")
	}

	var disabled *PlanCache
	if disabled.Get(ctx, "fp", &out) {
		t.Error("Expected nil cache to always miss")
	}
}
