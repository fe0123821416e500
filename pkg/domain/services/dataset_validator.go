package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// DatasetValidator checks cross-row integrity of the source tables
type DatasetValidator struct {
	// Tolerance is the stock difference ignored when reconciling consecutive inventory days
	Tolerance float64
}

// NewDatasetValidator creates a new dataset validator
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{Tolerance: 1e-6}
}

// RecordKey identifies a (SKU, date) row
type RecordKey struct {
	SKU  entities.SKU
	Date time.Time
}

// String renders the key as sku@date
func (k RecordKey) String() string {
	return fmt.Sprintf("%s@%s", k.SKU, k.Date.Format(entities.DateLayout))
}

// ValidationResult contains the results of dataset validation.
// Errors abort a planning run; Warnings are reported alongside its results.
type ValidationResult struct {
	DuplicateSales     []RecordKey
	DuplicateInventory []RecordKey
	Reconciliation     []string
	UnsoldSuppliedSKUs []entities.SKU
	Errors             []string
	Warnings           []string
}

// HasErrors reports whether the dataset cannot be planned
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Validate performs every check on a dataset
func (v *DatasetValidator) Validate(ds *entities.Dataset) *ValidationResult {
	result := &ValidationResult{
		DuplicateSales:     v.duplicateSales(ds.Sales),
		DuplicateInventory: v.duplicateInventory(ds.Inventory),
		Reconciliation:     v.reconcileInventory(ds.Inventory),
		UnsoldSuppliedSKUs: v.unsoldSuppliedSKUs(ds),
	}

	for _, key := range result.DuplicateSales {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate sales record for %s", key))
	}
	for _, key := range result.DuplicateInventory {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate inventory record for %s", key))
	}

	result.Warnings = append(result.Warnings, result.Reconciliation...)
	if len(result.UnsoldSuppliedSKUs) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d SKUs have procurement data but no sales or inventory: %v",
				len(result.UnsoldSuppliedSKUs), result.UnsoldSuppliedSKUs))
	}

	return result
}

func (v *DatasetValidator) duplicateSales(records []*entities.SalesRecord) []RecordKey {
	seen := make(map[RecordKey]bool)
	var duplicates []RecordKey
	for _, r := range records {
		key := RecordKey{SKU: r.SKU, Date: r.Date}
		if seen[key] {
			duplicates = append(duplicates, key)
		}
		seen[key] = true
	}
	return duplicates
}

func (v *DatasetValidator) duplicateInventory(records []*entities.InventoryRecord) []RecordKey {
	seen := make(map[RecordKey]bool)
	var duplicates []RecordKey
	for _, r := range records {
		key := RecordKey{SKU: r.SKU, Date: r.Date}
		if seen[key] {
			duplicates = append(duplicates, key)
		}
		seen[key] = true
	}
	return duplicates
}

// reconcileInventory compares each closing stock with the next day's opening stock
func (v *DatasetValidator) reconcileInventory(records []*entities.InventoryRecord) []string {
	bySKU := make(map[entities.SKU][]*entities.InventoryRecord)
	for _, r := range records {
		bySKU[r.SKU] = append(bySKU[r.SKU], r)
	}

	skus := make([]entities.SKU, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })

	var warnings []string
	for _, sku := range skus {
		rows := bySKU[sku]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if !cur.Date.Equal(prev.Date.AddDate(0, 0, 1)) {
				continue
			}
			if math.Abs(prev.ClosingStock-cur.OpeningStock) > v.Tolerance {
				warnings = append(warnings, fmt.Sprintf(
					"inventory for %s does not reconcile: closing %v on %s, opening %v on %s",
					sku, prev.ClosingStock, prev.Date.Format(entities.DateLayout),
					cur.OpeningStock, cur.Date.Format(entities.DateLayout)))
			}
		}
	}
	return warnings
}

func (v *DatasetValidator) unsoldSuppliedSKUs(ds *entities.Dataset) []entities.SKU {
	known := make(map[entities.SKU]bool)
	for _, r := range ds.Sales {
		known[r.SKU] = true
	}
	for _, r := range ds.Inventory {
		known[r.SKU] = true
	}

	reported := make(map[entities.SKU]bool)
	var orphans []entities.SKU
	for _, r := range ds.Procurement {
		if !known[r.SKU] && !reported[r.SKU] {
			reported[r.SKU] = true
			orphans = append(orphans, r.SKU)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i] < orphans[j] })
	return orphans
}
