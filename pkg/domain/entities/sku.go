package entities

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SKU represents a unique stock-keeping unit identifier
type SKU string

// SupplierID identifies a supplier in procurement data
type SupplierID string

// DateLayout is the calendar date format used by every dataset
const DateLayout = "2006-01-02"

// DatasetKind names one of the four source tables
type DatasetKind int

const (
	SalesDataset DatasetKind = iota
	InventoryDataset
	ProcurementDataset
	LogisticsDataset
)

// AllDatasetKinds lists the source tables in load order
var AllDatasetKinds = []DatasetKind{SalesDataset, InventoryDataset, ProcurementDataset, LogisticsDataset}

// String method for DatasetKind enum
func (k DatasetKind) String() string {
	switch k {
	case SalesDataset:
		return "sales"
	case InventoryDataset:
		return "inventory"
	case ProcurementDataset:
		return "procurement"
	case LogisticsDataset:
		return "logistics"
	default:
		return "unknown"
	}
}

// ParseDatasetKind converts a dataset name into a DatasetKind
func ParseDatasetKind(s string) (DatasetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sales":
		return SalesDataset, nil
	case "inventory":
		return InventoryDataset, nil
	case "procurement":
		return ProcurementDataset, nil
	case "logistics":
		return LogisticsDataset, nil
	default:
		return SalesDataset, fmt.Errorf("invalid dataset: %s (expected: sales, inventory, procurement, or logistics)", s)
	}
}

// Dataset bundles the four immutable source tables of a planning run
type Dataset struct {
	Sales       []*SalesRecord
	Inventory   []*InventoryRecord
	Procurement []*ProcurementRecord
	Logistics   []*LogisticsRecord
}

// Len returns the number of rows held for a dataset kind
func (d *Dataset) Len(kind DatasetKind) int {
	switch kind {
	case SalesDataset:
		return len(d.Sales)
	case InventoryDataset:
		return len(d.Inventory)
	case ProcurementDataset:
		return len(d.Procurement)
	case LogisticsDataset:
		return len(d.Logistics)
	default:
		return 0
	}
}

// Merge replaces the table of the given kind with the one held by other
func (d *Dataset) Merge(kind DatasetKind, other *Dataset) {
	switch kind {
	case SalesDataset:
		d.Sales = other.Sales
	case InventoryDataset:
		d.Inventory = other.Inventory
	case ProcurementDataset:
		d.Procurement = other.Procurement
	case LogisticsDataset:
		d.Logistics = other.Logistics
	}
}

// Day truncates a timestamp to its UTC calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// finite rejects NaN and infinite quantities
func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %v", field, v)
	}
	return nil
}
