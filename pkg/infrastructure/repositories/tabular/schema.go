// Package tabular validates loosely structured spreadsheet rows into typed records.
//
// Columns are matched by name, ignoring case, surrounding spaces and column order.
// Every dataset declares required and optional columns; a missing required column or a
// malformed field is reported as an *entities.DataFormatError naming the dataset, row and column.
package tabular

import (
	"strings"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Column describes one named column of a dataset
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Schema lists the columns a dataset understands
type Schema struct {
	Dataset entities.DatasetKind
	Columns []Column
}

// Column names shared by the loaders and the writers
const (
	ColSKU          = "sku"
	ColDate         = "date"
	ColUnitsSold    = "units_sold"
	ColUnitPrice    = "unit_price"
	ColOpening      = "opening_stock"
	ColClosing      = "closing_stock"
	ColSupplierID   = "supplier_id"
	ColLeadTime     = "lead_time_days"
	ColUnitCost     = "unit_cost"
	ColShipmentID   = "shipment_id"
	ColMode         = "transport_mode"
	ColDeliveryTime = "delivery_time_days"
	ColCostPerKm    = "cost_per_km"
	ColDistanceKm   = "distance_km"
	ColUnitsShipped = "units_shipped"
)

var (
	SalesSchema = Schema{
		Dataset: entities.SalesDataset,
		Columns: []Column{
			{Name: ColSKU, Aliases: []string{"product", "item"}, Required: true},
			{Name: ColDate, Required: true},
			{Name: ColUnitsSold, Aliases: []string{"units", "quantity", "qty", "sales_qty"}, Required: true},
			{Name: ColUnitPrice, Aliases: []string{"price"}},
		},
	}

	// Snapshot files that only carry one quantity column load it as the closing stock
	InventorySchema = Schema{
		Dataset: entities.InventoryDataset,
		Columns: []Column{
			{Name: ColSKU, Aliases: []string{"product", "item"}, Required: true},
			{Name: ColDate, Required: true},
			{Name: ColOpening, Aliases: []string{"opening"}},
			{Name: ColClosing, Aliases: []string{"closing", "inventory_qty", "stock", "on_hand"}, Required: true},
		},
	}

	ProcurementSchema = Schema{
		Dataset: entities.ProcurementDataset,
		Columns: []Column{
			{Name: ColSKU, Aliases: []string{"product", "item"}, Required: true},
			{Name: ColSupplierID, Aliases: []string{"supplier"}, Required: true},
			{Name: ColLeadTime, Aliases: []string{"lead_time"}, Required: true},
			{Name: ColUnitCost, Aliases: []string{"cost"}, Required: true},
		},
	}

	LogisticsSchema = Schema{
		Dataset: entities.LogisticsDataset,
		Columns: []Column{
			{Name: ColSKU, Aliases: []string{"product", "item"}},
			{Name: ColShipmentID, Aliases: []string{"shipment"}},
			{Name: ColMode, Aliases: []string{"mode"}, Required: true},
			{Name: ColDeliveryTime, Aliases: []string{"delivery_time", "delivery_days"}, Required: true},
			{Name: ColCostPerKm, Required: true},
			{Name: ColDistanceKm, Aliases: []string{"distance"}},
			{Name: ColUnitsShipped, Aliases: []string{"units", "quantity"}},
		},
	}
)

// SchemaFor returns the schema of a dataset kind
func SchemaFor(kind entities.DatasetKind) Schema {
	switch kind {
	case entities.InventoryDataset:
		return InventorySchema
	case entities.ProcurementDataset:
		return ProcurementSchema
	case entities.LogisticsDataset:
		return LogisticsSchema
	default:
		return SalesSchema
	}
}

// Header maps canonical column names to their position in a file
type Header map[string]int

// Bind resolves the file header against the schema
func (s Schema) Bind(header []string) (Header, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := normalize(name)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	bound := make(Header, len(s.Columns))
	for _, col := range s.Columns {
		for _, candidate := range append([]string{col.Name}, col.Aliases...) {
			if idx, ok := positions[candidate]; ok {
				bound[col.Name] = idx
				break
			}
		}
		if _, ok := bound[col.Name]; !ok && col.Required {
			return nil, entities.NewMissingColumnError(s.Dataset.String(), col.Name)
		}
	}
	return bound, nil
}

// Has reports whether an optional column is present
func (h Header) Has(column string) bool {
	_, ok := h[column]
	return ok
}

// Cell returns the trimmed value of a column, or "" when absent or short
func (h Header) Cell(record []string, column string) string {
	idx, ok := h[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func normalize(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
