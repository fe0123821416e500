package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// dateLayouts are tried in order when parsing a date cell
var dateLayouts = []string{
	entities.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// rowParser carries the position context used to build format errors
type rowParser struct {
	dataset string
	header  Header
	record  []string
	row     int
}

// ParseSales converts raw rows (header first) into sales records
func ParseSales(rows [][]string) ([]*entities.SalesRecord, error) {
	var records []*entities.SalesRecord
	err := each(SalesSchema, rows, func(p *rowParser) error {
		sku, err := p.sku(true)
		if err != nil {
			return err
		}
		date, err := p.date(ColDate)
		if err != nil {
			return err
		}
		units, err := p.float(ColUnitsSold, true, false)
		if err != nil {
			return err
		}
		var price decimal.NullDecimal
		if raw := p.cell(ColUnitPrice); raw != "" {
			d, err := p.money(ColUnitPrice)
			if err != nil {
				return err
			}
			price = decimal.NewNullDecimal(d)
		}

		record, err := entities.NewSalesRecord(sku, date, units, price)
		if err != nil {
			return p.invalid("", err)
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

// ParseInventory converts raw rows (header first) into inventory records.
// A missing opening_stock column defaults each row's opening stock to its closing stock.
func ParseInventory(rows [][]string) ([]*entities.InventoryRecord, error) {
	var records []*entities.InventoryRecord
	err := each(InventorySchema, rows, func(p *rowParser) error {
		sku, err := p.sku(true)
		if err != nil {
			return err
		}
		date, err := p.date(ColDate)
		if err != nil {
			return err
		}
		closing, err := p.float(ColClosing, true, true)
		if err != nil {
			return err
		}
		opening := closing
		if p.cell(ColOpening) != "" {
			if opening, err = p.float(ColOpening, true, true); err != nil {
				return err
			}
		}

		record, err := entities.NewInventoryRecord(sku, date, opening, closing)
		if err != nil {
			return p.invalid("", err)
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

// ParseProcurement converts raw rows (header first) into procurement records
func ParseProcurement(rows [][]string) ([]*entities.ProcurementRecord, error) {
	var records []*entities.ProcurementRecord
	err := each(ProcurementSchema, rows, func(p *rowParser) error {
		sku, err := p.sku(true)
		if err != nil {
			return err
		}
		supplier := p.cell(ColSupplierID)
		if supplier == "" {
			return p.fail(ColSupplierID, "", "value is required", nil)
		}
		lead, err := p.float(ColLeadTime, true, false)
		if err != nil {
			return err
		}
		cost, err := p.money(ColUnitCost)
		if err != nil {
			return err
		}

		record, err := entities.NewProcurementRecord(sku, entities.SupplierID(supplier), lead, cost)
		if err != nil {
			return p.invalid("", err)
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

// ParseLogistics converts raw rows (header first) into logistics records.
// Rows with neither sku nor shipment_id are rejected; rows without a sku become global lanes.
func ParseLogistics(rows [][]string) ([]*entities.LogisticsRecord, error) {
	var records []*entities.LogisticsRecord
	err := each(LogisticsSchema, rows, func(p *rowParser) error {
		sku, err := p.sku(false)
		if err != nil {
			return err
		}
		shipment := p.cell(ColShipmentID)
		if sku == "" && shipment == "" {
			return p.fail(ColSKU, "", "either sku or shipment_id is required", nil)
		}
		rawMode := p.cell(ColMode)
		mode, err := entities.ParseTransportMode(rawMode)
		if err != nil {
			return p.fail(ColMode, rawMode, "unknown transport mode", err)
		}
		delivery, err := p.float(ColDeliveryTime, true, false)
		if err != nil {
			return err
		}
		costPerKm, err := p.money(ColCostPerKm)
		if err != nil {
			return err
		}

		record, err := entities.NewLogisticsRecord(sku, shipment, mode, delivery, costPerKm)
		if err != nil {
			return p.invalid("", err)
		}
		if record.DistanceKm, err = p.float(ColDistanceKm, false, false); err != nil {
			return err
		}
		if record.UnitsShipped, err = p.float(ColUnitsShipped, false, false); err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

// each binds the header and calls fn for every non-blank data row
func each(schema Schema, rows [][]string, fn func(*rowParser) error) error {
	if len(rows) == 0 {
		return &entities.DataFormatError{
			Dataset: schema.Dataset.String(),
			Reason:  "file is empty, expected a header row",
		}
	}

	header, err := schema.Bind(rows[0])
	if err != nil {
		return err
	}

	for i, record := range rows[1:] {
		if blank(record) {
			continue
		}
		p := &rowParser{
			dataset: schema.Dataset.String(),
			header:  header,
			record:  record,
			row:     i + 2,
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (p *rowParser) cell(column string) string {
	return p.header.Cell(p.record, column)
}

func (p *rowParser) fail(column, value, reason string, err error) error {
	return &entities.DataFormatError{
		Dataset: p.dataset,
		Row:     p.row,
		Column:  column,
		Value:   value,
		Reason:  reason,
		Err:     err,
	}
}

func (p *rowParser) invalid(column string, err error) error {
	return p.fail(column, "", err.Error(), err)
}

func (p *rowParser) sku(required bool) (entities.SKU, error) {
	raw := p.cell(ColSKU)
	if raw == "" && required {
		return "", p.fail(ColSKU, "", "value is required", nil)
	}
	return entities.SKU(raw), nil
}

func (p *rowParser) date(column string) (time.Time, error) {
	raw := p.cell(column)
	if raw == "" {
		return time.Time{}, p.fail(column, "", "value is required", nil)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return entities.Day(t), nil
		}
	}
	return time.Time{}, p.fail(column, raw, fmt.Sprintf("expected a date like %s", entities.DateLayout), nil)
}

// float parses a numeric cell. Optional empty cells read as zero.
func (p *rowParser) float(column string, required, allowNegative bool) (float64, error) {
	raw := p.cell(column)
	if raw == "" {
		if required {
			return 0, p.fail(column, "", "value is required", nil)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, p.fail(column, raw, "expected a number", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p.fail(column, raw, "expected a finite number", nil)
	}
	if v < 0 && !allowNegative {
		return 0, p.fail(column, raw, "value cannot be negative", nil)
	}
	return v, nil
}

func (p *rowParser) money(column string) (decimal.Decimal, error) {
	raw := p.cell(column)
	if raw == "" {
		return decimal.Zero, p.fail(column, "", "value is required", nil)
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.ReplaceAll(raw, ",", ""), "$"))
	if err != nil {
		return decimal.Zero, p.fail(column, raw, "expected a decimal amount", err)
	}
	if d.IsNegative() {
		return decimal.Zero, p.fail(column, raw, "value cannot be negative", nil)
	}
	return d, nil
}

// ParseDataset parses the rows of one dataset kind into a Dataset holding only that table
func ParseDataset(kind entities.DatasetKind, rows [][]string) (*entities.Dataset, error) {
	ds := &entities.Dataset{}
	var err error
	switch kind {
	case entities.SalesDataset:
		ds.Sales, err = ParseSales(rows)
	case entities.InventoryDataset:
		ds.Inventory, err = ParseInventory(rows)
	case entities.ProcurementDataset:
		ds.Procurement, err = ParseProcurement(rows)
	case entities.LogisticsDataset:
		ds.Logistics, err = ParseLogistics(rows)
	default:
		return nil, fmt.Errorf("unsupported dataset kind: %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}
