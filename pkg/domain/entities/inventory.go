package entities

import (
	"fmt"
	"time"
)

// InventoryRecord represents the stock position of a SKU on one calendar date
type InventoryRecord struct {
	SKU          SKU
	Date         time.Time
	OpeningStock float64
	ClosingStock float64
}

// NewInventoryRecord creates a validated InventoryRecord.
// Stock levels may be negative when a warehouse books backorders.
func NewInventoryRecord(sku SKU, date time.Time, openingStock, closingStock float64) (*InventoryRecord, error) {
	if string(sku) == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be empty")
	}
	if err := finite("opening stock", openingStock); err != nil {
		return nil, err
	}
	if err := finite("closing stock", closingStock); err != nil {
		return nil, err
	}

	return &InventoryRecord{
		SKU:          sku,
		Date:         Day(date),
		OpeningStock: openingStock,
		ClosingStock: closingStock,
	}, nil
}

// AverageOnHand returns the midpoint of opening and closing stock
func (r *InventoryRecord) AverageOnHand() float64 {
	return (r.OpeningStock + r.ClosingStock) / 2
}
