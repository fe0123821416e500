package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord represents units of a SKU sold on one calendar date
type SalesRecord struct {
	SKU       SKU
	Date      time.Time
	UnitsSold float64
	UnitPrice decimal.NullDecimal // optional; enables revenue KPIs
}

// NewSalesRecord creates a validated SalesRecord
func NewSalesRecord(sku SKU, date time.Time, unitsSold float64, unitPrice decimal.NullDecimal) (*SalesRecord, error) {
	if string(sku) == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be empty")
	}
	if err := finite("units sold", unitsSold); err != nil {
		return nil, err
	}
	if unitsSold < 0 {
		return nil, fmt.Errorf("units sold cannot be negative, got %v", unitsSold)
	}
	if unitPrice.Valid && unitPrice.Decimal.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice.Decimal)
	}

	return &SalesRecord{
		SKU:       sku,
		Date:      Day(date),
		UnitsSold: unitsSold,
		UnitPrice: unitPrice,
	}, nil
}

// Revenue returns units sold times unit price, or zero when the price is unknown
func (r *SalesRecord) Revenue() decimal.Decimal {
	if !r.UnitPrice.Valid {
		return decimal.Zero
	}
	return r.UnitPrice.Decimal.Mul(decimal.NewFromFloat(r.UnitsSold))
}
