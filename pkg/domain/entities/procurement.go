package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProcurementRecord represents a supplier able to replenish a SKU
type ProcurementRecord struct {
	SKU          SKU
	SupplierID   SupplierID
	LeadTimeDays float64
	UnitCost     decimal.Decimal
}

// NewProcurementRecord creates a validated ProcurementRecord
func NewProcurementRecord(sku SKU, supplierID SupplierID, leadTimeDays float64, unitCost decimal.Decimal) (*ProcurementRecord, error) {
	if string(sku) == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if string(supplierID) == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if err := finite("lead time", leadTimeDays); err != nil {
		return nil, err
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %v", leadTimeDays)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	return &ProcurementRecord{
		SKU:          sku,
		SupplierID:   supplierID,
		LeadTimeDays: leadTimeDays,
		UnitCost:     unitCost,
	}, nil
}
