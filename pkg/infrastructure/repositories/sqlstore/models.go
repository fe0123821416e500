package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// SalesRow is the persisted form of a sales record
type SalesRow struct {
	ID        uint                `gorm:"primaryKey"`
	SKU       string              `gorm:"size:128;index;not null"`
	Date      time.Time           `gorm:"not null"`
	UnitsSold float64             `gorm:"not null"`
	UnitPrice decimal.NullDecimal `gorm:"type:decimal(20,6)"`
}

func (SalesRow) TableName() string { return "sales_rows" }

// InventoryRow is the persisted form of an inventory record
type InventoryRow struct {
	ID           uint      `gorm:"primaryKey"`
	SKU          string    `gorm:"size:128;index;not null"`
	Date         time.Time `gorm:"not null"`
	OpeningStock float64
	ClosingStock float64
}

func (InventoryRow) TableName() string { return "inventory_rows" }

// ProcurementRow is the persisted form of a procurement record
type ProcurementRow struct {
	ID           uint            `gorm:"primaryKey"`
	SKU          string          `gorm:"size:128;index;not null"`
	SupplierID   string          `gorm:"size:128;not null"`
	LeadTimeDays float64         `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,6);not null"`
}

func (ProcurementRow) TableName() string { return "procurement_rows" }

// LogisticsRow is the persisted form of a logistics record
type LogisticsRow struct {
	ID               uint   `gorm:"primaryKey"`
	SKU              string `gorm:"size:128;index"`
	ShipmentID       string `gorm:"size:128"`
	Mode             string `gorm:"size:16"`
	DeliveryTimeDays float64
	CostPerKm        decimal.Decimal `gorm:"type:decimal(20,6)"`
	DistanceKm       float64
	UnitsShipped     float64
}

func (LogisticsRow) TableName() string { return "logistics_rows" }

// RunRow stores a serialized plan result
type RunRow struct {
	ID          string         `gorm:"primaryKey;size:36"`
	GeneratedAt time.Time      `gorm:"index;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
}

func (RunRow) TableName() string { return "plan_runs" }

func toSalesRows(records []*entities.SalesRecord) []SalesRow {
	rows := make([]SalesRow, len(records))
	for i, r := range records {
		rows[i] = SalesRow{SKU: string(r.SKU), Date: r.Date, UnitsSold: r.UnitsSold, UnitPrice: r.UnitPrice}
	}
	return rows
}

func toInventoryRows(records []*entities.InventoryRecord) []InventoryRow {
	rows := make([]InventoryRow, len(records))
	for i, r := range records {
		rows[i] = InventoryRow{SKU: string(r.SKU), Date: r.Date, OpeningStock: r.OpeningStock, ClosingStock: r.ClosingStock}
	}
	return rows
}

func toProcurementRows(records []*entities.ProcurementRecord) []ProcurementRow {
	rows := make([]ProcurementRow, len(records))
	for i, r := range records {
		rows[i] = ProcurementRow{SKU: string(r.SKU), SupplierID: string(r.SupplierID), LeadTimeDays: r.LeadTimeDays, UnitCost: r.UnitCost}
	}
	return rows
}

func toLogisticsRows(records []*entities.LogisticsRecord) []LogisticsRow {
	rows := make([]LogisticsRow, len(records))
	for i, r := range records {
		rows[i] = LogisticsRow{
			SKU:              string(r.SKU),
			ShipmentID:       r.ShipmentID,
			Mode:             r.Mode.String(),
			DeliveryTimeDays: r.DeliveryTimeDays,
			CostPerKm:        r.CostPerKm,
			DistanceKm:       r.DistanceKm,
			UnitsShipped:     r.UnitsShipped,
		}
	}
	return rows
}

func (r SalesRow) record() *entities.SalesRecord {
	return &entities.SalesRecord{SKU: entities.SKU(r.SKU), Date: entities.Day(r.Date), UnitsSold: r.UnitsSold, UnitPrice: r.UnitPrice}
}

func (r InventoryRow) record() *entities.InventoryRecord {
	return &entities.InventoryRecord{SKU: entities.SKU(r.SKU), Date: entities.Day(r.Date), OpeningStock: r.OpeningStock, ClosingStock: r.ClosingStock}
}

func (r ProcurementRow) record() *entities.ProcurementRecord {
	return &entities.ProcurementRecord{SKU: entities.SKU(r.SKU), SupplierID: entities.SupplierID(r.SupplierID), LeadTimeDays: r.LeadTimeDays, UnitCost: r.UnitCost}
}

func (r LogisticsRow) record() (*entities.LogisticsRecord, error) {
	mode, err := entities.ParseTransportMode(r.Mode)
	if err != nil {
		return nil, err
	}
	return &entities.LogisticsRecord{
		SKU:              entities.SKU(r.SKU),
		ShipmentID:       r.ShipmentID,
		Mode:             mode,
		DeliveryTimeDays: r.DeliveryTimeDays,
		CostPerKm:        r.CostPerKm,
		DistanceKm:       r.DistanceKm,
		UnitsShipped:     r.UnitsShipped,
	}, nil
}
