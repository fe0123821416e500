package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// ProcurementRepository provides access to supplier terms
type ProcurementRepository interface {
	GetSuppliers(sku entities.SKU) ([]*entities.ProcurementRecord, error)
	GetAllProcurement() ([]*entities.ProcurementRecord, error)
	LoadProcurement(records []*entities.ProcurementRecord) error
}
