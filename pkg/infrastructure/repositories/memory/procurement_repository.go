package memory

import (
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// ProcurementRepository provides in-memory supplier terms storage
type ProcurementRepository struct {
	records []entities.ProcurementRecord
	bySKU   map[entities.SKU][]int
}

// NewProcurementRepository creates a new in-memory procurement repository
func NewProcurementRepository() *ProcurementRepository {
	return &ProcurementRepository{
		records: []entities.ProcurementRecord{},
		bySKU:   make(map[entities.SKU][]int),
	}
}

// Verify interface compliance
var _ repositories.ProcurementRepository = (*ProcurementRepository)(nil)

// LoadProcurement loads supplier terms into the repository
func (r *ProcurementRepository) LoadProcurement(records []*entities.ProcurementRecord) error {
	for _, record := range records {
		r.bySKU[record.SKU] = append(r.bySKU[record.SKU], len(r.records))
		r.records = append(r.records, *record)
	}
	return nil
}

// GetSuppliers returns every supplier able to replenish a SKU in load order
func (r *ProcurementRepository) GetSuppliers(sku entities.SKU) ([]*entities.ProcurementRecord, error) {
	var records []*entities.ProcurementRecord
	for _, idx := range r.bySKU[sku] {
		records = append(records, &r.records[idx])
	}
	return records, nil
}

// GetAllProcurement returns all supplier terms
func (r *ProcurementRepository) GetAllProcurement() ([]*entities.ProcurementRecord, error) {
	var records []*entities.ProcurementRecord
	for i := range r.records {
		records = append(records, &r.records[i])
	}
	return records, nil
}
