package memory

import (
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// LogisticsRepository provides in-memory transport lane storage
type LogisticsRepository struct {
	records []entities.LogisticsRecord
	bySKU   map[entities.SKU][]int
	global  []int
}

// NewLogisticsRepository creates a new in-memory logistics repository
func NewLogisticsRepository() *LogisticsRepository {
	return &LogisticsRepository{
		records: []entities.LogisticsRecord{},
		bySKU:   make(map[entities.SKU][]int),
	}
}

// Verify interface compliance
var _ repositories.LogisticsRepository = (*LogisticsRepository)(nil)

// LoadLogistics loads lanes into the repository
func (r *LogisticsRepository) LoadLogistics(records []*entities.LogisticsRecord) error {
	for _, record := range records {
		idx := len(r.records)
		r.records = append(r.records, *record)
		if record.IsGlobal() {
			r.global = append(r.global, idx)
			continue
		}
		r.bySKU[record.SKU] = append(r.bySKU[record.SKU], idx)
	}
	return nil
}

// GetLanes returns the lanes of a SKU followed by the global lanes
func (r *LogisticsRepository) GetLanes(sku entities.SKU) ([]*entities.LogisticsRecord, error) {
	var records []*entities.LogisticsRecord
	for _, idx := range r.bySKU[sku] {
		records = append(records, &r.records[idx])
	}
	for _, idx := range r.global {
		records = append(records, &r.records[idx])
	}
	return records, nil
}

// GetAllLogistics returns all lanes
func (r *LogisticsRepository) GetAllLogistics() ([]*entities.LogisticsRecord, error) {
	var records []*entities.LogisticsRecord
	for i := range r.records {
		records = append(records, &r.records[i])
	}
	return records, nil
}
