package memory

import (
	"fmt"
	"sort"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// InventoryRepository provides in-memory stock position storage indexed by SKU
type InventoryRepository struct {
	inventory []entities.InventoryRecord
	bySKU     map[entities.SKU][]int
	seenKeys  map[dayKey]bool
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository(expectedRecords int) *InventoryRepository {
	return &InventoryRepository{
		inventory: make([]entities.InventoryRecord, 0, expectedRecords),
		bySKU:     make(map[entities.SKU][]int),
		seenKeys:  make(map[dayKey]bool, expectedRecords),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadInventory loads stock positions, rejecting a second record for the same SKU and date
func (r *InventoryRepository) LoadInventory(records []*entities.InventoryRecord) error {
	for _, record := range records {
		if err := r.AddInventory(*record); err != nil {
			return err
		}
	}
	return nil
}

// AddInventory adds one stock position to the repository
func (r *InventoryRepository) AddInventory(record entities.InventoryRecord) error {
	key := dayKey{sku: record.SKU, date: record.Date.Format(entities.DateLayout)}
	if r.seenKeys[key] {
		return &entities.DataFormatError{
			Dataset: entities.InventoryDataset.String(),
			Column:  "date",
			Value:   key.date,
			Reason:  fmt.Sprintf("duplicate record for sku %s", record.SKU),
		}
	}
	r.seenKeys[key] = true

	idx := len(r.inventory)
	r.inventory = append(r.inventory, record)

	indexes := append(r.bySKU[record.SKU], idx)
	sort.SliceStable(indexes, func(i, j int) bool {
		return r.inventory[indexes[i]].Date.Before(r.inventory[indexes[j]].Date)
	})
	r.bySKU[record.SKU] = indexes
	return nil
}

// GetInventory returns the stock positions of a SKU ordered by date
func (r *InventoryRepository) GetInventory(sku entities.SKU) ([]*entities.InventoryRecord, error) {
	indexes := r.bySKU[sku]
	records := make([]*entities.InventoryRecord, 0, len(indexes))
	for _, idx := range indexes {
		records = append(records, &r.inventory[idx])
	}
	return records, nil
}

// GetAllInventory returns all stock positions in load order
func (r *InventoryRepository) GetAllInventory() ([]*entities.InventoryRecord, error) {
	records := make([]*entities.InventoryRecord, 0, len(r.inventory))
	for i := range r.inventory {
		records = append(records, &r.inventory[i])
	}
	return records, nil
}

// GetSKUs returns every SKU with stock positions, sorted
func (r *InventoryRepository) GetSKUs() []entities.SKU {
	return sortedKeys(r.bySKU)
}
