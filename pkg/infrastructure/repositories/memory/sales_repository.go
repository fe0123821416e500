package memory

import (
	"fmt"
	"sort"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// SalesRepository provides in-memory sales storage indexed by SKU
type SalesRepository struct {
	sales    []entities.SalesRecord
	bySKU    map[entities.SKU][]int
	seenKeys map[dayKey]bool
}

type dayKey struct {
	sku  entities.SKU
	date string
}

// NewSalesRepository creates a new in-memory sales repository
func NewSalesRepository(expectedRecords int) *SalesRepository {
	return &SalesRepository{
		sales:    make([]entities.SalesRecord, 0, expectedRecords),
		bySKU:    make(map[entities.SKU][]int),
		seenKeys: make(map[dayKey]bool, expectedRecords),
	}
}

// Verify interface compliance
var _ repositories.SalesRepository = (*SalesRepository)(nil)

// LoadSales loads sales records, rejecting a second record for the same SKU and date
func (r *SalesRepository) LoadSales(records []*entities.SalesRecord) error {
	for _, record := range records {
		if err := r.AddSales(*record); err != nil {
			return err
		}
	}
	return nil
}

// AddSales adds one sales record to the repository
func (r *SalesRepository) AddSales(record entities.SalesRecord) error {
	key := dayKey{sku: record.SKU, date: record.Date.Format(entities.DateLayout)}
	if r.seenKeys[key] {
		return &entities.DataFormatError{
			Dataset: entities.SalesDataset.String(),
			Column:  "date",
			Value:   key.date,
			Reason:  fmt.Sprintf("duplicate record for sku %s", record.SKU),
		}
	}
	r.seenKeys[key] = true

	idx := len(r.sales)
	r.sales = append(r.sales, record)

	// Keep each SKU's index sorted by date
	indexes := append(r.bySKU[record.SKU], idx)
	sort.SliceStable(indexes, func(i, j int) bool {
		return r.sales[indexes[i]].Date.Before(r.sales[indexes[j]].Date)
	})
	r.bySKU[record.SKU] = indexes
	return nil
}

// GetSales returns the sales of a SKU ordered by date
func (r *SalesRepository) GetSales(sku entities.SKU) ([]*entities.SalesRecord, error) {
	indexes := r.bySKU[sku]
	records := make([]*entities.SalesRecord, 0, len(indexes))
	for _, idx := range indexes {
		records = append(records, &r.sales[idx])
	}
	return records, nil
}

// GetAllSales returns all sales records in load order
func (r *SalesRepository) GetAllSales() ([]*entities.SalesRecord, error) {
	records := make([]*entities.SalesRecord, 0, len(r.sales))
	for i := range r.sales {
		records = append(records, &r.sales[i])
	}
	return records, nil
}

// GetSKUs returns every SKU with sales, sorted
func (r *SalesRepository) GetSKUs() []entities.SKU {
	return sortedKeys(r.bySKU)
}

func sortedKeys[V any](m map[entities.SKU]V) []entities.SKU {
	skus := make([]entities.SKU, 0, len(m))
	for sku := range m {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}
