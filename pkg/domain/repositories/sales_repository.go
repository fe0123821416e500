package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// SalesRepository provides access to sales history
type SalesRepository interface {
	// GetSales returns the sales of a SKU ordered by date
	GetSales(sku entities.SKU) ([]*entities.SalesRecord, error)
	GetAllSales() ([]*entities.SalesRecord, error)
	GetSKUs() []entities.SKU
	LoadSales(records []*entities.SalesRecord) error
}
