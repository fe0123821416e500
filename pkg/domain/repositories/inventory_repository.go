package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// InventoryRepository provides access to daily stock positions
type InventoryRepository interface {
	// GetInventory returns the stock positions of a SKU ordered by date
	GetInventory(sku entities.SKU) ([]*entities.InventoryRecord, error)
	GetAllInventory() ([]*entities.InventoryRecord, error)
	GetSKUs() []entities.SKU
	LoadInventory(records []*entities.InventoryRecord) error
}
