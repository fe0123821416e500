package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// LogisticsRepository provides access to transport lanes and shipment history
type LogisticsRepository interface {
	// GetLanes returns the lanes of a SKU followed by the global lanes
	GetLanes(sku entities.SKU) ([]*entities.LogisticsRecord, error)
	GetAllLogistics() ([]*entities.LogisticsRecord, error)
	LoadLogistics(records []*entities.LogisticsRecord) error
}
