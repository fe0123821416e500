package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// NewTables indexes a dataset into fresh in-memory repositories
func NewTables(dataset *entities.Dataset) (repositories.Tables, error) {
	salesRepo := NewSalesRepository(len(dataset.Sales))
	if err := salesRepo.LoadSales(dataset.Sales); err != nil {
		return repositories.Tables{}, fmt.Errorf("failed to load sales into repository: %w", err)
	}

	inventoryRepo := NewInventoryRepository(len(dataset.Inventory))
	if err := inventoryRepo.LoadInventory(dataset.Inventory); err != nil {
		return repositories.Tables{}, fmt.Errorf("failed to load inventory into repository: %w", err)
	}

	procurementRepo := NewProcurementRepository()
	if err := procurementRepo.LoadProcurement(dataset.Procurement); err != nil {
		return repositories.Tables{}, fmt.Errorf("failed to load procurement into repository: %w", err)
	}

	logisticsRepo := NewLogisticsRepository()
	if err := logisticsRepo.LoadLogistics(dataset.Logistics); err != nil {
		return repositories.Tables{}, fmt.Errorf("failed to load logistics into repository: %w", err)
	}

	return repositories.Tables{
		Sales:       salesRepo,
		Inventory:   inventoryRepo,
		Procurement: procurementRepo,
		Logistics:   logisticsRepo,
	}, nil
}
