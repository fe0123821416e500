package repositories

// Tables bundles the four source tables read by a planning run
type Tables struct {
	Sales       SalesRepository
	Inventory   InventoryRepository
	Procurement ProcurementRepository
	Logistics   LogisticsRepository
}
