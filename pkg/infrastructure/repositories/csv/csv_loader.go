package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/tabular"
)

// Scenario file names read by LoadScenario
const (
	SalesFile       = "sales.csv"
	InventoryFile   = "inventory.csv"
	ProcurementFile = "procurement.csv"
	LogisticsFile   = "logistics.csv"
)

// Loader handles loading planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSales loads sales records from a CSV file
func (l *Loader) LoadSales(filename string) ([]*entities.SalesRecord, error) {
	rows, err := readFile(filename, entities.SalesDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseSales(rows)
}

// LoadInventory loads inventory records from a CSV file
func (l *Loader) LoadInventory(filename string) ([]*entities.InventoryRecord, error) {
	rows, err := readFile(filename, entities.InventoryDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseInventory(rows)
}

// LoadProcurement loads procurement records from a CSV file
func (l *Loader) LoadProcurement(filename string) ([]*entities.ProcurementRecord, error) {
	rows, err := readFile(filename, entities.ProcurementDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseProcurement(rows)
}

// LoadLogistics loads logistics records from a CSV file
func (l *Loader) LoadLogistics(filename string) ([]*entities.LogisticsRecord, error) {
	rows, err := readFile(filename, entities.LogisticsDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseLogistics(rows)
}

// ReadSales parses sales records from a reader
func (l *Loader) ReadSales(r io.Reader) ([]*entities.SalesRecord, error) {
	rows, err := readAll(r, entities.SalesDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseSales(rows)
}

// ReadInventory parses inventory records from a reader
func (l *Loader) ReadInventory(r io.Reader) ([]*entities.InventoryRecord, error) {
	rows, err := readAll(r, entities.InventoryDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseInventory(rows)
}

// ReadProcurement parses procurement records from a reader
func (l *Loader) ReadProcurement(r io.Reader) ([]*entities.ProcurementRecord, error) {
	rows, err := readAll(r, entities.ProcurementDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseProcurement(rows)
}

// ReadLogistics parses logistics records from a reader
func (l *Loader) ReadLogistics(r io.Reader) ([]*entities.LogisticsRecord, error) {
	rows, err := readAll(r, entities.LogisticsDataset)
	if err != nil {
		return nil, err
	}
	return tabular.ParseLogistics(rows)
}

// ReadDataset parses one dataset kind from a reader into an otherwise empty Dataset
func (l *Loader) ReadDataset(kind entities.DatasetKind, r io.Reader) (*entities.Dataset, error) {
	rows, err := readAll(r, kind)
	if err != nil {
		return nil, err
	}
	return tabular.ParseDataset(kind, rows)
}

// LoadScenario loads the four source tables from a directory.
// Procurement and logistics files are optional; sales and inventory are required.
func (l *Loader) LoadScenario(dir string) (*entities.Dataset, error) {
	ds := &entities.Dataset{}
	var err error

	if ds.Sales, err = l.LoadSales(filepath.Join(dir, SalesFile)); err != nil {
		return nil, err
	}
	if ds.Inventory, err = l.LoadInventory(filepath.Join(dir, InventoryFile)); err != nil {
		return nil, err
	}

	procurementPath := filepath.Join(dir, ProcurementFile)
	if exists(procurementPath) {
		if ds.Procurement, err = l.LoadProcurement(procurementPath); err != nil {
			return nil, err
		}
	}
	logisticsPath := filepath.Join(dir, LogisticsFile)
	if exists(logisticsPath) {
		if ds.Logistics, err = l.LoadLogistics(logisticsPath); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

func readFile(filename string, kind entities.DatasetKind) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	return readAll(file, kind)
}

func readAll(r io.Reader, kind entities.DatasetKind) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &entities.DataFormatError{
			Dataset: kind.String(),
			Reason:  "malformed CSV",
			Err:     err,
		}
	}
	return records, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
