// Package xlsx reads planning datasets from workbooks and exports plan reports as workbooks.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/tabular"
)

// Loader reads the four source tables from sheets named after their dataset
type Loader struct{}

// NewLoader creates a new workbook loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadWorkbook opens a workbook file and loads every dataset sheet it contains
func (l *Loader) LoadWorkbook(path string) (*entities.Dataset, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer file.Close()

	return l.load(file)
}

// ReadWorkbook loads every dataset sheet of a workbook stream
func (l *Loader) ReadWorkbook(r io.Reader) (*entities.Dataset, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	return l.load(file)
}

// ReadDataset loads a single dataset kind from a workbook stream.
// The sheet named after the dataset is used, or the first sheet when there is none.
func (l *Loader) ReadDataset(kind entities.DatasetKind, r io.Reader) (*entities.Dataset, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheet, ok := findSheet(file, kind)
	if !ok {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, &entities.DataFormatError{Dataset: kind.String(), Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return tabular.ParseDataset(kind, rows)
}

func (l *Loader) load(file *excelize.File) (*entities.Dataset, error) {
	ds := &entities.Dataset{}
	for _, kind := range entities.AllDatasetKinds {
		sheet, ok := findSheet(file, kind)
		if !ok {
			if kind == entities.SalesDataset || kind == entities.InventoryDataset {
				return nil, &entities.DataFormatError{
					Dataset: kind.String(),
					Reason:  fmt.Sprintf("workbook has no %q sheet", kind.String()),
				}
			}
			continue
		}

		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		table, err := tabular.ParseDataset(kind, rows)
		if err != nil {
			return nil, err
		}
		ds.Merge(kind, table)
	}
	return ds, nil
}

func findSheet(file *excelize.File, kind entities.DatasetKind) (string, bool) {
	for _, name := range file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(name), kind.String()) {
			return name, true
		}
	}
	return "", false
}
