package xlsx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	csvrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
)

// Export builds a workbook with one sheet per report table
func Export(report entities.PlanReport) (*excelize.File, error) {
	return ExportTables(csvrepo.Tables(report))
}

// ExportTables builds a workbook from already rendered tables
func ExportTables(tables []csvrepo.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeSheet(f, table); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", table.Name, err)
		}
		f.SetRowStyle(table.Name, 1, 1, headerStyle)
		if last, err := excelize.ColumnNumberToName(len(table.Header)); err == nil {
			f.SetColWidth(table.Name, "A", last, 16)
		}
	}
	return f, nil
}

// WriteReport streams the report workbook to w
func WriteReport(w io.Writer, report entities.PlanReport) error {
	f, err := Export(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveReport writes the report workbook to path
func SaveReport(path string, report entities.PlanReport) error {
	f, err := Export(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, table csvrepo.Table) error {
	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if textColumns[table.Header[j]] {
				cells[j] = v
			} else {
				cells[j] = cellValue(v)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(table.Name, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

// textColumns are identifiers that must never be coerced to numbers
var textColumns = map[string]bool{
	"sku":            true,
	"supplier_id":    true,
	"transport_mode": true,
	"method":         true,
	"granularity":    true,
	"urgency":        true,
	"notes":          true,
}

// cellValue stores numeric strings as numbers so spreadsheets can sum them
func cellValue(v string) interface{} {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
