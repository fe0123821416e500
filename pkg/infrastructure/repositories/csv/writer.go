package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// KPIHeader is the column layout of kpis.csv
var KPIHeader = []string{
	"sku", "period_start", "period_end", "days",
	"total_units_sold", "total_revenue", "avg_daily_sales", "daily_sales_stddev",
	"avg_stock", "current_stock", "stock_turnover", "days_of_supply",
	"avg_lead_time_days", "lead_time_stddev", "avg_delivery_time_days",
	"logistics_cost_per_unit", "stockout_days",
}

var (
	summaryHeader = []string{
		"sku_count", "total_units_sold", "total_revenue", "avg_inventory_per_sku",
		"stockout_risk_pct", "avg_lead_time_days", "avg_delivery_time_days",
	}
	forecastHeader = []string{
		"sku", "date", "predicted_units", "lower_bound", "upper_bound", "method", "granularity", "fallback",
	}
	recommendationHeader = []string{
		"sku", "current_stock", "avg_daily_demand", "lead_time_demand", "safety_stock", "reorder_point",
		"recommended_order_qty", "supplier_id", "transport_mode", "lead_time_days",
		"days_until_stockout", "urgency_score", "urgency", "notes",
	}
	sourcingHeader = []string{
		"sku", "supplier_id", "transport_mode", "unit_cost", "transport_cost_per_unit",
		"landed_unit_cost", "lead_time_days", "delivery_days", "total_days", "score",
	}
)

// Table is one named output table rendered as strings
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Table names, also used as file stems and workbook sheet names
const (
	KPIsTable            = "kpis"
	SummaryTable         = "kpi_summary"
	ForecastTable        = "forecast"
	RecommendationsTable = "recommendations"
	SourcingTable        = "sourcing_options"
)

// Tables renders every report table in export order
func Tables(report entities.PlanReport) []Table {
	return []Table{
		{KPIsTable, KPIHeader, kpiRows(report.KPIs)},
		{SummaryTable, summaryHeader, summaryRows(report.Summary)},
		{ForecastTable, forecastHeader, forecastRows(report.Forecasts)},
		{RecommendationsTable, recommendationHeader, recommendationRows(report.Recommendations)},
		{SourcingTable, sourcingHeader, sourcingRows(report.Options)},
	}
}

// FindTable returns the named table of a report
func FindTable(report entities.PlanReport, name string) (Table, bool) {
	for _, table := range Tables(report) {
		if table.Name == name {
			return table, true
		}
	}
	return Table{}, false
}

// WriteReport writes every report table into dir and returns the paths written
func WriteReport(dir string, report entities.PlanReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	for _, table := range Tables(report) {
		path := filepath.Join(dir, table.Name+".csv")
		if err := writeFile(path, table); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, table Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTable(file, table); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// WriteTable writes a header row followed by the table rows
func WriteTable(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteKPIs writes one row per KPI set
func WriteKPIs(w io.Writer, kpis []*entities.KPISet) error {
	return WriteTable(w, Table{KPIsTable, KPIHeader, kpiRows(kpis)})
}

func kpiRows(kpis []*entities.KPISet) [][]string {
	rows := make([][]string, 0, len(kpis))
	for _, k := range kpis {
		rows = append(rows, []string{
			string(k.SKU),
			formatDate(k.PeriodStart),
			formatDate(k.PeriodEnd),
			strconv.Itoa(k.Days),
			formatFloat(k.TotalUnitsSold),
			k.TotalRevenue.String(),
			formatFloat(k.AvgDailySales),
			formatFloat(k.DailySalesStdDev),
			formatFloat(k.AvgStock),
			formatFloat(k.CurrentStock),
			k.StockTurnover.String(),
			k.DaysOfSupply.String(),
			k.AvgLeadTime.String(),
			formatFloat(k.LeadTimeStdDev),
			k.AvgDeliveryTime.String(),
			k.LogisticsCostPerUnit.String(),
			strconv.Itoa(k.StockoutDays),
		})
	}
	return rows
}

func summaryRows(s entities.KPISummary) [][]string {
	return [][]string{{
		strconv.Itoa(s.SKUCount),
		formatFloat(s.TotalUnitsSold),
		s.TotalRevenue.String(),
		formatFloat(s.AvgInventoryPerSKU),
		formatFloat(s.StockoutRiskPct),
		s.AvgLeadTimeDays.String(),
		s.AvgDeliveryTimeDays.String(),
	}}
}

func forecastRows(forecasts []*entities.ForecastResult) [][]string {
	var rows [][]string
	for _, f := range forecasts {
		for p := range f.Points() {
			rows = append(rows, []string{
				string(f.SKU),
				formatDate(p.Date),
				formatFloat(p.Predicted),
				formatFloat(p.Lower),
				formatFloat(p.Upper),
				f.Method,
				f.Granularity.String(),
				strconv.FormatBool(f.Fallback),
			})
		}
	}
	return rows
}

func recommendationRows(recs []*entities.Recommendation) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			string(r.SKU),
			formatFloat(r.CurrentStock),
			formatFloat(r.AvgDailyDemand),
			formatFloat(r.LeadTimeDemand),
			formatFloat(r.SafetyStock),
			formatFloat(r.ReorderPoint),
			formatFloat(r.RecommendedOrderQty),
			string(r.SupplierID),
			r.TransportMode.String(),
			formatFloat(r.LeadTimeDays),
			r.DaysUntilStockout.String(),
			formatFloat(r.UrgencyScore),
			r.Urgency.String(),
			strings.Join(r.Notes, ";"),
		})
	}
	return rows
}

func sourcingRows(options []entities.SourcingOption) [][]string {
	rows := make([][]string, 0, len(options))
	for _, o := range options {
		rows = append(rows, []string{
			string(o.SKU),
			string(o.SupplierID),
			o.Mode.String(),
			o.UnitCost.String(),
			o.TransportCost.String(),
			o.LandedUnitCost.String(),
			formatFloat(o.LeadTimeDays),
			formatFloat(o.DeliveryDays),
			formatFloat(o.TotalDays),
			formatFloat(o.Score),
		})
	}
	return rows
}

// ReadKPIs reloads a table produced by WriteKPIs
func ReadKPIs(r io.Reader) ([]*entities.KPISet, error) {
	rows, err := readAll(r, entities.SalesDataset)
	if err != nil {
		return nil, fmt.Errorf("failed to read KPI CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("KPI CSV must have a header row")
	}
	if !validateHeader(rows[0], KPIHeader) {
		return nil, fmt.Errorf("KPI CSV header mismatch. Expected: %v, Got: %v", KPIHeader, rows[0])
	}

	var kpis []*entities.KPISet
	for i, record := range rows[1:] {
		if len(record) != len(KPIHeader) {
			return nil, fmt.Errorf("KPI CSV row %d: expected %d columns, got %d", i+2, len(KPIHeader), len(record))
		}
		k, err := parseKPI(record)
		if err != nil {
			return nil, fmt.Errorf("KPI CSV row %d: %w", i+2, err)
		}
		kpis = append(kpis, k)
	}
	return kpis, nil
}

func parseKPI(record []string) (*entities.KPISet, error) {
	var (
		k   = &entities.KPISet{SKU: entities.SKU(record[0])}
		err error
	)
	if k.PeriodStart, err = parseDate(record[1]); err != nil {
		return nil, fmt.Errorf("invalid period_start: %w", err)
	}
	if k.PeriodEnd, err = parseDate(record[2]); err != nil {
		return nil, fmt.Errorf("invalid period_end: %w", err)
	}
	if k.Days, err = strconv.Atoi(record[3]); err != nil {
		return nil, fmt.Errorf("invalid days: %w", err)
	}
	if k.TotalRevenue, err = decimal.NewFromString(record[5]); err != nil {
		return nil, fmt.Errorf("invalid total_revenue: %w", err)
	}
	if k.StockoutDays, err = strconv.Atoi(record[16]); err != nil {
		return nil, fmt.Errorf("invalid stockout_days: %w", err)
	}

	floats := []struct {
		col  int
		dest *float64
	}{
		{4, &k.TotalUnitsSold},
		{6, &k.AvgDailySales},
		{7, &k.DailySalesStdDev},
		{8, &k.AvgStock},
		{9, &k.CurrentStock},
		{13, &k.LeadTimeStdDev},
	}
	for _, f := range floats {
		if *f.dest, err = strconv.ParseFloat(record[f.col], 64); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KPIHeader[f.col], err)
		}
	}

	metrics := []struct {
		col  int
		dest *entities.Metric
	}{
		{10, &k.StockTurnover},
		{11, &k.DaysOfSupply},
		{12, &k.AvgLeadTime},
		{14, &k.AvgDeliveryTime},
		{15, &k.LogisticsCostPerUnit},
	}
	for _, m := range metrics {
		if *m.dest, err = entities.ParseMetric(record[m.col]); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KPIHeader[m.col], err)
		}
	}
	return k, nil
}

// validateHeader checks if CSV header matches expected format
func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.ToLower(actual[i])) != col {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entities.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(entities.DateLayout, s)
}
