package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	csvrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	xlsxrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/xlsx"
)

// Output file names
const (
	TextFile     = "plan_results.txt"
	JSONFile     = "plan_results.json"
	WorkbookFile = "supplyplan.xlsx"
)

// Config holds configuration for output generation
type Config struct {
	Format     string
	OutputDir  string
	Verbose    bool
	RunTime    time.Duration
	InputFiles map[string]string
}

// Generate writes the result in the configured format. Text and JSON go to w unless an output
// directory is set; CSV and XLSX always need one.
func Generate(w io.Writer, result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(w, result, config)
	case "json":
		return generateJSONOutput(w, result, config)
	case "csv":
		return generateCSVOutput(w, result, config)
	case "xlsx":
		return generateXLSXOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	var buf bytes.Buffer
	writeText(&buf, result, config)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if config.OutputDir != "" {
		filename, err := save(config.OutputDir, TextFile, buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(w, "💾 Results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeText(w io.Writer, result *dto.PlanResult, config Config) {
	s := result.Summary
	fmt.Fprintf(w, "📊 Supply Plan Summary\n")
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Run: %s (%s)\n", result.RunID, result.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "SKUs: %d\n", s.SKUCount)
	fmt.Fprintf(w, "Total Units Sold: %s\n", formatNumber(s.TotalUnitsSold))
	fmt.Fprintf(w, "Total Revenue: %s\n", s.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "Avg Inventory per SKU: %s\n", formatNumber(s.AvgInventoryPerSKU))
	fmt.Fprintf(w, "Stockout Risk: %.1f%%\n", s.StockoutRiskPct)
	fmt.Fprintf(w, "Avg Lead Time (Supplier): %s\n", formatDays(s.AvgLeadTimeDays))
	fmt.Fprintf(w, "Avg Delivery Time (Logistics): %s\n", formatDays(s.AvgDeliveryTimeDays))
	if config.RunTime > 0 {
		fmt.Fprintf(w, "Planning Time: %v\n", config.RunTime)
	}
	fmt.Fprintln(w)

	if len(result.KPIs) > 0 {
		fmt.Fprintf(w, "📈 KPIs by SKU:\n")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-10s %-10s %-10s\n",
			"SKU", "Sold", "Avg/Day", "Stock", "Turnover", "DoS", "Stockouts")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-10s %-10s %-10s\n",
			"---------------", "----------", "----------", "----------", "----------", "----------", "----------")
		for _, k := range result.KPIs {
			fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-10s %-10s %-10d\n",
				k.SKU,
				formatNumber(k.TotalUnitsSold),
				formatNumber(k.AvgDailySales),
				formatNumber(k.CurrentStock),
				formatMetric(k.StockTurnover),
				formatMetric(k.DaysOfSupply),
				k.StockoutDays)
		}
		fmt.Fprintln(w)
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(w, "📦 Reorder Suggestions:\n")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-12s %-12s %-8s %-8s\n",
			"SKU", "Stock", "ROP", "Order Qty", "Supplier", "Transport", "Lead", "Urgency")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-12s %-12s %-8s %-8s\n",
			"---------------", "----------", "----------", "----------", "------------", "------------", "--------", "--------")
		for _, rec := range byUrgency(result.Recommendations) {
			supplier := string(rec.SupplierID)
			if supplier == "" {
				supplier = "-"
			}
			fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-12s %-12s %-8s %s %s\n",
				rec.SKU,
				formatNumber(rec.CurrentStock),
				formatNumber(rec.ReorderPoint),
				formatNumber(rec.RecommendedOrderQty),
				supplier,
				rec.TransportMode,
				formatNumber(rec.LeadTimeDays)+"d",
				urgencyLabel(rec.Urgency),
				rec.Urgency)
		}
		fmt.Fprintln(w)
	}

	if len(result.Issues) > 0 {
		fmt.Fprintf(w, "⚠️  Issues:\n")
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %s [%s]: %s\n", issue.SKU, issue.Stage, issue.Reason)
		}
		fmt.Fprintln(w)
	}

	if config.Verbose && len(result.Warnings) > 0 {
		fmt.Fprintf(w, "🔍 Data Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
		fmt.Fprintln(w)
	}
}

// byUrgency orders recommendations most urgent first, then by SKU
func byUrgency(recs []*entities.Recommendation) []*entities.Recommendation {
	sorted := append([]*entities.Recommendation(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Urgency != sorted[j].Urgency {
			return sorted[i].Urgency > sorted[j].Urgency
		}
		return sorted[i].SKU < sorted[j].SKU
	})
	return sorted
}

func urgencyLabel(u entities.UrgencyLevel) string {
	switch u {
	case entities.HighUrgency:
		return "🔴"
	case entities.MediumUrgency:
		return "🟠"
	default:
		return "🟢"
	}
}

func formatNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func formatMetric(m entities.Metric) string {
	if !m.Valid {
		return entities.NotApplicable
	}
	return formatNumber(m.Value)
}

func formatDays(m entities.Metric) string {
	if !m.Valid {
		return entities.NotApplicable
	}
	return fmt.Sprintf("%.1fd", m.Value)
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(w, string(jsonData))
		return err
	}

	filename, err := save(config.OutputDir, JSONFile, jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one CSV file per table
func generateCSVOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	files, err := csvrepo.WriteReport(config.OutputDir, result.Report())
	if err != nil {
		return fmt.Errorf("failed to write CSV results: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		for _, f := range files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	return nil
}

// generateXLSXOutput writes one workbook with a sheet per table
func generateXLSXOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for XLSX format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, WorkbookFile)
	if err := xlsxrepo.SaveReport(filename, result.Report()); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

func save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return filename, nil
}
