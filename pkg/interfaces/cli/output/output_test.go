package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	csvrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

func planFMCG(t *testing.T) *dto.PlanResult {
	t.Helper()
	result, err := orchestration.NewPlanningOrchestrator(nil).Run(context.Background(), testhelpers.BuildFMCGTestData(), dto.DefaultPlanOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func TestGenerate_Text(t *testing.T) {
	result := planFMCG(t)
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := Generate(&buf, result, Config{Format: "text", OutputDir: dir}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Supply Plan Summary", "KPIs by SKU", "Reorder Suggestions", "Issues", result.RunID} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	// TEA has no sales, so its days of supply cannot be computed
	teaLine := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, string(testhelpers.SKUTea)) {
			teaLine = line
			break
		}
	}
	if !strings.Contains(teaLine, "n/a") {
		t.Errorf("Expected n/a in the TEA KPI row, got %q", teaLine)
	}

	// most urgent first: SOAP is out of stock with no supplier
	suggestions := out[strings.Index(out, "Reorder Suggestions"):]
	if strings.Index(suggestions, string(testhelpers.SKUSoap)) > strings.Index(suggestions, string(testhelpers.SKUTea)) {
		t.Error("Expected SOAP to be listed before TEA")
	}

	saved, err := os.ReadFile(filepath.Join(dir, TextFile))
	if err != nil {
		t.Fatalf("Expected text results saved: %v", err)
	}
	if !bytes.Equal(saved, buf.Bytes()) {
		t.Error("Expected saved text to match printed output")
	}
}

func TestGenerate_JSON(t *testing.T) {
	result := planFMCG(t)

	var buf bytes.Buffer
	if err := Generate(&buf, result, Config{Format: "json"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var decoded dto.PlanResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON output: %v", err)
	}
	if decoded.RunID != result.RunID || len(decoded.Recommendations) != len(result.Recommendations) {
		t.Errorf("Expected run %s with %d recommendations, got %s with %d",
			result.RunID, len(result.Recommendations), decoded.RunID, len(decoded.Recommendations))
	}
}

func TestGenerate_CSV(t *testing.T) {
	result := planFMCG(t)
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := Generate(&buf, result, Config{Format: "csv", OutputDir: dir, Verbose: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, name := range []string{"kpis.csv", "kpi_summary.csv", "forecast.csv", "recommendations.csv", "sourcing_options.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "kpis.csv"))
	if err != nil {
		t.Fatalf("Failed to open kpis.csv: %v", err)
	}
	defer f.Close()
	kpis, err := csvrepo.ReadKPIs(f)
	if err != nil {
		t.Fatalf("ReadKPIs failed: %v", err)
	}
	if len(kpis) != len(result.KPIs) {
		t.Errorf("Expected %d KPI rows, got %d", len(result.KPIs), len(kpis))
	}
}

func TestGenerate_XLSX(t *testing.T) {
	result := planFMCG(t)
	dir := t.TempDir()

	if err := Generate(&bytes.Buffer{}, result, Config{Format: "xlsx", OutputDir: dir}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFile))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(csvrepo.RecommendationsTable)
	if err != nil {
		t.Fatalf("Failed to read recommendations sheet: %v", err)
	}
	if len(rows) != len(result.Recommendations)+1 {
		t.Errorf("Expected %d rows including header, got %d", len(result.Recommendations)+1, len(rows))
	}
}

func TestGenerate_Errors(t *testing.T) {
	result := planFMCG(t)

	tests := []struct {
		name   string
		config Config
	}{
		{"csv without directory", Config{Format: "csv"}},
		{"xlsx without directory", Config{Format: "xlsx"}},
		{"unknown format", Config{Format: "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Generate(&bytes.Buffer{}, result, tt.config); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{10, "10"},
		{2.5, "2.5"},
		{3.14159, "3.14"},
		{-0.001, "0"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.input); got != tt.expected {
			t.Errorf("formatNumber(%v): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}
