package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/xlsx"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command. Zero values leave the
// configuration file and environment settings untouched.
type Config struct {
	ScenarioDir     string
	SalesFile       string
	InventoryFile   string
	ProcurementFile string
	LogisticsFile   string
	WorkbookFile    string
	ConfigFile      string
	OutputDir       string
	Format          string
	Horizon         int
	ServiceLevel    float64
	Granularity     string
	Method          string
	From            string
	To              string
	SKUs            string
	Port            int
	Verbose         bool
	Help            bool
}

// PlanCommand loads a dataset, runs the planning pipeline and writes the results
type PlanCommand struct {
	config Config
	out    io.Writer
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	return &PlanCommand{
		config: config,
		out:    os.Stdout,
	}
}

// SetOutput redirects everything the command prints
func (c *PlanCommand) SetOutput(w io.Writer) {
	c.out = w
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	// Validate inputs
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	opts, err := c.planOptions()
	if err != nil {
		return err
	}

	files := c.resolveInputFiles()
	if c.config.Verbose {
		c.printHeader(files, opts)
		fmt.Fprintln(c.out, "📂 Loading datasets...")
	}

	ds, err := c.config.loadDataset()
	if err != nil {
		return fmt.Errorf("error loading data: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Data loaded successfully:\n")
		for _, kind := range entities.AllDatasetKinds {
			fmt.Fprintf(c.out, "  %s: %d rows\n", kind, ds.Len(kind))
		}
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "🔄 Running planning pipeline...")
	}

	startTime := time.Now()
	result, err := orchestration.NewPlanningOrchestrator(nil).Run(ctx, ds, opts)
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running planning pipeline: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Planning completed in %v (%d forecasts, %d recommendations, %d issues)\n\n",
			runTime, len(result.Forecasts), len(result.Recommendations), len(result.Issues))
	}

	outputConfig := output.Config{
		Format:     c.config.Format,
		OutputDir:  c.config.OutputDir,
		Verbose:    c.config.Verbose,
		RunTime:    runTime,
		InputFiles: files,
	}
	if err := output.Generate(c.out, result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Supply planning complete!")
	}
	return nil
}

// validateInputs validates the command configuration
func (c *PlanCommand) validateInputs() error {
	if (c.config.SalesFile == "") != (c.config.InventoryFile == "") {
		return fmt.Errorf("-sales and -inventory must be given together")
	}

	switch c.config.sources() {
	case 0:
		return fmt.Errorf("must specify -scenario directory, -workbook file, or individual CSV files")
	case 1:
	default:
		return fmt.Errorf("-scenario, -workbook and individual CSV files are mutually exclusive")
	}

	switch c.config.Format {
	case "", "text", "json":
	case "csv", "xlsx":
		if c.config.OutputDir == "" {
			return fmt.Errorf("-output directory required for %s format", c.config.Format)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	return nil
}

// sources counts the dataset sources named by the flags
func (f Config) sources() int {
	n := 0
	if f.ScenarioDir != "" {
		n++
	}
	if f.WorkbookFile != "" {
		n++
	}
	if f.SalesFile != "" || f.InventoryFile != "" {
		n++
	}
	return n
}

func (f Config) hasSource() bool {
	return f.sources() > 0
}

// planOptions layers command line overrides on the configured options
func (c *PlanCommand) planOptions() (dto.PlanOptions, error) {
	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return dto.PlanOptions{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return c.config.overrideOptions(cfg.PlanOptions())
}

// overrideOptions applies the command line flags that were set
func (f Config) overrideOptions(opts dto.PlanOptions) (dto.PlanOptions, error) {
	var err error
	if f.Horizon != 0 {
		opts.Horizon = f.Horizon
	}
	if f.ServiceLevel != 0 {
		opts.ServiceLevel = f.ServiceLevel
	}
	if f.Method != "" {
		opts.Method = f.Method
	}
	if f.Granularity != "" {
		g, err := entities.ParseGranularity(f.Granularity)
		if err != nil {
			return opts, &dto.OptionsError{Field: "granularity", Reason: err.Error()}
		}
		opts.Granularity = g
	}
	if opts.Period.Start, err = parseDateFlag("from", f.From); err != nil {
		return opts, err
	}
	if opts.Period.End, err = parseDateFlag("to", f.To); err != nil {
		return opts, err
	}
	if f.SKUs != "" {
		opts.SKUs = nil
		for _, sku := range strings.Split(f.SKUs, ",") {
			if sku = strings.TrimSpace(sku); sku != "" {
				opts.SKUs = append(opts.SKUs, entities.SKU(sku))
			}
		}
	}

	return opts, opts.Validate()
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		return time.Time{}, &dto.OptionsError{Field: name, Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", value)}
	}
	return t, nil
}

// resolveInputFiles determines the file paths reported in verbose output
func (c *PlanCommand) resolveInputFiles() map[string]string {
	if c.config.WorkbookFile != "" {
		return map[string]string{"Workbook": c.config.WorkbookFile}
	}
	if c.config.ScenarioDir != "" {
		return map[string]string{
			"Sales":       filepath.Join(c.config.ScenarioDir, csv.SalesFile),
			"Inventory":   filepath.Join(c.config.ScenarioDir, csv.InventoryFile),
			"Procurement": filepath.Join(c.config.ScenarioDir, csv.ProcurementFile),
			"Logistics":   filepath.Join(c.config.ScenarioDir, csv.LogisticsFile),
		}
	}
	return map[string]string{
		"Sales":       c.config.SalesFile,
		"Inventory":   c.config.InventoryFile,
		"Procurement": c.config.ProcurementFile,
		"Logistics":   c.config.LogisticsFile,
	}
}

// loadDataset reads the workbook, scenario directory or individual files named by the flags
func (f Config) loadDataset() (*entities.Dataset, error) {
	if f.WorkbookFile != "" {
		return xlsx.NewLoader().LoadWorkbook(f.WorkbookFile)
	}

	loader := csv.NewLoader()
	if f.ScenarioDir != "" {
		return loader.LoadScenario(f.ScenarioDir)
	}

	ds := &entities.Dataset{}
	var err error
	if ds.Sales, err = loader.LoadSales(f.SalesFile); err != nil {
		return nil, err
	}
	if ds.Inventory, err = loader.LoadInventory(f.InventoryFile); err != nil {
		return nil, err
	}
	if f.ProcurementFile != "" {
		if ds.Procurement, err = loader.LoadProcurement(f.ProcurementFile); err != nil {
			return nil, err
		}
	}
	if f.LogisticsFile != "" {
		if ds.Logistics, err = loader.LoadLogistics(f.LogisticsFile); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// printHeader prints the command header information
func (c *PlanCommand) printHeader(files map[string]string, opts dto.PlanOptions) {
	fmt.Fprintf(c.out, "🚀 Supply Planning CLI\n")
	fmt.Fprintf(c.out, "Input files:\n")
	for _, name := range []string{"Workbook", "Sales", "Inventory", "Procurement", "Logistics"} {
		if path, ok := files[name]; ok && path != "" {
			fmt.Fprintf(c.out, "  %s: %s\n", name, path)
		}
	}
	fmt.Fprintf(c.out, "Forecast: %s, %d %s periods at %.0f%% confidence\n",
		opts.Method, opts.Horizon, opts.Granularity, opts.Confidence*100)
	fmt.Fprintf(c.out, "Service level: %.1f%%\n", opts.ServiceLevel*100)
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Fprintf(c.out, `Supply Planning CLI - KPIs, demand forecasts and reorder advice for FMCG supply chains

USAGE:
    supplyplan -scenario <directory>            # Use scenario directory with CSV files
    supplyplan -sales <file> -inventory <file>  # Use individual CSV files
    supplyplan -workbook <file.xlsx>            # Use one workbook with a sheet per dataset
    supplyplan -serve                           # Start the dashboard API

OPTIONS:
    -scenario <dir>         Path to scenario directory containing CSV files
    -sales <file>           Path to sales CSV file
    -inventory <file>       Path to inventory CSV file
    -procurement <file>     Path to procurement CSV file (optional)
    -logistics <file>       Path to logistics CSV file (optional)
    -workbook <file>        Path to XLSX workbook
    -config <file>          Path to TOML configuration (default: ./config.toml if present)
    -output <dir>           Output directory for results (required for csv and xlsx)
    -format <fmt>           Output format: text, json, csv, xlsx (default: text)
    -horizon <n>            Number of forecast periods
    -granularity <g>        Forecast period: day or week
    -method <m>             Forecast method: holt_winters, exponential_smoothing, moving_average
    -service-level <p>      Cycle service level for safety stock, e.g. 0.95
    -from <date>            First date of the KPI and history window (YYYY-MM-DD)
    -to <date>              Last date of the KPI and history window (YYYY-MM-DD)
    -skus <list>            Comma separated SKUs to plan
    -verbose                Enable verbose output
    -serve                  Start the dashboard API instead of planning once
    -port <n>               Dashboard API port (default: 8080 or SUPPLYPLAN_PORT)
    -help                   Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── sales.csv         # Daily units sold per SKU
    ├── inventory.csv     # Daily opening and closing stock per SKU
    ├── procurement.csv   # Supplier lead times and unit costs (optional)
    └── logistics.csv     # Transport lanes and shipments (optional)

CSV FILE FORMATS:

sales.csv:
    sku,date,units_sold,unit_price
    COLA-330,2024-01-01,20,1.20

inventory.csv:
    sku,date,opening_stock,closing_stock
    COLA-330,2024-01-01,600,580

procurement.csv:
    sku,supplier_id,lead_time_days,unit_cost
    COLA-330,SUP-CHEAP,7,0.80

logistics.csv:
    sku,shipment_id,transport_mode,delivery_time_days,cost_per_km,distance_km,units_shipped
    ,LANE-ROAD,road,2,1.00,100,
    COLA-330,SHP-001,air,1,5.00,100,250

ENVIRONMENT:
    SUPPLYPLAN_HORIZON, SUPPLYPLAN_SERVICE_LEVEL, SUPPLYPLAN_CONFIDENCE, SUPPLYPLAN_GRANULARITY,
    SUPPLYPLAN_METHOD, SUPPLYPLAN_FALLBACK, SUPPLYPLAN_WORKERS, SUPPLYPLAN_PORT,
    SUPPLYPLAN_DB_DRIVER, SUPPLYPLAN_DB_DSN, REDIS_ENABLED, REDIS_HOST, REDIS_PORT, REDIS_PASSWORD

EXAMPLES:
    # Plan a scenario with verbose output
    supplyplan -scenario example/fmcg_basic -verbose

    # Weekly forecast over 8 weeks, exported as CSV
    supplyplan -scenario example/fmcg_basic -granularity week -horizon 8 -format csv -output results/

    # Plan a workbook and export an Excel report
    supplyplan -workbook data/supply.xlsx -format xlsx -output results/

    # Only plan January and two SKUs
    supplyplan -scenario example/fmcg_basic -from 2024-01-01 -to 2024-01-31 -skus COLA-330,CHIPS-150
`)
}
