package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/supplyplan/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		salesFile       = flag.String("sales", "", "Path to sales CSV file")
		inventoryFile   = flag.String("inventory", "", "Path to inventory CSV file")
		procurementFile = flag.String("procurement", "", "Path to procurement CSV file (optional)")
		logisticsFile   = flag.String("logistics", "", "Path to logistics CSV file (optional)")
		workbookFile    = flag.String("workbook", "", "Path to XLSX workbook with one sheet per dataset")
		configFile      = flag.String("config", "", "Path to TOML configuration file")
		outputDir       = flag.String("output", "", "Output directory for results (optional)")
		format          = flag.String("format", "text", "Output format: text, json, csv, xlsx")
		horizon         = flag.Int("horizon", 0, "Number of forecast periods")
		serviceLevel    = flag.Float64("service-level", 0, "Cycle service level for safety stock")
		granularity     = flag.String("granularity", "", "Forecast period: day or week")
		method          = flag.String("method", "", "Forecast method")
		from            = flag.String("from", "", "First date of the planning window (YYYY-MM-DD)")
		to              = flag.String("to", "", "Last date of the planning window (YYYY-MM-DD)")
		skus            = flag.String("skus", "", "Comma separated SKUs to plan")
		port            = flag.Int("port", 0, "Dashboard API port (with -serve)")
		verbose         = flag.Bool("verbose", false, "Enable verbose output")
		serve           = flag.Bool("serve", false, "Start the dashboard API")
		help            = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ScenarioDir:     *scenarioDir,
		SalesFile:       *salesFile,
		InventoryFile:   *inventoryFile,
		ProcurementFile: *procurementFile,
		LogisticsFile:   *logisticsFile,
		WorkbookFile:    *workbookFile,
		ConfigFile:      *configFile,
		OutputDir:       *outputDir,
		Format:          *format,
		Horizon:         *horizon,
		ServiceLevel:    *serviceLevel,
		Granularity:     *granularity,
		Method:          *method,
		From:            *from,
		To:              *to,
		SKUs:            *skus,
		Port:            *port,
		Verbose:         *verbose,
		Help:            *help,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *serve && !*help {
		err = commands.NewServeCommand(config).Execute(ctx)
	} else {
		err = commands.NewPlanCommand(config).Execute(ctx)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
