package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/cache"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/sqlstore"
	"github.com/vsinha/supplyplan/pkg/interfaces/api"
)

// ServeCommand starts the dashboard API. Any dataset named by the flags seeds the workspace.
type ServeCommand struct {
	config Config
}

// NewServeCommand creates a new serve command with the given configuration
func NewServeCommand(config Config) *ServeCommand {
	return &ServeCommand{config: config}
}

// Execute runs the server until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context) error {
	if c.config.sources() > 1 {
		return fmt.Errorf("validation error: -scenario, -workbook and individual CSV files are mutually exclusive")
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.config.Port != 0 {
		cfg.Server.Port = c.config.Port
	}

	opts, err := c.config.overrideOptions(cfg.PlanOptions())
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	workspace, closeWorkspace, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer closeWorkspace()

	if c.config.hasSource() {
		if err := c.seed(ctx, workspace); err != nil {
			return err
		}
	}

	handler := api.NewHandler(workspace, openPlanCache(cfg), events.NewInMemoryEventStore(), opts)
	return api.NewServer(cfg, handler).Run(ctx, cfg.Addr())
}

func (c *ServeCommand) seed(ctx context.Context, workspace api.Workspace) error {
	ds, err := c.config.loadDataset()
	if err != nil {
		return fmt.Errorf("error loading data: %w", err)
	}
	for _, kind := range entities.AllDatasetKinds {
		if err := workspace.Replace(ctx, kind, ds); err != nil {
			return fmt.Errorf("failed to seed %s dataset: %w", kind, err)
		}
		log.Printf("📂 Seeded %s dataset with %d rows", kind, ds.Len(kind))
	}
	return nil
}

// openWorkspace picks the SQL workspace when a driver is configured and the in-memory one otherwise
func openWorkspace(cfg *config.Config) (api.Workspace, func(), error) {
	if cfg.Storage.Driver == "" {
		log.Println("📦 Using in-memory workspace")
		return api.NewMemoryWorkspace(), func() {}, nil
	}

	store, err := sqlstore.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workspace database: %w", err)
	}
	log.Printf("✅ Connected to %s workspace", cfg.Storage.Driver)
	return api.NewStoreWorkspace(store), func() { store.Close() }, nil
}

// openPlanCache uses Redis when enabled and reachable, falling back to process memory
func openPlanCache(cfg *config.Config) *cache.PlanCache {
	ttl := time.Duration(cfg.Redis.TTLMinutes) * time.Minute
	if cfg.Redis.Enabled {
		if client := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password); client != nil {
			return cache.NewPlanCache(client, ttl)
		}
		log.Println("⚠️  Redis unavailable, caching plans in memory")
	}
	return cache.NewPlanCache(cache.NewMemoryStore(), ttl)
}
