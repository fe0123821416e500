// Package sqlstore persists uploaded datasets and plan runs with GORM.
//
// The store backs the dashboard workspace: each dataset kind occupies one slot that an upload
// replaces wholesale, and every completed run is kept as a JSON document keyed by its run id.
// SQLite is used for local workspaces and PostgreSQL for shared deployments.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const batchSize = 500

// Store holds the GORM connection
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "sqlite3", "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (expected: sqlite or postgres)", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&SalesRow{}, &InventoryRow{}, &ProcurementRow{}, &LogisticsRow{}, &RunRow{}); err != nil {
		return nil, wrapDBError("migrate", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Replace swaps the stored table of one dataset kind for the rows held by ds
func (s *Store) Replace(ctx context.Context, kind entities.DatasetKind, ds *entities.Dataset) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch kind {
		case entities.SalesDataset:
			return replaceTable(tx, toSalesRows(ds.Sales))
		case entities.InventoryDataset:
			return replaceTable(tx, toInventoryRows(ds.Inventory))
		case entities.ProcurementDataset:
			return replaceTable(tx, toProcurementRows(ds.Procurement))
		case entities.LogisticsDataset:
			return replaceTable(tx, toLogisticsRows(ds.Logistics))
		default:
			return fmt.Errorf("unsupported dataset kind: %d", kind)
		}
	})
	return wrapDBError("replace "+kind.String(), err)
}

func replaceTable[T any](tx *gorm.DB, rows []T) error {
	var model T
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// Dataset loads every stored table
func (s *Store) Dataset(ctx context.Context) (*entities.Dataset, error) {
	db := s.db.WithContext(ctx)
	ds := &entities.Dataset{}

	var sales []SalesRow
	if err := db.Order("id").Find(&sales).Error; err != nil {
		return nil, wrapDBError("load sales", err)
	}
	for _, r := range sales {
		ds.Sales = append(ds.Sales, r.record())
	}

	var inventory []InventoryRow
	if err := db.Order("id").Find(&inventory).Error; err != nil {
		return nil, wrapDBError("load inventory", err)
	}
	for _, r := range inventory {
		ds.Inventory = append(ds.Inventory, r.record())
	}

	var procurement []ProcurementRow
	if err := db.Order("id").Find(&procurement).Error; err != nil {
		return nil, wrapDBError("load procurement", err)
	}
	for _, r := range procurement {
		ds.Procurement = append(ds.Procurement, r.record())
	}

	var logistics []LogisticsRow
	if err := db.Order("id").Find(&logistics).Error; err != nil {
		return nil, wrapDBError("load logistics", err)
	}
	for _, r := range logistics {
		record, err := r.record()
		if err != nil {
			return nil, wrapDBError("load logistics", err)
		}
		ds.Logistics = append(ds.Logistics, record)
	}

	return ds, nil
}

// SaveRun stores a serialized plan result
func (s *Store) SaveRun(ctx context.Context, id string, generatedAt time.Time, payload []byte) error {
	row := RunRow{ID: id, GeneratedAt: generatedAt.UTC(), Payload: datatypes.JSON(payload)}
	return wrapDBError("save run", s.db.WithContext(ctx).Create(&row).Error)
}

// LatestRun returns the payload of the most recently generated run
func (s *Store) LatestRun(ctx context.Context) ([]byte, error) {
	var row RunRow
	err := s.db.WithContext(ctx).Order("generated_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, wrapDBError("latest run", err)
	}
	return []byte(row.Payload), nil
}
