package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/sqlstore"
)

// ErrNoRun is returned when no plan has been run in the workspace yet
var ErrNoRun = errors.New("no plan run available")

// Workspace holds the uploaded dataset slots and the latest plan run
type Workspace interface {
	Replace(ctx context.Context, kind entities.DatasetKind, ds *entities.Dataset) error
	Dataset(ctx context.Context) (*entities.Dataset, error)
	SaveRun(ctx context.Context, result *dto.PlanResult) error
	LatestRun(ctx context.Context) (*dto.PlanResult, error)
}

// MemoryWorkspace keeps everything in process memory
type MemoryWorkspace struct {
	mu      sync.RWMutex
	dataset entities.Dataset
	latest  *dto.PlanResult
}

func NewMemoryWorkspace() *MemoryWorkspace {
	return &MemoryWorkspace{}
}

// Seed fills every slot from an already loaded dataset
func (w *MemoryWorkspace) Seed(ds *entities.Dataset) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataset = *ds
}

func (w *MemoryWorkspace) Replace(ctx context.Context, kind entities.DatasetKind, ds *entities.Dataset) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataset.Merge(kind, ds)
	return nil
}

func (w *MemoryWorkspace) Dataset(ctx context.Context) (*entities.Dataset, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ds := w.dataset
	return &ds, nil
}

func (w *MemoryWorkspace) SaveRun(ctx context.Context, result *dto.PlanResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest = result
	return nil
}

func (w *MemoryWorkspace) LatestRun(ctx context.Context) (*dto.PlanResult, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.latest == nil {
		return nil, ErrNoRun
	}
	return w.latest, nil
}

// StoreWorkspace persists slots and runs in a SQL database.
// The decoded latest run is kept in memory so reads do not hit the database.
type StoreWorkspace struct {
	store *sqlstore.Store

	mu     sync.RWMutex
	latest *dto.PlanResult
}

func NewStoreWorkspace(store *sqlstore.Store) *StoreWorkspace {
	return &StoreWorkspace{store: store}
}

func (w *StoreWorkspace) Replace(ctx context.Context, kind entities.DatasetKind, ds *entities.Dataset) error {
	return w.store.Replace(ctx, kind, ds)
}

func (w *StoreWorkspace) Dataset(ctx context.Context) (*entities.Dataset, error) {
	return w.store.Dataset(ctx)
}

func (w *StoreWorkspace) SaveRun(ctx context.Context, result *dto.PlanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", result.RunID, err)
	}
	if err := w.store.SaveRun(ctx, result.RunID, result.GeneratedAt, payload); err != nil {
		return err
	}

	w.mu.Lock()
	w.latest = result
	w.mu.Unlock()
	return nil
}

func (w *StoreWorkspace) LatestRun(ctx context.Context) (*dto.PlanResult, error) {
	w.mu.RLock()
	latest := w.latest
	w.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	payload, err := w.store.LatestRun(ctx)
	if errors.Is(err, sqlstore.ErrNoRuns) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, err
	}

	var result dto.PlanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored run: %w", err)
	}

	w.mu.Lock()
	if w.latest == nil {
		w.latest = &result
	}
	latest = w.latest
	w.mu.Unlock()
	return latest, nil
}
