package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// DefaultTTL bounds how long a cached plan is reused
const DefaultTTL = 30 * time.Minute

// PlanCache stores serialized plan results by input fingerprint
type PlanCache struct {
	store Store
	ttl   time.Duration
}

// NewPlanCache creates a plan cache on top of a store. A nil store disables caching.
func NewPlanCache(store Store, ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PlanCache{store: store, ttl: ttl}
}

// Get decodes a cached plan into dest and reports whether it was found
func (c *PlanCache) Get(ctx context.Context, fingerprint string, dest interface{}) bool {
	if c == nil || c.store == nil {
		return false
	}
	return c.store.Get(ctx, planKey(fingerprint), dest) == nil
}

// Set caches a plan under its fingerprint
func (c *PlanCache) Set(ctx context.Context, fingerprint string, plan interface{}) error {
	if c == nil || c.store == nil {
		return fmt.Errorf("plan cache not available")
	}
	return c.store.Set(ctx, planKey(fingerprint), plan, c.ttl)
}

// Invalidate drops a cached plan
func (c *PlanCache) Invalidate(ctx context.Context, fingerprint string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, planKey(fingerprint))
}

func planKey(fingerprint string) string {
	return "supplyplan:plan:" + fingerprint
}

// Fingerprint hashes a dataset and the options used to plan it.
// Equal inputs always produce equal fingerprints, so a cached plan can stand in for a re-run.
func Fingerprint(ds *entities.Dataset, options interface{}) (string, error) {
	h := xxhash.New()
	var buf [8]byte

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		h.WriteString(s)
		h.Write([]byte{0})
	}
	writeTable := func(name string, n int) {
		writeString(name)
		writeString(strconv.Itoa(n))
	}

	writeTable("sales", len(ds.Sales))
	for _, r := range ds.Sales {
		writeString(string(r.SKU))
		writeString(r.Date.Format(entities.DateLayout))
		writeFloat(r.UnitsSold)
		if r.UnitPrice.Valid {
			writeString(r.UnitPrice.Decimal.String())
		} else {
			writeString("")
		}
	}

	writeTable("inventory", len(ds.Inventory))
	for _, r := range ds.Inventory {
		writeString(string(r.SKU))
		writeString(r.Date.Format(entities.DateLayout))
		writeFloat(r.OpeningStock)
		writeFloat(r.ClosingStock)
	}

	writeTable("procurement", len(ds.Procurement))
	for _, r := range ds.Procurement {
		writeString(string(r.SKU))
		writeString(string(r.SupplierID))
		writeFloat(r.LeadTimeDays)
		writeString(r.UnitCost.String())
	}

	writeTable("logistics", len(ds.Logistics))
	for _, r := range ds.Logistics {
		writeString(string(r.SKU))
		writeString(r.ShipmentID)
		writeString(r.Mode.String())
		writeFloat(r.DeliveryTimeDays)
		writeString(r.CostPerKm.String())
		writeFloat(r.DistanceKm)
		writeFloat(r.UnitsShipped)
	}

	opts, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to encode options: %w", err)
	}
	writeString("options")
	h.Write(opts)

	return strconv.FormatUint(h.Sum64(), 16), nil
}
