package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UrgencyLevel buckets an urgency score for display and filtering
type UrgencyLevel int

const (
	LowUrgency UrgencyLevel = iota
	MediumUrgency
	HighUrgency
)

// String method for UrgencyLevel enum
func (u UrgencyLevel) String() string {
	switch u {
	case LowUrgency:
		return "low"
	case MediumUrgency:
		return "medium"
	case HighUrgency:
		return "high"
	default:
		return "unknown"
	}
}

// ParseUrgencyLevel converts a level name into an UrgencyLevel; unknown names map to low
func ParseUrgencyLevel(s string) UrgencyLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return HighUrgency
	case "medium":
		return MediumUrgency
	default:
		return LowUrgency
	}
}

// MarshalText implements encoding.TextMarshaler
func (u UrgencyLevel) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *UrgencyLevel) UnmarshalText(text []byte) error {
	*u = ParseUrgencyLevel(string(text))
	return nil
}

// Recommendation notes explaining degraded output
const (
	NoteNoSupplier      = "no_supplier"
	NoteNoTransport     = "no_transport"
	NoteNaiveForecast   = "naive_forecast"
	NoteNoDemand        = "no_demand"
	NoteNoInventoryData = "no_inventory"
)

// SourcingOption is one (supplier, transport mode) pair able to replenish a SKU
type SourcingOption struct {
	SKU            SKU             `json:"sku"`
	SupplierID     SupplierID      `json:"supplier_id"`
	Mode           TransportMode   `json:"transport_mode"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TransportCost  decimal.Decimal `json:"transport_cost_per_unit"`
	LandedUnitCost decimal.Decimal `json:"landed_unit_cost"`
	LeadTimeDays   float64         `json:"lead_time_days"`
	DeliveryDays   float64         `json:"delivery_days"`
	TotalDays      float64         `json:"total_days"`
	Score          float64         `json:"score"`
}

// Recommendation is the replenishment advice for one SKU
type Recommendation struct {
	SKU                 SKU           `json:"sku"`
	CurrentStock        float64       `json:"current_stock"`
	AvgDailyDemand      float64       `json:"avg_daily_demand"`
	LeadTimeDemand      float64       `json:"lead_time_demand"`
	SafetyStock         float64       `json:"safety_stock"`
	ReorderPoint        float64       `json:"reorder_point"`
	RecommendedOrderQty float64       `json:"recommended_order_qty"`
	SupplierID          SupplierID    `json:"supplier_id"`
	TransportMode       TransportMode `json:"transport_mode"`
	LeadTimeDays        float64       `json:"lead_time_days"`
	DaysUntilStockout   Metric        `json:"days_until_stockout"`
	UrgencyScore        float64       `json:"urgency_score"`
	Urgency             UrgencyLevel  `json:"urgency"`
	Fallback            bool          `json:"fallback"`
	Notes               []string      `json:"notes,omitempty"`
}

// NeedsOrder reports whether a purchase order should be placed now
func (r *Recommendation) NeedsOrder() bool {
	return r.RecommendedOrderQty > 0
}

// AddNote appends a note once
func (r *Recommendation) AddNote(note string) {
	for _, n := range r.Notes {
		if n == note {
			return
		}
	}
	r.Notes = append(r.Notes, note)
}
