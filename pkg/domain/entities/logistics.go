package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransportMode represents how a shipment travels
type TransportMode int

const (
	Unspecified TransportMode = iota
	Road
	Rail
	Air
	Sea
)

// String method for TransportMode enum
func (m TransportMode) String() string {
	switch m {
	case Road:
		return "road"
	case Rail:
		return "rail"
	case Air:
		return "air"
	case Sea:
		return "sea"
	default:
		return "unspecified"
	}
}

// ParseTransportMode converts a transport mode name into a TransportMode
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "road", "truck":
		return Road, nil
	case "rail", "train":
		return Rail, nil
	case "air":
		return Air, nil
	case "sea", "ocean":
		return Sea, nil
	case "unspecified", "":
		return Unspecified, nil
	default:
		return Unspecified, fmt.Errorf("invalid transport_mode: %s (expected: road, rail, air, or sea)", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m TransportMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *TransportMode) UnmarshalText(text []byte) error {
	parsed, err := ParseTransportMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// LogisticsRecord represents a transport lane or a shipment observation.
// Records without a SKU are global lanes usable by every SKU.
type LogisticsRecord struct {
	SKU              SKU
	ShipmentID       string
	Mode             TransportMode
	DeliveryTimeDays float64
	CostPerKm        decimal.Decimal
	DistanceKm       float64 // 0 = unknown
	UnitsShipped     float64 // 0 = unknown
}

// NewLogisticsRecord creates a validated LogisticsRecord
func NewLogisticsRecord(sku SKU, shipmentID string, mode TransportMode, deliveryTimeDays float64, costPerKm decimal.Decimal) (*LogisticsRecord, error) {
	if string(sku) == "" && shipmentID == "" {
		return nil, fmt.Errorf("either sku or shipment id is required")
	}
	if err := finite("delivery time", deliveryTimeDays); err != nil {
		return nil, err
	}
	if deliveryTimeDays < 0 {
		return nil, fmt.Errorf("delivery time cannot be negative, got %v", deliveryTimeDays)
	}
	if costPerKm.IsNegative() {
		return nil, fmt.Errorf("cost per km cannot be negative, got %s", costPerKm)
	}

	return &LogisticsRecord{
		SKU:              sku,
		ShipmentID:       shipmentID,
		Mode:             mode,
		DeliveryTimeDays: deliveryTimeDays,
		CostPerKm:        costPerKm,
	}, nil
}

// IsGlobal reports whether the lane applies to every SKU
func (r *LogisticsRecord) IsGlobal() bool {
	return r.SKU == ""
}

// TripCost returns cost per km times distance, or zero when distance is unknown
func (r *LogisticsRecord) TripCost() decimal.Decimal {
	if r.DistanceKm <= 0 || finite("distance", r.DistanceKm) != nil {
		return decimal.Zero
	}
	return r.CostPerKm.Mul(decimal.NewFromFloat(r.DistanceKm))
}
