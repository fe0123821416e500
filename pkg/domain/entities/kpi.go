package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is an inclusive reporting window. Zero bounds are open.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether a date falls inside the period
func (p Period) Contains(date time.Time) bool {
	if !p.Start.IsZero() && date.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && date.After(p.End) {
		return false
	}
	return true
}

// Truncate moves both set bounds to the start of their calendar day
func (p Period) Truncate() Period {
	if !p.Start.IsZero() {
		p.Start = Day(p.Start)
	}
	if !p.End.IsZero() {
		p.End = Day(p.End)
	}
	return p
}

// Bounded reports whether both ends of the period are set
func (p Period) Bounded() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// KPISet holds the descriptive statistics of one SKU over a period
type KPISet struct {
	SKU                  SKU             `json:"sku"`
	PeriodStart          time.Time       `json:"period_start"`
	PeriodEnd            time.Time       `json:"period_end"`
	Days                 int             `json:"days"`
	TotalUnitsSold       float64         `json:"total_units_sold"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	AvgDailySales        float64         `json:"avg_daily_sales"`
	DailySalesStdDev     float64         `json:"daily_sales_stddev"`
	AvgStock             float64         `json:"avg_stock"`
	CurrentStock         float64         `json:"current_stock"`
	StockTurnover        Metric          `json:"stock_turnover"`
	DaysOfSupply         Metric          `json:"days_of_supply"`
	AvgLeadTime          Metric          `json:"avg_lead_time_days"`
	LeadTimeStdDev       float64         `json:"lead_time_stddev"`
	AvgDeliveryTime      Metric          `json:"avg_delivery_time_days"`
	LogisticsCostPerUnit Metric          `json:"logistics_cost_per_unit"`
	StockoutDays         int             `json:"stockout_days"`
}

// AtRisk reports whether current cover runs out before a replenishment could arrive
func (k *KPISet) AtRisk() bool {
	if !k.DaysOfSupply.Valid {
		return false
	}
	return k.DaysOfSupply.Value < k.AvgLeadTime.Or(0)
}

// KPISummary is the overall rollup across SKUs
type KPISummary struct {
	SKUCount            int             `json:"sku_count"`
	TotalUnitsSold      float64         `json:"total_units_sold"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AvgInventoryPerSKU  float64         `json:"avg_inventory_per_sku"`
	StockoutRiskPct     float64         `json:"stockout_risk_pct"`
	AvgLeadTimeDays     Metric          `json:"avg_lead_time_days"`
	AvgDeliveryTimeDays Metric          `json:"avg_delivery_time_days"`
}
