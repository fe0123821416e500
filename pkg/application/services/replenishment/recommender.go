package replenishment

import (
	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/services"
)

// Policy holds the inventory policy parameters of a run
type Policy struct {
	ServiceLevel           float64
	CycleStockDays         float64
	MediumUrgencyThreshold float64
	HighUrgencyThreshold   float64
}

// PolicyFromOptions extracts the replenishment policy from plan options
func PolicyFromOptions(opts dto.PlanOptions) Policy {
	return Policy{
		ServiceLevel:           opts.ServiceLevel,
		CycleStockDays:         opts.CycleStockDays,
		MediumUrgencyThreshold: opts.MediumUrgencyThreshold,
		HighUrgencyThreshold:   opts.HighUrgencyThreshold,
	}
}

// Input is everything known about one SKU when recommending an order
type Input struct {
	SKU            entities.SKU
	Forecast       *entities.ForecastResult // nil when the SKU has no forecast
	CurrentStock   float64
	HasInventory   bool
	DemandStdDev   float64 // daily
	LeadTimeDays   float64
	LeadTimeStdDev float64
}

// InputFromKPIs seeds an input with the SKU's stock, demand variability and mean supplier lead time
func InputFromKPIs(kpis *entities.KPISet, fc *entities.ForecastResult, hasInventory bool) Input {
	return Input{
		SKU:            kpis.SKU,
		Forecast:       fc,
		CurrentStock:   kpis.CurrentStock,
		HasInventory:   hasInventory,
		DemandStdDev:   kpis.DailySalesStdDev,
		LeadTimeDays:   kpis.AvgLeadTime.Or(0),
		LeadTimeStdDev: kpis.LeadTimeStdDev,
	}
}

// Recommender computes reorder points, order quantities and urgency
type Recommender struct {
	policy Policy
	z      float64
}

// NewRecommender creates a recommender for a policy
func NewRecommender(policy Policy) *Recommender {
	return &Recommender{
		policy: policy,
		z:      services.ServiceLevelZ(policy.ServiceLevel),
	}
}

// Recommend computes the replenishment advice for one SKU. It is pure: the same input always
// gives the same recommendation. Supplier and transport fields are left for sourcing to fill.
func (r *Recommender) Recommend(in Input) *entities.Recommendation {
	rec := &entities.Recommendation{
		SKU:          in.SKU,
		CurrentStock: in.CurrentStock,
		LeadTimeDays: in.LeadTimeDays,
	}

	if in.Forecast != nil {
		rec.AvgDailyDemand = in.Forecast.AvgDailyDemand()
		rec.Fallback = in.Forecast.Fallback
		if in.Forecast.Fallback {
			rec.AddNote(entities.NoteNaiveForecast)
		}
	}
	if !in.HasInventory {
		rec.AddNote(entities.NoteNoInventoryData)
	}

	d := rec.AvgDailyDemand
	rec.DaysUntilStockout = services.DaysUntilStockout(in.CurrentStock, d)
	if d <= 0 {
		rec.AvgDailyDemand = 0
		rec.AddNote(entities.NoteNoDemand)
		rec.Urgency = entities.LowUrgency
		return rec
	}

	rec.LeadTimeDemand = services.LeadTimeDemand(d, in.LeadTimeDays)
	rec.SafetyStock = services.SafetyStock(r.z, d, in.DemandStdDev, in.LeadTimeDays, in.LeadTimeStdDev)
	rec.ReorderPoint = services.ReorderPoint(rec.LeadTimeDemand, rec.SafetyStock)
	rec.RecommendedOrderQty = services.OrderQuantity(rec.ReorderPoint, d*r.policy.CycleStockDays, in.CurrentStock)

	rec.UrgencyScore = services.UrgencyScore(in.CurrentStock, d, in.LeadTimeDays)
	rec.Urgency = services.ClassifyUrgency(rec.UrgencyScore, r.policy.MediumUrgencyThreshold, r.policy.HighUrgencyThreshold)
	return rec
}
