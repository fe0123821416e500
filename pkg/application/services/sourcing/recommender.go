package sourcing

import (
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Weights bounds the share of the score given to speed. The share moves from Min to Max as
// urgency rises from 0 to 1; the rest of the score is cost.
type Weights struct {
	MinSpeed float64
	MaxSpeed float64
}

// SpeedWeight interpolates the speed share for an urgency score
func (w Weights) SpeedWeight(urgency float64) float64 {
	urgency = math.Min(1, math.Max(0, urgency))
	return w.MinSpeed + (w.MaxSpeed-w.MinSpeed)*urgency
}

// Recommender ranks (supplier, transport mode) pairs for a SKU
type Recommender struct {
	weights           Weights
	defaultDistanceKm float64
}

// NewRecommender creates a sourcing recommender
func NewRecommender(weights Weights, defaultDistanceKm float64) *Recommender {
	return &Recommender{weights: weights, defaultDistanceKm: defaultDistanceKm}
}

// NewRecommenderFromOptions creates a sourcing recommender configured by plan options
func NewRecommenderFromOptions(opts dto.PlanOptions) *Recommender {
	return NewRecommender(Weights{MinSpeed: opts.MinSpeedWeight, MaxSpeed: opts.MaxSpeedWeight}, opts.DefaultDistanceKm)
}

// Ranking is the ordered option list of one SKU plus notes explaining missing data
type Ranking struct {
	Options []entities.SourcingOption
	Notes   []string
}

// Best returns the top ranked option
func (r Ranking) Best() (entities.SourcingOption, bool) {
	if len(r.Options) == 0 {
		return entities.SourcingOption{}, false
	}
	return r.Options[0], true
}

// Rank scores every supplier against every lane available to the SKU, best first.
// Without suppliers there is nothing to rank. Without lanes each supplier is offered with an
// unspecified mode and no transport cost or delivery time.
func (r *Recommender) Rank(sku entities.SKU, suppliers []*entities.ProcurementRecord, lanes []*entities.LogisticsRecord, orderQty, urgency float64) Ranking {
	var ranking Ranking
	if len(suppliers) == 0 {
		ranking.Notes = append(ranking.Notes, entities.NoteNoSupplier)
		return ranking
	}
	if len(lanes) == 0 {
		ranking.Notes = append(ranking.Notes, entities.NoteNoTransport)
	}

	if math.IsNaN(orderQty) || math.IsInf(orderQty, 0) {
		orderQty = 1
	}
	units := decimal.NewFromFloat(math.Max(1, orderQty))
	options := make([]entities.SourcingOption, 0, len(suppliers)*max(1, len(lanes)))
	for _, s := range suppliers {
		if len(lanes) == 0 {
			options = append(options, newOption(sku, s, entities.Unspecified, decimal.Zero, 0))
			continue
		}
		for _, l := range lanes {
			distance := l.DistanceKm
			if distance <= 0 {
				distance = r.defaultDistanceKm
			}
			transport := l.CostPerKm.Mul(decimal.NewFromFloat(distance)).Div(units)
			options = append(options, newOption(sku, s, l.Mode, transport, l.DeliveryTimeDays))
		}
	}

	r.score(options, urgency)
	slices.SortStableFunc(options, compareOptions)
	ranking.Options = options
	return ranking
}

func newOption(sku entities.SKU, s *entities.ProcurementRecord, mode entities.TransportMode, transport decimal.Decimal, deliveryDays float64) entities.SourcingOption {
	return entities.SourcingOption{
		SKU:            sku,
		SupplierID:     s.SupplierID,
		Mode:           mode,
		UnitCost:       s.UnitCost,
		TransportCost:  transport,
		LandedUnitCost: s.UnitCost.Add(transport),
		LeadTimeDays:   s.LeadTimeDays,
		DeliveryDays:   deliveryDays,
		TotalDays:      s.LeadTimeDays + deliveryDays,
	}
}

// score min-max normalises cost and time across the candidates and blends them
func (r *Recommender) score(options []entities.SourcingOption, urgency float64) {
	costs := make([]float64, len(options))
	days := make([]float64, len(options))
	for i, o := range options {
		costs[i] = o.LandedUnitCost.InexactFloat64()
		days[i] = o.TotalDays
	}
	normCost := normalize(costs)
	normDays := normalize(days)

	w := r.weights.SpeedWeight(urgency)
	for i := range options {
		options[i].Score = (1-w)*normCost[i] + w*normDays[i]
	}
}

// normalize maps values onto [0, 1]; all zeros when every value is equal
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// compareOptions orders by score, landed cost, supplier id, then transport mode
func compareOptions(a, b entities.SourcingOption) int {
	switch {
	case a.Score < b.Score:
		return -1
	case a.Score > b.Score:
		return 1
	}
	if c := a.LandedUnitCost.Cmp(b.LandedUnitCost); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.SupplierID), string(b.SupplierID)); c != 0 {
		return c
	}
	return strings.Compare(a.Mode.String(), b.Mode.String())
}
