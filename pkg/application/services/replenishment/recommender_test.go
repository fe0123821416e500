package replenishment

import (
	"math"
	"slices"
	"testing"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/services"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

// flatForecast predicts the same daily demand for every period
func flatForecast(sku entities.SKU, daily float64, horizon int, fallback bool) *entities.ForecastResult {
	points := make([]entities.ForecastPoint, horizon)
	for i := range points {
		points[i] = entities.ForecastPoint{Date: testhelpers.Day(i), Predicted: daily, Lower: daily, Upper: daily}
	}
	fc := entities.NewForecastResult(sku, "moving_average", entities.Daily, horizon, slices.Values(points))
	fc.Fallback = fallback
	return fc
}

func zeroCyclePolicy() Policy {
	policy := PolicyFromOptions(dto.DefaultPlanOptions())
	policy.CycleStockDays = 0
	return policy
}

func TestRecommender_ReorderPointExample(t *testing.T) {
	// d = 10/day over a 4 day lead time gives 40 units of lead time demand.
	// sigma_d is chosen so the safety stock is exactly 10 at the configured service level.
	policy := zeroCyclePolicy()
	z := services.ServiceLevelZ(policy.ServiceLevel)
	sigma := 10 / (2 * z)

	tests := []struct {
		name        string
		stock       float64
		expectedQty float64
	}{
		{"stock at reorder point", 50, 0},
		{"stock below reorder point", 30, 20},
		{"stock above reorder point", 80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecommender(policy).Recommend(Input{
				SKU:          "A",
				Forecast:     flatForecast("A", 10, 7, false),
				CurrentStock: tt.stock,
				HasInventory: true,
				DemandStdDev: sigma,
				LeadTimeDays: 4,
			})

			if math.Abs(rec.LeadTimeDemand-40) > 1e-9 {
				t.Errorf("Expected lead time demand 40, got %v", rec.LeadTimeDemand)
			}
			if math.Abs(rec.SafetyStock-10) > 1e-9 {
				t.Errorf("Expected safety stock 10, got %v", rec.SafetyStock)
			}
			if math.Abs(rec.ReorderPoint-50) > 1e-9 {
				t.Errorf("Expected reorder point 50, got %v", rec.ReorderPoint)
			}
			if rec.RecommendedOrderQty != tt.expectedQty {
				t.Errorf("Expected order quantity %v, got %v", tt.expectedQty, rec.RecommendedOrderQty)
			}
			if len(rec.Notes) != 0 {
				t.Errorf("Expected no notes, got %v", rec.Notes)
			}
		})
	}
}

func TestRecommender_CycleStock(t *testing.T) {
	policy := PolicyFromOptions(dto.DefaultPlanOptions())
	rec := NewRecommender(policy).Recommend(Input{
		SKU:          "A",
		Forecast:     flatForecast("A", 10, 7, false),
		CurrentStock: 40,
		HasInventory: true,
		LeadTimeDays: 4,
	})

	// ROP 40 + 7 days of cycle stock (70) - 40 on hand
	if rec.RecommendedOrderQty != 70 {
		t.Errorf("Expected order quantity 70, got %v", rec.RecommendedOrderQty)
	}
}

func TestRecommender_OrderQuantityNeverNegative(t *testing.T) {
	recommender := NewRecommender(PolicyFromOptions(dto.DefaultPlanOptions()))
	for _, stock := range []float64{-20, 0, 1, 35.5, 1e6} {
		for _, demand := range []float64{0, 0.25, 3, 400} {
			rec := recommender.Recommend(Input{
				SKU:            "A",
				Forecast:       flatForecast("A", demand, 14, false),
				CurrentStock:   stock,
				HasInventory:   true,
				DemandStdDev:   demand / 2,
				LeadTimeDays:   6,
				LeadTimeStdDev: 1.5,
			})
			if rec.RecommendedOrderQty < 0 || math.Signbit(rec.RecommendedOrderQty) {
				t.Errorf("Expected non-negative quantity for stock %v demand %v, got %v", stock, demand, rec.RecommendedOrderQty)
			}
			if rec.UrgencyScore < 0 || rec.UrgencyScore > 1 {
				t.Errorf("Expected urgency in [0, 1] for stock %v demand %v, got %v", stock, demand, rec.UrgencyScore)
			}
		}
	}
}

func TestRecommender_NoDemand(t *testing.T) {
	rec := NewRecommender(zeroCyclePolicy()).Recommend(Input{
		SKU:          testhelpers.SKUTea,
		CurrentStock: 75,
		HasInventory: true,
		LeadTimeDays: 3,
	})

	if rec.RecommendedOrderQty != 0 {
		t.Errorf("Expected no order without demand, got %v", rec.RecommendedOrderQty)
	}
	if rec.UrgencyScore != 0 || rec.Urgency != entities.LowUrgency {
		t.Errorf("Expected low urgency, got %v (%s)", rec.UrgencyScore, rec.Urgency)
	}
	if rec.DaysUntilStockout.Valid {
		t.Errorf("Expected days until stockout n/a, got %s", rec.DaysUntilStockout)
	}
	if !slices.Contains(rec.Notes, entities.NoteNoDemand) {
		t.Errorf("Expected %s note, got %v", entities.NoteNoDemand, rec.Notes)
	}
}

func TestRecommender_Urgency(t *testing.T) {
	tests := []struct {
		name          string
		stock         float64
		leadTime      float64
		expectedScore float64
		expectedLevel entities.UrgencyLevel
	}{
		{"out of stock", 0, 2, 1, entities.HighUrgency},
		{"cover shorter than lead time", 20, 5, 1, entities.HighUrgency},
		{"half the cover", 100, 5, 0.5, entities.MediumUrgency},
		{"plenty of cover", 200, 2, 0.1, entities.LowUrgency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecommender(zeroCyclePolicy()).Recommend(Input{
				SKU:          "A",
				Forecast:     flatForecast("A", 10, 7, false),
				CurrentStock: tt.stock,
				HasInventory: true,
				LeadTimeDays: tt.leadTime,
			})
			if math.Abs(rec.UrgencyScore-tt.expectedScore) > 1e-9 {
				t.Errorf("Expected urgency score %v, got %v", tt.expectedScore, rec.UrgencyScore)
			}
			if rec.Urgency != tt.expectedLevel {
				t.Errorf("Expected urgency %s, got %s", tt.expectedLevel, rec.Urgency)
			}
		})
	}
}

func TestRecommender_Notes(t *testing.T) {
	rec := NewRecommender(zeroCyclePolicy()).Recommend(Input{
		SKU:      "A",
		Forecast: flatForecast("A", 4, 7, true),
	})

	if !rec.Fallback {
		t.Error("Expected fallback flag from naive forecast")
	}
	for _, note := range []string{entities.NoteNaiveForecast, entities.NoteNoInventoryData} {
		if !slices.Contains(rec.Notes, note) {
			t.Errorf("Expected note %s, got %v", note, rec.Notes)
		}
	}
	if rec.UrgencyScore != 1 {
		t.Errorf("Expected maximal urgency with no stock, got %v", rec.UrgencyScore)
	}
}

func TestRecommender_WeeklyForecast(t *testing.T) {
	points := []entities.ForecastPoint{{Predicted: 70}, {Predicted: 70}}
	fc := entities.NewForecastResult("A", "moving_average", entities.Weekly, 2, slices.Values(points))

	rec := NewRecommender(zeroCyclePolicy()).Recommend(Input{SKU: "A", Forecast: fc, CurrentStock: 100, HasInventory: true, LeadTimeDays: 3})
	if rec.AvgDailyDemand != 10 {
		t.Errorf("Expected weekly forecast of 70 to give 10 per day, got %v", rec.AvgDailyDemand)
	}
}

func TestInputFromKPIs(t *testing.T) {
	kpis := &entities.KPISet{
		SKU:              "A",
		CurrentStock:     12,
		DailySalesStdDev: 3,
		AvgLeadTime:      entities.NA(),
	}
	in := InputFromKPIs(kpis, nil, true)
	if in.LeadTimeDays != 0 {
		t.Errorf("Expected n/a lead time to become 0, got %v", in.LeadTimeDays)
	}
	if in.CurrentStock != 12 || in.DemandStdDev != 3 {
		t.Errorf("Expected stock 12 and sigma 3, got %v and %v", in.CurrentStock, in.DemandStdDev)
	}
}
