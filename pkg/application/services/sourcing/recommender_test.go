package sourcing

import (
	"math"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

func cheapAndFast() []*entities.ProcurementRecord {
	return []*entities.ProcurementRecord{
		testhelpers.MustProcurement("A", "CHEAP", 5, "100"),
		testhelpers.MustProcurement("A", "FAST", 2, "120"),
	}
}

func TestRecommender_UrgencyShiftsTowardSpeed(t *testing.T) {
	recommender := NewRecommenderFromOptions(dto.DefaultPlanOptions())

	tests := []struct {
		name     string
		urgency  float64
		expected entities.SupplierID
	}{
		{"low urgency prefers cost", 0, "CHEAP"},
		{"high urgency prefers speed", 1, "FAST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranking := recommender.Rank("A", cheapAndFast(), nil, 10, tt.urgency)
			best, ok := ranking.Best()
			if !ok {
				t.Fatal("Expected a ranked option")
			}
			if best.SupplierID != tt.expected {
				t.Errorf("Expected %s first, got %s", tt.expected, best.SupplierID)
			}
		})
	}
}

func TestRecommender_PreferenceIsMonotoneInUrgency(t *testing.T) {
	recommender := NewRecommenderFromOptions(dto.DefaultPlanOptions())

	switched := false
	for step := 0; step <= 20; step++ {
		urgency := float64(step) / 20
		best, _ := recommender.Rank("A", cheapAndFast(), nil, 10, urgency).Best()
		fast := best.SupplierID == "FAST"
		if switched && !fast {
			t.Fatalf("Expected FAST to stay preferred once chosen, lost at urgency %v", urgency)
		}
		switched = switched || fast
	}
	if !switched {
		t.Error("Expected FAST to be preferred at some urgency")
	}
}

func TestRecommender_NoSupplier(t *testing.T) {
	ranking := NewRecommenderFromOptions(dto.DefaultPlanOptions()).Rank("A", nil, nil, 10, 0.5)
	if len(ranking.Options) != 0 {
		t.Errorf("Expected no options, got %d", len(ranking.Options))
	}
	if !slices.Equal(ranking.Notes, []string{entities.NoteNoSupplier}) {
		t.Errorf("Expected [%s], got %v", entities.NoteNoSupplier, ranking.Notes)
	}
	if _, ok := ranking.Best(); ok {
		t.Error("Expected no best option")
	}
}

func TestRecommender_NoTransport(t *testing.T) {
	ranking := NewRecommenderFromOptions(dto.DefaultPlanOptions()).Rank("A", cheapAndFast(), nil, 10, 0)
	if len(ranking.Options) != 2 {
		t.Fatalf("Expected 2 supplier-only options, got %d", len(ranking.Options))
	}
	for _, o := range ranking.Options {
		if o.Mode != entities.Unspecified || o.DeliveryDays != 0 || !o.TransportCost.IsZero() {
			t.Errorf("Expected unspecified mode with no transport, got %+v", o)
		}
	}
	if !slices.Contains(ranking.Notes, entities.NoteNoTransport) {
		t.Errorf("Expected %s note, got %v", entities.NoteNoTransport, ranking.Notes)
	}
}

func TestRecommender_LandedCostAndLanes(t *testing.T) {
	lanes := []*entities.LogisticsRecord{
		testhelpers.MustLane("A", entities.Air, 1, "5.00", 100),
		testhelpers.MustLane("", entities.Road, 3, "1.00", 0),
	}
	suppliers := []*entities.ProcurementRecord{testhelpers.MustProcurement("A", "S1", 4, "2.00")}

	ranking := NewRecommender(Weights{MinSpeed: 0, MaxSpeed: 0}, 50).Rank("A", suppliers, lanes, 25, 0)
	if len(ranking.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(ranking.Options))
	}

	// Pure cost weighting: road over the default 50 km costs 50/25 = 2 per unit, air 500/25 = 20
	road, air := ranking.Options[0], ranking.Options[1]
	if road.Mode != entities.Road || air.Mode != entities.Air {
		t.Fatalf("Expected road before air, got %s then %s", road.Mode, air.Mode)
	}
	if !road.LandedUnitCost.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected road landed cost 4, got %s", road.LandedUnitCost)
	}
	if !air.TransportCost.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected air transport cost 20 per unit, got %s", air.TransportCost)
	}
	if road.TotalDays != 7 || air.TotalDays != 5 {
		t.Errorf("Expected total days 7 and 5, got %v and %v", road.TotalDays, air.TotalDays)
	}
	if road.Score != 0 || air.Score != 1 {
		t.Errorf("Expected scores 0 and 1, got %v and %v", road.Score, air.Score)
	}
}

func TestRecommender_NonFiniteOrderQuantity(t *testing.T) {
	lanes := []*entities.LogisticsRecord{testhelpers.MustLane("A", entities.Road, 2, "1.00", 100)}
	suppliers := []*entities.ProcurementRecord{testhelpers.MustProcurement("A", "S1", 4, "2.00")}

	for _, qty := range []float64{math.NaN(), math.Inf(1)} {
		ranking := NewRecommender(Weights{MinSpeed: 0.2, MaxSpeed: 0.8}, 0).Rank("A", suppliers, lanes, qty, 0.5)
		best, ok := ranking.Best()
		if !ok {
			t.Fatalf("Expected an option for quantity %v", qty)
		}
		// sized as a single unit: 100 km at 1.00 per km
		if !best.TransportCost.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected transport cost 100 for quantity %v, got %s", qty, best.TransportCost)
		}
	}
}

func TestRecommender_TieBreak(t *testing.T) {
	suppliers := []*entities.ProcurementRecord{
		testhelpers.MustProcurement("A", "S2", 3, "10"),
		testhelpers.MustProcurement("A", "S1", 3, "10"),
	}
	lanes := []*entities.LogisticsRecord{
		testhelpers.MustLane("", entities.Road, 1, "0", 0),
		testhelpers.MustLane("", entities.Rail, 1, "0", 0),
	}

	ranking := NewRecommenderFromOptions(dto.DefaultPlanOptions()).Rank("A", suppliers, lanes, 10, 0.3)
	var order []string
	for _, o := range ranking.Options {
		order = append(order, string(o.SupplierID)+"/"+o.Mode.String())
	}
	expected := []string{"S1/rail", "S1/road", "S2/rail", "S2/road"}
	if !slices.Equal(order, expected) {
		t.Errorf("Expected %v, got %v", expected, order)
	}
}

func TestWeights_SpeedWeight(t *testing.T) {
	w := Weights{MinSpeed: 0.2, MaxSpeed: 0.8}
	tests := []struct {
		urgency  float64
		expected float64
	}{
		{-1, 0.2},
		{0, 0.2},
		{0.5, 0.5},
		{1, 0.8},
		{3, 0.8},
	}
	for _, tt := range tests {
		if got := w.SpeedWeight(tt.urgency); got < tt.expected-1e-12 || got > tt.expected+1e-12 {
			t.Errorf("SpeedWeight(%v): expected %v, got %v", tt.urgency, tt.expected, got)
		}
	}
}
