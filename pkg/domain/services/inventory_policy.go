package services

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ceilEpsilon absorbs floating point noise before rounding order quantities up
const ceilEpsilon = 1e-9

// ServiceLevelZ returns the one-sided standard normal quantile for a cycle service level.
// Levels outside (0, 1) yield 0, meaning no safety stock.
func ServiceLevelZ(serviceLevel float64) float64 {
	if serviceLevel <= 0 || serviceLevel >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(serviceLevel)
}

// LeadTimeDemand is the expected demand while a replenishment is in transit
func LeadTimeDemand(avgDailyDemand, leadTimeDays float64) float64 {
	return avgDailyDemand * leadTimeDays
}

// LeadTimeDemandStdDev combines demand and lead time variability:
// sqrt(L * sigma_d^2 + d^2 * sigma_L^2)
func LeadTimeDemandStdDev(avgDailyDemand, demandStdDev, leadTimeDays, leadTimeStdDev float64) float64 {
	variance := leadTimeDays*demandStdDev*demandStdDev + avgDailyDemand*avgDailyDemand*leadTimeStdDev*leadTimeStdDev
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// SafetyStock is z times the standard deviation of lead time demand
func SafetyStock(z, avgDailyDemand, demandStdDev, leadTimeDays, leadTimeStdDev float64) float64 {
	return math.Max(0, z*LeadTimeDemandStdDev(avgDailyDemand, demandStdDev, leadTimeDays, leadTimeStdDev))
}

// ReorderPoint is lead time demand plus safety stock
func ReorderPoint(leadTimeDemand, safetyStock float64) float64 {
	return leadTimeDemand + safetyStock
}

// OrderQuantity tops stock up to the reorder point plus cycle stock, in whole units, never negative.
// A need that is not a finite number orders nothing.
func OrderQuantity(reorderPoint, cycleStock, currentStock float64) float64 {
	need := reorderPoint + cycleStock - currentStock
	if !(need > 0) || math.IsInf(need, 1) {
		return 0
	}
	return math.Max(0, math.Ceil(need-ceilEpsilon))
}

// DaysUntilStockout is current stock divided by daily demand; not applicable without demand
func DaysUntilStockout(currentStock, avgDailyDemand float64) entities.Metric {
	if avgDailyDemand <= 0 {
		return entities.NA()
	}
	return entities.Known(math.Max(0, currentStock) / avgDailyDemand)
}

// UrgencyScore compares lead time with the remaining cover, in [0, 1].
// A SKU already out of stock with demand is maximally urgent; one without demand is not urgent.
func UrgencyScore(currentStock, avgDailyDemand, leadTimeDays float64) float64 {
	if avgDailyDemand <= 0 {
		return 0
	}
	if currentStock <= 0 {
		return 1
	}
	days := currentStock / avgDailyDemand
	return math.Min(1, math.Max(0, leadTimeDays/days))
}

// ClassifyUrgency buckets a score using the medium and high thresholds
func ClassifyUrgency(score, mediumThreshold, highThreshold float64) entities.UrgencyLevel {
	switch {
	case score >= highThreshold:
		return entities.HighUrgency
	case score >= mediumThreshold:
		return entities.MediumUrgency
	default:
		return entities.LowUrgency
	}
}
