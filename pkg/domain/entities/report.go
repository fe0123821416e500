package entities

// PlanReport is the set of output tables exported by a planning run
type PlanReport struct {
	KPIs            []*KPISet
	Summary         KPISummary
	Forecasts       []*ForecastResult
	Recommendations []*Recommendation
	Options         []SourcingOption
}
