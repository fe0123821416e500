package forecast

import (
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Series is a regular, gap-free demand history for one SKU
type Series struct {
	SKU         entities.SKU
	Granularity entities.Granularity
	Start       time.Time // start of the first period
	Values      []float64
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Values)
}

// End returns the start of the last observed period
func (s Series) End() time.Time {
	if len(s.Values) == 0 {
		return s.Start
	}
	return s.Start.AddDate(0, 0, (len(s.Values)-1)*s.Granularity.Days())
}

// NextPeriod returns the start date of the step-th period after the series (1-based)
func (s Series) NextPeriod(step int) time.Time {
	return s.End().AddDate(0, 0, step*s.Granularity.Days())
}

// BuildSeries buckets sales records into daily or Monday-start weekly totals.
// Buckets between the first and last observed period with no records count as zero sales.
// Records outside the period are ignored.
func BuildSeries(sku entities.SKU, records []*entities.SalesRecord, granularity entities.Granularity, period entities.Period) Series {
	series := Series{SKU: sku, Granularity: granularity}

	totals := make(map[time.Time]float64)
	var first, last time.Time
	for _, r := range records {
		if r.SKU != sku || !period.Contains(r.Date) {
			continue
		}
		bucket := granularity.Bucket(r.Date)
		totals[bucket] += r.UnitsSold
		if first.IsZero() || bucket.Before(first) {
			first = bucket
		}
		if last.IsZero() || bucket.After(last) {
			last = bucket
		}
	}
	if len(totals) == 0 {
		return series
	}

	series.Start = first
	for d := first; !d.After(last); d = granularity.Next(d) {
		series.Values = append(series.Values, totals[d])
	}
	return series
}
