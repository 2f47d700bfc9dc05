// Package rates derives percentage and smoothing series from cumulative counts.
// All functions are pure: inputs are never modified and outputs never alias them.
package rates

import (
	"math"
	"time"

	"github.com/wonny/covidtrend/internal/contracts"
)

// DefaultPrecision is the number of decimals used on the wire
const DefaultPrecision = 2

// GrowthRate returns the day-over-day percentage change of confirmed cases.
// Length is n-1, each value aligned to the later date. A zero previous
// count yields 0. Negative values (data corrections) are kept as is.
func GrowthRate(s contracts.DailySeries) contracts.RateSeries {
	n := s.Len()
	if n < 2 {
		return empty()
	}

	out := contracts.RateSeries{
		Dates: make([]time.Time, n-1),
		Rate:  make([]float64, n-1),
	}
	for i := 1; i < n; i++ {
		out.Dates[i-1] = s.Dates[i]
		out.Rate[i-1] = percentChange(s.Confirmed[i-1], s.Confirmed[i])
	}
	return out
}

// RecoveryRate returns cured/confirmed*100 per day (0 when confirmed is 0)
func RecoveryRate(s contracts.DailySeries) contracts.RateSeries {
	return ratio(s.Dates, s.Cured, s.Confirmed)
}

// FatalityRate returns deaths/confirmed*100 per day (0 when confirmed is 0)
func FatalityRate(s contracts.DailySeries) contracts.RateSeries {
	return ratio(s.Dates, s.Deaths, s.Confirmed)
}

// MovingAverage returns the trailing mean over window days. The first
// window-1 points average over what is available (min_periods = 1).
// window < 1 is treated as 1.
func MovingAverage(dates []time.Time, values []int64, window int) contracts.RateSeries {
	n := len(values)
	if n == 0 {
		return empty()
	}
	if window < 1 {
		window = 1
	}

	out := contracts.RateSeries{
		Dates: make([]time.Time, n),
		Rate:  make([]float64, n),
	}
	copy(out.Dates, dates)

	var sum float64
	for i, v := range values {
		sum += float64(v)
		if i >= window {
			sum -= float64(values[i-window])
		}
		count := i + 1
		if count > window {
			count = window
		}
		out.Rate[i] = sum / float64(count)
	}
	return out
}

// Round returns a copy of r with every value rounded to places decimals
func Round(r contracts.RateSeries, places int) contracts.RateSeries {
	out := contracts.RateSeries{
		Dates: make([]time.Time, len(r.Dates)),
		Rate:  make([]float64, len(r.Rate)),
	}
	copy(out.Dates, r.Dates)
	for i, v := range r.Rate {
		out.Rate[i] = RoundValue(v, places)
	}
	return out
}

// RoundValue rounds half away from zero
func RoundValue(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // -0 → 0
	}
	return r
}

// RoundAll rounds a plain slice (forecast values, moving averages)
func RoundAll(values []float64, places int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = RoundValue(v, places)
	}
	return out
}

func ratio(dates []time.Time, num, den []int64) contracts.RateSeries {
	n := len(dates)
	out := contracts.RateSeries{
		Dates: make([]time.Time, n),
		Rate:  make([]float64, n),
	}
	copy(out.Dates, dates)
	for i := 0; i < n; i++ {
		if den[i] == 0 {
			continue
		}
		out.Rate[i] = float64(num[i]) / float64(den[i]) * 100
	}
	return out
}

func percentChange(prev, cur int64) float64 {
	if prev == 0 {
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}

func empty() contracts.RateSeries {
	return contracts.RateSeries{Dates: []time.Time{}, Rate: []float64{}}
}
