package contracts

import "time"

// DateLayout is the ISO-8601 calendar date used on the wire
const DateLayout = "2006-01-02"

// NationalRegion labels the aggregate of all regions in logs and cache keys.
// 요청에서는 빈 문자열이 전국 합계를 의미함
const NationalRegion = "ALL"

// DailySeries holds cumulative counts for one region (or the national aggregate).
// ⭐ SSOT: Dates/Confirmed/Deaths/Cured 길이는 항상 동일, 날짜는 하루 간격으로 증가
type DailySeries struct {
	Region    string
	Dates     []time.Time
	Confirmed []int64
	Deaths    []int64
	Cured     []int64
}

// Len returns the number of days in the series
func (s DailySeries) Len() int {
	return len(s.Dates)
}

// IsEmpty reports whether the series has no days
func (s DailySeries) IsEmpty() bool {
	return len(s.Dates) == 0
}

// LastDate returns the final date, zero time when empty
func (s DailySeries) LastDate() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// Slice returns the [from, to) sub-series. The result shares backing arrays
// with s, callers must not write through it.
func (s DailySeries) Slice(from, to int) DailySeries {
	return DailySeries{
		Region:    s.Region,
		Dates:     s.Dates[from:to:to],
		Confirmed: s.Confirmed[from:to:to],
		Deaths:    s.Deaths[from:to:to],
		Cured:     s.Cured[from:to:to],
	}
}

// ConfirmedFloat returns confirmed counts as float64 for model fitting
func (s DailySeries) ConfirmedFloat() []float64 {
	out := make([]float64, len(s.Confirmed))
	for i, v := range s.Confirmed {
		out[i] = float64(v)
	}
	return out
}

// RegionLabel returns the region or NationalRegion for the aggregate
func (s DailySeries) RegionLabel() string {
	return RegionLabel(s.Region)
}

// RegionLabel maps "" to NationalRegion
func RegionLabel(region string) string {
	if region == "" {
		return NationalRegion
	}
	return region
}

// RateSeries is a derived percentage series aligned to Dates
type RateSeries struct {
	Dates []time.Time
	Rate  []float64
}

// Len returns the number of points
func (r RateSeries) Len() int {
	return len(r.Dates)
}

// RegionSummary is the latest snapshot for a region
type RegionSummary struct {
	Region       string  `json:"state"`
	LastDate     string  `json:"last_date"`
	Confirmed    int64   `json:"confirmed"`
	Deaths       int64   `json:"deaths"`
	Cured        int64   `json:"cured"`
	RecoveryRate float64 `json:"recovery_rate"`
	FatalityRate float64 `json:"fatality_rate"`
}

// FormatDates renders dates as YYYY-MM-DD strings (never nil)
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}
