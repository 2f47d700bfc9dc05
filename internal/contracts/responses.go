package contracts

// Response shapes consumed by the dashboard. Field names are part of the
// public contract, do not rename.

// DataResponse is the getData payload
type DataResponse struct {
	Dates     []string `json:"dates"`
	Confirmed []int64  `json:"confirmed"`
	Deaths    []int64  `json:"deaths"`
	Cured     []int64  `json:"cured"`
}

// PredictionResponse is the getPredictions payload
type PredictionResponse struct {
	Dates       []string  `json:"dates"`
	Predictions []float64 `json:"predictions"`
	LowerBound  []float64 `json:"lower_bound"`
	UpperBound  []float64 `json:"upper_bound"`
}

// GrowthRateResponse is the getGrowthRate payload
type GrowthRateResponse struct {
	Dates      []string  `json:"dates"`
	GrowthRate []float64 `json:"growth_rate"`
}

// RecoveryRateResponse is the getRecoveryRate payload
type RecoveryRateResponse struct {
	Dates        []string  `json:"dates"`
	RecoveryRate []float64 `json:"recovery_rate"`
}

// MovingAverageResponse holds trailing means of confirmed and deaths
type MovingAverageResponse struct {
	Window      int       `json:"window"`
	Dates       []string  `json:"dates"`
	ConfirmedMA []float64 `json:"confirmed_ma"`
	DeathsMA    []float64 `json:"deaths_ma"`
}

// RegionsResponse is the listRegions payload
type RegionsResponse struct {
	States []string `json:"states"`
}

// ComparisonSeries is one region inside a comparison
type ComparisonSeries struct {
	Dates     []string `json:"dates"`
	Confirmed []int64  `json:"confirmed"`
}

// ComparisonResponse maps region name to its confirmed series
type ComparisonResponse map[string]ComparisonSeries

// SummaryResponse lists the latest snapshot per region
type SummaryResponse struct {
	Summaries []RegionSummary `json:"summaries"`
}

// ErrorResponse is the structured error body
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
