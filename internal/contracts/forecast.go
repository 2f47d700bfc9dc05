package contracts

import "time"

// ForecastResult is a projection beyond the last historical date.
// ⭐ SSOT: LowerBound[i] <= Predictions[i] <= UpperBound[i], 밴드 폭은 horizon에 따라 비감소
type ForecastResult struct {
	Region      string
	Dates       []time.Time
	Predictions []float64
	LowerBound  []float64
	UpperBound  []float64
	Model       ForecastModelInfo
}

// ForecastModelInfo describes the fitted trend
type ForecastModelInfo struct {
	Degree          int       `json:"degree"`
	Coefficients    []float64 `json:"coefficients"`
	ResidualStdErr  float64   `json:"residual_std_err"`
	ConfidenceLevel float64   `json:"confidence_level"`
	FitPoints       int       `json:"fit_points"`
}

// Len returns the horizon length
func (f ForecastResult) Len() int {
	return len(f.Dates)
}

// ForecastEvaluation compares a holdout window against a model fitted on the prefix
type ForecastEvaluation struct {
	Region      string    `json:"state"`
	HoldoutDays int       `json:"holdout_days"`
	Dates       []string  `json:"dates"`
	Actual      []float64 `json:"actual"`
	Predicted   []float64 `json:"predicted"`
	MSE         float64   `json:"mse"`
	RMSE        float64   `json:"rmse"`
	MAE         float64   `json:"mae"`
	R2          float64   `json:"r2"`
	Coverage    float64   `json:"coverage"` // holdout 실제값이 밴드 안에 든 비율
}
