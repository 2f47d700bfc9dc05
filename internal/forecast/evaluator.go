package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Evaluate 마지막 holdout 일을 떼어내고 나머지로 적합한 예측과 실제를 비교
func (f *Forecaster) Evaluate(series contracts.DailySeries, holdout int) (contracts.ForecastEvaluation, error) {
	if holdout < 1 {
		return contracts.ForecastEvaluation{}, &contracts.InvalidParameterError{
			Field:  "holdout",
			Reason: fmt.Sprintf("must be >= 1, got %d", holdout),
		}
	}

	n := series.Len()
	train := n - holdout
	if train < f.config.MinHistory {
		return contracts.ForecastEvaluation{}, &contracts.InsufficientDataError{
			Region:   series.RegionLabel(),
			Have:     n,
			Required: f.config.MinHistory + holdout,
		}
	}

	result, err := f.Forecast(series.Slice(0, train), holdout)
	if err != nil {
		return contracts.ForecastEvaluation{}, err
	}

	actual := make([]float64, holdout)
	for i := range actual {
		actual[i] = float64(series.Confirmed[train+i])
	}
	predicted := append([]float64(nil), result.Predictions...)

	sqErr := make([]float64, holdout)
	absErr := make([]float64, holdout)
	covered := 0
	for i := range actual {
		e := actual[i] - predicted[i]
		sqErr[i] = e * e
		absErr[i] = math.Abs(e)
		if actual[i] >= result.LowerBound[i] && actual[i] <= result.UpperBound[i] {
			covered++
		}
	}

	mse := stat.Mean(sqErr, nil)
	eval := contracts.ForecastEvaluation{
		Region:      series.Region,
		HoldoutDays: holdout,
		Dates:       contracts.FormatDates(result.Dates),
		Actual:      actual,
		Predicted:   predicted,
		MSE:         mse,
		RMSE:        math.Sqrt(mse),
		MAE:         stat.Mean(absErr, nil),
		R2:          rSquared(predicted, actual, mse),
		Coverage:    float64(covered) / float64(holdout),
	}

	f.log.Info().
		Str("region", series.RegionLabel()).
		Int("holdout", holdout).
		Float64("rmse", eval.RMSE).
		Float64("r2", eval.R2).
		Float64("coverage", eval.Coverage).
		Msg("forecast evaluated")

	return eval, nil
}

// rSquared guards the constant-actuals case where R² is undefined
func rSquared(predicted, actual []float64, mse float64) float64 {
	if len(actual) < 2 || stat.Variance(actual, nil) == 0 {
		if mse == 0 {
			return 1
		}
		return 0
	}
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 0
	}
	return r2
}
