package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/metrics"
	"github.com/wonny/covidtrend/internal/rates"
	"github.com/wonny/covidtrend/pkg/redis"
)

// GetPredictions forecasts cumulative confirmed cases with a confidence band
func (f *Facade) GetPredictions(ctx context.Context, req PredictionRequest) (contracts.PredictionResponse, error) {
	result, err := f.Forecast(ctx, req)
	if err != nil {
		return contracts.PredictionResponse{}, err
	}

	precision := f.model.Rates.Precision
	return contracts.PredictionResponse{
		Dates:       contracts.FormatDates(result.Dates),
		Predictions: rates.RoundAll(result.Predictions, precision),
		LowerBound:  rates.RoundAll(result.LowerBound, precision),
		UpperBound:  rates.RoundAll(result.UpperBound, precision),
	}, nil
}

// Forecast returns the unrounded forecast (charts, export, cache warm-up).
// Concurrent identical requests share one computation.
func (f *Facade) Forecast(ctx context.Context, req PredictionRequest) (contracts.ForecastResult, error) {
	horizon := f.model.Forecast.DefaultHorizon
	if req.HorizonDays != nil {
		horizon = *req.HorizonDays
	}

	if err := validateStruct(&req); err != nil {
		return contracts.ForecastResult{}, f.fail("predictions", err)
	}
	if err := validateBound("days", horizon, f.model.Forecast.MaxHorizon); err != nil {
		return contracts.ForecastResult{}, f.fail("predictions", err)
	}

	region := strings.TrimSpace(req.Region)
	if !f.store.HasRegion(region) {
		return contracts.ForecastResult{}, f.fail("predictions", &contracts.UnknownRegionError{Region: region})
	}

	key := redis.ForecastKey(f.version, contracts.RegionLabel(region), horizon)
	v, err, shared := f.group.Do(key, func() (interface{}, error) {
		return f.computeForecast(ctx, key, region, horizon)
	})
	if err != nil {
		return contracts.ForecastResult{}, f.fail("predictions", err)
	}
	if shared {
		f.log.Debug().Str("key", key).Msg("forecast shared with concurrent request")
	}

	return v.(contracts.ForecastResult), nil
}

func (f *Facade) computeForecast(ctx context.Context, key, region string, horizon int) (contracts.ForecastResult, error) {
	if f.cache != nil {
		var cached contracts.ForecastResult
		if f.cache.get(ctx, key, &cached) {
			return cached, nil
		}
	}

	series, err := f.store.Series(region, nil, nil)
	if err != nil {
		return contracts.ForecastResult{}, err
	}

	start := time.Now()
	result, err := f.forecaster.Forecast(series, horizon)
	metrics.RecordForecast(time.Since(start))
	if err != nil {
		return contracts.ForecastResult{}, err
	}

	if f.cache != nil {
		f.cache.set(ctx, key, result, f.cacheTTL)
	}
	return result, nil
}

// EvaluateForecast backtests the model on the last HoldoutDays days
func (f *Facade) EvaluateForecast(_ context.Context, req EvaluationRequest) (contracts.ForecastEvaluation, error) {
	holdout := f.model.Evaluation.DefaultHoldout
	if req.HoldoutDays != nil {
		holdout = *req.HoldoutDays
	}

	if err := validateStruct(&req); err != nil {
		return contracts.ForecastEvaluation{}, f.fail("evaluate", err)
	}
	if err := validateBound("holdout", holdout, f.model.Forecast.MaxHorizon); err != nil {
		return contracts.ForecastEvaluation{}, f.fail("evaluate", err)
	}

	series, err := f.store.Series(strings.TrimSpace(req.Region), nil, nil)
	if err != nil {
		return contracts.ForecastEvaluation{}, f.fail("evaluate", err)
	}

	eval, err := f.forecaster.Evaluate(series, holdout)
	if err != nil {
		return contracts.ForecastEvaluation{}, f.fail("evaluate", fmt.Errorf("evaluate %s: %w", series.RegionLabel(), err))
	}

	precision := f.model.Rates.Precision
	eval.Predicted = rates.RoundAll(eval.Predicted, precision)
	eval.MSE = rates.RoundValue(eval.MSE, precision)
	eval.RMSE = rates.RoundValue(eval.RMSE, precision)
	eval.MAE = rates.RoundValue(eval.MAE, precision)
	eval.R2 = rates.RoundValue(eval.R2, 4)
	eval.Coverage = rates.RoundValue(eval.Coverage, 4)
	return eval, nil
}
