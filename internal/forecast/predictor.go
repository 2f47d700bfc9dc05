package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Forecaster 누적 확진자 추세 예측기
// ⭐ SSOT: 예측 구간 계산은 여기서만. 입력 시리즈는 절대 수정하지 않음
type Forecaster struct {
	config Config
	z      float64 // 양측 신뢰구간 z 값
	log    zerolog.Logger
}

// New 새 예측기 생성
func New(config Config, log zerolog.Logger) (*Forecaster, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("forecast config: %w", err)
	}

	return &Forecaster{
		config: config,
		z:      distuv.UnitNormal.Quantile((1 + config.ConfidenceLevel) / 2),
		log:    log.With().Str("component", "forecast.predictor").Logger(),
	}, nil
}

// Config returns the active parameters
func (f *Forecaster) Config() Config {
	return f.config
}

// Forecast projects cumulative confirmed cases horizon days past the last date.
//
// The trend is a least squares polynomial of the configured degree. The
// projection is shifted so it continues from the last observed value, and
// when the history never decreases the projection never decreases either.
// The band half-width is z·s·sqrt(1+h(t)) carried forward as a running max.
func (f *Forecaster) Forecast(series contracts.DailySeries, horizon int) (contracts.ForecastResult, error) {
	if horizon < 1 {
		return contracts.ForecastResult{}, &contracts.InvalidParameterError{
			Field:  "days",
			Reason: fmt.Sprintf("horizon must be >= 1, got %d", horizon),
		}
	}

	n := series.Len()
	if n < f.config.MinHistory {
		return contracts.ForecastResult{}, &contracts.InsufficientDataError{
			Region:   series.RegionLabel(),
			Have:     n,
			Required: f.config.MinHistory,
		}
	}

	history := series.ConfirmedFloat()
	y := history
	if f.config.FitWindow > 0 && f.config.FitWindow < n {
		y = history[n-f.config.FitWindow:]
	}

	model, err := fitPolynomial(y, f.config.Degree)
	if err != nil {
		return contracts.ForecastResult{}, fmt.Errorf("fit %s: %w", series.RegionLabel(), err)
	}

	m := len(y)
	last := y[m-1]
	offset := last - model.eval(model.t(m-1))
	monotone := isNonDecreasing(history)

	result := contracts.ForecastResult{
		Region:      series.Region,
		Dates:       make([]time.Time, horizon),
		Predictions: make([]float64, horizon),
		LowerBound:  make([]float64, horizon),
		UpperBound:  make([]float64, horizon),
		Model: contracts.ForecastModelInfo{
			Degree:          model.degree(),
			Coefficients:    append([]float64(nil), model.coef...),
			ResidualStdErr:  model.resStdErr,
			ConfidenceLevel: f.config.ConfidenceLevel,
			FitPoints:       m,
		},
	}

	lastDate := series.LastDate()
	prevPred := last
	prevHalf := 0.0
	for k := 1; k <= horizon; k++ {
		t := float64(m-1+k) / model.scale

		pred := model.eval(t) + offset
		if monotone && pred < prevPred {
			pred = prevPred
		}

		half := f.z * model.resStdErr * math.Sqrt(1+model.leverage(t))
		if half < prevHalf {
			half = prevHalf
		}

		i := k - 1
		result.Dates[i] = lastDate.AddDate(0, 0, k)
		result.Predictions[i] = pred
		result.LowerBound[i] = pred - half
		result.UpperBound[i] = pred + half

		prevPred = pred
		prevHalf = half
	}

	f.log.Debug().
		Str("region", series.RegionLabel()).
		Int("history", n).
		Int("fit_points", m).
		Int("horizon", horizon).
		Int("degree", model.degree()).
		Float64("residual_std_err", model.resStdErr).
		Bool("monotone", monotone).
		Msg("forecast generated")

	return result, nil
}

func isNonDecreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return false
		}
	}
	return true
}
