// Package query is the single entry point the HTTP layer, the CLI and the
// scheduler use to read the dataset, derive rates and forecast.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/dataset"
	"github.com/wonny/covidtrend/internal/forecast"
	"github.com/wonny/covidtrend/internal/metrics"
	"github.com/wonny/covidtrend/internal/modelconfig"
	"github.com/wonny/covidtrend/internal/rates"
)

// maxCompareRegions caps a single comparison request
const maxCompareRegions = 20

// Options configures the facade
type Options struct {
	Model    *modelconfig.Config // nil → modelconfig.Default()
	Cache    ForecastCache       // nil → no caching
	CacheTTL time.Duration
}

// Facade 조회 파사드: 검증 → 데이터 슬라이스 → 계산 → 응답 조립
// ⭐ SSOT: 외부(API/CLI/스케줄러)는 이 타입만 통해 엔진에 접근
type Facade struct {
	store      *dataset.Store
	forecaster *forecast.Forecaster
	model      *modelconfig.Config
	cache      *breakerCache
	cacheTTL   time.Duration
	version    string
	group      singleflight.Group
	log        zerolog.Logger
}

// New builds a facade over an already loaded store
func New(store *dataset.Store, opts Options, log zerolog.Logger) (*Facade, error) {
	model := opts.Model
	if model == nil {
		model = modelconfig.Default()
	}
	if err := modelconfig.Validate(model); err != nil {
		return nil, fmt.Errorf("model config: %w", err)
	}

	forecaster, err := forecast.New(model.ForecasterConfig(), log)
	if err != nil {
		return nil, err
	}

	version, err := cacheVersion(store, model)
	if err != nil {
		return nil, err
	}

	log = log.With().Str("component", "query.facade").Logger()

	f := &Facade{
		store:      store,
		forecaster: forecaster,
		model:      model,
		cacheTTL:   opts.CacheTTL,
		version:    version,
		log:        log,
	}
	if opts.Cache != nil {
		f.cache = newBreakerCache(opts.Cache, log)
	}

	return f, nil
}

// Model returns the active model parameters
func (f *Facade) Model() *modelconfig.Config {
	return f.model
}

// Stats returns dataset load statistics
func (f *Facade) Stats() dataset.Stats {
	return f.store.Stats()
}

// ListRegions returns all region names in alphabetical order
func (f *Facade) ListRegions(_ context.Context) contracts.RegionsResponse {
	return contracts.RegionsResponse{States: f.store.Regions()}
}

// GetData returns the raw cumulative counts for a region and date range
func (f *Facade) GetData(_ context.Context, req DataRequest) (contracts.DataResponse, error) {
	series, err := f.selectSeries(&req)
	if err != nil {
		return contracts.DataResponse{}, f.fail("data", err)
	}

	return contracts.DataResponse{
		Dates:     contracts.FormatDates(series.Dates),
		Confirmed: copyCounts(series.Confirmed),
		Deaths:    copyCounts(series.Deaths),
		Cured:     copyCounts(series.Cured),
	}, nil
}

// GetGrowthRate returns day-over-day growth of confirmed cases (percent)
func (f *Facade) GetGrowthRate(_ context.Context, req RateRequest) (contracts.GrowthRateResponse, error) {
	series, err := f.selectSeries(&req)
	if err != nil {
		return contracts.GrowthRateResponse{}, f.fail("growth_rate", err)
	}

	growth := rates.Round(rates.GrowthRate(series), f.model.Rates.Precision)
	return contracts.GrowthRateResponse{
		Dates:      contracts.FormatDates(growth.Dates),
		GrowthRate: growth.Rate,
	}, nil
}

// GetRecoveryRate returns cured/confirmed per day (percent)
func (f *Facade) GetRecoveryRate(_ context.Context, req RateRequest) (contracts.RecoveryRateResponse, error) {
	series, err := f.selectSeries(&req)
	if err != nil {
		return contracts.RecoveryRateResponse{}, f.fail("recovery_rate", err)
	}

	recovery := rates.Round(rates.RecoveryRate(series), f.model.Rates.Precision)
	return contracts.RecoveryRateResponse{
		Dates:        contracts.FormatDates(recovery.Dates),
		RecoveryRate: recovery.Rate,
	}, nil
}

// GetMovingAverage returns trailing means of confirmed and deaths
func (f *Facade) GetMovingAverage(_ context.Context, req MovingAverageRequest) (contracts.MovingAverageResponse, error) {
	window := f.model.Rates.MovingAverageWindow
	if req.Window != nil {
		window = *req.Window
	}

	if err := validateStruct(&req); err != nil {
		return contracts.MovingAverageResponse{}, f.fail("moving_average", err)
	}
	if err := validateBound("window", window, f.model.Rates.MaxWindow); err != nil {
		return contracts.MovingAverageResponse{}, f.fail("moving_average", err)
	}

	series, err := f.rangeSeries(req.Region, req.Start, req.End)
	if err != nil {
		return contracts.MovingAverageResponse{}, f.fail("moving_average", err)
	}

	precision := f.model.Rates.Precision
	confirmed := rates.MovingAverage(series.Dates, series.Confirmed, window)
	deaths := rates.MovingAverage(series.Dates, series.Deaths, window)
	return contracts.MovingAverageResponse{
		Window:      window,
		Dates:       contracts.FormatDates(confirmed.Dates),
		ConfirmedMA: rates.RoundAll(confirmed.Rate, precision),
		DeathsMA:    rates.RoundAll(deaths.Rate, precision),
	}, nil
}

// CompareRegions returns the confirmed series of each requested region.
// An empty list yields an empty result.
func (f *Facade) CompareRegions(_ context.Context, req ComparisonRequest) (contracts.ComparisonResponse, error) {
	if err := validateStruct(&req); err != nil {
		return nil, f.fail("comparison", err)
	}

	out := make(contracts.ComparisonResponse, len(req.Regions))
	for _, region := range req.Regions {
		region = strings.TrimSpace(region)
		series, err := f.store.Series(region, nil, nil)
		if err != nil {
			return nil, f.fail("comparison", err)
		}
		out[region] = contracts.ComparisonSeries{
			Dates:     contracts.FormatDates(series.Dates),
			Confirmed: copyCounts(series.Confirmed),
		}
	}
	return out, nil
}

// RegionSummaries returns the latest snapshot of every region, alphabetical
func (f *Facade) RegionSummaries(_ context.Context) contracts.SummaryResponse {
	precision := f.model.Rates.Precision
	names := f.store.Regions()
	summaries := make([]contracts.RegionSummary, 0, len(names))

	for _, name := range names {
		series, err := f.store.Series(name, nil, nil)
		if err != nil || series.IsEmpty() {
			continue
		}
		last := series.Len() - 1
		latest := series.Slice(last, last+1)

		summaries = append(summaries, contracts.RegionSummary{
			Region:       name,
			LastDate:     series.LastDate().Format(contracts.DateLayout),
			Confirmed:    series.Confirmed[last],
			Deaths:       series.Deaths[last],
			Cured:        series.Cured[last],
			RecoveryRate: rates.RoundValue(rates.RecoveryRate(latest).Rate[0], precision),
			FatalityRate: rates.RoundValue(rates.FatalityRate(latest).Rate[0], precision),
		})
	}
	return contracts.SummaryResponse{Summaries: summaries}
}

// Series exposes the validated raw series (charts, XLSX export)
func (f *Facade) Series(_ context.Context, req DataRequest) (contracts.DailySeries, error) {
	series, err := f.selectSeries(&req)
	if err != nil {
		return contracts.DailySeries{}, f.fail("series", err)
	}
	return series, nil
}

// selectSeries validates a DataRequest and slices the store
func (f *Facade) selectSeries(req *DataRequest) (contracts.DailySeries, error) {
	if err := validateStruct(req); err != nil {
		return contracts.DailySeries{}, err
	}
	return f.rangeSeries(req.Region, req.Start, req.End)
}

func (f *Facade) rangeSeries(region, start, end string) (contracts.DailySeries, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return contracts.DailySeries{}, err
	}
	return f.store.Series(strings.TrimSpace(region), from, to)
}

// fail records the error and passes it through unchanged
func (f *Facade) fail(op string, err error) error {
	code := contracts.ErrorCode(err)
	metrics.RecordQueryError(op, code)

	if contracts.IsClientError(err) {
		f.log.Debug().Err(err).Str("op", op).Str("code", code).Msg("request rejected")
	} else {
		f.log.Error().Err(err).Str("op", op).Msg("query failed")
	}
	return err
}

func copyCounts(values []int64) []int64 {
	out := make([]int64, len(values))
	copy(out, values)
	return out
}

// cacheVersion ties cache keys to the dataset and the model parameters
func cacheVersion(store *dataset.Store, model *modelconfig.Config) (string, error) {
	hash, err := modelconfig.Hash(model)
	if err != nil {
		return "", fmt.Errorf("hash model config: %w", err)
	}
	stats := store.Stats()
	return fmt.Sprintf("%s-%d-%s", hash[:12], stats.Rows, stats.LastDate.Format("20060102")), nil
}
