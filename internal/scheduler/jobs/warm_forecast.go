package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/pkg/logger"
)

// WarmForecastJobName is the scheduler name of WarmForecastJob
const WarmForecastJobName = "warm_forecast"

// ForecastSource is the part of query.Facade the warm-up needs
type ForecastSource interface {
	ListRegions(ctx context.Context) contracts.RegionsResponse
	Forecast(ctx context.Context, req query.PredictionRequest) (contracts.ForecastResult, error)
}

// WarmForecastJob precomputes forecasts for the national series and every region
// so the first API request for each is served from cache.
type WarmForecastJob struct {
	source      ForecastSource
	schedule    string
	horizons    []int
	concurrency int
	logger      *logger.Logger
}

// WarmSummary counts the outcome of one warm-up pass
type WarmSummary struct {
	Warmed  int
	Skipped int // too little history to forecast
	Failed  int
}

// NewWarmForecastJob creates the warm-up job. concurrency < 1 runs one at a time.
func NewWarmForecastJob(source ForecastSource, schedule string, horizons []int, concurrency int, log *logger.Logger) *WarmForecastJob {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WarmForecastJob{
		source:      source,
		schedule:    schedule,
		horizons:    horizons,
		concurrency: concurrency,
		logger:      log,
	}
}

// Name returns the job name
func (j *WarmForecastJob) Name() string {
	return WarmForecastJobName
}

// Schedule returns the cron schedule
func (j *WarmForecastJob) Schedule() string {
	return j.schedule
}

// Run warms every (region, horizon) pair
func (j *WarmForecastJob) Run(ctx context.Context) error {
	_, err := j.Warm(ctx)
	return err
}

// Warm runs one pass and reports what happened. Regions without enough
// history are skipped; other failures are joined into the returned error.
func (j *WarmForecastJob) Warm(ctx context.Context) (WarmSummary, error) {
	regions := append([]string{""}, j.source.ListRegions(ctx).States...)

	var (
		mu      sync.Mutex
		summary WarmSummary
		errs    []error
	)

	g := new(errgroup.Group)
	g.SetLimit(j.concurrency)

	for _, region := range regions {
		for _, horizon := range j.horizons {
			if ctx.Err() != nil {
				break
			}

			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}

				h := horizon
				_, err := j.source.Forecast(ctx, query.PredictionRequest{Region: region, HorizonDays: &h})

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					summary.Warmed++
				case errors.Is(err, contracts.ErrInsufficientData):
					summary.Skipped++
				default:
					summary.Failed++
					errs = append(errs, fmt.Errorf("%s/%dd: %w", contracts.RegionLabel(region), horizon, err))
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"warmed":  summary.Warmed,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("Forecast cache warmed")

	return summary, errors.Join(errs...)
}
