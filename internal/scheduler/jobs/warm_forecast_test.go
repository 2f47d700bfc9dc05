package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	regions []string
	failFor map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) ListRegions(context.Context) contracts.RegionsResponse {
	return contracts.RegionsResponse{States: f.regions}
}

func (f *fakeSource) Forecast(_ context.Context, req query.PredictionRequest) (contracts.ForecastResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, contracts.RegionLabel(req.Region))
	f.mu.Unlock()

	if err, ok := f.failFor[req.Region]; ok {
		return contracts.ForecastResult{}, err
	}
	return contracts.ForecastResult{Region: req.Region}, nil
}

func TestWarmCoversNationalAndRegions(t *testing.T) {
	src := &fakeSource{regions: []string{"Delhi", "Kerala"}}
	job := NewWarmForecastJob(src, "@hourly", []int{7, 30}, 2, logger.Nop())

	summary, err := job.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WarmSummary{Warmed: 6}, summary)

	sort.Strings(src.calls)
	assert.Equal(t, []string{
		contracts.NationalRegion, contracts.NationalRegion,
		"Delhi", "Delhi",
		"Kerala", "Kerala",
	}, src.calls)
}

func TestWarmSkipsInsufficientHistory(t *testing.T) {
	src := &fakeSource{
		regions: []string{"Assam", "Delhi"},
		failFor: map[string]error{
			"Assam": &contracts.InsufficientDataError{Region: "Assam", Have: 3, Required: 7},
		},
	}
	job := NewWarmForecastJob(src, "@hourly", []int{30}, 0, logger.Nop())

	summary, err := job.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WarmSummary{Warmed: 2, Skipped: 1}, summary)
}

func TestWarmJoinsFailures(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{
		regions: []string{"Delhi"},
		failFor: map[string]error{"Delhi": boom},
	}
	job := NewWarmForecastJob(src, "@hourly", []int{30}, 4, logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Delhi/30d")
}

func TestWarmStopsOnCancelledContext(t *testing.T) {
	src := &fakeSource{regions: []string{"Delhi", "Kerala"}}
	job := NewWarmForecastJob(src, "@hourly", []int{30}, 1, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := job.Warm(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Warmed)
	assert.Empty(t, src.calls)
}

func TestWarmJobIdentity(t *testing.T) {
	job := NewWarmForecastJob(&fakeSource{}, "0 0 * * * *", []int{30}, 1, logger.Nop())
	assert.Equal(t, WarmForecastJobName, job.Name())
	assert.Equal(t, "0 0 * * * *", job.Schedule())
}
