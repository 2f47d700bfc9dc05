package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wonny/covidtrend/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// funcJob adapts a function to Job
type funcJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func (j *funcJob) Name() string                  { return j.name }
func (j *funcJob) Schedule() string              { return j.schedule }
func (j *funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func newJob(name string, run func(ctx context.Context) error) *funcJob {
	return &funcJob{name: name, schedule: "@every 1h", run: run}
}

func stop(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())
	defer stop(t, s)

	require.NoError(t, s.AddJob(newJob("a", func(context.Context) error { return nil })))

	err := s.AddJob(newJob("a", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrDuplicateJob)

	bad := &funcJob{name: "bad", schedule: "not a schedule", run: func(context.Context) error { return nil }}
	assert.Error(t, s.AddJob(bad))

	require.NoError(t, s.RemoveJob("a"))
	assert.ErrorIs(t, s.RemoveJob("a"), ErrJobNotFound)
	assert.Empty(t, s.Jobs())
}

func TestRunNowRetriesUntilSuccess(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, 0))
	defer stop(t, s)

	var calls int32
	require.NoError(t, s.AddJob(newJob("flaky", func(context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("boom")
		}
		return nil
	})))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempt)

	h, err := s.History("flaky")
	require.NoError(t, err)
	require.Len(t, h.Results, 3)
	assert.Len(t, h.Failures(), 2)
	assert.InDelta(t, 33.33, h.SuccessRate(), 0.01)
}

func TestRunNowGivesUp(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, 0))
	defer stop(t, s)

	require.NoError(t, s.AddJob(newJob("broken", func(context.Context) error {
		return errors.New("always")
	})))

	result, err := s.RunNow(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "always", result.Error)

	stats := s.Jobs()
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].TotalRuns)
	assert.Zero(t, stats[0].SuccessRate)
	require.NotNil(t, stats[0].LastResult)
	assert.Equal(t, 2, stats[0].LastResult.Attempt)
}

func TestRunNowUnknownJob(t *testing.T) {
	s := New(logger.Nop())
	defer stop(t, s)

	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.RunJob("missing"), ErrJobNotFound)
}

func TestOverlappingRunIsRejected(t *testing.T) {
	s := New(logger.Nop(), WithRetry(0, 0))
	defer stop(t, s)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.AddJob(newJob("slow", func(context.Context) error {
		close(started)
		<-release
		return nil
	})))

	require.NoError(t, s.RunJob("slow"))
	<-started

	_, err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
}

func TestStopInterruptsRetryWait(t *testing.T) {
	s := New(logger.Nop(), WithRetry(3, time.Hour))

	attempted := make(chan struct{}, 1)
	require.NoError(t, s.AddJob(newJob("waits", func(context.Context) error {
		select {
		case attempted <- struct{}{}:
		default:
		}
		return errors.New("fail")
	})))

	s.Start()
	require.NoError(t, s.RunJob("waits"))
	<-attempted

	begin := time.Now()
	stop(t, s)
	assert.Less(t, time.Since(begin), 5*time.Second)

	h, err := s.History("waits")
	require.NoError(t, err)
	assert.Len(t, h.Results, 1)
}

func TestJobsReportsNextRun(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(newJob("hourly", func(context.Context) error { return nil })))
	s.Start()
	defer stop(t, s)

	stats := s.Jobs()
	require.Len(t, stats, 1)
	assert.Equal(t, "hourly", stats[0].Name)
	assert.Equal(t, "@every 1h", stats[0].Schedule)
	assert.False(t, stats[0].NextRun.IsZero())
	assert.Nil(t, stats[0].LastResult)
}

func TestJobHistoryBounded(t *testing.T) {
	h := &JobHistory{JobName: "x"}
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Attempt: i, Success: i%2 == 0})
	}

	require.Len(t, h.Results, maxHistory)
	assert.Equal(t, 10, h.Results[0].Attempt)

	latest := h.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, maxHistory+9, latest[0].Attempt)
	assert.Equal(t, maxHistory+8, latest[1].Attempt)
	assert.InDelta(t, 50.0, h.SuccessRate(), 0.001)
	assert.Nil(t, (&JobHistory{}).Latest(3))
}
