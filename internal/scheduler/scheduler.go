package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/covidtrend/internal/metrics"
	"github.com/wonny/covidtrend/pkg/logger"
)

var (
	// ErrJobNotFound is returned for names never added
	ErrJobNotFound = errors.New("job not found")
	// ErrJobRunning is returned when a run overlaps the previous one
	ErrJobRunning = errors.New("job already running")
	// ErrDuplicateJob is returned when a name is added twice
	ErrDuplicateJob = errors.New("job already registered")
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = 30 * time.Second
)

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry sets how many times a failed run is retried and the wait between attempts
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		if maxRetries >= 0 {
			s.maxRetries = maxRetries
		}
		if delay >= 0 {
			s.retryDelay = delay
		}
	}
}

// Scheduler runs Jobs on cron schedules and keeps their history.
// ⭐ 모든 백그라운드 작업은 Scheduler를 통해 실행 (Stop 시 전부 정리)
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu      sync.RWMutex
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	running map[string]bool

	maxRetries int
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler; jobs run only after Start
func New(log *logger.Logger, opts ...Option) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:     log,
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		running:    make(map[string]bool),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a job on its cron schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	entryID, err := s.cron.AddFunc(job.Schedule(), func() {
		_, _ = s.execute(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("add job %s (schedule %q): %w", name, job.Schedule(), err)
	}

	s.jobs[name] = job
	s.entries[name] = entryID
	s.history[name] = &JobHistory{JobName: name}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")

	return nil
}

// RemoveJob unregisters a job; its history is dropped too
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.cron.Remove(entryID)
	delete(s.jobs, name)
	delete(s.entries, name)
	delete(s.history, name)

	s.logger.WithField("job", name).Info("Job removed")
	return nil
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("jobs", len(s.jobs)).Info("Scheduler started")
}

// Stop cancels in-flight runs (including retry waits) and waits for them to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunJob triggers a job immediately in the background
func (s *Scheduler) RunJob(name string) error {
	job, err := s.lookup(name)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.execute(s.ctx, job)
	}()
	return nil
}

// RunNow runs a job synchronously (with retries) and returns its final result
func (s *Scheduler) RunNow(ctx context.Context, name string) (JobResult, error) {
	job, err := s.lookup(name)
	if err != nil {
		return JobResult{}, err
	}
	return s.execute(ctx, job)
}

func (s *Scheduler) lookup(name string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return job, nil
}

// execute runs one job with retries; overlapping runs of the same job are rejected
func (s *Scheduler) execute(ctx context.Context, job Job) (JobResult, error) {
	name := job.Name()

	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		s.logger.WithField("job", name).Warn("Job still running, skipping")
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	s.running[name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, name)
		s.mu.Unlock()
	}()

	var result JobResult
	var err error
	for attempt := 1; attempt <= s.maxRetries+1; attempt++ {
		result, err = s.runOnce(ctx, job, attempt)
		if err == nil {
			return result, nil
		}
		if attempt > s.maxRetries || ctx.Err() != nil {
			break
		}

		s.logger.WithError(err).WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt,
			"retry":   s.retryDelay.String(),
		}).Warn("Job failed, retrying")

		if waitErr := sleepCtx(ctx, s.retryDelay); waitErr != nil {
			break
		}
	}

	s.logger.WithError(err).WithField("job", name).Error("Job failed")
	return result, err
}

func (s *Scheduler) runOnce(ctx context.Context, job Job, attempt int) (JobResult, error) {
	start := time.Now()
	err := job.Run(ctx)
	end := time.Now()

	result := JobResult{
		JobName:   job.Name(),
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   err == nil,
		Attempt:   attempt,
	}
	if err != nil {
		result.Error = err.Error()
	}

	metrics.RecordJobRun(job.Name(), result.Duration, err)

	s.mu.Lock()
	if h, ok := s.history[job.Name()]; ok {
		h.AddResult(result)
	}
	s.mu.Unlock()

	if err == nil {
		s.logger.WithFields(map[string]interface{}{
			"job":         job.Name(),
			"duration_ms": result.Duration.Milliseconds(),
			"attempt":     attempt,
		}).Info("Job completed")
	}
	return result, err
}

// sleepCtx waits d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// History returns a copy of a job's history
func (s *Scheduler) History(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.history[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return h.clone(), nil
}

// JobStats summarizes one registered job
type JobStats struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	NextRun     time.Time  `json:"next_run"`
	PrevRun     time.Time  `json:"prev_run"`
	TotalRuns   int        `json:"total_runs"`
	SuccessRate float64    `json:"success_rate"`
	LastResult  *JobResult `json:"last_result,omitempty"`
}

// Jobs returns stats for every registered job, sorted by name
func (s *Scheduler) Jobs() []JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStats, 0, len(s.jobs))
	for name, job := range s.jobs {
		entry := s.cron.Entry(s.entries[name])
		h := s.history[name]

		st := JobStats{
			Name:        name,
			Schedule:    job.Schedule(),
			NextRun:     entry.Next,
			PrevRun:     entry.Prev,
			TotalRuns:   len(h.Results),
			SuccessRate: h.SuccessRate(),
		}
		if latest := h.Latest(1); len(latest) == 1 {
			st.LastResult = &latest[0]
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger adapts the application logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
