package scheduler

import (
	"context"
	"time"
)

// maxHistory is the number of results kept per job
const maxHistory = 100

// Job is a unit of scheduled work
type Job interface {
	// Name returns the job name (unique within a scheduler)
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression (seconds field first, descriptors allowed)
	Schedule() string
}

// JobResult is the outcome of one attempt
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Attempt   int           `json:"attempt"`
}

// JobHistory keeps the most recent results of one job, oldest first
type JobHistory struct {
	JobName string      `json:"job_name"`
	Results []JobResult `json:"results"`
}

// AddResult appends a result, dropping the oldest past maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns up to n results, newest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n <= 0 || len(h.Results) == 0 {
		return nil
	}
	if n > len(h.Results) {
		n = len(h.Results)
	}

	out := make([]JobResult, 0, n)
	for i := len(h.Results) - 1; i >= len(h.Results)-n; i-- {
		out = append(out, h.Results[i])
	}
	return out
}

// Failures returns the failed results, oldest first
func (h *JobHistory) Failures() []JobResult {
	var out []JobResult
	for _, r := range h.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// SuccessRate is the percentage of successful attempts (0 when empty)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}

	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results)) * 100
}

// clone copies the history so callers never share the backing array
func (h *JobHistory) clone() *JobHistory {
	out := &JobHistory{JobName: h.JobName, Results: make([]JobResult, len(h.Results))}
	copy(out.Results, h.Results)
	return out
}
