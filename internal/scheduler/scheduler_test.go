package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/eventreport/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failN    int // 처음 failN 번 실패
	calls    int
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	j.calls++
	if j.calls <= j.failN {
		return errors.New("upstream unavailable")
	}
	return nil
}

func newTestScheduler(maxRetries int) *Scheduler {
	return New(Options{MaxRetries: maxRetries, RetryDelay: time.Millisecond}, logger.NewNop())
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	err := s.AddJob(&countingJob{name: "a", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler(0)

	err := s.AddJob(&countingJob{name: "bad", schedule: "every day"})
	require.Error(t, err)
	assert.Empty(t, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestRunNow_NoRetryByDefault(t *testing.T) {
	s := newTestScheduler(0)
	job := &countingJob{name: "report", schedule: "@daily", failN: 1}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "report")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "upstream unavailable", result.Error)
	assert.Equal(t, 1, job.calls)
}

func TestRunNow_RetriesWholeRun(t *testing.T) {
	s := newTestScheduler(2)
	job := &countingJob{name: "report", schedule: "@daily", failN: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "report")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
}

func TestRunNow_RetriesExhausted(t *testing.T) {
	s := newTestScheduler(1)
	job := &countingJob{name: "report", schedule: "@daily", failN: 5}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "report")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, job.calls)
}

func TestRunNow_CancelledDuringRetryDelay(t *testing.T) {
	s := New(Options{MaxRetries: 3, RetryDelay: time.Hour}, logger.NewNop())
	job := &countingJob{name: "report", schedule: "@daily", failN: 5}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := s.RunNow(ctx, "report")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, job.calls)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Error)
}

func TestRunNow_UnknownJob(t *testing.T) {
	_, err := newTestScheduler(0).RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestTimeoutAppliesPerRun(t *testing.T) {
	s := New(Options{Timeout: 10 * time.Millisecond}, logger.NewNop())
	var deadline time.Time
	var ok bool
	require.NoError(t, s.AddJob(jobFunc{name: "slow", run: func(ctx context.Context) error {
		deadline, ok = ctx.Deadline()
		return nil
	}}))

	_, err := s.RunNow(context.Background(), "slow")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, deadline.IsZero())
}

type jobFunc struct {
	name string
	run  func(ctx context.Context) error
}

func (j jobFunc) Name() string                  { return j.name }
func (j jobFunc) Schedule() string              { return "@daily" }
func (j jobFunc) Run(ctx context.Context) error { return j.run(ctx) }

func TestJobStatsAndHistory(t *testing.T) {
	s := newTestScheduler(0)
	job := &countingJob{name: "report", schedule: "@daily", failN: 1}
	require.NoError(t, s.AddJob(job))

	_, _ = s.RunNow(context.Background(), "report")
	_, _ = s.RunNow(context.Background(), "report")

	stats := s.GetJobStats()["report"]
	assert.Equal(t, "@daily", stats.Schedule)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-12)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)

	history, err := s.GetJobHistory("report")
	require.NoError(t, err)
	require.Len(t, history.Results, 2)
	assert.False(t, history.Results[0].Success)
	assert.True(t, history.Results[1].Success)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Attempts: i})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, 10, h.Results[0].Attempts)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Empty(t, h.GetLatestResults(0))
	assert.Equal(t, 0.0, (&JobHistory{}).GetSuccessRate())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 18 * * 1-5"}))

	s.Start()
	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	s.Stop()
}
