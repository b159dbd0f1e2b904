package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int // fail this many runs before succeeding
	runs     int
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "scan", schedule: "@daily"}))
	err := s.AddJob(&fakeJob{name: "scan", schedule: "@daily"})
	assert.Error(t, err)

	assert.Equal(t, []string{"scan"}, s.Jobs())
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.AddJob(&fakeJob{name: "bad", schedule: "not a cron"}))
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "scan", schedule: "@daily"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	h, err := s.History("scan")
	require.NoError(t, err)
	last, ok := h.Last()
	require.True(t, ok)
	assert.True(t, last.Success)
	assert.Equal(t, "scan", last.JobName)
	assert.Equal(t, 1, job.runs)
}

func TestRunJobRetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 3, job.runs)
	h, err := s.History("flaky")
	require.NoError(t, err)
	last, _ := h.Last()
	assert.True(t, last.Success)
}

func TestRunJobFailureAfterAllRetries(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, s.maxRetries+1, job.runs)
	h, err := s.History("broken")
	require.NoError(t, err)
	last, _ := h.Last()
	assert.False(t, last.Success)
	assert.Equal(t, "boom", last.Error)
}

func TestRunJobUnknownName(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJob("missing"))
	_, err := s.History("missing")
	assert.Error(t, err)
}

func TestJobHistoryBoundsAndStats(t *testing.T) {
	h := &JobHistory{}

	_, ok := h.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.SuccessRate())

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "j", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, 100)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}
