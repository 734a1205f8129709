package core_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementSaturates(t *testing.T) {
	tests := []struct {
		name  string
		total int
		k     int
	}{
		{"fewer_than_total", 10, 4},
		{"exactly_total", 5, 5},
		{"beyond_total", 3, 50},
		{"zero_total", 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := core.NewBaseConfig(0)
			b.SetTotalJobs(tt.total)
			for i := 0; i < tt.k; i++ {
				b.IncrementCompleted()
			}
			assert.Equal(t, min(tt.k, tt.total), b.CompletedJobs)
			assert.LessOrEqual(t, b.CompletedJobs, b.TotalJobs)
		})
	}
}

func TestLoweringTotalClampsCompleted(t *testing.T) {
	b := core.NewBaseConfig(10)
	b.SetCompleted(8)
	b.SetTotalJobs(5)
	assert.Equal(t, 5, b.CompletedJobs)

	b.SetCompleted(-3)
	assert.Equal(t, 0, b.CompletedJobs)
}

func TestProgress(t *testing.T) {
	b := core.NewBaseConfig(4)
	assert.Equal(t, 0.0, b.Progress())
	b.SetCompleted(1)
	assert.Equal(t, 0.25, b.Progress())

	empty := core.NewBaseConfig(0)
	empty.Complete()
	assert.Equal(t, 1.0, empty.Progress())
}

func TestRetryLimit(t *testing.T) {
	b := core.NewBaseConfig(1)
	b.SetMaxRetries(2)

	b.MarkFailed("boom")
	assert.Equal(t, core.StatusFailed, b.Status)
	assert.Equal(t, 1, b.FailureCount)
	assert.Equal(t, "boom", b.LastError)

	require.NoError(t, b.Retry())
	assert.Equal(t, core.StatusRetry, b.Status)
	assert.Empty(t, b.LastError)
	require.NoError(t, b.Retry())
	assert.True(t, b.HasReachedRetryLimit())

	err := b.Retry()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRetryLimit))
	assert.Equal(t, 2, b.RetryCount)
}

func TestDependenciesDeduplicate(t *testing.T) {
	b := core.NewBaseConfig(1)
	b.AddDependency(3)
	b.AddDependency(1)
	b.AddDependency(3)
	assert.Equal(t, []core.TaskID{1, 3}, b.Dependencies())

	b.RemoveDependency(3)
	b.RemoveDependency(42)
	assert.Equal(t, []core.TaskID{1}, b.Dependencies())
}

func TestCloneIsIndependent(t *testing.T) {
	b := core.NewBaseConfig(5)
	b.AddDependency(2)
	b.AddChild(9)

	c := b.Clone()
	c.AddDependency(4)
	c.AddChild(10)
	c.IncrementCompleted()

	assert.Equal(t, []core.TaskID{2}, b.Dependencies())
	assert.Equal(t, []core.TaskID{9}, b.Children())
	assert.Equal(t, 0, b.CompletedJobs)
}

func TestStateRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := core.NewBaseConfig(20)
	b.Start(start)
	b.SetCompleted(7)
	b.RetryCount = 1

	s := b.State("job-1")
	restored := core.NewBaseConfig(0)
	restored.Restore(s)

	assert.Equal(t, s, restored.State("job-1"))
	assert.Equal(t, "job-1", restored.PersistenceID)
}

func TestRestoreKeepsInvariant(t *testing.T) {
	b := core.NewBaseConfig(0)
	b.Restore(core.PersistedState{ID: "x", TotalJobs: 3, CompletedJobs: 9, Status: "bogus"})
	assert.Equal(t, 3, b.CompletedJobs)
	assert.Equal(t, core.StatusPending, b.Status)
}

func TestReport(t *testing.T) {
	clock := core.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := core.NewBaseConfig(100)
	b.Start(clock.Now())
	clock.Advance(10 * time.Second)
	b.SetCompleted(50)

	r := b.Report(clock.Now())
	assert.Equal(t, 50.0, r.Percent)
	assert.Equal(t, 10*time.Second, r.Elapsed)
	assert.InDelta(t, 5.0, r.JobsPerSecond, 0.001)
	require.True(t, r.HasETA)
	assert.Equal(t, 10*time.Second, r.ETA)

	out := r.String()
	assert.Contains(t, out, "Progress: 50.0% (50/100)")
	assert.Contains(t, out, "Speed: 5.00 jobs/s")
	assert.Contains(t, out, "ETA: 10s")
}
