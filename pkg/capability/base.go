package capability

import (
	"time"

	"github.com/arthur-debert/tasklines/pkg/core"
)

// baseJob serves every capability backed purely by BaseConfig
type baseJob struct {
	b *core.BaseConfig
}

func (j baseJob) TotalJobs() int      { return j.b.TotalJobs }
func (j baseJob) CompletedJobs() int  { return j.b.CompletedJobs }
func (j baseJob) SetTotalJobs(n int)  { j.b.SetTotalJobs(n) }
func (j baseJob) IncrementCompleted() { j.b.IncrementCompleted() }
func (j baseJob) SetCompleted(n int)  { j.b.SetCompleted(n) }
func (j baseJob) Percent() float64    { return j.b.Progress() * 100 }

func (j baseJob) ETA(now time.Time) (time.Duration, bool) {
	r := j.b.Report(now)
	return r.ETA, r.HasETA
}

func (j baseJob) Pause()         { j.b.Paused = true }
func (j baseJob) Resume()        { j.b.Paused = false }
func (j baseJob) IsPaused() bool { return j.b.Paused }

func (j baseJob) Priority() int     { return j.b.Priority }
func (j baseJob) SetPriority(p int) { j.b.Priority = p }

func (j baseJob) AddDependency(id core.TaskID)    { j.b.AddDependency(id) }
func (j baseJob) RemoveDependency(id core.TaskID) { j.b.RemoveDependency(id) }
func (j baseJob) Dependencies() []core.TaskID     { return j.b.Dependencies() }
func (j baseJob) DependsOn(id core.TaskID) bool   { return j.b.HasDependency(id) }

func (j baseJob) MarkFailed(msg string)      { j.b.MarkFailed(msg) }
func (j baseJob) Retry() error               { return j.b.Retry() }
func (j baseJob) HasReachedRetryLimit() bool { return j.b.HasReachedRetryLimit() }
func (j baseJob) LastError() string          { return j.b.LastError }
func (j baseJob) FailureCount() int          { return j.b.FailureCount }
func (j baseJob) RetryCount() int            { return j.b.RetryCount }
func (j baseJob) MaxRetries() int            { return j.b.MaxRetries }
func (j baseJob) SetMaxRetries(n int)        { j.b.SetMaxRetries(n) }

func (j baseJob) Status() core.JobStatus     { return j.b.Status }
func (j baseJob) SetStatus(s core.JobStatus) { j.b.Status = s }
func (j baseJob) Start(now time.Time)        { j.b.Start(now) }
func (j baseJob) Complete()                  { j.b.Complete() }

func (j baseJob) Report(now time.Time) core.Report { return j.b.Report(now) }

func (j baseJob) PersistenceID() string         { return j.b.PersistenceID }
func (j baseJob) SetPersistenceID(key string)   { j.b.PersistenceID = key }
func (j baseJob) Save() core.PersistedState     { return j.b.State(j.b.PersistenceID) }
func (j baseJob) Restore(s core.PersistedState) { j.b.Restore(s) }
