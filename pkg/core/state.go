package core

import "time"

// PersistedState is the per-task record saved between runs
type PersistedState struct {
	ID            string    `toml:"id"`
	TotalJobs     int       `toml:"total_jobs"`
	CompletedJobs int       `toml:"completed_jobs"`
	Status        JobStatus `toml:"status"`
	RetryCount    int       `toml:"retry_count"`
	StartTime     time.Time `toml:"start_time"`
}

// State captures the persisted fields of b under key
func (b *BaseConfig) State(key string) PersistedState {
	return PersistedState{
		ID:            key,
		TotalJobs:     b.TotalJobs,
		CompletedJobs: b.CompletedJobs,
		Status:        b.Status,
		RetryCount:    b.RetryCount,
		StartTime:     b.StartTime,
	}
}

// Restore applies a persisted record, keeping the saturation invariant
func (b *BaseConfig) Restore(s PersistedState) {
	b.PersistenceID = s.ID
	b.SetTotalJobs(s.TotalJobs)
	b.SetCompleted(s.CompletedJobs)
	if st, ok := ParseJobStatus(string(s.Status)); ok {
		b.Status = st
	}
	b.RetryCount = s.RetryCount
	if !s.StartTime.IsZero() {
		b.StartTime = s.StartTime
	}
}
