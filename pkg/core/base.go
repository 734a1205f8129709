package core

import (
	"sort"
	"time"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// DefaultMaxRetries is applied when a task does not set its own limit
const DefaultMaxRetries = 3

// BaseConfig is the per-task bookkeeping held by every mode.
//
// CompletedJobs never exceeds TotalJobs: increments saturate and lowering
// the total clamps the completed count.
type BaseConfig struct {
	TotalJobs     int
	CompletedJobs int
	Status        JobStatus
	RetryCount    int
	MaxRetries    int
	FailureCount  int
	LastError     string
	Priority      int
	Paused        bool
	StartTime     time.Time
	PersistenceID string

	dependencies map[TaskID]struct{}
	children     []TaskID
}

// NewBaseConfig creates bookkeeping for a task expecting totalJobs units
func NewBaseConfig(totalJobs int) *BaseConfig {
	if totalJobs < 0 {
		totalJobs = 0
	}
	return &BaseConfig{
		TotalJobs:    totalJobs,
		Status:       StatusPending,
		MaxRetries:   DefaultMaxRetries,
		dependencies: make(map[TaskID]struct{}),
	}
}

// Start marks the task as running from now
func (b *BaseConfig) Start(now time.Time) {
	if b.StartTime.IsZero() {
		b.StartTime = now
	}
	if b.Status == StatusPending {
		b.Status = StatusRunning
	}
}

// SetTotalJobs changes the expected unit count
func (b *BaseConfig) SetTotalJobs(n int) {
	if n < 0 {
		n = 0
	}
	b.TotalJobs = n
	if b.CompletedJobs > n {
		b.CompletedJobs = n
	}
}

// IncrementCompleted adds one completed unit, saturating at TotalJobs
func (b *BaseConfig) IncrementCompleted() {
	if b.CompletedJobs < b.TotalJobs {
		b.CompletedJobs++
	}
}

// SetCompleted sets the completed count, clamped to [0, TotalJobs]
func (b *BaseConfig) SetCompleted(n int) {
	switch {
	case n < 0:
		n = 0
	case n > b.TotalJobs:
		n = b.TotalJobs
	}
	b.CompletedJobs = n
}

// Progress returns completion as a ratio in [0, 1]
func (b *BaseConfig) Progress() float64 {
	if b.TotalJobs == 0 {
		if b.Status == StatusCompleted {
			return 1
		}
		return 0
	}
	return float64(b.CompletedJobs) / float64(b.TotalJobs)
}

// Done reports whether every expected unit has completed
func (b *BaseConfig) Done() bool {
	return b.TotalJobs > 0 && b.CompletedJobs >= b.TotalJobs
}

// Complete marks the task completed
func (b *BaseConfig) Complete() {
	b.Status = StatusCompleted
	b.LastError = ""
}

// MarkFailed records a failure and its message
func (b *BaseConfig) MarkFailed(msg string) {
	b.Status = StatusFailed
	b.FailureCount++
	b.LastError = msg
}

// HasReachedRetryLimit reports whether another retry would exceed MaxRetries
func (b *BaseConfig) HasReachedRetryLimit() bool {
	return b.RetryCount >= b.MaxRetries
}

// Retry moves the task into the retry state, clearing the last error
func (b *BaseConfig) Retry() error {
	if b.HasReachedRetryLimit() {
		return errors.Newf(errors.ErrRetryLimit, "retry limit of %d reached", b.MaxRetries).
			WithDetail("retry_count", b.RetryCount).
			WithDetail("max_retries", b.MaxRetries)
	}
	b.RetryCount++
	b.Status = StatusRetry
	b.LastError = ""
	return nil
}

// SetMaxRetries changes the retry limit
func (b *BaseConfig) SetMaxRetries(n int) {
	if n < 0 {
		n = 0
	}
	b.MaxRetries = n
}

// AddDependency records that this task waits on id
func (b *BaseConfig) AddDependency(id TaskID) {
	if b.dependencies == nil {
		b.dependencies = make(map[TaskID]struct{})
	}
	b.dependencies[id] = struct{}{}
}

// RemoveDependency drops a dependency; unknown ids are ignored
func (b *BaseConfig) RemoveDependency(id TaskID) {
	delete(b.dependencies, id)
}

// HasDependency reports whether id is a dependency
func (b *BaseConfig) HasDependency(id TaskID) bool {
	_, ok := b.dependencies[id]
	return ok
}

// Dependencies returns the dependency ids in ascending order
func (b *BaseConfig) Dependencies() []TaskID {
	out := make([]TaskID, 0, len(b.dependencies))
	for id := range b.dependencies {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddChild registers a child task whose progress rolls up into this one
func (b *BaseConfig) AddChild(id TaskID) {
	for _, c := range b.children {
		if c == id {
			return
		}
	}
	b.children = append(b.children, id)
}

// Children returns the child ids in registration order
func (b *BaseConfig) Children() []TaskID {
	return append([]TaskID(nil), b.children...)
}

// Clone returns an independent copy
func (b *BaseConfig) Clone() *BaseConfig {
	c := *b
	c.dependencies = make(map[TaskID]struct{}, len(b.dependencies))
	for id := range b.dependencies {
		c.dependencies[id] = struct{}{}
	}
	c.children = append([]TaskID(nil), b.children...)
	return &c
}
