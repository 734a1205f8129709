package core

import "fmt"

// TaskID identifies a task for the lifetime of a display
type TaskID uint64

// String renders the id the way it appears in logs
func (id TaskID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// JobStatus is the lifecycle state recorded in BaseConfig
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusRetry     JobStatus = "retry"
)

// ParseJobStatus converts a persisted status string back to a JobStatus
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusRetry:
		return JobStatus(s), true
	}
	return StatusPending, false
}

// Terminal reports whether no further progress is expected
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
