package capability

import (
	"time"

	"github.com/arthur-debert/tasklines/pkg/core"
)

// WithTitle gets and sets the title row of a titled window
type WithTitle interface {
	Title() string
	SetTitle(title string)
}

// WithEmoji stacks glyphs in front of the title
type WithEmoji interface {
	AddEmoji(glyph string)
	Emojis() []string
}

// WithWrappedText wraps incoming lines at a display width
type WithWrappedText interface {
	SetWrapWidth(width int)
	WrapWidth() int
}

// WithProgress tracks completed units of work
type WithProgress interface {
	TotalJobs() int
	CompletedJobs() int
	SetTotalJobs(n int)
	IncrementCompleted()
	SetCompleted(n int)
	// Percent is completion in [0, 100]
	Percent() float64
	ETA(now time.Time) (time.Duration, bool)
}

// PausableJob suspends visual updates without stopping message flow
type PausableJob interface {
	Pause()
	Resume()
	IsPaused() bool
}

// PrioritizedJob orders tasks on screen
type PrioritizedJob interface {
	Priority() int
	SetPriority(p int)
}

// DependentJob records tasks that must finish first
type DependentJob interface {
	AddDependency(id core.TaskID)
	RemoveDependency(id core.TaskID)
	Dependencies() []core.TaskID
	DependsOn(id core.TaskID) bool
}

// FailureHandlingJob records failures and drives retries
type FailureHandlingJob interface {
	MarkFailed(msg string)
	Retry() error
	HasReachedRetryLimit() bool
	LastError() string
	FailureCount() int
	RetryCount() int
	MaxRetries() int
	SetMaxRetries(n int)
}

// JobStatusTracker exposes the lifecycle status
type JobStatusTracker interface {
	Status() core.JobStatus
	SetStatus(s core.JobStatus)
	Start(now time.Time)
	Complete()
}

// JobStatistics produces a summary report
type JobStatistics interface {
	Report(now time.Time) core.Report
}

// PersistentJob saves and restores the persisted record
type PersistentJob interface {
	PersistenceID() string
	SetPersistenceID(key string)
	Save() core.PersistedState
	Restore(s core.PersistedState)
}
