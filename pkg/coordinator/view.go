package coordinator

import (
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// Lifecycle is the coordinator's view of a task
type Lifecycle int

const (
	Running Lifecycle = iota
	Paused
	Completed
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "running"
	}
}

// Finished reports whether the task will not change any more
func (l Lifecycle) Finished() bool {
	return l == Completed || l == Failed
}

// TaskView is an immutable snapshot of one task
type TaskView struct {
	ID        task.ID
	Parent    task.ID
	Depth     int
	Mode      string
	Lines     []string
	Lifecycle Lifecycle
	Status    core.JobStatus
	Paused    bool
	Blocked   bool
	Priority  int
	Completed int
	Total     int
	// Progress includes the task's children
	Progress  float64
	LastError string
	// OpError is the most recent operation the coordinator refused
	OpError string
	Dirty   bool

	// Format is the task's status line template, rendered by the renderer
	// against Vars with its own animation tick
	Format *tmpl.Template
	Vars   *tmpl.Context
}

// Frame is a snapshot of every visible task in display order
type Frame struct {
	Seq   uint64
	Tasks []TaskView
}

// Stats counts tasks by state
type Stats struct {
	Live      int
	Finished  int
	Reclaimed int
}

// TaskReport pairs a task with its statistics
type TaskReport struct {
	ID        task.ID
	Mode      string
	Title     string
	Lifecycle Lifecycle
	Report    core.Report
}
