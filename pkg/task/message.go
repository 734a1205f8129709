package task

import (
	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// ID identifies a task
type ID = core.TaskID

// Op is the operation a Message asks the coordinator to apply
type Op int

const (
	OpLog Op = iota
	OpSetTitle
	OpSetTotalJobs
	OpIncrement
	OpSetCompleted
	OpPause
	OpResume
	OpAddEmoji
	OpMarkFailed
	OpRetry
	OpAddDependency
	OpRemoveDependency
	OpSetPriority
	OpSetMaxRetries
	OpEnableWrap
	OpSetProgressFormat
	OpFlush
	OpDone
)

var opNames = [...]string{
	OpLog:               "log",
	OpSetTitle:          "set_title",
	OpSetTotalJobs:      "set_total_jobs",
	OpIncrement:         "increment",
	OpSetCompleted:      "set_completed",
	OpPause:             "pause",
	OpResume:            "resume",
	OpAddEmoji:          "add_emoji",
	OpMarkFailed:        "mark_failed",
	OpRetry:             "retry",
	OpAddDependency:     "add_dependency",
	OpRemoveDependency:  "remove_dependency",
	OpSetPriority:       "set_priority",
	OpSetMaxRetries:     "set_max_retries",
	OpEnableWrap:        "enable_wrap",
	OpSetProgressFormat: "set_progress_format",
	OpFlush:             "flush",
	OpDone:              "done",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Requires returns the capability an operation depends on, or 0
func (o Op) Requires() capability.Kind {
	switch o {
	case OpSetTitle:
		return capability.KindTitle
	case OpAddEmoji:
		return capability.KindEmoji
	case OpEnableWrap:
		return capability.KindWrap
	case OpSetTotalJobs, OpIncrement, OpSetCompleted:
		return capability.KindProgress
	case OpPause, OpResume:
		return capability.KindPause
	case OpSetPriority:
		return capability.KindPriority
	case OpAddDependency, OpRemoveDependency:
		return capability.KindDependency
	case OpMarkFailed, OpRetry, OpSetMaxRetries:
		return capability.KindFailure
	default:
		return 0
	}
}

// Message is one operation sent from a Handle to the coordinator
type Message struct {
	Op       Op
	Text     string
	N        int
	Target   ID
	Template *tmpl.Template
	// Ack is closed by the coordinator once a flush has been reached
	Ack chan struct{}
}
