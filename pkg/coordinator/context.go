package coordinator

import (
	"strings"
	"time"

	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
	"github.com/rs/zerolog"
)

type childProgress struct {
	completed int
	total     int
}

// threadContext is the coordinator's private record of one task
type threadContext struct {
	id     task.ID
	cfg    *capability.Config
	parent task.ID
	format *tmpl.Template
	logger zerolog.Logger

	children    map[task.ID]childProgress
	lastMessage string
	opError     string
	dirty       bool
	changes     int

	// done is set by an explicit Done, closed once the channel is drained
	done          bool
	closed        bool
	finishedAt    time.Time
	shownFinished bool
}

func newThreadContext(id task.ID, cfg *capability.Config) *threadContext {
	return &threadContext{
		id:       id,
		cfg:      cfg,
		children: make(map[task.ID]childProgress),
		dirty:    true,
	}
}

func (tc *threadContext) finished() bool {
	return tc.done || tc.closed
}

func (tc *threadContext) title() string {
	if t, ok := tc.cfg.Title(); ok {
		return t.Title()
	}
	return ""
}

// report labels the statistics with the title, or the latest message for
// modes without one
func (tc *threadContext) report(now time.Time) TaskReport {
	label := tc.title()
	if label == "" {
		label = tc.lastMessage
	}
	return TaskReport{
		ID:        tc.id,
		Mode:      tc.cfg.Name(),
		Title:     label,
		Lifecycle: tc.lifecycle(),
		Report:    tc.cfg.Base().Report(now),
	}
}

func (tc *threadContext) lifecycle() Lifecycle {
	b := tc.cfg.Base()
	switch {
	case b.Status == core.StatusFailed:
		return Failed
	case b.Status == core.StatusCompleted:
		return Completed
	case b.Paused:
		return Paused
	default:
		return Running
	}
}

// totals includes every child the task has seen
func (tc *threadContext) totals() (completed, total int) {
	b := tc.cfg.Base()
	completed, total = b.CompletedJobs, b.TotalJobs
	for _, cp := range tc.children {
		completed += cp.completed
		total += cp.total
	}
	return completed, total
}

func (c *Coordinator) blocked(tc *threadContext) bool {
	for _, dep := range tc.cfg.Base().Dependencies() {
		other, ok := c.tasks[dep]
		if ok && other.cfg.Base().Status != core.StatusCompleted {
			return true
		}
	}
	return false
}

func (c *Coordinator) view(tc *threadContext, depth int, now time.Time) TaskView {
	b := tc.cfg.Base()
	completed, total := tc.totals()
	life := tc.lifecycle()
	blocked := c.blocked(tc)

	progress := 0.0
	switch {
	case total > 0:
		progress = float64(completed) / float64(total)
	case life == Completed:
		progress = 1
	}

	report := b.Report(now)
	vars := tmpl.FromProgress(completed, total).
		Int("id", int(tc.id)).
		Text("mode", tc.cfg.Name()).
		Text("title", tc.title()).
		Text("status", life.String()).
		Text("message", tc.lastMessage).
		Text("error", b.LastError).
		Text("elapsed", report.Elapsed.Truncate(time.Second).String()).
		Num("rate", report.JobsPerSecond).
		Int("retries", b.RetryCount).
		Int("failures", b.FailureCount).
		Int("depth", depth).
		Bool("paused", b.Paused).
		Bool("blocked", blocked)
	if report.HasETA {
		vars.Text("eta", report.ETA.Truncate(time.Second).String())
	}

	return TaskView{
		ID:        tc.id,
		Parent:    tc.parent,
		Depth:     depth,
		Mode:      tc.cfg.Name(),
		Lines:     append([]string(nil), tc.cfg.Lines()...),
		Lifecycle: life,
		Status:    b.Status,
		Paused:    b.Paused,
		Blocked:   blocked,
		Priority:  b.Priority,
		Completed: completed,
		Total:     total,
		Progress:  progress,
		LastError: b.LastError,
		OpError:   tc.opError,
		Dirty:     tc.dirty,
		Format:    tc.format,
		Vars:      vars,
	}
}

func (c *Coordinator) start(tc *threadContext) {
	if s, ok := tc.cfg.Status(); ok {
		s.Start(c.clock.Now())
	}
}

// progressed counts a progress change and saves every saveEvery changes
func (c *Coordinator) progressed(tc *threadContext) {
	tc.changes++
	if tc.changes%c.saveEvery == 0 {
		c.save(tc)
	}
}

// applyOp runs one task operation. Capability checks repeat here because
// modes from outside the package tree may change what they support.
func (c *Coordinator) applyOp(tc *threadContext, msg task.Message) error {
	if k := msg.Op.Requires(); k != 0 {
		if err := tc.cfg.Require(k); err != nil {
			return err
		}
	}

	switch msg.Op {
	case task.OpLog:
		c.start(tc)
		tc.cfg.HandleMessage(msg.Text)
		if line := lastLine(msg.Text); line != "" {
			tc.lastMessage = line
		}
	case task.OpSetTitle:
		t, _ := tc.cfg.Title()
		t.SetTitle(msg.Text)
	case task.OpAddEmoji:
		e, _ := tc.cfg.Emoji()
		e.AddEmoji(msg.Text)
	case task.OpEnableWrap:
		w, _ := tc.cfg.Wrap()
		w.SetWrapWidth(msg.N)
	case task.OpSetTotalJobs:
		p, _ := tc.cfg.Progress()
		p.SetTotalJobs(msg.N)
	case task.OpIncrement:
		c.start(tc)
		p, _ := tc.cfg.Progress()
		p.IncrementCompleted()
		c.progressed(tc)
	case task.OpSetCompleted:
		c.start(tc)
		p, _ := tc.cfg.Progress()
		p.SetCompleted(msg.N)
		c.progressed(tc)
	case task.OpPause:
		p, _ := tc.cfg.Pausable()
		p.Pause()
	case task.OpResume:
		p, _ := tc.cfg.Pausable()
		p.Resume()
	case task.OpSetPriority:
		p, _ := tc.cfg.Priority()
		p.SetPriority(msg.N)
	case task.OpAddDependency:
		if msg.Target == tc.id {
			return errors.Validation("task %d cannot depend on itself", uint64(tc.id))
		}
		d, _ := tc.cfg.Dependent()
		d.AddDependency(msg.Target)
	case task.OpRemoveDependency:
		d, _ := tc.cfg.Dependent()
		d.RemoveDependency(msg.Target)
	case task.OpMarkFailed:
		f, _ := tc.cfg.Failure()
		f.MarkFailed(msg.Text)
		c.save(tc)
	case task.OpRetry:
		f, _ := tc.cfg.Failure()
		if err := f.Retry(); err != nil {
			return err
		}
	case task.OpSetMaxRetries:
		f, _ := tc.cfg.Failure()
		f.SetMaxRetries(msg.N)
	case task.OpSetProgressFormat:
		tc.format = msg.Template
	case task.OpFlush:
		if msg.Ack != nil {
			close(msg.Ack)
		}
	case task.OpDone:
		tc.done = true
		if s, ok := tc.cfg.Status(); ok && s.Status() != core.StatusFailed {
			s.Complete()
		}
		c.finish(tc)
	default:
		return errors.Validation("unknown operation %d", int(msg.Op))
	}
	return nil
}

func lastLine(text string) string {
	text = strings.TrimRight(text, "\r\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimRight(text, "\r")
}
