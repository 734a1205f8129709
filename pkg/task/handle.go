package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// Handle is the producer's side of a task. Every method turns into a
// message on the task's bounded channel; a full channel blocks the caller
// until the coordinator catches up or ctx ends.
//
// A Handle may be shared between goroutines. Messages sent from one
// goroutine keep their order.
type Handle struct {
	id       ID
	modeName string
	caps     capability.Set
	engine   *tmpl.Engine

	mu      sync.RWMutex
	ch      chan Message
	closed  bool
	release func()
}

func newHandle(id ID, cfg *capability.Config, ch chan Message, engine *tmpl.Engine, release func()) *Handle {
	return &Handle{
		id:       id,
		modeName: cfg.Name(),
		caps:     cfg.Capabilities(),
		engine:   engine,
		ch:       ch,
		release:  release,
	}
}

// ID returns the task id
func (h *Handle) ID() ID { return h.id }

// Mode returns the name of the task's mode
func (h *Handle) Mode() string { return h.modeName }

// Capabilities returns what the task's mode supports
func (h *Handle) Capabilities() capability.Set { return h.caps }

// Supports reports whether the task's mode has capability k
func (h *Handle) Supports(k capability.Kind) bool { return h.caps.Has(k) }

func (h *Handle) send(ctx context.Context, msg Message) error {
	if k := msg.Op.Requires(); k != 0 && !h.caps.Has(k) {
		return errors.CapabilityNotSupported(k.String(), h.modeName).WithDetail("task_id", uint64(h.id))
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return errors.Newf(errors.ErrClosed, "task %d is closed", uint64(h.id)).WithDetail("op", msg.Op.String())
	}
	select {
	case h.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Log appends a message to the task's display
func (h *Handle) Log(ctx context.Context, text string) error {
	return h.send(ctx, Message{Op: OpLog, Text: text})
}

// Logf formats and logs a message
func (h *Handle) Logf(ctx context.Context, format string, args ...interface{}) error {
	return h.Log(ctx, fmt.Sprintf(format, args...))
}

// SetTitle replaces the title row
func (h *Handle) SetTitle(ctx context.Context, title string) error {
	return h.send(ctx, Message{Op: OpSetTitle, Text: title})
}

// SetTotalJobs sets the expected number of units
func (h *Handle) SetTotalJobs(ctx context.Context, n int) error {
	return h.send(ctx, Message{Op: OpSetTotalJobs, N: n})
}

// Increment marks one more unit completed; it saturates at the total
func (h *Handle) Increment(ctx context.Context) error {
	return h.send(ctx, Message{Op: OpIncrement})
}

// SetCompleted sets the completed count
func (h *Handle) SetCompleted(ctx context.Context, n int) error {
	return h.send(ctx, Message{Op: OpSetCompleted, N: n})
}

// Pause freezes the task's on-screen block; messages keep flowing
func (h *Handle) Pause(ctx context.Context) error {
	return h.send(ctx, Message{Op: OpPause})
}

// Resume unfreezes the task's block
func (h *Handle) Resume(ctx context.Context) error {
	return h.send(ctx, Message{Op: OpResume})
}

// AddEmoji stacks a glyph in front of the title
func (h *Handle) AddEmoji(ctx context.Context, glyph string) error {
	return h.send(ctx, Message{Op: OpAddEmoji, Text: glyph})
}

// MarkFailed records a failure
func (h *Handle) MarkFailed(ctx context.Context, cause error) error {
	text := "failed"
	if cause != nil {
		text = cause.Error()
	}
	return h.send(ctx, Message{Op: OpMarkFailed, Text: text})
}

// Retry moves a failed task back into the retry state
func (h *Handle) Retry(ctx context.Context) error {
	return h.send(ctx, Message{Op: OpRetry})
}

// AddDependency makes this task wait on another
func (h *Handle) AddDependency(ctx context.Context, id ID) error {
	return h.send(ctx, Message{Op: OpAddDependency, Target: id})
}

// RemoveDependency drops a dependency
func (h *Handle) RemoveDependency(ctx context.Context, id ID) error {
	return h.send(ctx, Message{Op: OpRemoveDependency, Target: id})
}

// SetPriority orders the task on screen; higher shows first
func (h *Handle) SetPriority(ctx context.Context, p int) error {
	return h.send(ctx, Message{Op: OpSetPriority, N: p})
}

// SetMaxRetries changes the retry limit
func (h *Handle) SetMaxRetries(ctx context.Context, n int) error {
	return h.send(ctx, Message{Op: OpSetMaxRetries, N: n})
}

// EnableWrap wraps following lines at width cells; 0 disables wrapping
func (h *Handle) EnableWrap(ctx context.Context, width int) error {
	return h.send(ctx, Message{Op: OpEnableWrap, N: width})
}

// SetProgressFormat sets the template rendered as the task's status
// line. The template is parsed here so errors reach the caller.
func (h *Handle) SetProgressFormat(ctx context.Context, src string) error {
	if src == "" {
		return h.send(ctx, Message{Op: OpSetProgressFormat})
	}
	t, err := h.engine.Parse(src)
	if err != nil {
		return err
	}
	return h.send(ctx, Message{Op: OpSetProgressFormat, Template: t})
}

// Flush returns once the coordinator has applied every message sent
// before it
func (h *Handle) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	if err := h.send(ctx, Message{Op: OpFlush, Ack: ack}); err != nil {
		return err
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done marks the task completed and closes it
func (h *Handle) Done(ctx context.Context) error {
	if err := h.send(ctx, Message{Op: OpDone}); err != nil {
		return err
	}
	h.Close()
	return nil
}

// Close drops the sender. A task closed without Done is treated as
// abandoned. Close is idempotent.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.ch)
	if h.release != nil {
		h.release()
	}
}
