package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/logging"
	"github.com/arthur-debert/tasklines/pkg/persist"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/rs/zerolog"
)

const (
	// DefaultGracePeriod keeps a finished task on screen long enough for
	// its final state to be painted
	DefaultGracePeriod = 500 * time.Millisecond
	// DefaultSaveEvery is the number of progress changes between saves
	DefaultSaveEvery = 10
	// DefaultHistory is how many reclaimed tasks keep their final report
	DefaultHistory = 256

	abandonedMessage = "task abandoned"
)

// envelope carries one message from a task's forwarder into the loop.
// closed marks the end of the task's channel.
type envelope struct {
	id     task.ID
	msg    task.Message
	closed bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithClock replaces the system clock
func WithClock(c core.Clock) Option {
	return func(co *Coordinator) { co.clock = c }
}

// WithGracePeriod sets how long finished tasks stay visible
func WithGracePeriod(d time.Duration) Option {
	return func(co *Coordinator) {
		if d >= 0 {
			co.grace = d
		}
	}
}

// WithSweepInterval sets how often finished tasks are checked for reclaim
func WithSweepInterval(d time.Duration) Option {
	return func(co *Coordinator) {
		if d > 0 {
			co.sweepEvery = d
		}
	}
}

// WithStore enables persistence of tasks that carry a persistence id
func WithStore(s persist.Store, saveEvery int) Option {
	return func(co *Coordinator) {
		co.store = s
		if saveEvery > 0 {
			co.saveEvery = saveEvery
		}
	}
}

// WithHistory sets how many final reports of reclaimed tasks are kept for
// Reports; 0 keeps none
func WithHistory(n int) Option {
	return func(co *Coordinator) {
		if n >= 0 {
			co.keep = n
		}
	}
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(co *Coordinator) { co.logger = l }
}

// Coordinator is the single owner of all task state
type Coordinator struct {
	clock      core.Clock
	grace      time.Duration
	sweepEvery time.Duration
	store      persist.Store
	saveEvery  int
	keep       int
	logger     zerolog.Logger

	inbox    chan envelope
	control  chan func()
	stopping chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// owned by the loop goroutine
	tasks     map[task.ID]*threadContext
	framed    bool
	seq       uint64
	reclaimed int
	history   []TaskReport
	idle      []chan struct{}
}

// New starts a coordinator loop
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		clock:     core.SystemClock{},
		grace:     DefaultGracePeriod,
		saveEvery: DefaultSaveEvery,
		keep:      DefaultHistory,
		logger:    logging.GetLogger("coordinator"),
		inbox:     make(chan envelope),
		control:   make(chan func()),
		stopping:  make(chan struct{}),
		stopped:   make(chan struct{}),
		tasks:     make(map[task.ID]*threadContext),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sweepEvery == 0 {
		c.sweepEvery = c.grace / 4
		if c.sweepEvery < 10*time.Millisecond {
			c.sweepEvery = 10 * time.Millisecond
		}
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	defer close(c.stopped)
	sweep := time.NewTicker(c.sweepEvery)
	defer sweep.Stop()

	for {
		select {
		case env := <-c.inbox:
			c.apply(env)
		case fn := <-c.control:
			fn()
		case <-sweep.C:
			c.sweep()
		case <-c.stopping:
			c.shutdown()
			return
		}
	}
}

// Stop ends the loop. Tasks still running are saved but not reclaimed.
// Handles that keep sending after Stop have their messages discarded.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopping) })
	<-c.stopped
}

// Done is closed once the loop has exited
func (c *Coordinator) Done() <-chan struct{} { return c.stopped }

func (c *Coordinator) closedErr() error {
	return errors.New(errors.ErrClosed, "coordinator is stopped")
}

// do runs fn on the loop goroutine and waits for it. ctx bounds only the
// hand-off: once the loop has taken fn, do waits for it to finish so the
// caller never returns while fn still writes its results.
func (c *Coordinator) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}
	select {
	case c.control <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return c.closedErr()
	}
	select {
	case <-finished:
		return nil
	case <-c.stopped:
		select {
		case <-finished:
			return nil
		default:
			return c.closedErr()
		}
	}
}

// Register takes ownership of a new task. A parent, when given, must be a
// task the coordinator still holds.
func (c *Coordinator) Register(ctx context.Context, r task.Registration) error {
	if r.Config == nil || r.Messages == nil {
		return errors.Validation("registration for task %d lacks a config or channel", uint64(r.ID))
	}
	var regErr error
	err := c.do(ctx, func() { regErr = c.register(r) })
	if err != nil {
		return err
	}
	return regErr
}

func (c *Coordinator) register(r task.Registration) error {
	if _, exists := c.tasks[r.ID]; exists {
		return errors.Validation("task %d is already registered", uint64(r.ID))
	}
	tc := newThreadContext(r.ID, r.Config)
	tc.logger = logging.WithFields(c.logger, map[string]interface{}{
		"task": uint64(r.ID),
		"mode": r.Config.Name(),
	})
	if r.Parent != nil {
		parent, ok := c.tasks[*r.Parent]
		if !ok {
			return errors.UnknownTask(uint64(*r.Parent))
		}
		tc.parent = parent.id
		parent.cfg.Base().AddChild(r.ID)
		parent.children[r.ID] = childProgress{}
	}
	c.restore(tc)
	c.tasks[r.ID] = tc
	go c.forward(r.ID, r.Messages)

	tc.logger.Debug().
		Bool("adjusted", tc.cfg.Adjusted()).
		Msg("Task registered")
	return nil
}

// forward moves one task's messages into the shared inbox, preserving
// their order. After Stop it drains the channel so senders never block.
func (c *Coordinator) forward(id task.ID, ch <-chan task.Message) {
	for msg := range ch {
		select {
		case c.inbox <- envelope{id: id, msg: msg}:
		case <-c.stopping:
			drain(ch)
			return
		}
	}
	select {
	case c.inbox <- envelope{id: id, closed: true}:
	case <-c.stopping:
	}
}

func drain(ch <-chan task.Message) {
	for msg := range ch {
		if msg.Ack != nil {
			close(msg.Ack)
		}
	}
}

func (c *Coordinator) apply(env envelope) {
	tc, ok := c.tasks[env.id]
	if !ok {
		c.logger.Warn().Uint64("task", uint64(env.id)).Msg("Message for unknown task dropped")
		if env.msg.Ack != nil {
			close(env.msg.Ack)
		}
		return
	}
	if env.closed {
		c.abandon(tc)
		return
	}
	if err := c.applyOp(tc, env.msg); err != nil {
		tc.opError = err.Error()
		tc.logger.Warn().
			Err(err).
			Str("op", env.msg.Op.String()).
			Msg("Task operation refused")
	}
	tc.dirty = true
	c.updateParent(tc)
}

// abandon handles a task whose channel closed. A task that never called
// Done counts as completed only when all its jobs were done.
func (c *Coordinator) abandon(tc *threadContext) {
	wasDone := tc.done
	tc.closed = true
	if wasDone {
		return
	}
	b := tc.cfg.Base()
	switch {
	case b.Status == core.StatusFailed:
	case b.Done():
		b.Complete()
	default:
		b.MarkFailed(abandonedMessage)
		tc.logger.Warn().Msg("Task closed before completion")
	}
	c.finish(tc)
	tc.dirty = true
}

func (c *Coordinator) finish(tc *threadContext) {
	if tc.finishedAt.IsZero() {
		tc.finishedAt = c.clock.Now()
	}
	c.save(tc)
	c.updateParent(tc)
}

func (c *Coordinator) updateParent(tc *threadContext) {
	if tc.parent == 0 {
		return
	}
	parent, ok := c.tasks[tc.parent]
	if !ok {
		return
	}
	b := tc.cfg.Base()
	parent.children[tc.id] = childProgress{completed: b.CompletedJobs, total: b.TotalJobs}
	parent.dirty = true
}

// sweep reclaims tasks that finished at least one grace period ago. When
// a renderer is asking for frames, a task is also kept until it has
// appeared in one frame after finishing.
func (c *Coordinator) sweep() {
	now := c.clock.Now()
	for id, tc := range c.tasks {
		if !tc.closed || !tc.finished() {
			continue
		}
		if now.Sub(tc.finishedAt) < c.grace {
			continue
		}
		if c.framed && !tc.shownFinished {
			continue
		}
		c.remember(tc.report(now))
		delete(c.tasks, id)
		c.reclaimed++
		tc.logger.Debug().
			Str("status", string(tc.cfg.Base().Status)).
			Msg("Task reclaimed")
	}
	c.notifyIdle()
}

func (c *Coordinator) remember(r TaskReport) {
	if c.keep == 0 {
		return
	}
	if len(c.history) == c.keep {
		c.history = append(c.history[:0], c.history[1:]...)
	}
	c.history = append(c.history, r)
}

func (c *Coordinator) notifyIdle() {
	if len(c.tasks) > 0 || len(c.idle) == 0 {
		return
	}
	for _, ch := range c.idle {
		close(ch)
	}
	c.idle = nil
}

func (c *Coordinator) shutdown() {
	for _, tc := range c.tasks {
		c.save(tc)
	}
	c.logger.Debug().Int("tasks", len(c.tasks)).Int("reclaimed", c.reclaimed).Msg("Coordinator stopped")
}

func (c *Coordinator) restore(tc *threadContext) {
	p, ok := tc.cfg.Persistent()
	if c.store == nil || !ok || p.PersistenceID() == "" {
		return
	}
	state, found, err := c.store.Load(context.Background(), p.PersistenceID())
	if err != nil {
		tc.logger.Warn().Err(err).Str("key", p.PersistenceID()).Msg("Failed to load task state")
		return
	}
	if !found {
		return
	}
	p.Restore(state)
	tc.logger.Debug().
		Str("key", p.PersistenceID()).
		Int("completed", state.CompletedJobs).
		Msg("Task state restored")
}

func (c *Coordinator) save(tc *threadContext) {
	p, ok := tc.cfg.Persistent()
	if c.store == nil || !ok || p.PersistenceID() == "" {
		return
	}
	if err := c.store.Save(context.Background(), p.PersistenceID(), p.Save()); err != nil {
		tc.logger.Warn().Err(err).Str("key", p.PersistenceID()).Msg("Failed to save task state")
	}
}

func (c *Coordinator) lookup(id task.ID) (*threadContext, error) {
	tc, ok := c.tasks[id]
	if !ok {
		return nil, errors.UnknownTask(uint64(id))
	}
	return tc, nil
}

// SetTotalJobs changes the expected job count of one task, or of every
// unfinished task when id is nil
func (c *Coordinator) SetTotalJobs(ctx context.Context, id *task.ID, n int) error {
	var opErr error
	err := c.do(ctx, func() {
		if id != nil {
			tc, err := c.lookup(*id)
			if err != nil {
				opErr = err
				return
			}
			opErr = c.applyOp(tc, task.Message{Op: task.OpSetTotalJobs, N: n})
			tc.dirty = true
			c.updateParent(tc)
			return
		}
		for _, tc := range c.tasks {
			if tc.finished() {
				continue
			}
			if p, ok := tc.cfg.Progress(); ok {
				p.SetTotalJobs(n)
				tc.dirty = true
				c.updateParent(tc)
			}
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

// PauseAll pauses every task that supports pausing
func (c *Coordinator) PauseAll(ctx context.Context) error {
	return c.setPaused(ctx, true)
}

// ResumeAll resumes every paused task
func (c *Coordinator) ResumeAll(ctx context.Context) error {
	return c.setPaused(ctx, false)
}

func (c *Coordinator) setPaused(ctx context.Context, paused bool) error {
	return c.do(ctx, func() {
		for _, tc := range c.tasks {
			p, ok := tc.cfg.Pausable()
			if !ok || tc.finished() {
				continue
			}
			if paused {
				p.Pause()
			} else {
				p.Resume()
			}
			tc.dirty = true
		}
	})
}

// Frame snapshots every task in display order: children follow their
// parent, siblings sort by descending priority then id
func (c *Coordinator) Frame(ctx context.Context) (Frame, error) {
	var f Frame
	err := c.do(ctx, func() {
		c.framed = true
		c.seq++
		f = Frame{Seq: c.seq, Tasks: c.views(true)}
	})
	return f, err
}

// Snapshot is Frame for observers other than the renderer: it leaves
// the painted and dirty marks alone, so it never hastens a reclaim
func (c *Coordinator) Snapshot(ctx context.Context) (Frame, error) {
	var f Frame
	err := c.do(ctx, func() {
		f = Frame{Seq: c.seq, Tasks: c.views(false)}
	})
	return f, err
}

// views lists the tasks in display order. painting records that the
// renderer has now seen each task.
func (c *Coordinator) views(painting bool) []TaskView {
	now := c.clock.Now()
	byParent := make(map[task.ID][]*threadContext)
	for _, tc := range c.tasks {
		parent := tc.parent
		if _, ok := c.tasks[parent]; !ok {
			parent = 0
		}
		byParent[parent] = append(byParent[parent], tc)
	}
	for _, group := range byParent {
		sortForDisplay(group)
	}

	views := make([]TaskView, 0, len(c.tasks))
	var walk func(parent task.ID, depth int)
	walk = func(parent task.ID, depth int) {
		for _, tc := range byParent[parent] {
			views = append(views, c.view(tc, depth, now))
			if painting {
				if tc.finished() {
					tc.shownFinished = true
				}
				tc.dirty = false
			}
			walk(tc.id, depth+1)
		}
	}
	walk(0, 0)
	return views
}

func sortForDisplay(group []*threadContext) {
	sort.Slice(group, func(i, j int) bool {
		pi, pj := group[i].cfg.Base().Priority, group[j].cfg.Base().Priority
		if pi != pj {
			return pi > pj
		}
		return group[i].id < group[j].id
	})
}

// Lines returns the current lines of one task
func (c *Coordinator) Lines(ctx context.Context, id task.ID) ([]string, error) {
	var (
		lines []string
		opErr error
	)
	err := c.do(ctx, func() {
		tc, err := c.lookup(id)
		if err != nil {
			opErr = err
			return
		}
		lines = append([]string(nil), tc.cfg.Lines()...)
	})
	if err != nil {
		return nil, err
	}
	return lines, opErr
}

// Config returns an independent copy of one task's config, for inspecting
// its capabilities and any factory adjustments
func (c *Coordinator) Config(ctx context.Context, id task.ID) (*capability.Config, error) {
	var (
		cfg   *capability.Config
		opErr error
	)
	err := c.do(ctx, func() {
		tc, err := c.lookup(id)
		if err != nil {
			opErr = err
			return
		}
		cfg = tc.cfg.Duplicate()
	})
	if err != nil {
		return nil, err
	}
	return cfg, opErr
}

// Reports returns statistics for every held task and the final reports
// of recently reclaimed ones, ordered by id
func (c *Coordinator) Reports(ctx context.Context) ([]TaskReport, error) {
	var reports []TaskReport
	err := c.do(ctx, func() {
		now := c.clock.Now()
		reports = append(reports, c.history...)
		for _, tc := range c.tasks {
			reports = append(reports, tc.report(now))
		}
	})
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports, err
}

// Stats counts live, finished and reclaimed tasks
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, func() {
		for _, tc := range c.tasks {
			if tc.finished() {
				s.Finished++
			} else {
				s.Live++
			}
		}
		s.Reclaimed = c.reclaimed
	})
	return s, err
}

// WaitIdle blocks until every task has been reclaimed
func (c *Coordinator) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	err := c.do(ctx, func() {
		c.idle = append(c.idle, ch)
		c.notifyIdle()
	})
	if err != nil {
		return err
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return c.closedErr()
	}
}
