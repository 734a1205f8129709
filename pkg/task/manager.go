// Package task hands out task handles. The manager assigns ids, enforces
// the concurrency limit and connects each handle's channel to the
// coordinator.
package task

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/factory"
	"github.com/arthur-debert/tasklines/pkg/logging"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// Backpressure selects what Spawn does when the task limit is reached
type Backpressure int

const (
	// Queue blocks Spawn until a slot frees up
	Queue Backpressure = iota
	// Reject fails Spawn immediately
	Reject
)

// ParseBackpressure reads a configuration value
func ParseBackpressure(s string) (Backpressure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queue", "":
		return Queue, nil
	case "reject":
		return Reject, nil
	}
	return Queue, errors.Newf(errors.ErrConfigInvalid, "unknown backpressure policy %q", s).
		WithDetail("allowed", []string{"queue", "reject"})
}

func (b Backpressure) String() string {
	if b == Reject {
		return "reject"
	}
	return "queue"
}

// DefaultChannelCapacity bounds each task's channel
const DefaultChannelCapacity = 64

// Registration is what the coordinator receives for a new task
type Registration struct {
	ID       ID
	Config   *capability.Config
	Messages <-chan Message
	Parent   *ID
}

// Registrar takes ownership of a new task's config and channel
type Registrar interface {
	Register(ctx context.Context, r Registration) error
}

// Manager creates tasks
type Manager struct {
	factory  *factory.Factory
	reg      Registrar
	engine   *tmpl.Engine
	sem      *semaphore.Weighted
	limit    int
	policy   Backpressure
	capacity int
	nextID   atomic.Uint64
	logger   zerolog.Logger
}

// ManagerOption customises a Manager
type ManagerOption func(*Manager)

// WithMaxConcurrent limits live tasks; 0 means unlimited
func WithMaxConcurrent(n int, policy Backpressure) ManagerOption {
	return func(m *Manager) {
		m.limit = n
		m.policy = policy
	}
}

// WithChannelCapacity sets the per-task channel size
func WithChannelCapacity(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithEngine sets the template engine handles parse formats with
func WithEngine(e *tmpl.Engine) ManagerOption {
	return func(m *Manager) { m.engine = e }
}

// NewManager creates a manager building modes with f and registering
// tasks with reg
func NewManager(f *factory.Factory, reg Registrar, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory:  f,
		reg:      reg,
		capacity: DefaultChannelCapacity,
		logger:   logging.GetLogger("tasks"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		m.engine = tmpl.NewEngine()
	}
	if m.limit > 0 {
		m.sem = semaphore.NewWeighted(int64(m.limit))
	}
	return m
}

// Spawn creates a task
func (m *Manager) Spawn(ctx context.Context, d factory.Descriptor, totalJobs int) (*Handle, error) {
	return m.spawn(ctx, d, totalJobs, nil)
}

// SpawnChild creates a task whose progress rolls up into parent
func (m *Manager) SpawnChild(ctx context.Context, parent ID, d factory.Descriptor, totalJobs int) (*Handle, error) {
	return m.spawn(ctx, d, totalJobs, &parent)
}

func (m *Manager) spawn(ctx context.Context, d factory.Descriptor, totalJobs int, parent *ID) (*Handle, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := m.factory.Create(d, totalJobs)
	if err != nil {
		release()
		return nil, err
	}

	id := ID(m.nextID.Add(1))
	ch := make(chan Message, m.capacity)
	if err := m.reg.Register(ctx, Registration{ID: id, Config: cfg, Messages: ch, Parent: parent}); err != nil {
		release()
		return nil, err
	}

	m.logger.Debug().
		Uint64("task", uint64(id)).
		Str("mode", cfg.Name()).
		Int("total", totalJobs).
		Msg("Task spawned")
	return newHandle(id, cfg, ch, m.engine, release), nil
}

func (m *Manager) acquire(ctx context.Context) (func(), error) {
	if m.sem == nil {
		return func() {}, nil
	}
	switch m.policy {
	case Reject:
		if !m.sem.TryAcquire(1) {
			return nil, errors.Newf(errors.ErrTaskLimit, "task limit of %d reached", m.limit).
				WithDetail("limit", m.limit)
		}
	default:
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	return func() { m.sem.Release(1) }, nil
}
