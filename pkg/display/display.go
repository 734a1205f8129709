// Package display is the entry point of the library. New wires the mode
// factory, task manager, coordinator and renderer to a terminal, and the
// Display it returns hands out task handles and reports on them.
package display

import (
	"context"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/tasklines/pkg/config"
	"github.com/arthur-debert/tasklines/pkg/coordinator"
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/factory"
	"github.com/arthur-debert/tasklines/pkg/logging"
	"github.com/arthur-debert/tasklines/pkg/persist"
	"github.com/arthur-debert/tasklines/pkg/render"
	"github.com/arthur-debert/tasklines/pkg/style"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/terminal"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

type options struct {
	cfg     *config.Config
	console terminal.Console
	clock   core.Clock
	store   persist.Store
	logger  *zerolog.Logger
}

// Option customises New
type Option func(*options)

// WithConfig uses cfg instead of the built-in defaults
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConsole paints on c instead of stdout. The caller keeps ownership.
func WithConsole(c terminal.Console) Option {
	return func(o *options) { o.console = c }
}

// WithClock replaces the clock used for statistics and reclaim
func WithClock(c core.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStore persists tasks to s regardless of persistence.enabled
func WithStore(s persist.Store) Option {
	return func(o *options) { o.store = s }
}

// WithLogger gives every component the same logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// Display owns one live progress area
type Display struct {
	cfg        *config.Config
	console    terminal.Console
	ownConsole bool
	caps       terminal.Caps
	engine     *tmpl.Engine
	theme      *style.Theme
	factory    *factory.Factory
	coord      *coordinator.Coordinator
	manager    *task.Manager
	renderer   *render.Renderer
	logger     zerolog.Logger

	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// New builds a display and starts painting
func New(opts ...Option) (*Display, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Display{cfg: o.cfg, console: o.console, logger: logging.GetLogger("display")}
	if o.logger != nil {
		d.logger = *o.logger
	}
	if d.console == nil {
		d.console = terminal.NewTTY(os.Stdout,
			terminal.WithColor(terminal.ParseMode(o.cfg.Display.Color)),
			terminal.WithUnicode(terminal.ParseMode(o.cfg.Display.Unicode)),
		)
		d.ownConsole = true
	}
	d.caps = d.console.Caps()

	lr := lipgloss.NewRenderer(d.console.Writer())
	lr.SetColorProfile(d.caps.Profile)
	d.engine = tmpl.NewEngine(tmpl.WithRenderer(lr), tmpl.WithUnicode(d.caps.SupportsUnicode))

	theme, err := style.NewTheme(o.cfg.Display.Theme, lr)
	if err != nil {
		d.closeConsole()
		return nil, err
	}
	d.theme = theme

	factoryOpts := []factory.Option{factory.WithTerminalHeight(func() int { return d.console.Size().Height })}
	if o.logger != nil {
		factoryOpts = append(factoryOpts, factory.WithLogger(*o.logger))
	}
	d.factory, err = factory.New(o.cfg.Policy(), factoryOpts...)
	if err != nil {
		d.closeConsole()
		return nil, err
	}

	store := o.store
	if store == nil && o.cfg.Persistence.Enabled {
		fs, err := persist.NewOSFileStore(o.cfg.StateDir())
		if err != nil {
			d.closeConsole()
			return nil, err
		}
		store = fs
	}

	coordOpts := []coordinator.Option{coordinator.WithGracePeriod(o.cfg.Display.GracePeriod)}
	if o.clock != nil {
		coordOpts = append(coordOpts, coordinator.WithClock(o.clock))
	}
	if store != nil {
		coordOpts = append(coordOpts, coordinator.WithStore(store, o.cfg.Persistence.SaveEvery))
	}
	if o.logger != nil {
		coordOpts = append(coordOpts, coordinator.WithLogger(*o.logger))
	}
	d.coord = coordinator.New(coordOpts...)

	d.manager = task.NewManager(d.factory, d.coord,
		task.WithMaxConcurrent(o.cfg.Tasks.MaxConcurrent, o.cfg.Backpressure()),
		task.WithChannelCapacity(o.cfg.Tasks.ChannelCapacity),
		task.WithEngine(d.engine),
	)

	renderOpts := []render.Option{render.WithTick(o.cfg.Display.TickInterval), render.WithTheme(theme)}
	if o.logger != nil {
		renderOpts = append(renderOpts, render.WithLogger(*o.logger))
	}
	d.renderer = render.New(d.coord, d.console, renderOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.renderer.Start(ctx)

	d.logger.Debug().
		Bool("tty", d.caps.IsTTY).
		Bool("unicode", d.caps.SupportsUnicode).
		Int("width", d.caps.Width).
		Int("height", d.caps.Height).
		Str("policy", d.factory.Policy().String()).
		Bool("persistence", store != nil).
		Msg("Display started")
	return d, nil
}

func (d *Display) closeConsole() {
	if d.ownConsole {
		_ = d.console.Close()
	}
}

// Config returns the configuration the display was built with
func (d *Display) Config() *config.Config { return d.cfg }

// Engine returns the template engine bound to this terminal
func (d *Display) Engine() *tmpl.Engine { return d.engine }

// Theme returns the active theme
func (d *Display) Theme() *style.Theme { return d.theme }

// Spawn starts a task displayed as desc
func (d *Display) Spawn(ctx context.Context, desc factory.Descriptor, totalJobs int) (*task.Handle, error) {
	return d.manager.Spawn(ctx, desc, totalJobs)
}

// SpawnDefault starts a task in the configured default mode
func (d *Display) SpawnDefault(ctx context.Context, title string, totalJobs int) (*task.Handle, error) {
	desc := d.cfg.DefaultDescriptor()
	if title != "" {
		desc.Title = title
	}
	return d.manager.Spawn(ctx, desc, totalJobs)
}

// SpawnChild starts a task whose progress counts towards parent
func (d *Display) SpawnChild(ctx context.Context, parent task.ID, desc factory.Descriptor, totalJobs int) (*task.Handle, error) {
	return d.manager.SpawnChild(ctx, parent, desc, totalJobs)
}

// SetTotalJobs sets the total of one task, or of every unfinished task
// with progress when id is nil
func (d *Display) SetTotalJobs(ctx context.Context, id *task.ID, n int) error {
	return d.coord.SetTotalJobs(ctx, id, n)
}

// PauseAll pauses every pausable task
func (d *Display) PauseAll(ctx context.Context) error { return d.coord.PauseAll(ctx) }

// ResumeAll resumes every paused task
func (d *Display) ResumeAll(ctx context.Context) error { return d.coord.ResumeAll(ctx) }

// Snapshot returns the tasks as the next paint would show them
func (d *Display) Snapshot(ctx context.Context) (coordinator.Frame, error) {
	return d.coord.Snapshot(ctx)
}

// Lines returns a task's current lines
func (d *Display) Lines(ctx context.Context, id task.ID) ([]string, error) {
	return d.coord.Lines(ctx, id)
}

// Reports returns statistics for live and recently finished tasks
func (d *Display) Reports(ctx context.Context) ([]coordinator.TaskReport, error) {
	return d.coord.Reports(ctx)
}

// Wait blocks until every task has finished and left the screen
func (d *Display) Wait(ctx context.Context) error {
	return d.coord.WaitIdle(ctx)
}

// Close paints the final frame, restores the cursor and stops the
// coordinator. It returns the first terminal write error.
func (d *Display) Close() error {
	d.closeOnce.Do(func() {
		done := logging.LogOperationStart(d.logger, "close")
		defer done()
		d.closeErr = d.renderer.Stop()
		d.cancel()
		d.coord.Stop()
		d.closeConsole()
		if d.closeErr != nil {
			d.logger.Warn().Err(d.closeErr).Msg("Display closed with a write error")
		}
	})
	return d.closeErr
}
