package display_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tasklines/pkg/config"
	"github.com/arthur-debert/tasklines/pkg/coordinator"
	"github.com/arthur-debert/tasklines/pkg/display"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/factory"
	"github.com/arthur-debert/tasklines/pkg/persist"
	"github.com/arthur-debert/tasklines/pkg/render"
	"github.com/arthur-debert/tasklines/pkg/style"
	"github.com/arthur-debert/tasklines/pkg/terminal"
)

func testConfig(t *testing.T, overrides map[string]interface{}) *config.Config {
	t.Helper()
	base := map[string]interface{}{
		"display.tick_interval": "10ms",
		"display.grace_period":  "1h",
	}
	for k, v := range overrides {
		base[k] = v
	}
	cfg, err := config.Load(config.Options{SkipUserFile: true, SkipEnv: true, Overrides: base})
	require.NoError(t, err)
	return cfg
}

func newDisplay(t *testing.T, console terminal.Console, overrides map[string]interface{}, opts ...display.Option) *display.Display {
	t.Helper()
	opts = append([]display.Option{
		display.WithConfig(testConfig(t, overrides)),
		display.WithConsole(console),
		display.WithLogger(zerolog.Nop()),
	}, opts...)
	d, err := display.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestTaskOutputReachesTheTerminal(t *testing.T) {
	buf := terminal.NewBuffer(80, 24)
	d := newDisplay(t, buf, map[string]interface{}{"display.grace_period": "20ms"})
	ctx := context.Background()

	h, err := d.Spawn(ctx, factory.WindowWithTitle(3, "Build"), 2)
	require.NoError(t, err)
	require.NoError(t, h.Log(ctx, "compiling"))
	require.NoError(t, h.Increment(ctx))
	require.NoError(t, h.Log(ctx, "linking"))
	require.NoError(t, h.Increment(ctx))

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "linking")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, h.Done(ctx))
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(waitCtx))

	summary, err := d.Summary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "Build")
	assert.Contains(t, summary, "2/2 (100%)")

	status, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, style.StatusCompleted, status)

	require.NoError(t, d.Close())
	assert.Contains(t, buf.String(), "✓ Build")
	// reclaimed tasks leave the screen
	screen := render.NewScreen()
	_, _ = screen.Write([]byte(buf.String()))
	assert.Empty(t, screen.Lines())
}

func TestSpawnDefaultUsesConfiguredMode(t *testing.T) {
	d := newDisplay(t, terminal.NewBuffer(80, 24), map[string]interface{}{
		"factory.default_mode": "window-with-title:3",
	})
	ctx := context.Background()

	h, err := d.SpawnDefault(ctx, "Deploy", 1)
	require.NoError(t, err)
	assert.Equal(t, "window-with-title", h.Mode())
	require.NoError(t, h.Log(ctx, "uploading"))
	require.NoError(t, h.Flush(ctx))

	lines, err := d.Lines(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Deploy", "uploading"}, lines)
}

func TestFacadeOperations(t *testing.T) {
	d := newDisplay(t, terminal.NewBuffer(80, 24), nil)
	ctx := context.Background()

	a, err := d.Spawn(ctx, factory.Capturing(), 10)
	require.NoError(t, err)
	b, err := d.Spawn(ctx, factory.Window(2), 10)
	require.NoError(t, err)

	require.NoError(t, d.SetTotalJobs(ctx, nil, 20))
	id := b.ID()
	require.NoError(t, d.SetTotalJobs(ctx, &id, 5))

	totals := map[uint64]int{}
	frame, err := d.Snapshot(ctx)
	require.NoError(t, err)
	for _, v := range frame.Tasks {
		totals[uint64(v.ID)] = v.Total
	}
	assert.Equal(t, 20, totals[uint64(a.ID())])
	assert.Equal(t, 5, totals[uint64(b.ID())])

	require.NoError(t, d.PauseAll(ctx))
	frame, err = d.Snapshot(ctx)
	require.NoError(t, err)
	for _, v := range frame.Tasks {
		assert.True(t, v.Paused)
		assert.Equal(t, coordinator.Paused, v.Lifecycle)
	}

	require.NoError(t, d.ResumeAll(ctx))
	frame, err = d.Snapshot(ctx)
	require.NoError(t, err)
	for _, v := range frame.Tasks {
		assert.False(t, v.Paused)
	}

	child, err := d.SpawnChild(ctx, a.ID(), factory.Capturing(), 1)
	require.NoError(t, err)
	require.NoError(t, child.Flush(ctx))
	frame, err = d.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, frame.Tasks, 3)
	assert.Equal(t, child.ID(), frame.Tasks[1].ID)
	assert.Equal(t, 1, frame.Tasks[1].Depth)
}

func TestStrictPolicyRefusesWindowTallerThanTerminal(t *testing.T) {
	ctx := context.Background()

	strict := newDisplay(t, terminal.NewBuffer(80, 4), nil)
	_, err := strict.Spawn(ctx, factory.Window(10), 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	lenient := newDisplay(t, terminal.NewBuffer(80, 4), map[string]interface{}{"factory.policy": "lenient"})
	h, err := lenient.Spawn(ctx, factory.Window(10), 1)
	require.NoError(t, err)
	assert.Equal(t, "window", h.Mode())
}

func TestRejectBackpressure(t *testing.T) {
	d := newDisplay(t, terminal.NewBuffer(80, 24), map[string]interface{}{
		"tasks.max_concurrent": 1,
		"tasks.backpressure":   "reject",
	})
	ctx := context.Background()

	first, err := d.Spawn(ctx, factory.Capturing(), 1)
	require.NoError(t, err)

	_, err = d.Spawn(ctx, factory.Capturing(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTaskLimit))

	first.Close()
	_, err = d.Spawn(ctx, factory.Capturing(), 1)
	assert.NoError(t, err)
}

func TestInvalidSetupIsRejected(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Display.TickInterval = 0
	_, err := display.New(display.WithConfig(cfg), display.WithConsole(terminal.NewBuffer(80, 24)))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	cfg = testConfig(t, nil)
	cfg.Display.Theme = "no-such-theme"
	_, err = display.New(display.WithConfig(cfg), display.WithConsole(terminal.NewBuffer(80, 24)))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestPersistentTaskIsSaved(t *testing.T) {
	store := persist.NewMemoryStore()
	d := newDisplay(t, terminal.NewBuffer(80, 24), nil, display.WithStore(store))
	ctx := context.Background()

	desc := factory.Window(2)
	desc.PersistenceID = "nightly-build"
	h, err := d.Spawn(ctx, desc, 4)
	require.NoError(t, err)
	require.NoError(t, h.Increment(ctx))
	require.NoError(t, h.Done(ctx))

	require.Eventually(t, func() bool {
		return len(store.Keys()) == 1
	}, time.Second, 5*time.Millisecond)

	state, ok, err := store.Load(ctx, "nightly-build")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, state.TotalJobs)
	assert.Equal(t, 1, state.CompletedJobs)
}

func TestFailedTaskShowsInStatusAndSummary(t *testing.T) {
	d := newDisplay(t, terminal.NewBuffer(80, 24), nil)
	ctx := context.Background()

	ok, err := d.Spawn(ctx, factory.Capturing(), 1)
	require.NoError(t, err)
	require.NoError(t, ok.Increment(ctx))
	require.NoError(t, ok.Done(ctx))

	bad, err := d.Spawn(ctx, factory.Capturing(), 1)
	require.NoError(t, err)
	require.NoError(t, bad.Log(ctx, "fetch"))
	require.NoError(t, bad.MarkFailed(ctx, stderrors.New("connection refused")))
	require.NoError(t, bad.Flush(ctx))

	status, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, style.StatusFailed, status)

	summary, err := d.Summary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "connection refused")
	assert.Contains(t, summary, "fetch")
}

func TestCloseIsIdempotentAndStopsTheDisplay(t *testing.T) {
	d := newDisplay(t, terminal.NewBuffer(80, 24), nil)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err := d.Spawn(context.Background(), factory.Capturing(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrClosed))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCloseIsLoggedAsAnOperation(t *testing.T) {
	logs := &syncBuffer{}
	d, err := display.New(
		display.WithConfig(testConfig(t, nil)),
		display.WithConsole(terminal.NewBuffer(80, 24)),
		display.WithLogger(zerolog.New(logs).Level(zerolog.DebugLevel)),
	)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	out := logs.String()
	assert.Contains(t, out, `"operation":"close"`)
	assert.Contains(t, out, "Operation completed")
}
