package render_test

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tasklines/pkg/coordinator"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/render"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/terminal"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// frames is a FrameSource returning whatever was set last
type frames struct {
	mu    sync.Mutex
	tasks []coordinator.TaskView
	err   error
}

func (f *frames) set(views ...coordinator.TaskView) {
	f.mu.Lock()
	f.tasks = views
	f.mu.Unlock()
}

func (f *frames) Frame(context.Context) (coordinator.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return coordinator.Frame{}, f.err
	}
	return coordinator.Frame{Tasks: append([]coordinator.TaskView(nil), f.tasks...)}, nil
}

func done(id task.ID, lines ...string) coordinator.TaskView {
	return coordinator.TaskView{ID: id, Lines: lines, Lifecycle: coordinator.Completed}
}

func newRenderer(t *testing.T, src render.FrameSource, console terminal.Console) *render.Renderer {
	t.Helper()
	return render.New(src, console, render.WithLogger(zerolog.Nop()))
}

func screenOf(out string) []string {
	s := render.NewScreen()
	_, _ = s.Write([]byte(out))
	return s.Lines()
}

func TestPaintsEveryTask(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	src.set(done(1, "Build", "step one"), done(2, "Test"))
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"✓ Build", "  step one", "✓ Test"}, screenOf(buf.String()))
}

func TestRunningTaskShowsSpinner(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(coordinator.TaskView{ID: 1, Lines: []string{"work"}})
	require.NoError(t, r.Tick(ctx))
	first := screenOf(buf.String())[0]
	require.NoError(t, r.Tick(ctx))
	second := screenOf(buf.String())[0]

	assert.Contains(t, tmpl.SpinnerFrames("braille"), strings.TrimSuffix(first, " work"))
	assert.NotEqual(t, first, second)
}

func TestOnlyChangedRowsAreRewritten(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(done(1, "alpha", "a-body"), done(2, "beta"))
	require.NoError(t, r.Tick(ctx))
	full := buf.String()
	buf.Reset()

	src.set(done(1, "alpha", "a-body changed"), done(2, "beta"))
	require.NoError(t, r.Tick(ctx))
	delta := buf.String()

	assert.Contains(t, delta, "a-body changed")
	assert.NotContains(t, delta, "alpha")
	assert.NotContains(t, delta, "beta")
	assert.Equal(t, 1, strings.Count(delta, ansi.EraseEntireLine))

	assert.Equal(t, []string{"✓ alpha", "  a-body changed", "✓ beta"}, screenOf(full+delta))
}

func TestUnchangedFrameWritesNoContent(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(done(1, "same"))
	require.NoError(t, r.Tick(ctx))
	buf.Reset()
	require.NoError(t, r.Tick(ctx))

	assert.NotContains(t, buf.String(), "same")
	assert.NotContains(t, buf.String(), ansi.EraseEntireLine)
}

func TestShrinkingFrameErasesSurplusRows(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(done(1, "one", "two", "three"), done(2, "four"))
	require.NoError(t, r.Tick(ctx))
	src.set(done(2, "four"))
	require.NoError(t, r.Tick(ctx))

	assert.Equal(t, []string{"✓ four"}, screenOf(buf.String()))
}

func TestPausedTaskKeepsPaintedRows(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(coordinator.TaskView{ID: 1, Lines: []string{"before"}})
	require.NoError(t, r.Tick(ctx))
	painted := screenOf(buf.String())

	src.set(coordinator.TaskView{ID: 1, Lines: []string{"before", "during"}, Paused: true, Lifecycle: coordinator.Paused})
	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, painted, screenOf(buf.String()))

	src.set(coordinator.TaskView{ID: 1, Lines: []string{"before", "during"}, Lifecycle: coordinator.Completed})
	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, []string{"✓ before", "  during"}, screenOf(buf.String()))
}

func TestResizeForcesOneFullRelayout(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	src.set(done(1, "first"), done(2, "second"))
	require.NoError(t, r.Tick(ctx))

	buf.SetSize(40, 10)
	buf.Reset()
	require.NoError(t, r.Tick(ctx))
	relayout := buf.String()
	assert.Contains(t, relayout, ansi.EraseScreenBelow)
	assert.Contains(t, relayout, "first")
	assert.Contains(t, relayout, "second")

	buf.Reset()
	require.NoError(t, r.Tick(ctx))
	assert.NotContains(t, buf.String(), "first")
}

func TestRowsAreTruncatedToWidth(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(10, 24)
	r := newRenderer(t, src, buf)

	src.set(done(1, "abcdefghijklmnopqrstuvwxyz"))
	require.NoError(t, r.Tick(context.Background()))

	lines := screenOf(buf.String())
	require.Len(t, lines, 1)
	assert.LessOrEqual(t, ansi.StringWidth(lines[0]), 10)
	assert.True(t, strings.HasSuffix(lines[0], "…"))
}

func TestRowsAreClampedToHeight(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 3)
	r := newRenderer(t, src, buf)

	src.set(done(1, "a", "b", "c"), done(2, "d", "e"))
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"✓ a", "  b", "+3 more rows"}, screenOf(buf.String()))
}

func TestTemplateErrorFallsBackForThatTaskOnly(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	broken := done(1, "broken")
	broken.Format = tmpl.MustParse("{title:percent}")
	broken.Vars = tmpl.NewContext().Text("title", "not a number")

	fine := done(2, "fine")
	fine.Format = tmpl.MustParse("{progress:percent}")
	fine.Vars = tmpl.FromProgress(1, 2)

	src.set(broken, fine)
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{
		"✓ broken  " + render.TemplateFallback,
		"✓ fine  50%",
	}, screenOf(buf.String()))
}

func TestMultiLineModeLineTakesOneRow(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	src.set(done(1, "fetch\nstep 2\n"), done(2, "Build", "a\r\nb"))
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"✓ step 2", "✓ Build", "  b"}, screenOf(buf.String()))
}

func TestFailedTaskShowsError(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	src.set(coordinator.TaskView{ID: 1, Lines: []string{"deploy"}, Lifecycle: coordinator.Failed, LastError: "timeout"})
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"✗ deploy", "  timeout"}, screenOf(buf.String()))
}

func TestChildrenAreIndented(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	child := done(2, "child")
	child.Depth = 1
	src.set(done(1, "parent"), child)
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"✓ parent", "  ✓ child"}, screenOf(buf.String()))
}

func TestWriteErrorSurfacesFromStop(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := newRenderer(t, src, buf)

	buf.FailWrites(stderrors.New("broken pipe"))
	src.set(done(1, "x"))
	require.NoError(t, r.Tick(context.Background()))

	err := r.Stop()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.Equal(t, errors.CategoryIO, errors.GetCategory(err))
}

func TestFrameSourceErrorIsReturned(t *testing.T) {
	src := &frames{err: stderrors.New("gone")}
	r := newRenderer(t, src, terminal.NewBuffer(80, 24))
	assert.Error(t, r.Tick(context.Background()))
}

func TestNonTTYAppendsFinishedTasksOnce(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	buf.SetCaps(terminal.Caps{Size: terminal.Size{Width: 80}, SupportsUnicode: false})
	r := newRenderer(t, src, buf)
	ctx := context.Background()

	running := coordinator.TaskView{ID: 1, Lines: []string{"compile"}}
	src.set(running, coordinator.TaskView{ID: 2, Lines: []string{"fetch"}})
	require.NoError(t, r.Tick(ctx))
	assert.Empty(t, buf.String())

	src.set(running, done(2, "fetch"))
	require.NoError(t, r.Tick(ctx))
	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, "+ fetch\n", buf.String())

	require.NoError(t, r.Stop())
	assert.Equal(t, "+ fetch\n* compile\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b")
}

func TestStartStopLoop(t *testing.T) {
	src := &frames{}
	buf := terminal.NewBuffer(80, 24)
	r := render.New(src, buf, render.WithLogger(zerolog.Nop()), render.WithTick(5*time.Millisecond))

	src.set(done(1, "looping"))
	r.Start(context.Background())
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "looping")
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, r.Stop())
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ansi.HideCursor))
	assert.True(t, strings.HasSuffix(out, ansi.ShowCursor))
	// Stop is idempotent
	require.NoError(t, r.Stop())
}
