// Package render paints coordinator snapshots onto the terminal. It runs on
// its own ticker, independent of message arrival, and rewrites only the
// rows that changed since the previous paint.
package render

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/tasklines/pkg/coordinator"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/logging"
	"github.com/arthur-debert/tasklines/pkg/style"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/terminal"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

// DefaultTick is the paint interval
const DefaultTick = 100 * time.Millisecond

// TemplateFallback replaces a status line whose template failed to render
const TemplateFallback = "[template error]"

// FrameSource supplies snapshots; the coordinator implements it
type FrameSource interface {
	Frame(ctx context.Context) (coordinator.Frame, error)
}

// Option configures a Renderer
type Option func(*Renderer)

// WithTick sets the paint interval
func WithTick(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithTheme sets the styles used for glyphs and errors
func WithTheme(t *style.Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer is the only writer to the console's output stream
type Renderer struct {
	src     FrameSource
	console terminal.Console
	theme   *style.Theme
	tick    time.Duration
	logger  zerolog.Logger

	// paint state, owned by whoever calls Tick (the loop once started)
	unicode  bool
	tty      bool
	spinner  []string
	ticks    int
	size     terminal.Size
	painted  []string
	rows     map[task.ID][]string
	printed  map[task.ID]bool
	relayout bool
	started  bool

	mu   sync.Mutex
	err  error
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// New creates a renderer over console
func New(src FrameSource, console terminal.Console, opts ...Option) *Renderer {
	caps := console.Caps()
	r := &Renderer{
		src:     src,
		console: console,
		tick:    DefaultTick,
		logger:  logging.GetLogger("render"),
		unicode: caps.SupportsUnicode,
		tty:     caps.IsTTY,
		size:    caps.Size,
		rows:    make(map[task.ID][]string),
		printed: make(map[task.ID]bool),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.theme == nil {
		r.theme = style.BuildTheme("plain", style.ThemeDef{}, nil)
	}
	r.spinner = tmpl.SpinnerFrames("braille")
	if !r.unicode {
		r.spinner = tmpl.SpinnerFrames("line")
	}
	return r
}

// Start launches the paint loop
func (r *Renderer) Start(ctx context.Context) {
	r.started = true
	if r.tty {
		r.write(ansi.HideCursor)
	}
	go r.run(ctx)
}

func (r *Renderer) run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Debug().Err(err).Msg("Frame source gone, stopping")
				r.restoreCursor()
				return
			}
		case <-r.stop:
			r.finish(context.Background())
			return
		case <-ctx.Done():
			r.finish(context.Background())
			return
		}
	}
}

// Stop paints the final frame, restores the cursor and returns the first
// write error, if any
func (r *Renderer) Stop() error {
	r.once.Do(func() {
		if !r.started {
			r.finish(context.Background())
			close(r.done)
			return
		}
		close(r.stop)
	})
	<-r.done
	return r.Err()
}

func (r *Renderer) finish(ctx context.Context) {
	if err := r.Tick(ctx); err != nil {
		r.logger.Debug().Err(err).Msg("Final frame unavailable")
	}
	if !r.tty {
		r.flushAppendOnly()
		return
	}
	r.restoreCursor()
}

func (r *Renderer) restoreCursor() {
	if r.tty && r.started {
		r.write(ansi.ShowCursor)
	}
}

// Err returns the first write error
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Renderer) failed() bool { return r.Err() != nil }

func (r *Renderer) write(s string) {
	if s == "" || r.failed() {
		return
	}
	if _, err := r.console.Writer().Write([]byte(s)); err != nil {
		r.mu.Lock()
		if r.err == nil {
			r.err = errors.IO(err, "failed to write frame")
		}
		r.mu.Unlock()
		r.logger.Error().Err(err).Msg("Write to terminal failed; painting stopped")
	}
}

// Tick paints one frame. It returns an error only when no frame could be
// obtained; write failures are kept for Err.
func (r *Renderer) Tick(ctx context.Context) error {
	r.drainResize()
	frame, err := r.src.Frame(ctx)
	if err != nil {
		return err
	}
	r.ticks++

	if !r.tty {
		r.collect(frame)
		return nil
	}
	r.paint(r.layout(frame))
	return nil
}

func (r *Renderer) drainResize() {
	for {
		select {
		case s := <-r.console.Resize():
			r.size = s
			r.relayout = true
		default:
			return
		}
	}
}

// layout turns a frame into screen rows: truncated to the width and
// clamped to the height
func (r *Renderer) layout(frame coordinator.Frame) []string {
	var rows []string
	live := make(map[task.ID][]string, len(frame.Tasks))
	for _, v := range frame.Tasks {
		taskRows, ok := r.rows[v.ID]
		if !v.Paused || !ok {
			taskRows = r.taskRows(v)
		}
		live[v.ID] = taskRows
		rows = append(rows, taskRows...)
	}
	r.rows = live

	if w := r.size.Width; w > 0 {
		tail := ""
		if r.unicode {
			tail = "…"
		}
		for i, row := range rows {
			if ansi.StringWidth(row) > w {
				rows[i] = ansi.Truncate(row, w, tail)
			}
		}
	}
	if h := r.size.Height; h > 0 && len(rows) > h {
		hidden := len(rows) - h + 1
		rows = append(rows[:h-1], r.theme.Render("muted", moreRows(hidden)))
	}
	return rows
}

func moreRows(n int) string {
	if n == 1 {
		return "+1 more row"
	}
	return "+" + strconv.Itoa(n) + " more rows"
}

// taskRows renders one task: a header row carrying the status glyph and
// progress line, the remaining mode lines, then the error if it failed
func (r *Renderer) taskRows(v coordinator.TaskView) []string {
	indent := strings.Repeat("  ", v.Depth)
	status := statusOf(v)

	glyph := style.Glyph(status, r.unicode)
	if r.tty && status == style.StatusRunning && len(r.spinner) > 0 {
		glyph = r.spinner[r.ticks%len(r.spinner)]
	}
	glyph = r.theme.Render(string(status), glyph)

	lines := v.Lines
	first := ""
	if len(lines) > 0 {
		first, lines = singleRow(lines[0]), lines[1:]
	}
	header := glyph
	if first != "" {
		header += " " + first
	}
	if progress := r.progressLine(v); progress != "" {
		header += "  " + r.theme.Render("progress", progress)
	}
	if v.Blocked {
		header += " " + r.theme.Render("waiting", "(waiting)")
	}

	rows := []string{indent + header}
	for _, line := range lines {
		rows = append(rows, indent+"  "+singleRow(line))
	}
	if status == style.StatusFailed && v.LastError != "" {
		rows = append(rows, indent+"  "+r.theme.Render("error", v.LastError))
	}
	return rows
}

// singleRow keeps the last non-empty line of a multi-line message so a
// mode line never spans rows
func singleRow(line string) string {
	if !strings.ContainsRune(line, '\n') {
		return line
	}
	pieces := strings.Split(line, "\n")
	for i := len(pieces) - 1; i >= 0; i-- {
		if p := strings.TrimSuffix(pieces[i], "\r"); p != "" {
			return p
		}
	}
	return ""
}

// progressLine renders the task's progress template. Any failure,
// including a panic inside a format, stays confined to this task.
func (r *Renderer) progressLine(v coordinator.TaskView) (line string) {
	if v.Format == nil {
		return ""
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn().Interface("panic", p).Uint64("task", uint64(v.ID)).Msg("Progress template panicked")
			line = TemplateFallback
		}
	}()
	vars := v.Vars
	if vars == nil {
		vars = tmpl.NewContext()
	}
	out, err := v.Format.RenderE(vars.Tick(r.ticks))
	if err != nil {
		r.logger.Debug().Err(err).Uint64("task", uint64(v.ID)).Msg("Progress template failed")
		return TemplateFallback
	}
	return out
}

func statusOf(v coordinator.TaskView) style.Status {
	switch {
	case v.Lifecycle == coordinator.Failed:
		return style.StatusFailed
	case v.Lifecycle == coordinator.Completed:
		return style.StatusCompleted
	case v.Paused:
		return style.StatusPaused
	case v.Blocked:
		return style.StatusWaiting
	default:
		return style.StatusRunning
	}
}

// paint rewrites the rows that differ from the previous paint. The cursor
// rests at the start of the line below the last painted row.
func (r *Renderer) paint(rows []string) {
	var b strings.Builder
	if n := len(r.painted); n > 0 {
		b.WriteString(ansi.CursorUp(n))
	}
	b.WriteByte('\r')

	if r.relayout {
		b.WriteString(ansi.EraseScreenBelow)
		for _, row := range rows {
			b.WriteString(row)
			b.WriteByte('\n')
		}
		r.relayout = false
	} else {
		for i, row := range rows {
			if i < len(r.painted) && r.painted[i] == row {
				b.WriteByte('\n')
				continue
			}
			b.WriteString(ansi.EraseEntireLine)
			b.WriteString(row)
			b.WriteByte('\n')
		}
		if len(rows) < len(r.painted) {
			b.WriteString(ansi.EraseScreenBelow)
		}
	}

	if len(rows) == 0 && len(r.painted) == 0 {
		return
	}
	r.write(b.String())
	r.painted = rows
}

// collect remembers the latest rows of every task for append-only output
func (r *Renderer) collect(frame coordinator.Frame) {
	for _, v := range frame.Tasks {
		if r.printed[v.ID] {
			continue
		}
		rows := r.taskRows(v)
		r.rows[v.ID] = rows
		if v.Lifecycle.Finished() {
			r.write(strings.Join(rows, "\n") + "\n")
			r.printed[v.ID] = true
			delete(r.rows, v.ID)
		}
	}
}

// flushAppendOnly prints the tasks that never finished, in id order
func (r *Renderer) flushAppendOnly() {
	ids := make([]task.ID, 0, len(r.rows))
	for id := range r.rows {
		if !r.printed[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		r.write(strings.Join(r.rows[id], "\n") + "\n")
		r.printed[id] = true
	}
	r.rows = make(map[task.ID][]string)
}
