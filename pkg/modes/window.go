package modes

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
)

// Window keeps the most recent lines in a bounded FIFO
type Window struct {
	base      *core.BaseConfig
	max       int
	lines     []string
	wrapWidth int
}

// NewWindow creates a window of size lines
func NewWindow(size, totalJobs int) (*Window, error) {
	if size < MinWindowSize {
		return nil, errors.InvalidWindowSize(size, MinWindowSize, NameWindow)
	}
	return newWindow(size, core.NewBaseConfig(totalJobs)), nil
}

func newWindow(size int, base *core.BaseConfig) *Window {
	return &Window{base: base, max: size, lines: make([]string, 0, size)}
}

func (w *Window) Name() string           { return NameWindow }
func (w *Window) LinesNeeded() int       { return w.max }
func (w *Window) Base() *core.BaseConfig { return w.base }

func (w *Window) HandleMessage(text string) []string {
	for _, line := range splitMessage(text) {
		for _, wrapped := range w.wrap(line) {
			w.push(wrapped)
		}
	}
	return w.Lines()
}

func (w *Window) push(line string) {
	if len(w.lines) == w.max {
		copy(w.lines, w.lines[1:])
		w.lines = w.lines[:w.max-1]
	}
	w.lines = append(w.lines, line)
}

func (w *Window) wrap(line string) []string {
	if w.wrapWidth <= 0 || ansi.StringWidth(line) <= w.wrapWidth {
		return []string{line}
	}
	return strings.Split(ansi.Wrap(line, w.wrapWidth, ""), "\n")
}

func (w *Window) Lines() []string {
	return append([]string(nil), w.lines...)
}

// MaxLines is the FIFO capacity
func (w *Window) MaxLines() int { return w.max }

// SetWrapWidth enables wrapping at width display cells; 0 disables it.
// Lines already buffered are left as they are.
func (w *Window) SetWrapWidth(width int) {
	if width < 0 {
		width = 0
	}
	w.wrapWidth = width
}

// WrapWidth returns the active wrap width, 0 when wrapping is off
func (w *Window) WrapWidth() int { return w.wrapWidth }

func (w *Window) Duplicate() Mode {
	return w.duplicate(w.base.Clone())
}

func (w *Window) duplicate(base *core.BaseConfig) *Window {
	c := newWindow(w.max, base)
	c.lines = append(c.lines, w.lines...)
	c.wrapWidth = w.wrapWidth
	return c
}
