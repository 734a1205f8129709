package modes

import (
	"strings"

	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
)

// DefaultTitle is shown when a titled window has no title set
const DefaultTitle = "Progress"

// WindowWithTitle reserves its first row for a title and uses the rest
// as a Window over body lines.
type WindowWithTitle struct {
	body   *Window
	title  string
	emojis []string
}

// NewWindowWithTitle creates a titled window of size rows, title included
func NewWindowWithTitle(size, totalJobs int, title string) (*WindowWithTitle, error) {
	if size < MinWindowWithTitleSize {
		return nil, errors.InvalidWindowSize(size, MinWindowWithTitleSize, NameWindowWithTitle)
	}
	w := &WindowWithTitle{body: newWindow(size-1, core.NewBaseConfig(totalJobs))}
	w.SetTitle(title)
	return w, nil
}

func (w *WindowWithTitle) Name() string           { return NameWindowWithTitle }
func (w *WindowWithTitle) LinesNeeded() int       { return w.body.max + 1 }
func (w *WindowWithTitle) Base() *core.BaseConfig { return w.body.base }

func (w *WindowWithTitle) HandleMessage(text string) []string {
	w.body.HandleMessage(text)
	return w.Lines()
}

func (w *WindowWithTitle) Lines() []string {
	out := make([]string, 0, len(w.body.lines)+1)
	out = append(out, w.titleLine())
	return append(out, w.body.lines...)
}

func (w *WindowWithTitle) titleLine() string {
	if len(w.emojis) == 0 {
		return w.title
	}
	return strings.Join(w.emojis, " ") + " " + w.title
}

// Title returns the title without emojis
func (w *WindowWithTitle) Title() string { return w.title }

// SetTitle replaces the title; an empty title falls back to DefaultTitle
func (w *WindowWithTitle) SetTitle(title string) {
	title = strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	if title == "" {
		title = DefaultTitle
	}
	w.title = title
}

// AddEmoji stacks a glyph in front of the title. Duplicates and blank
// glyphs are ignored.
func (w *WindowWithTitle) AddEmoji(glyph string) {
	glyph = strings.TrimSpace(glyph)
	if glyph == "" {
		return
	}
	for _, e := range w.emojis {
		if e == glyph {
			return
		}
	}
	w.emojis = append(w.emojis, glyph)
}

// Emojis returns the stacked glyphs in insertion order
func (w *WindowWithTitle) Emojis() []string {
	return append([]string(nil), w.emojis...)
}

// SetWrapWidth wraps body lines at width cells; 0 disables wrapping
func (w *WindowWithTitle) SetWrapWidth(width int) { w.body.SetWrapWidth(width) }

// WrapWidth returns the body wrap width
func (w *WindowWithTitle) WrapWidth() int { return w.body.WrapWidth() }

// MaxLines is the total row count including the title
func (w *WindowWithTitle) MaxLines() int { return w.LinesNeeded() }

func (w *WindowWithTitle) Duplicate() Mode {
	return &WindowWithTitle{
		body:   w.body.duplicate(w.body.base.Clone()),
		title:  w.title,
		emojis: w.Emojis(),
	}
}
