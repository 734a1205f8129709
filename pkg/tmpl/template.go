package tmpl

import (
	stderrors "errors"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The eight named ANSI colors, by palette index
var colorNames = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
}

func isColorName(s string) bool {
	_, ok := colorNames[s]
	return ok
}

// Engine parses templates and holds what rendering needs from the
// terminal: the color profile and whether unicode glyphs are safe.
type Engine struct {
	renderer *lipgloss.Renderer
	unicode  bool
}

// Option customises an Engine
type Option func(*Engine)

// WithColorProfile fixes the color profile; termenv.Ascii disables color
func WithColorProfile(p termenv.Profile) Option {
	return func(e *Engine) { e.renderer.SetColorProfile(p) }
}

// WithRenderer uses an existing lipgloss renderer
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithUnicode selects between unicode and ASCII glyph defaults
func WithUnicode(enabled bool) Option {
	return func(e *Engine) { e.unicode = enabled }
}

// NewEngine returns an engine with colors disabled and unicode glyphs
func NewEngine(opts ...Option) *Engine {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	e := &Engine{renderer: r, unicode: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) colorize(s, color string) string {
	idx, ok := colorNames[color]
	if !ok || s == "" {
		return s
	}
	return e.renderer.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(idx))).Render(s)
}

// Template is a parsed, immutable template
type Template struct {
	engine   *Engine
	source   string
	segments []segment
}

// Parse parses src with e's settings
func (e *Engine) Parse(src string) (*Template, error) {
	p := &parser{e: e, src: src}
	segs, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Template{engine: e, source: src, segments: segs}, nil
}

// MustParse is Parse for templates known to be valid
func (e *Engine) MustParse(src string) *Template {
	t, err := e.Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse parses src with a default engine
func Parse(src string) (*Template, error) {
	return NewEngine().Parse(src)
}

// MustParse parses src with a default engine and panics on error
func MustParse(src string) *Template {
	return NewEngine().MustParse(src)
}

// Source returns the text the template was parsed from
func (t *Template) Source() string { return t.source }

// Render renders against ctx. Directives that fail render as empty text.
func (t *Template) Render(ctx *Context) string {
	out, _ := t.RenderE(ctx)
	return out
}

// RenderE renders against ctx and also reports every directive that
// failed. The text is complete either way.
func (t *Template) RenderE(ctx *Context) (string, error) {
	var sb strings.Builder
	var errs []error
	for _, seg := range t.segments {
		if err := seg.render(t, ctx, &sb); err != nil {
			errs = append(errs, err)
		}
	}
	return sb.String(), joinErrors(errs)
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return stderrors.Join(errs...)
}

// Render parses and renders src in one step
func Render(src string, ctx *Context) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.RenderE(ctx)
}
