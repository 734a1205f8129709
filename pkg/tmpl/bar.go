package tmpl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// DefaultBarWidth is the cell count of a bar without a width parameter
const DefaultBarWidth = 10

// MaxWidth bounds every width parameter, for bars and padding alike
const MaxWidth = 1024

// Glyph ramps for custom bars, from empty to full
var ramps = map[string][]string{
	"dots":     {"·", "•", "●"},
	"braille":  {" ", "⡀", "⡄", "⡆", "⡇", "⣇", "⣧", "⣷", "⣿"},
	"gradient": {" ", "░", "▒", "▓", "█"},
}

var asciiRamp = []string{" ", ".", ":", "#"}

// Spinner frame sets
var spinners = map[string][]string{
	"braille": {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	"dots":    {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	"line":    {"-", "\\", "|", "/"},
	"arc":     {"◜", "◠", "◝", "◞", "◡", "◟"},
}

// SpinnerFrames returns the frames of a named spinner set
func SpinnerFrames(name string) []string {
	return append([]string(nil), spinners[name]...)
}

var barStyles = map[string]struct{}{
	"bar": {}, "block": {}, "numeric": {}, "spinner": {}, "interactive": {}, "custom": {},
}

type barFormat struct {
	style    string
	width    int
	fill     string
	empty    string
	cursor   string
	ramp     string
	frames   []string
	colors   []string
	flag     bool
	flagSet  bool
	widthSet bool
}

// newBar classifies parameters by their form: an integer is the width, a
// color name is a foreground color (fill first, then empty), true/false
// is a flag, and short strings are glyphs.
func newBar(style string, params []string) (formatter, error) {
	b := &barFormat{style: style, width: DefaultBarWidth}
	if style == "custom" {
		if len(params) == 0 {
			return nil, errors.Newf(errors.ErrTemplate, "custom bar needs a ramp: dots, braille or gradient")
		}
		if _, ok := ramps[params[0]]; !ok {
			return nil, errors.Newf(errors.ErrTemplate, "unknown ramp %q", params[0])
		}
		b.ramp = params[0]
		params = params[1:]
	}

	var glyphs []string
	for _, p := range params {
		switch {
		case p == "":
			return nil, errors.Newf(errors.ErrTemplate, "empty %s parameter", style)
		case isInt(p):
			if b.widthSet {
				return nil, errors.Newf(errors.ErrTemplate, "%s width given twice", style)
			}
			n, _ := strconv.Atoi(p)
			if n < 0 || n > MaxWidth {
				return nil, errors.Newf(errors.ErrTemplate, "%s width must be between 0 and %d, got %s", style, MaxWidth, p)
			}
			b.width, b.widthSet = n, true
		case isColorName(strings.ToLower(p)):
			if len(b.colors) == 2 {
				return nil, errors.Newf(errors.ErrTemplate, "%s takes at most two colors", style)
			}
			b.colors = append(b.colors, strings.ToLower(p))
		case p == "true" || p == "false":
			b.flag, b.flagSet = p == "true", true
		default:
			glyphs = append(glyphs, p)
		}
	}
	if err := b.applyGlyphs(glyphs); err != nil {
		return nil, err
	}
	return b, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (b *barFormat) applyGlyphs(glyphs []string) error {
	if b.style == "spinner" {
		switch len(glyphs) {
		case 0:
			return nil
		case 1:
			if set, ok := spinners[glyphs[0]]; ok {
				b.frames = set
				return nil
			}
			if frames := splitRunes(glyphs[0]); len(frames) >= 2 {
				b.frames = frames
				return nil
			}
		}
		return errors.Newf(errors.ErrTemplate, "spinner takes a frame set name or at least two frame glyphs")
	}

	// flatten "=-" into separate glyphs so both spellings work
	var runes []string
	for _, g := range glyphs {
		runes = append(runes, splitRunes(g)...)
	}
	limit := 2
	switch b.style {
	case "interactive":
		limit = 3
	case "numeric", "custom":
		limit = 0
	}
	if len(runes) > limit {
		return errors.Newf(errors.ErrTemplate, "%s accepts at most %d glyphs, got %q", b.style, limit, strings.Join(glyphs, ":"))
	}
	for i, r := range runes {
		switch i {
		case 0:
			b.fill = r
		case 1:
			b.empty = r
		case 2:
			b.cursor = r
		}
	}
	return nil
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func (b *barFormat) apply(e *Engine, v Value, ok bool, ctx *Context) (string, error) {
	if b.style == "spinner" {
		return b.spinner(e, ctx), nil
	}
	if !ok {
		return "", nil
	}
	f, isNum := v.Number()
	if !isNum {
		return "", typeMismatch(b.style, v)
	}
	p := clamp01(f)

	switch b.style {
	case "numeric":
		return b.numeric(e, p), nil
	case "custom":
		return b.custom(e, p), nil
	default:
		return b.bar(e, p), nil
	}
}

func (b *barFormat) color(i int) string {
	if i < len(b.colors) {
		return b.colors[i]
	}
	return ""
}

func (b *barFormat) glyphs(e *Engine) (fill, empty string) {
	switch b.style {
	case "block":
		fill, empty = "█", "░"
		if !e.unicode {
			fill, empty = "#", "-"
		}
	default:
		fill, empty = "=", " "
	}
	if b.fill != "" {
		fill = b.fill
	}
	if b.empty != "" {
		empty = b.empty
	}
	return fill, empty
}

// repeatCells repeats glyph until it covers cells display cells
func repeatCells(glyph string, cells int) string {
	if cells <= 0 {
		return ""
	}
	w := runewidth.StringWidth(glyph)
	if w < 1 {
		w = 1
	}
	out := strings.Repeat(glyph, cells/w)
	if rem := cells % w; rem > 0 {
		out += strings.Repeat(" ", rem)
	}
	return out
}

func (b *barFormat) bar(e *Engine, p float64) string {
	fill, empty := b.glyphs(e)
	filled := int(math.Round(float64(b.width) * p))

	var head string
	if b.style == "interactive" && filled < b.width {
		cursor := b.cursor
		if cursor == "" {
			cursor = ">"
		}
		head = cursor
	}
	rest := b.width - filled - runewidth.StringWidth(head)

	body := e.colorize(repeatCells(fill, filled)+head, b.color(0)) +
		e.colorize(repeatCells(empty, rest), b.color(1))

	brackets := b.style != "block"
	if b.flagSet {
		brackets = b.flag
	}
	if brackets {
		return "[" + body + "]"
	}
	return body
}

func (b *barFormat) numeric(e *Engine, p float64) string {
	s := strconv.Itoa(percentOf(p))
	if !b.flagSet || b.flag {
		s += "%"
	}
	if b.widthSet {
		s = fmt.Sprintf("%*s", b.width, s)
	}
	return e.colorize(s, b.color(0))
}

func (b *barFormat) custom(e *Engine, p float64) string {
	ramp := ramps[b.ramp]
	if !e.unicode {
		ramp = asciiRamp
	}
	var sb strings.Builder
	exact := p * float64(b.width)
	for i := 0; i < b.width; i++ {
		cell := clamp01(exact - float64(i))
		sb.WriteString(ramp[int(math.Round(cell*float64(len(ramp)-1)))])
	}
	return e.colorize(sb.String(), b.color(0))
}

func (b *barFormat) spinner(e *Engine, ctx *Context) string {
	frames := b.frames
	if frames == nil {
		frames = spinners["braille"]
		if !e.unicode {
			frames = spinners["line"]
		}
	}
	n := len(frames)
	i := ((ctx.CurrentTick() % n) + n) % n
	return e.colorize(frames[i], b.color(0))
}
