package tmpl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// formatter turns a bound value into text. ok is false when the variable
// is missing from the context.
type formatter interface {
	apply(e *Engine, v Value, ok bool, ctx *Context) (string, error)
}

// newFormatter validates a format name and its parameters at parse time
func (e *Engine) newFormatter(name string, params []string) (formatter, error) {
	switch name {
	case "percent":
		if err := noParams(name, params); err != nil {
			return nil, err
		}
		return percentFormat{}, nil
	case "ratio":
		return newRatio(params)
	case "lpad", "rpad", "pad":
		return newPad(name, params)
	case "color":
		return newColor(params)
	case "bar":
		// {x:bar:block:20} selects a style through the first parameter
		if len(params) > 0 {
			if _, ok := barStyles[params[0]]; ok {
				return newBar(params[0], params[1:])
			}
		}
		return newBar("bar", params)
	}
	if _, ok := barStyles[name]; ok {
		return newBar(name, params)
	}
	return nil, errors.Newf(errors.ErrTemplate, "unknown format %q", name)
}

func noParams(name string, params []string) error {
	if len(params) > 0 {
		return errors.Newf(errors.ErrTemplate, "format %s takes no parameters, got %d", name, len(params))
	}
	return nil
}

func typeMismatch(format string, v Value) error {
	return errors.Newf(errors.ErrTemplate, "format %s needs a number, got %q", format, v.String())
}

// clamp01 bounds a progress ratio; NaN counts as zero
func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func percentOf(p float64) int {
	return int(math.Round(clamp01(p) * 100))
}

type percentFormat struct{}

func (percentFormat) apply(_ *Engine, v Value, ok bool, _ *Context) (string, error) {
	if !ok {
		return "", nil
	}
	f, isNum := v.Number()
	if !isNum {
		return "", typeMismatch("percent", v)
	}
	return fmt.Sprintf("%d%%", percentOf(f)), nil
}

// DefaultRatioTotal is the denominator when ratio has none
const DefaultRatioTotal = 100

type ratioFormat struct {
	total    int
	totalVar string
}

func newRatio(params []string) (formatter, error) {
	switch len(params) {
	case 0:
		return ratioFormat{total: DefaultRatioTotal}, nil
	case 1:
		if n, err := strconv.Atoi(params[0]); err == nil {
			if n < 0 {
				return nil, errors.Newf(errors.ErrTemplate, "ratio total must not be negative, got %d", n)
			}
			return ratioFormat{total: n}, nil
		}
		if !validName(params[0]) {
			return nil, errors.Newf(errors.ErrTemplate, "ratio total %q is neither a number nor a variable", params[0])
		}
		return ratioFormat{total: DefaultRatioTotal, totalVar: params[0]}, nil
	default:
		return nil, errors.Newf(errors.ErrTemplate, "ratio takes one parameter, got %d", len(params))
	}
}

func (r ratioFormat) apply(_ *Engine, v Value, ok bool, ctx *Context) (string, error) {
	if !ok {
		return "", nil
	}
	n, isNum := v.Number()
	if !isNum {
		return "", typeMismatch("ratio", v)
	}
	total := r.total
	if r.totalVar != "" {
		if tv, found := ctx.Get(r.totalVar); found {
			if f, isNum := tv.Number(); isNum {
				total = int(f)
			}
		}
	}
	return fmt.Sprintf("%d/%d", int(n), total), nil
}

type padFormat struct {
	align string
	width int
}

func newPad(name string, params []string) (formatter, error) {
	if len(params) != 1 {
		return nil, errors.Newf(errors.ErrTemplate, "%s takes a width, got %d parameters", name, len(params))
	}
	w, err := strconv.Atoi(params[0])
	if err != nil || w < 0 || w > MaxWidth {
		return nil, errors.Newf(errors.ErrTemplate, "%s width %q is not an integer between 0 and %d", name, params[0], MaxWidth)
	}
	return padFormat{align: name, width: w}, nil
}

// apply pads with spaces measured in display cells. Content wider than
// the width is never truncated.
func (p padFormat) apply(_ *Engine, v Value, ok bool, _ *Context) (string, error) {
	if !ok {
		return "", nil
	}
	s := v.String()
	gap := p.width - ansi.StringWidth(s)
	if gap <= 0 {
		return s, nil
	}
	switch p.align {
	case "lpad":
		return strings.Repeat(" ", gap) + s, nil
	case "rpad":
		return s + strings.Repeat(" ", gap), nil
	default:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left), nil
	}
}

type colorFormat struct {
	color string
}

func newColor(params []string) (formatter, error) {
	if len(params) != 1 {
		return nil, errors.Newf(errors.ErrTemplate, "color takes a color name, got %d parameters", len(params))
	}
	name := strings.ToLower(params[0])
	if name != "reset" && !isColorName(name) {
		return nil, errors.Newf(errors.ErrTemplate, "unknown color %q", params[0])
	}
	return colorFormat{color: name}, nil
}

func (c colorFormat) apply(e *Engine, v Value, ok bool, _ *Context) (string, error) {
	if !ok {
		return "", nil
	}
	return e.colorize(v.String(), c.color), nil
}
