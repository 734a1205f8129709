package tmpl

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ValueKind tags a Value
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
	KindBool
)

// Value is a template variable
type Value struct {
	kind ValueKind
	num  float64
	text string
	b    bool
}

// Num returns a numeric value
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text value
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the value's type
func (v Value) Kind() ValueKind { return v.kind }

// Truthy is true for non-zero numbers, non-empty text and true
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindText:
		return v.text != ""
	default:
		return v.b
	}
}

// String is the raw interpolation of the value
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return strconv.FormatBool(v.b)
	}
}

// Number converts the value for numeric formats. Text that parses as a
// number is accepted.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Context maps variable names to values for one render. It also carries
// the animation tick used by spinners.
type Context struct {
	vars map[string]Value
	tick int
}

// NewContext returns an empty context
func NewContext() *Context {
	return &Context{vars: make(map[string]Value)}
}

// Set binds name to v
func (c *Context) Set(name string, v Value) *Context {
	c.vars[name] = v
	return c
}

// Num binds a number
func (c *Context) Num(name string, f float64) *Context { return c.Set(name, Num(f)) }

// Int binds an integer
func (c *Context) Int(name string, n int) *Context { return c.Set(name, Num(float64(n))) }

// Text binds a string
func (c *Context) Text(name, s string) *Context { return c.Set(name, Text(s)) }

// Bool binds a boolean
func (c *Context) Bool(name string, b bool) *Context { return c.Set(name, Bool(b)) }

// Tick sets the animation frame counter
func (c *Context) Tick(n int) *Context {
	c.tick = n
	return c
}

// Get looks name up
func (c *Context) Get(name string) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.vars[name]
	return v, ok
}

// Has reports whether name is bound
func (c *Context) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// CurrentTick returns the animation frame counter
func (c *Context) CurrentTick() int {
	if c == nil {
		return 0
	}
	return c.tick
}

// Clone returns an independent copy
func (c *Context) Clone() *Context {
	out := &Context{vars: make(map[string]Value, len(c.vars)), tick: c.tick}
	for k, v := range c.vars {
		out.vars[k] = v
	}
	return out
}

// FromProgress builds the context the built-in presets expect: progress
// (ratio), completed, total and percent.
func FromProgress(completed, total int) *Context {
	ctx := NewContext().Int("completed", completed).Int("total", total)
	p := 0.0
	if total > 0 {
		p = float64(completed) / float64(total)
	}
	return ctx.Num("progress", p).Num("percent", p*100)
}

// Bytes binds the humanized form of a byte count, e.g. "21 MB"
func (c *Context) Bytes(name string, n uint64) *Context {
	return c.Text(name, humanize.Bytes(n))
}
