package tmpl

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// segment is one element of a parsed template
type segment interface {
	render(t *Template, ctx *Context, sb *strings.Builder) error
}

type literal string

type directive struct {
	name string
	raw  string
	pos  int
	fmt  formatter
}

type section struct {
	name   string
	negate bool
	body   []segment
}

type parser struct {
	e   *Engine
	src string
	lit strings.Builder

	top  []segment
	open *section
}

func (p *parser) emit(s segment) {
	if p.open != nil {
		p.open.body = append(p.open.body, s)
		return
	}
	p.top = append(p.top, s)
}

func (p *parser) flushLiteral() {
	if p.lit.Len() == 0 {
		return
	}
	p.emit(literal(p.lit.String()))
	p.lit.Reset()
}

func (p *parser) parse() ([]segment, error) {
	src := p.src
	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "{{"):
			p.lit.WriteByte('{')
			i += 2
		case strings.HasPrefix(src[i:], "}}"):
			p.lit.WriteByte('}')
			i += 2
		case src[i] == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				// unclosed: the rest is text
				p.lit.WriteString(src[i:])
				i = len(src)
				continue
			}
			body := src[i+1 : i+1+end]
			if inner := strings.IndexByte(body, '{'); inner >= 0 {
				// "{a {b}": only the innermost brace opens a directive
				p.lit.WriteString(src[i : i+1+inner])
				i += 1 + inner
				continue
			}
			if err := p.directive(body, i); err != nil {
				return nil, err
			}
			i += end + 2
		default:
			p.lit.WriteByte(src[i])
			i++
		}
	}
	p.flushLiteral()
	if p.open != nil {
		return nil, errors.Template(len(src), "section {%s%s} is never closed with {/}", polarity(p.open.negate), p.open.name).
			WithDetail("directive", p.open.name)
	}
	return p.top, nil
}

func polarity(negate bool) string {
	if negate {
		return "!"
	}
	return "?"
}

func (p *parser) directive(body string, pos int) error {
	raw := "{" + body + "}"
	switch {
	case body == "/":
		if p.open == nil {
			return errors.Template(pos, "{/} without an open section").WithDetail("directive", raw)
		}
		p.flushLiteral()
		s := p.open
		p.open = nil
		p.top = append(p.top, s)
		return nil

	case strings.HasPrefix(body, "?"), strings.HasPrefix(body, "!"):
		name := body[1:]
		if !validName(name) {
			return errors.Template(pos, "invalid section name %q", name).WithDetail("directive", raw)
		}
		if p.open != nil {
			return errors.Template(pos, "section %s opened inside section %s; sections do not nest", name, p.open.name).
				WithDetail("directive", raw)
		}
		p.flushLiteral()
		p.open = &section{name: name, negate: body[0] == '!'}
		return nil
	}

	parts := strings.Split(body, ":")
	name := parts[0]
	if !validName(name) {
		return errors.Template(pos, "invalid variable name %q", name).WithDetail("directive", raw)
	}
	d := &directive{name: name, raw: raw, pos: pos}
	if len(parts) > 1 {
		f, err := p.e.newFormatter(parts[1], parts[2:])
		if err != nil {
			return errors.Wrapf(err, errors.ErrTemplate, "directive %s", raw).
				WithDetail("position", pos).
				WithDetail("directive", raw)
		}
		d.fmt = f
	}
	p.flushLiteral()
	p.emit(d)
	return nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

func (l literal) render(_ *Template, _ *Context, sb *strings.Builder) error {
	sb.WriteString(string(l))
	return nil
}

func (d *directive) render(t *Template, ctx *Context, sb *strings.Builder) error {
	v, ok := ctx.Get(d.name)
	if d.fmt == nil {
		if ok {
			sb.WriteString(v.String())
		}
		return nil
	}
	out, err := d.fmt.apply(t.engine, v, ok, ctx)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTemplate, "rendering %s", d.raw).
			WithDetail("position", d.pos).
			WithDetail("directive", d.raw)
	}
	sb.WriteString(out)
	return nil
}

func (s *section) render(t *Template, ctx *Context, sb *strings.Builder) error {
	v, ok := ctx.Get(s.name)
	show := ok && v.Truthy()
	if s.negate {
		show = !show
	}
	if !show {
		return nil
	}
	var errs []error
	for _, seg := range s.body {
		if err := seg.render(t, ctx, sb); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}
