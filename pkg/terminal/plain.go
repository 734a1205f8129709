package terminal

import (
	"io"

	"github.com/muesli/termenv"
)

// Plain is a Console over any writer that is not a terminal: no cursor
// movement, no color, a fixed width and no resizes
type Plain struct {
	w       io.Writer
	unicode bool
}

// NewPlain wraps w
func NewPlain(w io.Writer, unicode bool) *Plain {
	return &Plain{w: w, unicode: unicode}
}

func (p *Plain) Writer() io.Writer { return p.w }

func (p *Plain) Size() Size { return Size{Width: DefaultWidth} }

func (p *Plain) Caps() Caps {
	return Caps{Size: p.Size(), SupportsUnicode: p.unicode, Profile: termenv.Ascii}
}

// Resize never delivers
func (p *Plain) Resize() <-chan Size { return nil }

func (p *Plain) Close() error { return nil }
