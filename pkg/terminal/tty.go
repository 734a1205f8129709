package terminal

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/arthur-debert/tasklines/pkg/logging"
)

// TTY is the Console over a real file, normally os.Stdout
type TTY struct {
	f       *os.File
	tty     bool
	color   Mode
	unicode Mode
	resize  chan Size
	stop    chan struct{}
	once    sync.Once
}

// TTYOption customises a TTY
type TTYOption func(*TTY)

// WithColor overrides color detection
func WithColor(m Mode) TTYOption { return func(p *TTY) { p.color = m } }

// WithUnicode overrides unicode detection
func WithUnicode(m Mode) TTYOption { return func(p *TTY) { p.unicode = m } }

// NewTTY inspects f and starts watching for resizes when f is a terminal
func NewTTY(f *os.File, opts ...TTYOption) *TTY {
	p := &TTY{
		f:       f,
		tty:     isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
		color:   Auto,
		unicode: Auto,
		resize:  make(chan Size, 1),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tty {
		go p.watch()
	}
	return p
}

// Writer returns the underlying file
func (p *TTY) Writer() io.Writer { return p.f }

// Size queries the current size; a non-terminal has unknown height
func (p *TTY) Size() Size {
	if !p.tty {
		return Size{Width: DefaultWidth}
	}
	w, h, err := term.GetSize(int(p.f.Fd()))
	if err != nil || w <= 0 {
		logger := logging.GetLogger("terminal")
		logger.Debug().Err(err).Msg("Could not read terminal size")
		return Size{Width: DefaultWidth}
	}
	return Size{Width: w, Height: h}
}

// Caps reports the detected capabilities
func (p *TTY) Caps() Caps {
	profile := termenv.NewOutput(p.f).EnvColorProfile()
	if !p.tty {
		profile = termenv.Ascii
	}
	color := p.color.resolve(profile != termenv.Ascii)
	switch {
	case !color:
		profile = termenv.Ascii
	case profile == termenv.Ascii:
		profile = termenv.ANSI
	}
	return Caps{
		Size:            p.Size(),
		SupportsColor:   color,
		SupportsUnicode: p.unicode.resolve(unicodeFromEnv()),
		IsTTY:           p.tty,
		Profile:         profile,
	}
}

// Resize delivers sizes after the terminal changes
func (p *TTY) Resize() <-chan Size { return p.resize }

// Close stops resize watching
func (p *TTY) Close() error {
	p.once.Do(func() { close(p.stop) })
	return nil
}

// publish replaces any undelivered size with s
func (p *TTY) publish(s Size) {
	select {
	case <-p.resize:
	default:
	}
	select {
	case p.resize <- s:
	default:
	}
}
