package terminal

import (
	"bytes"
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// Buffer is an in-memory Console for tests and for capturing output
type Buffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	caps   Caps
	resize chan Size
	failW  error
}

// NewBuffer returns a TTY-like console of the given size with unicode
// and no color
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		caps: Caps{
			Size:            Size{Width: width, Height: height},
			SupportsUnicode: true,
			IsTTY:           true,
			Profile:         termenv.Ascii,
		},
		resize: make(chan Size, 8),
	}
}

// SetCaps replaces the reported capabilities
func (b *Buffer) SetCaps(c Caps) {
	b.mu.Lock()
	b.caps = c
	b.mu.Unlock()
}

// SetSize changes the size and emits a resize event
func (b *Buffer) SetSize(width, height int) {
	b.mu.Lock()
	b.caps.Size = Size{Width: width, Height: height}
	b.mu.Unlock()
	b.resize <- Size{Width: width, Height: height}
}

// FailWrites makes every following write return err
func (b *Buffer) FailWrites(err error) {
	b.mu.Lock()
	b.failW = err
	b.mu.Unlock()
}

// Write implements io.Writer
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failW != nil {
		return 0, b.failW
	}
	return b.buf.Write(p)
}

// String returns everything written so far
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards the written output
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

func (b *Buffer) Writer() io.Writer { return b }

func (b *Buffer) Caps() Caps {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

func (b *Buffer) Size() Size { return b.Caps().Size }

func (b *Buffer) Resize() <-chan Size { return b.resize }

func (b *Buffer) Close() error { return nil }
