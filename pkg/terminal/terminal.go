// Package terminal inspects the output terminal and reports resizes. It is
// the boundary between the renderer and the real device.
package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// Size is a terminal size in cells. Zero means unknown.
type Size struct {
	Width  int
	Height int
}

// Caps describes what the output stream can do
type Caps struct {
	Size
	SupportsColor   bool
	SupportsUnicode bool
	IsTTY           bool
	Profile         termenv.Profile
}

// Console is the terminal collaborator the display paints through
type Console interface {
	// Writer is the output stream; only the renderer writes to it
	Writer() io.Writer
	Caps() Caps
	Size() Size
	// Resize delivers the new size after each change
	Resize() <-chan Size
	Close() error
}

// Mode is the auto/always/never setting used for color and unicode
type Mode string

const (
	Auto   Mode = "auto"
	Always Mode = "always"
	Never  Mode = "never"
)

// ParseMode reads a Mode, treating unknown values as Auto
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Always:
		return Always
	case Never:
		return Never
	default:
		return Auto
	}
}

// resolve applies m to a detected capability
func (m Mode) resolve(detected bool) bool {
	switch m {
	case Always:
		return true
	case Never:
		return false
	default:
		return detected
	}
}

// DefaultWidth is assumed when the width cannot be determined
const DefaultWidth = 80

// unicodeFromEnv reports whether the locale announces UTF-8
func unicodeFromEnv() bool {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := strings.ToLower(os.Getenv(key))
		if v == "" {
			continue
		}
		return strings.Contains(v, "utf-8") || strings.Contains(v, "utf8")
	}
	return false
}
