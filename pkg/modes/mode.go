// Package modes implements the line buffers behind each task's on-screen
// block. A mode owns no goroutines and no locks; the coordinator is its
// only caller.
package modes

import (
	"strings"

	"github.com/arthur-debert/tasklines/pkg/core"
)

// Mode names as they appear in descriptors and errors
const (
	NameCapturing       = "capturing"
	NameLimited         = "limited"
	NameWindow          = "window"
	NameWindowWithTitle = "window-with-title"
)

// Minimum sizes for the window modes
const (
	MinWindowSize          = 1
	MinWindowWithTitleSize = 2
)

// Mode is a line-buffer state machine for one task
type Mode interface {
	// Name identifies the variant
	Name() string
	// LinesNeeded is the number of terminal rows the mode may occupy
	LinesNeeded() int
	// HandleMessage applies a log message and returns the resulting lines
	HandleMessage(text string) []string
	// Lines returns a copy of the current lines without mutating the mode
	Lines() []string
	// Duplicate returns an independent deep copy
	Duplicate() Mode
	// Base exposes the job bookkeeping shared by all modes
	Base() *core.BaseConfig
}

// splitMessage breaks a message into display lines. Multi-line messages
// drop their empty pieces, but every message yields at least one line.
func splitMessage(text string) []string {
	if !strings.ContainsRune(text, '\n') {
		return []string{strings.TrimSuffix(text, "\r")}
	}
	var out []string
	for _, piece := range strings.Split(text, "\n") {
		piece = strings.TrimSuffix(piece, "\r")
		if piece != "" {
			out = append(out, piece)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// lastLine returns the final display line of a message
func lastLine(text string) string {
	lines := splitMessage(text)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
