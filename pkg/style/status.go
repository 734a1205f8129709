package style

import (
	"github.com/pterm/pterm"
)

// Status is the display state of a task row
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
	StatusWaiting   Status = "waiting" // blocked on a dependency
)

// glyphs holds the unicode and ASCII forms of each status marker
var glyphs = map[Status][2]string{
	StatusRunning:   {"•", "*"},
	StatusCompleted: {"✓", "+"},
	StatusFailed:    {"✗", "x"},
	StatusPaused:    {"‖", "="},
	StatusWaiting:   {"○", "-"},
}

// Glyph returns the marker drawn in front of a task's title. Running tasks
// normally show a spinner instead; this glyph is the fallback.
func Glyph(s Status, unicode bool) string {
	g, ok := glyphs[s]
	if !ok {
		g = glyphs[StatusRunning]
	}
	if unicode {
		return g[0]
	}
	return g[1]
}

// Finished reports whether a task in this status will not change again
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PtermStyle returns the pterm style used for the status column of the
// summary table
func (s Status) PtermStyle() *pterm.Style {
	switch s {
	case StatusCompleted:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case StatusFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusPaused:
		return pterm.NewStyle(pterm.FgYellow)
	case StatusWaiting:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgCyan)
	}
}

// Aggregate determines the overall status of a set of tasks: failed if
// any failed, completed if all completed, otherwise running
func Aggregate(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusCompleted
	}
	allCompleted := true
	for _, s := range statuses {
		switch s {
		case StatusFailed:
			return StatusFailed
		case StatusCompleted:
		default:
			allCompleted = false
		}
	}
	if allCompleted {
		return StatusCompleted
	}
	return StatusRunning
}
