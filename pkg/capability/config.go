// Package capability wraps a display mode and exposes the optional
// behaviours it supports. Every accessor resolves with a type switch over
// the known mode variants; modes supplied from outside the package tree
// take part by implementing the capability interfaces themselves.
package capability

import (
	"github.com/arthur-debert/tasklines/pkg/core"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/modes"
)

// Adjustment records a parameter the factory changed under the lenient
// policy
type Adjustment struct {
	Field     string
	Requested int
	Applied   int
	Reason    string
}

// Config is the type-erased handle the coordinator holds for each task
type Config struct {
	mode        modes.Mode
	caps        Set
	adjustments []Adjustment
}

// New wraps m
func New(m modes.Mode, adjustments ...Adjustment) *Config {
	c := &Config{mode: m, adjustments: adjustments}
	c.caps = c.resolve()
	return c
}

// Mode returns the wrapped mode
func (c *Config) Mode() modes.Mode { return c.mode }

// Name is the wrapped mode's name
func (c *Config) Name() string { return c.mode.Name() }

// Base returns the job bookkeeping of the wrapped mode
func (c *Config) Base() *core.BaseConfig { return c.mode.Base() }

// HandleMessage forwards a log message to the mode
func (c *Config) HandleMessage(text string) []string { return c.mode.HandleMessage(text) }

// Lines returns the mode's current lines
func (c *Config) Lines() []string { return c.mode.Lines() }

// LinesNeeded returns the rows the mode may occupy
func (c *Config) LinesNeeded() int { return c.mode.LinesNeeded() }

// Adjustments lists substitutions made while creating this config
func (c *Config) Adjustments() []Adjustment {
	return append([]Adjustment(nil), c.adjustments...)
}

// Adjusted reports whether the factory changed any requested parameter
func (c *Config) Adjusted() bool { return len(c.adjustments) > 0 }

// Duplicate returns a config around an independent copy of the mode
func (c *Config) Duplicate() *Config {
	return &Config{mode: c.mode.Duplicate(), caps: c.caps, adjustments: c.Adjustments()}
}

// Capabilities returns the set of supported capabilities
func (c *Config) Capabilities() Set { return c.caps }

// Supports reports whether every kind in k is available
func (c *Config) Supports(k Kind) bool { return c.caps.Has(k) }

// Require returns CapabilityNotSupported unless k is available
func (c *Config) Require(k Kind) error {
	if c.Supports(k) {
		return nil
	}
	return errors.CapabilityNotSupported(k.String(), c.Name())
}

func (c *Config) resolve() Set {
	var s Kind
	mark := func(k Kind, ok bool) {
		if ok {
			s |= k
		}
	}
	_, ok := c.Title()
	mark(KindTitle, ok)
	_, ok = c.Emoji()
	mark(KindEmoji, ok)
	_, ok = c.Wrap()
	mark(KindWrap, ok)
	_, ok = c.Progress()
	mark(KindProgress, ok)
	_, ok = c.Pausable()
	mark(KindPause, ok)
	_, ok = c.Priority()
	mark(KindPriority, ok)
	_, ok = c.Dependent()
	mark(KindDependency, ok)
	_, ok = c.Failure()
	mark(KindFailure, ok)
	_, ok = c.Status()
	mark(KindStatus, ok)
	_, ok = c.Statistics()
	mark(KindStatistics, ok)
	_, ok = c.Persistent()
	mark(KindPersistence, ok)
	return Set(s)
}

// Title resolves the WithTitle capability
func (c *Config) Title() (WithTitle, bool) {
	switch m := c.mode.(type) {
	case *modes.WindowWithTitle:
		return m, true
	case *modes.Window, *modes.Capturing, *modes.Limited:
		return nil, false
	default:
		t, ok := c.mode.(WithTitle)
		return t, ok
	}
}

// Emoji resolves the WithEmoji capability
func (c *Config) Emoji() (WithEmoji, bool) {
	switch m := c.mode.(type) {
	case *modes.WindowWithTitle:
		return m, true
	case *modes.Window, *modes.Capturing, *modes.Limited:
		return nil, false
	default:
		e, ok := c.mode.(WithEmoji)
		return e, ok
	}
}

// Wrap resolves the WithWrappedText capability
func (c *Config) Wrap() (WithWrappedText, bool) {
	switch m := c.mode.(type) {
	case *modes.Window:
		return m, true
	case *modes.WindowWithTitle:
		return m, true
	case *modes.Capturing, *modes.Limited:
		return nil, false
	default:
		w, ok := c.mode.(WithWrappedText)
		return w, ok
	}
}

// base returns the BaseConfig-backed implementation shared by the
// remaining capabilities
func (c *Config) base() (baseJob, bool) {
	b := c.mode.Base()
	return baseJob{b: b}, b != nil
}

// Progress resolves the WithProgress capability
func (c *Config) Progress() (WithProgress, bool) {
	if p, ok := c.mode.(WithProgress); ok {
		return p, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Pausable resolves the PausableJob capability
func (c *Config) Pausable() (PausableJob, bool) {
	if p, ok := c.mode.(PausableJob); ok {
		return p, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Priority resolves the PrioritizedJob capability
func (c *Config) Priority() (PrioritizedJob, bool) {
	if p, ok := c.mode.(PrioritizedJob); ok {
		return p, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Dependent resolves the DependentJob capability
func (c *Config) Dependent() (DependentJob, bool) {
	if d, ok := c.mode.(DependentJob); ok {
		return d, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Failure resolves the FailureHandlingJob capability
func (c *Config) Failure() (FailureHandlingJob, bool) {
	if f, ok := c.mode.(FailureHandlingJob); ok {
		return f, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Status resolves the JobStatusTracker capability
func (c *Config) Status() (JobStatusTracker, bool) {
	if s, ok := c.mode.(JobStatusTracker); ok {
		return s, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Statistics resolves the JobStatistics capability
func (c *Config) Statistics() (JobStatistics, bool) {
	if s, ok := c.mode.(JobStatistics); ok {
		return s, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}

// Persistent resolves the PersistentJob capability
func (c *Config) Persistent() (PersistentJob, bool) {
	if p, ok := c.mode.(PersistentJob); ok {
		return p, true
	}
	if j, ok := c.base(); ok {
		return j, true
	}
	return nil, false
}
