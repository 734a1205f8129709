package modes

import "github.com/arthur-debert/tasklines/pkg/core"

// Capturing holds exactly one line: the most recent message, verbatim
type Capturing struct {
	base *core.BaseConfig
	line string
}

// NewCapturing creates a capturing mode for totalJobs units of work
func NewCapturing(totalJobs int) *Capturing {
	return &Capturing{base: core.NewBaseConfig(totalJobs)}
}

func (c *Capturing) Name() string           { return NameCapturing }
func (c *Capturing) LinesNeeded() int       { return 1 }
func (c *Capturing) Base() *core.BaseConfig { return c.base }

func (c *Capturing) HandleMessage(text string) []string {
	c.line = text
	return c.Lines()
}

func (c *Capturing) Lines() []string {
	return []string{c.line}
}

func (c *Capturing) Duplicate() Mode {
	return &Capturing{base: c.base.Clone(), line: c.line}
}
