package modes

import "github.com/arthur-debert/tasklines/pkg/core"

// Limited displays the last message and forwards every raw message to a
// pass-through sink, so the full history lands somewhere other than the
// live display.
type Limited struct {
	base    *core.BaseConfig
	line    string
	sink    PassthroughSink
	sinkErr error
}

// NewLimited creates a limited mode; a nil sink discards pass-through text
func NewLimited(totalJobs int, sink PassthroughSink) *Limited {
	if sink == nil {
		sink = DiscardSink{}
	}
	return &Limited{base: core.NewBaseConfig(totalJobs), sink: sink}
}

func (l *Limited) Name() string           { return NameLimited }
func (l *Limited) LinesNeeded() int       { return 1 }
func (l *Limited) Base() *core.BaseConfig { return l.base }

func (l *Limited) HandleMessage(text string) []string {
	if err := l.sink.Passthrough(text); err != nil {
		l.sinkErr = err
	}
	l.line = lastLine(text)
	return l.Lines()
}

func (l *Limited) Lines() []string {
	return []string{l.line}
}

// SinkErr returns the most recent pass-through failure, if any
func (l *Limited) SinkErr() error {
	return l.sinkErr
}

func (l *Limited) Duplicate() Mode {
	return &Limited{base: l.base.Clone(), line: l.line, sink: l.sink, sinkErr: l.sinkErr}
}
