package modes

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// PassthroughSink receives the raw text of every message a Limited mode
// handles
type PassthroughSink interface {
	Passthrough(text string) error
}

// DiscardSink drops everything
type DiscardSink struct{}

// Passthrough implements PassthroughSink
func (DiscardSink) Passthrough(string) error { return nil }

// WriterSink appends each message as a line to W. W must not be the
// stream the renderer paints on.
type WriterSink struct {
	W io.Writer
}

// Passthrough implements PassthroughSink
func (s WriterSink) Passthrough(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(s.W, text); err != nil {
		return errors.IO(err, "pass-through write failed")
	}
	return nil
}

// LogSink records each message as a log event
type LogSink struct {
	Logger zerolog.Logger
	Level  zerolog.Level
}

// Passthrough implements PassthroughSink
func (s LogSink) Passthrough(text string) error {
	s.Logger.WithLevel(s.Level).Msg(strings.TrimRight(text, "\n"))
	return nil
}
