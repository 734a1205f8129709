package factory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/modes"
)

// Descriptor describes the mode a task should be created with
type Descriptor struct {
	Kind string
	// Size is the row count for window kinds; SizeSet distinguishes an
	// explicit zero from an omitted size.
	Size    int
	SizeSet bool
	Title   string

	PersistenceID string
	MaxRetries    int
	Priority      int
	Sink          modes.PassthroughSink
}

// Capturing describes a single-line capturing task
func Capturing() Descriptor {
	return Descriptor{Kind: modes.NameCapturing}
}

// Limited describes a single-line task forwarding its output to sink
func Limited(sink modes.PassthroughSink) Descriptor {
	return Descriptor{Kind: modes.NameLimited, Sink: sink}
}

// Window describes a window of size lines
func Window(size int) Descriptor {
	return Descriptor{Kind: modes.NameWindow, Size: size, SizeSet: true}
}

// WindowWithTitle describes a titled window of size rows, title included
func WindowWithTitle(size int, title string) Descriptor {
	return Descriptor{Kind: modes.NameWindowWithTitle, Size: size, SizeSet: true, Title: title}
}

var kindAliases = map[string]string{
	"capture":           modes.NameCapturing,
	"capturing":         modes.NameCapturing,
	"limited":           modes.NameLimited,
	"window":            modes.NameWindow,
	"window-with-title": modes.NameWindowWithTitle,
	"window_with_title": modes.NameWindowWithTitle,
	"titled":            modes.NameWindowWithTitle,
}

// ParseDescriptor reads the compact "kind[:size[:title]]" form, e.g.
// "window:5" or "window-with-title:4:Build"
func ParseDescriptor(s string) (Descriptor, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	kind, ok := kindAliases[strings.ToLower(parts[0])]
	if !ok {
		return Descriptor{}, errors.Validation("unknown mode %q", parts[0]).WithDetail("descriptor", s)
	}
	d := Descriptor{Kind: kind}
	if len(parts) > 1 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return Descriptor{}, errors.Wrapf(err, errors.ErrValidation, "invalid size %q for %s", parts[1], kind)
		}
		d.Size, d.SizeSet = n, true
	}
	if len(parts) > 2 {
		d.Title = parts[2]
	}
	return d, nil
}

// String renders the descriptor in the form ParseDescriptor accepts
func (d Descriptor) String() string {
	switch {
	case d.Title != "":
		return fmt.Sprintf("%s:%d:%s", d.Kind, d.Size, d.Title)
	case d.SizeSet:
		return fmt.Sprintf("%s:%d", d.Kind, d.Size)
	default:
		return d.Kind
	}
}
