package tmpl

import (
	"fmt"
	"strings"
)

// Preset templates for common progress lines
const (
	// SimpleProgress renders "[=====     ] 50% (5/10)"
	SimpleProgress = "{progress:bar:10} {progress:percent} ({completed}/{total})"
	// TaskStatus renders "Running task: <message>"
	TaskStatus = "Running task: {message}"
	// JobProgress renders "Completed 5/10 jobs (50%)"
	JobProgress = "Completed {completed}/{total} jobs ({progress:percent})"
	// DownloadProgress renders "Downloading f.txt [==   ] 10 MB / 20 MB (50%)"
	DownloadProgress = "Downloading {filename} {progress:bar:10} {bytes_done} / {bytes_total} ({progress:percent})"
)

// BarStyle selects the glyphs a BarConfig builds
type BarStyle string

const (
	StyleStandard BarStyle = "bar"
	StyleBlock    BarStyle = "block"
	StyleBraille  BarStyle = "custom:braille"
	StyleDots     BarStyle = "custom:dots"
	StyleGradient BarStyle = "custom:gradient"
)

// BarConfig builds a progress line template
type BarConfig struct {
	Style          BarStyle
	Width          int
	ShowPercentage bool
	ShowFraction   bool
	Prefix         string
	Fill, Empty    rune
	Colors         []string
	// Template, when set, is used verbatim
	Template string
}

// DefaultBarConfig is a 20 cell standard bar with percentage and fraction
func DefaultBarConfig() BarConfig {
	return BarConfig{Style: StyleStandard, Width: 20, ShowPercentage: true, ShowFraction: true}
}

// Build returns the template text, e.g.
// "{progress:percent} {progress:bar:bar:20} {completed}/{total}"
func (c BarConfig) Build() string {
	if c.Template != "" {
		return c.Template
	}
	var parts []string
	if c.Prefix != "" {
		parts = append(parts, escape(c.Prefix))
	}
	if c.ShowPercentage {
		parts = append(parts, "{progress:percent}")
	}

	style := c.Style
	if style == "" {
		style = StyleStandard
	}
	params := []string{string(style)}
	if c.Fill != 0 && c.Empty != 0 && !strings.HasPrefix(string(style), "custom") {
		params = append(params, string(c.Fill), string(c.Empty))
	}
	width := c.Width
	if width <= 0 {
		width = DefaultBarWidth
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	params = append(params, fmt.Sprint(width))
	params = append(params, c.Colors...)
	parts = append(parts, "{progress:bar:"+strings.Join(params, ":")+"}")

	if c.ShowFraction {
		parts = append(parts, "{completed}/{total}")
	}
	return strings.Join(parts, " ")
}

// Parse builds and parses the template with e
func (c BarConfig) Parse(e *Engine) (*Template, error) {
	return e.Parse(c.Build())
}

func escape(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}
