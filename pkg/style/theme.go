// Package style holds the visual vocabulary of the display: colour themes
// loaded from YAML, the glyph shown for each task status and the summary
// table printed once a display closes.
//
// Style names are semantic. The renderer asks for "running" or "failed",
// never for a colour, so a theme can change every colour without touching
// rendering code.
package style

import (
	_ "embed"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// DefaultTheme is used when no theme is configured
const DefaultTheme = "default"

//go:embed themes.yaml
var embeddedThemes []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Faint      bool   `yaml:"faint,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// ThemeDef is one named theme in the YAML file
type ThemeDef struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Theme maps semantic names to lipgloss styles bound to one renderer
type Theme struct {
	name     string
	renderer *lipgloss.Renderer
	styles   map[string]lipgloss.Style
}

// ParseThemes decodes a YAML document of named themes
func ParseThemes(data []byte) (map[string]ThemeDef, error) {
	var defs map[string]ThemeDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to parse themes")
	}
	return defs, nil
}

// Themes lists the built-in theme names
func Themes() []string {
	defs, err := ParseThemes(embeddedThemes)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTheme builds a built-in theme. A nil renderer uses lipgloss's
// default renderer.
func NewTheme(name string, r *lipgloss.Renderer) (*Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	defs, err := ParseThemes(embeddedThemes)
	if err != nil {
		return nil, err
	}
	def, ok := defs[name]
	if !ok {
		return nil, errors.Newf(errors.ErrConfigInvalid, "unknown theme %q", name).
			WithDetail("available", Themes())
	}
	return BuildTheme(name, def, r), nil
}

// BuildTheme turns a definition into styles. Foreground and background
// names that are not in the definition's colour table are ignored.
func BuildTheme(name string, def ThemeDef, r *lipgloss.Renderer) *Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	colors := make(map[string]lipgloss.AdaptiveColor, len(def.Colors))
	for n, c := range def.Colors {
		colors[n] = lipgloss.AdaptiveColor{Light: c.Light, Dark: c.Dark}
	}

	t := &Theme{name: name, renderer: r, styles: make(map[string]lipgloss.Style, len(def.Styles))}
	for n, sd := range def.Styles {
		t.styles[n] = buildStyle(r, sd, colors)
	}
	return t
}

func buildStyle(r *lipgloss.Renderer, def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := r.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if def.Faint {
		style = style.Faint(true)
	}
	if c, ok := colors[def.Foreground]; ok {
		style = style.Foreground(c)
	}
	if c, ok := colors[def.Background]; ok {
		style = style.Background(c)
	}
	return style
}

// Name is the theme's name
func (t *Theme) Name() string { return t.name }

// Style returns the named style, or an empty one
func (t *Theme) Style(name string) lipgloss.Style {
	if s, ok := t.styles[name]; ok {
		return s
	}
	return t.renderer.NewStyle()
}

// Has reports whether the theme defines name
func (t *Theme) Has(name string) bool {
	_, ok := t.styles[name]
	return ok
}

// Render applies the named style to s. Names the theme does not define
// leave s untouched.
func (t *Theme) Render(name, s string) string {
	style, ok := t.styles[name]
	if !ok || s == "" {
		return s
	}
	return style.Render(s)
}
