package topics_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tasklines/pkg/cobrax/topics"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates.md":     {Data: []byte("# Templates\n\nUse {name}.")},
		"modes.txt":        {Data: []byte("capturing, window")},
		"option-grace.txt": {Data: []byte("grace period")},
		"notes.json":       {Data: []byte("{}")},
		"nested/deep.md":   {Data: []byte("deep")},
	}
}

func TestLoad(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"deep", "modes", "option-grace", "templates"}, m.Names())

	tp, ok := m.Get("modes")
	require.True(t, ok)
	assert.Equal(t, "capturing, window", tp.Content)

	_, ok = m.Get("notes")
	assert.False(t, ok)
}

func TestCustomExtensions(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{Extensions: []string{".json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, m.Names())
}

func TestFlagStyleLookup(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{})
	require.NoError(t, err)

	tp, ok := m.Get("--grace")
	require.True(t, ok)
	assert.Equal(t, "grace period", tp.Content)
}

type upper struct{}

func (upper) Render(content, format string) string {
	if format == ".md" {
		return strings.ToUpper(content)
	}
	return content
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	m, err := topics.Load(testFS(), topics.Options{Renderer: upper{}})
	require.NoError(t, err)

	root := &cobra.Command{Use: "prog", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(&cobra.Command{Use: "demo", Short: "Run the demo", Run: func(*cobra.Command, []string) {}})
	m.Install(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestHelpTopic(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "templates"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "# TEMPLATES\n\nUSE {NAME}.", out.String())
}

func TestHelpTopicsList(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "General topics:\n  deep\n  modes\n  templates\n")
	assert.Contains(t, out.String(), "Option topics:\n  --grace\n")
	assert.Contains(t, out.String(), "Use 'prog help <topic>'")
}

func TestHelpFallsBackToCommands(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "demo"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Run the demo")
}

func TestPlainRenderer(t *testing.T) {
	r := &topics.PlainRenderer{}
	assert.Equal(t, "# x", r.Render("# x", ".md"))
}

func TestGlamourRendererSkipsNonMarkdown(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain", r.Render("plain", ".txt"))
}

func TestGlamourRendererRendersMarkdown(t *testing.T) {
	r := &topics.GlamourRenderer{Style: "notty", Width: 40}
	out := r.Render("# Modes\n\nSome **bold** text.", ".md")
	assert.Contains(t, out, "Modes")
	assert.Contains(t, out, "bold")
	assert.NotEqual(t, "# Modes\n\nSome **bold** text.", out)
}
