package cli

import (
	"embed"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tasklines/pkg/cobrax/topics"
)

//go:embed topics
var topicFiles embed.FS

// installTopics adds the embedded help topics to rootCmd. Markdown is
// styled only when out is a terminal.
func installTopics(rootCmd *cobra.Command, out io.Writer) error {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return err
	}
	renderer := &topics.GlamourRenderer{Style: "notty"}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		renderer.Style = "auto"
	}
	m, err := topics.Load(sub, topics.Options{Renderer: renderer})
	if err != nil {
		return err
	}
	m.Install(rootCmd)
	return nil
}
