package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/tasklines/internal/cli"
	"github.com/arthur-debert/tasklines/internal/version"
)

func main() {
	header := &doc.GenManHeader{
		Title:   "TASKLINES",
		Section: "1",
		Source:  "tasklines " + version.Version,
		Manual:  "tasklines manual",
	}
	if err := doc.GenMan(cli.NewRootCmd(), header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
