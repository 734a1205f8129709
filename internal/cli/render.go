package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/terminal"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

func newRenderCmd() *cobra.Command {
	var (
		tick    int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "render TEMPLATE [name=value...]",
		Short: MsgRenderShort,
		Long:  MsgRenderLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVariables(args[1:])
			if err != nil {
				return err
			}

			t, err := engineFor(cmd, noColor).Parse(args[0])
			if err != nil {
				return err
			}

			out, err := t.RenderE(vars.Tick(tick))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&tick, "tick", 0, MsgFlagTick)
	cmd.Flags().BoolVar(&noColor, "no-color", false, MsgFlagNoColor)
	return cmd
}

// engineFor matches the engine to the output terminal, if it is one
func engineFor(cmd *cobra.Command, noColor bool) *tmpl.Engine {
	opts := []tmpl.Option{}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && !noColor {
		caps := terminal.NewTTY(f).Caps()
		opts = append(opts, tmpl.WithColorProfile(caps.Profile), tmpl.WithUnicode(caps.SupportsUnicode))
	}
	return tmpl.NewEngine(opts...)
}

// parseVariables reads name=value pairs into a template context
func parseVariables(pairs []string) (*tmpl.Context, error) {
	ctx := tmpl.NewContext()
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrValidation, MsgErrBadVariable, pair)
		}
		switch {
		case value == "true" || value == "false":
			ctx.Bool(name, value == "true")
		default:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				ctx.Num(name, f)
			} else {
				ctx.Text(name, value)
			}
		}
	}
	return ctx, nil
}
