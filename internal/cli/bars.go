package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

func newBarsCmd() *cobra.Command {
	var (
		style   string
		width   int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "bars name=progress...",
		Short: MsgBarsShort,
		Long:  MsgBarsLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !knownStyle(style) {
				return errors.Newf(errors.ErrValidation, MsgErrBadStyle, style).
					WithDetail("allowed", barStyles)
			}
			cfg := tmpl.DefaultBarConfig()
			cfg.Style = tmpl.BarStyle(style)
			cfg.Width = width

			bars, err := parseBars(args, cfg)
			if err != nil {
				return err
			}
			out, err := bars.Render(engineFor(cmd, noColor))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", string(tmpl.StyleStandard), MsgFlagStyle)
	cmd.Flags().IntVar(&width, "width", tmpl.DefaultBarConfig().Width, MsgFlagWidth)
	cmd.Flags().BoolVar(&noColor, "no-color", false, MsgFlagNoColor)
	return cmd
}

var barStyles = []tmpl.BarStyle{
	tmpl.StyleStandard, tmpl.StyleBlock, tmpl.StyleBraille, tmpl.StyleDots, tmpl.StyleGradient,
}

func knownStyle(s string) bool {
	for _, st := range barStyles {
		if string(st) == s {
			return true
		}
	}
	return false
}

// parseBars reads name=fraction and name=done/total arguments
func parseBars(args []string, cfg tmpl.BarConfig) (*tmpl.MultiBar, error) {
	bars := tmpl.NewMultiBar()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrValidation, MsgErrBadBar, arg)
		}
		c := cfg
		c.Prefix = name
		bar := tmpl.NewBar(c)

		if done, total, isFraction := strings.Cut(value, "/"); isFraction {
			d, derr := strconv.Atoi(done)
			n, nerr := strconv.Atoi(total)
			if derr != nil || nerr != nil {
				return nil, errors.Newf(errors.ErrValidation, MsgErrBadBar, arg)
			}
			bar.UpdateWithValues(d, n)
		} else {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, errors.Newf(errors.ErrValidation, MsgErrBadBar, arg)
			}
			bar.Update(f)
		}
		bars.Add(name, bar)
	}
	return bars, nil
}
