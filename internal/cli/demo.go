package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/tasklines/pkg/config"
	"github.com/arthur-debert/tasklines/pkg/display"
	"github.com/arthur-debert/tasklines/pkg/factory"
	"github.com/arthur-debert/tasklines/pkg/style"
	"github.com/arthur-debert/tasklines/pkg/task"
	"github.com/arthur-debert/tasklines/pkg/terminal"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

type demoOptions struct {
	tasks    int
	jobs     int
	children int
	mode     string
	delay    time.Duration
	fail     []int
	retries  int
}

func newDemoCmd(g *globalFlags) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:         "demo",
		Short:       MsgDemoShort,
		Long:        MsgDemoLong,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationPaints: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return runDemo(cmd, cfg, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.tasks, "tasks", "n", 4, MsgFlagTasks)
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 20, MsgFlagJobs)
	cmd.Flags().IntVar(&opts.children, "children", 0, MsgFlagChildren)
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", MsgFlagMode)
	cmd.Flags().DurationVarP(&opts.delay, "delay", "d", 80*time.Millisecond, MsgFlagDelay)
	cmd.Flags().IntSliceVar(&opts.fail, "fail", nil, MsgFlagFail)
	cmd.Flags().IntVar(&opts.retries, "retries", 0, MsgFlagRetries)
	return cmd
}

// consoleFor paints on the real terminal when out is one, and appends
// plain lines otherwise
func consoleFor(out io.Writer, cfg *config.Config) terminal.Console {
	if f, ok := out.(*os.File); ok {
		return terminal.NewTTY(f,
			terminal.WithColor(terminal.ParseMode(cfg.Display.Color)),
			terminal.WithUnicode(terminal.ParseMode(cfg.Display.Unicode)),
		)
	}
	return terminal.NewPlain(out, terminal.ParseMode(cfg.Display.Unicode) == terminal.Always)
}

func runDemo(cmd *cobra.Command, cfg *config.Config, opts *demoOptions) error {
	desc := cfg.DefaultDescriptor()
	if opts.mode != "" {
		d, err := factory.ParseDescriptor(opts.mode)
		if err != nil {
			return err
		}
		desc = d
	}

	console := consoleFor(cmd.OutOrStdout(), cfg)
	defer console.Close()

	d, err := display.New(display.WithConfig(cfg), display.WithConsole(console))
	if err != nil {
		return err
	}
	defer d.Close()

	failing := make(map[int]bool, len(opts.fail))
	for _, i := range opts.fail {
		failing[i] = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	group, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= opts.tasks; i++ {
		name := fmt.Sprintf(MsgTaskName, i)
		desc.Title = name
		h, err := d.Spawn(ctx, desc, opts.jobs)
		if err != nil {
			return err
		}
		w := worker{name: name, jobs: opts.jobs, delay: opts.delay, fail: failing[i], retries: opts.retries}
		group.Go(func() error { return w.run(gctx, h) })

		for c := 1; c <= opts.children; c++ {
			child, err := d.SpawnChild(ctx, h.ID(), factory.Capturing(), opts.jobs)
			if err != nil {
				return err
			}
			cw := worker{name: fmt.Sprintf(MsgChildName, i, c), jobs: opts.jobs, delay: opts.delay}
			group.Go(func() error { return cw.run(gctx, child) })
		}
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if err := d.Wait(ctx); err != nil {
		return err
	}

	summary, err := d.Summary(ctx)
	if err != nil {
		return err
	}
	status, err := d.Status(ctx)
	if err != nil {
		return err
	}
	if err := d.Close(); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), summary)
	log.Info().Str("status", string(status)).Int("tasks", opts.tasks).Msg("Demo finished")
	if status == style.StatusFailed {
		return fmt.Errorf(MsgErrTasksFailed)
	}
	return nil
}

// worker simulates one task's workload
type worker struct {
	name  string
	jobs  int
	delay time.Duration
	fail  bool
	// retries is how often a failing job is attempted again
	retries int
}

func (w worker) run(ctx context.Context, h *task.Handle) error {
	defer h.Close()

	if err := h.SetProgressFormat(ctx, tmpl.DefaultBarConfig().Build()); err != nil {
		return err
	}
	for j := 1; j <= w.jobs; j++ {
		if w.fail && j > w.jobs/2 {
			if err := w.failJob(ctx, h, j); err != nil && !task.Retryable(err) {
				return err
			}
			return h.Done(ctx)
		}
		if err := h.Log(ctx, fmt.Sprintf(MsgJobLine, w.name, j, w.jobs)); err != nil {
			return err
		}
		if err := h.Increment(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, w.delay); err != nil {
			return err
		}
	}
	return h.Done(ctx)
}

// failJob runs a job that never succeeds, retrying it with backoff
func (w worker) failJob(ctx context.Context, h *task.Handle, j int) error {
	policy := task.DefaultRetryPolicy()
	policy.MaxRetries = w.retries
	policy.BaseDelay = w.delay
	return h.RunWithRetry(ctx, policy, func(ctx context.Context) error {
		if err := h.Log(ctx, fmt.Sprintf(MsgFailedLine, w.name, j)); err != nil {
			return task.Permanent(err)
		}
		return fmt.Errorf(MsgFailedJob, j)
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
