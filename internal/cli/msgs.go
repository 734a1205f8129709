package cli

// Command descriptions
const (
	MsgRootShort = "Live multi-task progress in the terminal"
	MsgRootLong  = `tasklines coordinates and renders live progress output from many
concurrently running tasks. Each task reports through its own channel; a
single coordinator aggregates the reports and the renderer repaints only
the lines that changed.

This binary exercises the library: run a simulated workload, render
progress templates, or inspect the effective configuration.`

	MsgDemoShort = "Run simulated tasks on a live display"
	MsgDemoLong  = `Spawns a number of simulated tasks that log lines and advance their
progress until done. Selected tasks fail half way through. A summary table
is printed once every task has left the screen.`

	MsgRenderShort = "Render a progress template once"
	MsgRenderLong  = `Renders TEMPLATE against the given name=value variables and prints
the result. Values that parse as numbers are numbers, true and false are
booleans, everything else is text.

  tasklines render "{progress:bar:20} {progress:percent}" progress=0.4`

	MsgBarsShort = "Render a stack of progress bars once"
	MsgBarsLong  = `Renders one bar per name=progress argument, in argument order. Progress
is either a fraction between 0 and 1 or done/total.

  tasklines bars fetch=3/10 build=0.75 --style block --width 30`

	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default is $XDG_CONFIG_HOME/tasklines/config.toml)"
	MsgFlagSet      = "Override a config key, e.g. --set display.theme=mono (repeatable)"
	MsgFlagTasks    = "Number of tasks to run"
	MsgFlagJobs     = "Jobs per task"
	MsgFlagMode     = "Mode descriptor, e.g. window:4 (default from factory.default_mode)"
	MsgFlagDelay    = "Pause between jobs"
	MsgFlagFail     = "1-based indexes of tasks that fail half way (repeatable)"
	MsgFlagChildren = "Child tasks spawned under each task"
	MsgFlagRetries  = "Retries for a failing job, with exponential backoff"
	MsgFlagDefaults = "Print the built-in defaults file instead"
	MsgFlagTick     = "Animation frame for spinner styles"
	MsgFlagNoColor  = "Disable color in the output"
	MsgFlagStyle    = "Bar style: bar, block, custom:braille, custom:dots or custom:gradient"
	MsgFlagWidth    = "Bar width in cells"
)

// Output and errors
const (
	MsgVersionFormat   = "tasklines version %s\n  commit: %s\n  built:  %s\n"
	MsgErrNoCommand    = "no command specified"
	MsgErrBadVariable  = "variable %q must be name=value"
	MsgErrBadBar       = "bar %q must be name=fraction or name=done/total"
	MsgErrBadStyle     = "unknown bar style %q"
	MsgErrBadOverride  = "override %q must be key=value"
	MsgErrUnknownShell = "unknown shell %q"
	MsgErrTasksFailed  = "one or more tasks failed"
	MsgFailedJob       = "job %d failed"
	MsgFailedLine      = "%s: job %d failed"
	MsgTaskName        = "task %d"
	MsgChildName       = "task %d.%d"
	MsgJobLine         = "%s: step %d of %d"
)
