package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tasklines/internal/cli"
	"github.com/arthur-debert/tasklines/internal/version"
	"github.com/arthur-debert/tasklines/pkg/config"
	"github.com/arthur-debert/tasklines/pkg/errors"
)

// run executes the root command with an empty config file so the
// developer's own settings never leak in
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0644))

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNoCommandIsAnError(t *testing.T) {
	_, err := run(t)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tasklines version "+version.Version)
	assert.Contains(t, out, "commit: "+version.Commit)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"number", []string{"{progress:percent}", "progress=0.25"}, "25%\n"},
		{"text", []string{"Hello {name}", "name=world"}, "Hello world\n"},
		{"conditional", []string{"{?done}finished{/}{!done}working{/}", "done=false"}, "working\n"},
		{"bar", []string{"{progress:bar:4}", "progress=0.5"}, "[==  ]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"render"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	_, err := run(t, "render", "{name}", "novalue")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	_, err = run(t, "render", "{?open}never closed")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplate))
}

func TestConfig(t *testing.T) {
	out, err := run(t, "config", "--set", "display.theme=mono")
	require.NoError(t, err)
	assert.Contains(t, out, "[display]")
	assert.Contains(t, out, "mono")

	out, err = run(t, "config", "--defaults")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultContent(), out)

	_, err = run(t, "config", "--set", "display.theme")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = run(t, "config", "--set", "factory.policy=sloppy")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

var demoArgs = []string{
	"demo", "--tasks", "2", "--jobs", "3", "--delay", "0s", "--mode", "window:2",
	"--set", "display.grace_period=0s",
	"--set", "display.tick_interval=10ms",
	"--set", "display.unicode=never",
}

func TestBars(t *testing.T) {
	out, err := run(t, "bars", "fetch=1/2", "build=0.25", "--width", "4")
	require.NoError(t, err)
	assert.Equal(t, "fetch 50% [==  ] 1/2\nbuild 25% [=   ] 0/1\n", out)

	out, err = run(t, "bars", "x=1", "--style", "block", "--width", "2")
	require.NoError(t, err)
	assert.Equal(t, "x 100% ██ 1/1\n", out)
}

func TestBarsErrors(t *testing.T) {
	for _, arg := range []string{"fetch", "=0.5", "x=a/b", "x=half"} {
		_, err := run(t, "bars", arg)
		assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), arg)
	}
	_, err := run(t, "bars", "x=0.5", "--style", "zigzag")
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestDemo(t *testing.T) {
	out, err := run(t, append(demoArgs, "--children", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "task 1: step 3 of 3")
	assert.Contains(t, out, "task 1.1: step 3 of 3")
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "completed")
	assert.NotContains(t, out, "\x1b[?25l")
}

func TestDemoWithFailure(t *testing.T) {
	out, err := run(t, append(demoArgs, "--fail", "2")...)
	require.Error(t, err)
	assert.Contains(t, out, "job 2 failed")
	assert.Contains(t, out, "failed")
}

func TestDemoRetriesFailingJobs(t *testing.T) {
	out, err := run(t, append(demoArgs, "--fail", "2", "--retries", "2")...)
	require.Error(t, err)
	assert.Contains(t, out, "task 2: job 2 failed")

	var row []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "|") && strings.HasSuffix(strings.TrimSpace(line), "job 2 failed") {
			for _, cell := range strings.Split(line, "|") {
				row = append(row, strings.TrimSpace(cell))
			}
		}
	}
	require.Len(t, row, 8)
	assert.Equal(t, "failed", row[2])
	assert.Equal(t, "2", row[6])
}

func TestHelpTopics(t *testing.T) {
	out, err := run(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "templates")
	assert.Contains(t, out, "modes")
	assert.Contains(t, out, "--set")

	out, err = run(t, "help", "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "Modes")
	assert.Contains(t, out, "capturing")

	out, err = run(t, "help", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "Overrides one configuration key")
}
