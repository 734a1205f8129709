package tmpl_test

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/tmpl"
)

func render(t *testing.T, src string, ctx *tmpl.Context) string {
	t.Helper()
	tpl, err := tmpl.Parse(src)
	require.NoError(t, err)
	return tpl.Render(ctx)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		ctx  *tmpl.Context
		want string
	}{
		{"half", tmpl.NewContext().Num("x", 0.5), "50%"},
		{"clamped_high", tmpl.NewContext().Num("x", 1.3), "100%"},
		{"clamped_low", tmpl.NewContext().Num("x", -0.2), "0%"},
		{"rounded", tmpl.NewContext().Num("x", 0.336), "34%"},
		{"missing", tmpl.NewContext(), ""},
		{"nil_context", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, "{x:percent}", tt.ctx))
		})
	}
}

func TestInterpolation(t *testing.T) {
	ctx := tmpl.NewContext().Text("name", "fetch").Int("n", 3).Num("f", 0.25).Bool("ok", true)
	assert.Equal(t, "fetch: 3 0.25 true", render(t, "{name}: {n} {f} {ok}", ctx))
	assert.Equal(t, "[] done", render(t, "[{missing}] done", ctx))
}

func TestBraces(t *testing.T) {
	ctx := tmpl.NewContext().Text("a", "A")
	tests := []struct {
		src  string
		want string
	}{
		{"{{literal}}", "{literal}"},
		{"{{{a}}}", "{A}"},
		{"open { brace", "open { brace"},
		{"tail {a", "tail {a"},
		{"x {y {a}", "x {y A"},
		{"a}b", "a}b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, ctx))
		})
	}
}

func TestSections(t *testing.T) {
	tpl, err := tmpl.Parse("{?err}failed: {err}{/}{!err}ok{/}")
	require.NoError(t, err)

	assert.Equal(t, "ok", tpl.Render(tmpl.NewContext()))
	assert.Equal(t, "ok", tpl.Render(tmpl.NewContext().Text("err", "")))
	assert.Equal(t, "failed: timeout", tpl.Render(tmpl.NewContext().Text("err", "timeout")))

	numeric := tmpl.MustParse("{?n}n={n}{/}")
	assert.Equal(t, "", numeric.Render(tmpl.NewContext().Int("n", 0)))
	assert.Equal(t, "n=2", numeric.Render(tmpl.NewContext().Int("n", 2)))

	flag := tmpl.MustParse("{!busy}idle{/}")
	assert.Equal(t, "", flag.Render(tmpl.NewContext().Bool("busy", true)))
	assert.Equal(t, "idle", flag.Render(tmpl.NewContext().Bool("busy", false)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"nested_section", "{?a}{?b}x{/}{/}"},
		{"nested_negated", "{?a}{!b}x{/}{/}"},
		{"stray_close", "text{/}"},
		{"unterminated", "{?a}never closed"},
		{"unknown_format", "{x:sparkle}"},
		{"pad_without_width", "{x:lpad}"},
		{"pad_bad_width", "{x:pad:wide}"},
		{"unknown_color", "{x:color:mauve}"},
		{"percent_params", "{x:percent:3}"},
		{"custom_without_ramp", "{x:custom}"},
		{"custom_unknown_ramp", "{x:custom:sparkles}"},
		{"bar_long_glyph", "{x:bar:abc}"},
		{"empty_directive", "{}"},
		{"bad_name", "{a b}"},
		{"width_twice", "{x:bar:10:20}"},
		{"bar_too_wide", "{x:bar:4611686018427387904}"},
		{"block_too_wide", "{x:block:1025}"},
		{"numeric_too_wide", "{x:numeric:99999}"},
		{"pad_too_wide", "{x:lpad:1000000}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := tmpl.Parse(tt.src)
			assert.Nil(t, tpl)
			require.Error(t, err)
			assert.Equal(t, errors.CategoryRender, errors.GetCategory(err))
		})
	}
}

func TestRatio(t *testing.T) {
	ctx := tmpl.NewContext().Int("done", 7).Int("all", 9)
	assert.Equal(t, "7/100", render(t, "{done:ratio}", ctx))
	assert.Equal(t, "7/20", render(t, "{done:ratio:20}", ctx))
	assert.Equal(t, "7/9", render(t, "{done:ratio:all}", ctx))
	assert.Equal(t, "7/100", render(t, "{done:ratio:nothing}", ctx))
}

func TestPadding(t *testing.T) {
	ctx := tmpl.NewContext().Text("s", "ab").Text("long", "abcdef").Text("wide", "日本")
	assert.Equal(t, "   ab", render(t, "{s:lpad:5}", ctx))
	assert.Equal(t, "ab   ", render(t, "{s:rpad:5}", ctx))
	assert.Equal(t, " ab  ", render(t, "{s:pad:5}", ctx))
	assert.Equal(t, "abcdef", render(t, "{long:lpad:3}", ctx))
	assert.Equal(t, " 日本", render(t, "{wide:lpad:5}", ctx))
}

func TestColor(t *testing.T) {
	plain := tmpl.NewEngine()
	colored := tmpl.NewEngine(tmpl.WithColorProfile(termenv.ANSI))
	ctx := tmpl.NewContext().Text("s", "hot")

	assert.Equal(t, "hot", plain.MustParse("{s:color:red}").Render(ctx))

	out := colored.MustParse("{s:color:red}").Render(ctx)
	assert.Contains(t, out, "\x1b[31m")
	assert.Contains(t, out, "hot")

	assert.Equal(t, "hot", colored.MustParse("{s:color:reset}").Render(ctx))
}

func TestBars(t *testing.T) {
	half := tmpl.NewContext().Num("p", 0.5)
	tests := []struct {
		src  string
		ctx  *tmpl.Context
		want string
	}{
		{"{p:bar}", half, "[=====     ]"},
		{"{p:bar:4}", half, "[==  ]"},
		{"{p:bar:4:#:.}", half, "[##..]"},
		{"{p:bar:4:#.}", half, "[##..]"},
		{"{p:bar:4:false}", half, "==  "},
		{"{p:bar:block:4}", half, "██░░"},
		{"{p:block:4}", half, "██░░"},
		{"{p:numeric}", half, "50%"},
		{"{p:numeric:false}", half, "50"},
		{"{p:numeric:5}", half, "  50%"},
		{"{p:interactive:6}", half, "[===>  ]"},
		{"{p:interactive:4}", tmpl.NewContext().Num("p", 0), "[>   ]"},
		{"{p:interactive:4}", tmpl.NewContext().Num("p", 1), "[====]"},
		{"{p:custom:gradient:4}", half, "██  "},
		{"{p:bar:custom:gradient:2}", tmpl.NewContext().Num("p", 0.25), "▒ "},
		{"{p:custom:dots:3}", tmpl.NewContext().Num("p", 1), "●●●"},
		{"{p:bar:4}", tmpl.NewContext().Num("p", 7), "[====]"},
		{"{p:bar:4}", tmpl.NewContext(), ""},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", i, tt.src), func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, tt.ctx))
		})
	}
}

func TestSpinnerAdvancesWithTick(t *testing.T) {
	tpl := tmpl.MustParse("{s:spinner}")
	frames := tmpl.SpinnerFrames("braille")
	for tick := 0; tick < 25; tick++ {
		got := tpl.Render(tmpl.NewContext().Tick(tick))
		assert.Equal(t, frames[tick%len(frames)], got)
	}

	line := tmpl.MustParse("{s:spinner:line}")
	assert.Equal(t, "|", line.Render(tmpl.NewContext().Tick(2)))

	custom := tmpl.MustParse("{s:spinner:ab}")
	assert.Equal(t, "b", custom.Render(tmpl.NewContext().Tick(3)))

	assert.Equal(t, "b", custom.Render(tmpl.NewContext().Tick(-1)))
	assert.NotPanics(t, func() {
		got := tpl.Render(tmpl.NewContext().Tick(math.MinInt))
		assert.Contains(t, frames, got)
	})
}

func TestASCIIEngine(t *testing.T) {
	e := tmpl.NewEngine(tmpl.WithUnicode(false))
	ctx := tmpl.NewContext().Num("p", 0.5)
	assert.Equal(t, "##--", e.MustParse("{p:block:4}").Render(ctx))
	assert.Equal(t, "-", e.MustParse("{p:spinner}").Render(ctx))
}

func TestTypeMismatchRendersEmpty(t *testing.T) {
	tpl := tmpl.MustParse("a{x:percent}b{y}")
	out, err := tpl.RenderE(tmpl.NewContext().Text("x", "lots").Text("y", "!"))
	assert.Equal(t, "ab!", out)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplate))

	numericText, err := tpl.RenderE(tmpl.NewContext().Text("x", "0.5"))
	assert.NoError(t, err)
	assert.Equal(t, "a50%b", numericText)
}

func TestRenderDoesNotMutateTemplate(t *testing.T) {
	tpl := tmpl.MustParse(tmpl.SimpleProgress)
	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tpl.Render(tmpl.FromProgress(i%11, 10))
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, tpl.Render(tmpl.FromProgress(i%11, 10)), got)
	}
	assert.Equal(t, tmpl.SimpleProgress, tpl.Source())
}

func TestPresets(t *testing.T) {
	ctx := tmpl.FromProgress(5, 10)
	assert.Equal(t, "[=====     ] 50% (5/10)", render(t, tmpl.SimpleProgress, ctx))
	assert.Equal(t, "Completed 5/10 jobs (50%)", render(t, tmpl.JobProgress, ctx))

	ctx.Text("message", "indexing")
	assert.Equal(t, "Running task: indexing", render(t, tmpl.TaskStatus, ctx))

	ctx.Text("filename", "f.bin").Bytes("bytes_done", 10_000_000).Bytes("bytes_total", 20_000_000)
	assert.Equal(t, "Downloading f.bin [=====     ] 10 MB / 20 MB (50%)", render(t, tmpl.DownloadProgress, ctx))
}

func TestBarConfig(t *testing.T) {
	assert.Equal(t, "{progress:percent} {progress:bar:bar:20} {completed}/{total}", tmpl.DefaultBarConfig().Build())

	c := tmpl.DefaultBarConfig()
	c.ShowFraction = false
	c.Style = tmpl.StyleBlock
	c.Prefix = "Loading {x}"
	assert.Equal(t, "Loading {{x}} {progress:percent} {progress:bar:block:20}", c.Build())

	c = tmpl.BarConfig{Style: tmpl.StyleStandard, Width: 4, Fill: '#', Empty: '.'}
	tpl, err := c.Parse(tmpl.NewEngine())
	require.NoError(t, err)
	assert.Equal(t, "[##..]", tpl.Render(tmpl.FromProgress(1, 2)))

	c = tmpl.BarConfig{Width: 1 << 40}
	assert.Equal(t, "{progress:bar:bar:1024}", c.Build())

	c = tmpl.BarConfig{Template: "{task}: {progress:percent}"}
	assert.Equal(t, "{task}: {progress:percent}", c.Build())
}

func TestRenderNeverPanics(t *testing.T) {
	inputs := []string{
		"{", "}", "{{", "}}}", "{:}", "{x:}", "{x::}", "{?}", "{!}", "{/", "{x:bar:::}", strings.Repeat("{", 50),
		"{x:bar:1024}", "{x:pad:1024}", "{x:bar:-1}", "{x:spinner}",
	}
	for _, src := range inputs {
		assert.NotPanics(t, func() {
			if tpl, err := tmpl.Parse(src); err == nil {
				tpl.Render(tmpl.NewContext().Num("x", 0.4))
			}
		}, src)
	}
}
