package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			_, err := os.Stat(filepath.Join(tempDir, "tasklines", "tasklines.log"))
			assert.NoError(t, err)
		})
	}
}

func TestSetupLoggerWithConsole(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	var console bytes.Buffer

	SetupLoggerWithConsole(1, &console)
	logger := GetLogger("renderer")
	logger.Info().Msg("painted frame")

	assert.Contains(t, console.String(), "painted frame")
	data, err := os.ReadFile(LogFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"renderer"`)
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, filepath.Join("/custom/state", "tasklines", "tasklines.log"), getLogFilePath())

	t.Setenv("XDG_STATE_HOME", "")
	got := getLogFilePath()
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, filepath.ToSlash(got), ".local/state/tasklines/tasklines.log")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := WithFields(log.Logger, map[string]interface{}{"task": 3, "mode": "window"})
	logger.Info().Msg("spawned")

	assert.Contains(t, buf.String(), `"task":3`)
	assert.Contains(t, buf.String(), `"mode":"window"`)
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "drain")
	time.Sleep(time.Millisecond)
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"drain"`)
}
