package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useStateHome(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

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
			useStateHome(t, tempDir)

			var console bytes.Buffer
			setupLogger(tt.verbosity, &console)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "repatch", "repatch.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestSetupLoggerWritesToFile(t *testing.T) {
	tempDir := t.TempDir()
	useStateHome(t, tempDir)

	var console bytes.Buffer
	setupLogger(1, &console)
	log.Info().Str("target", "nodes/a.ts").Msg("Patched target")

	data, err := os.ReadFile(filepath.Join(tempDir, "repatch", "repatch.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Patched target")
	assert.Contains(t, console.String(), "Patched target")
}

func TestGetLogFilePath(t *testing.T) {
	useStateHome(t, "/custom/state")

	got := getLogFilePath()
	assert.Equal(t, filepath.Join("/custom/state", "repatch", "repatch.log"), got)
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := GetLogger("patcher")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"patcher"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := WithFields(map[string]interface{}{
		"rule":    "models",
		"matches": 1,
	})
	logger.Info().Msg("rule applied")

	assert.Contains(t, buf.String(), `"rule":"models"`)
	assert.Contains(t, buf.String(), `"matches":1`)
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	LogCommand("repatch", []string{"--dry-run", "-v"})

	output := buf.String()
	assert.Contains(t, output, "repatch")
	assert.Contains(t, output, "--dry-run")
	assert.Contains(t, output, "Executing command")
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	LogDuration(time.Now().Add(-5*time.Second), "run")

	output := buf.String()
	assert.Contains(t, output, `"operation":"run"`)
	assert.Contains(t, output, "duration")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	done := LogOperationStart(logger, "load")
	assert.Contains(t, buf.String(), "Operation started")

	done()
	assert.Contains(t, buf.String(), "Operation completed")
}
