package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		Init(level)
		assert.NotNil(t, Log, "Init(%s) should set Log", level)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info", Format: "json"}, &buf)

	WithRun("run-1").Info("estimate finished", "trials", 100)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "estimate finished", entry["msg"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.EqualValues(t, 100, entry["trials"])
}

func TestInitWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "error", Format: "text"}, &buf)

	Info("hidden")
	Debug("hidden")
	Warn("hidden")
	assert.Empty(t, buf.String())

	Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "console"}, &buf)

	WithComponent("engine").Debug("worker started", "worker", 3)

	out := buf.String()
	assert.Contains(t, out, "worker started")
	assert.Contains(t, out, "component=engine")
	// буфер не терминал, ANSI-последовательностей быть не должно
	assert.NotContains(t, out, "\x1b[")
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	InitWithConfig(Config{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	Info("to file")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
