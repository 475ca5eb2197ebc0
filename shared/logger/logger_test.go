package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptured(t *testing.T, level, format string) (*Logger, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	l, err := New(&Config{
		Level:      level,
		Format:     format,
		TimeFormat: time.RFC3339,
		writer:     output,
	})
	require.NoError(t, err)

	return l, output
}

func TestNew_JSONFormat(t *testing.T) {
	l, output := newCaptured(t, "info", "json")

	l.Info("payment settled", slog.String("tx_ref", "tx-123"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "payment settled", entry["msg"])
	assert.Equal(t, "tx-123", entry["tx_ref"])
}

func TestNew_LevelFilter(t *testing.T) {
	l, output := newCaptured(t, "warn", "json")

	l.Info("suppressed")
	l.Warn("kept")

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "kept", entry["msg"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	l, output := newCaptured(t, "info", "console")

	l.Info("console record")

	// tint prints the level as "INF"
	assert.Contains(t, output.String(), "INF")
	assert.Contains(t, output.String(), "console record")
}

func TestNew_SourceLocation(t *testing.T) {
	output := &bytes.Buffer{}
	l, err := New(&Config{
		Level:        "info",
		Format:       "json",
		EnableSource: true,
		writer:       output,
	})
	require.NoError(t, err)

	l.Info("with source")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	assert.Contains(t, entry, "source")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLevel(tt.level), "level %q", tt.level)
	}
}

func TestWith(t *testing.T) {
	l, output := newCaptured(t, "info", "json")

	l.With(slog.String("service", "api")).Info("started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	assert.Equal(t, "api", entry["service"])
}

func TestWithGroup(t *testing.T) {
	l, output := newCaptured(t, "info", "json")

	l.WithGroup("gateway").Info("request sent", slog.String("path", "/transaction/initialize"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	group, ok := entry["gateway"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/transaction/initialize", group["path"])
}

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
	assert.NotNil(t, l.Logger)
}
