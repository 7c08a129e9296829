package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"overlay_id": "menu", "component": "overlay"})
	log.Info(context.Background(), "overlay transition", "from", "closed", "to", "measuring")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "overlay transition", entry["message"])
	require.Equal(t, "menu", entry["overlay_id"])
	require.Equal(t, "overlay", entry["component"])
	require.Equal(t, "closed", entry["from"])
	require.Equal(t, "measuring", entry["to"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "infrastructure", entry["layer"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug(context.Background(), "this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf, Layer: "application"})
	require.NoError(t, err)

	var port ports.Logger = log.With("overlay_id", "menu")
	ctx := ports.WithCorrelationID(context.Background(), "corr-1")
	port.Error(ctx, "measurement failed", "error", errors.New("boom"), "attempt", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "measurement failed", entry["message"])
	require.Equal(t, "menu", entry["overlay_id"])
	require.Equal(t, "boom", entry["error"])
	require.Equal(t, float64(3), entry["attempt"])
	require.Equal(t, "corr-1", entry["correlation_id"])
	require.Equal(t, "application", entry["layer"])
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestOpenFileWritesThroughRotator(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "floatkit.log")
	out := OpenFile(FileOptions{Path: path, MaxBackups: 1})

	log, err := New(Options{Writer: out})
	require.NoError(t, err)
	log.Warn(context.Background(), "persisted")
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "persisted")
}
