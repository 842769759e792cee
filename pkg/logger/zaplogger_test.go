package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	sc := bufio.NewScanner(buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger("test-app", "test", zapcore.DebugLevel, &buf)

	l.Info("fetching forecast", map[string]any{"location": "minneapolis,us", "attempt": 1})
	require.NoError(t, l.Stop())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "fetching forecast", line["msg"])
	assert.Equal(t, "test-app", line["app_name"])
	assert.Equal(t, "test", line["app_env"])
	assert.Equal(t, "minneapolis,us", line["location"])
	assert.EqualValues(t, 1, line["attempt"])
	assert.Contains(t, line["caller_func"], "TestLogger_Info")
	assert.NotEmpty(t, line["timestamp"])
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger("test-app", "test", zapcore.DebugLevel, &buf)

	l.Error(errors.New("invalid API key"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "invalid API key", lines[0]["error"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger("test-app", "test", zapcore.ErrorLevel, &buf)

	l.Debug("debug")
	l.Info("info")
	l.Warning("warning")
	l.Error(errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["msg"])
}

func TestLogger_MultipleWriters(t *testing.T) {
	var a, b bytes.Buffer
	l := NewZapLogger("test-app", "test", zapcore.InfoLevel, &a, &b)

	l.Warning("retrying")

	assert.Len(t, decodeLines(t, &a), 1)
	assert.Len(t, decodeLines(t, &b), 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("nonsense"))
}
