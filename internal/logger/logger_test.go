package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSilentByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("d")
	Info("i")
	Warn("w")
	Section("s")

	assert.Empty(t, buf.String())
	assert.False(t, IsVerbose())
}

func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.Equal(t, slog.LevelDebug, Level())

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, LevelOff, Level())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("spam score %.2f for %s", 0.25, "abc")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="spam score 0.25 for abc"`)
	assert.NotContains(t, out, "time=")
}

func TestSetLevel_FiltersLowerLevels(t *testing.T) {
	buf := capture(t)
	SetLevel(slog.LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("fallback used")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "fallback used")
	assert.True(t, IsVerbose())
}

func TestSection(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Export")

	assert.Contains(t, buf.String(), "=== Export ===")
}

func TestSection_HiddenAtInfo(t *testing.T) {
	buf := capture(t)
	SetLevel(slog.LevelInfo)

	Section("Export")
	Info("Wrote report")

	assert.NotContains(t, buf.String(), "Export")
	assert.Contains(t, buf.String(), "Wrote report")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"off", LevelOff},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
