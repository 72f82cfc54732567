package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("tint"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat(""))
	assert.Equal(t, FormatAuto, ParseFormat("xml"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug", slog.LevelWarn))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR", slog.LevelWarn))
	assert.Equal(t, slog.LevelWarn, ParseLevel("", slog.LevelWarn))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud", slog.LevelInfo))
}

func TestNew_AutoOnNonTTYIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatAuto, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("selection claimed", "window", 42)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "selection claimed", rec["msg"])
	assert.EqualValues(t, 42, rec["window"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatText, slog.LevelDebug)
	l.Debug("request", "target", "UTF8_STRING")

	assert.Contains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "UTF8_STRING")
	assert.False(t, IsTTY(&buf))
}
