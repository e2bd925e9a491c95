package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", "json")

	assert.True(t, L.Enabled(context.Background(), slog.LevelDebug))
	Info("calendar checked", "user_id", "U123")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "calendar checked", line["msg"])
	assert.Equal(t, "U123", line["user_id"])
}

func TestInitWriterTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "text")

	Info("hidden")
	assert.Empty(t, buf.String())
	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextLogger(t *testing.T) {
	Init("info", "text")
	custom := L.With("run_id", "abc")

	ctx := WithContext(context.Background(), custom)
	assert.Same(t, custom, FromContext(ctx))
	assert.Same(t, L, FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLevel(tt.input), tt.input)
	}
}
