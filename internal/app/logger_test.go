package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"warn+2", slog.LevelWarn + 2},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(&Config{LogLevel: tt.level}, &bytes.Buffer{})

			assert.True(t, logger.Enabled(context.Background(), tt.want))
			assert.False(t, logger.Enabled(context.Background(), tt.want-1))
		})
	}
}

func TestNewLogger_TagsRecordsWithRun(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "JSON", Task: "VALIDATE", Policy: "LAX"}, &buf)

	// --- Act ---
	logger.Info("Validation finished.", "entities", 3)

	// --- Assert ---
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Validation finished.", record["msg"])
	assert.Equal(t, "VALIDATE", record["task"])
	assert.Equal(t, "LAX", record["policy"])
	assert.EqualValues(t, 3, record["entities"])
}

func TestNewLogger_TextIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "logfmt"}, &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "level=INFO msg=hello")
	assert.NotContains(t, buf.String(), "task=")
}
