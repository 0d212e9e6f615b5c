package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expectedLogger := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expectedLogger)

		actualLogger := FromContext(ctx)

		require.NotNil(t, actualLogger)
		assert.Equal(t, expectedLogger, actualLogger)
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		logger := FromContext(t.Context())

		require.NotNil(t, logger)
		assert.Equal(t, GetDefault(), logger)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")

		logger := FromContext(ctx)

		require.NotNil(t, logger)
		assert.Equal(t, GetDefault(), logger)
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should convert all log levels to charm log levels correctly", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("unknown"), 0},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should parse known levels case-insensitively", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
		assert.Equal(t, WarnLevel, ParseLevel(" warn "))
		assert.Equal(t, ErrorLevel, ParseLevel("error"))
		assert.Equal(t, DisabledLevel, ParseLevel("disabled"))
	})

	t.Run("Should fall back to info for unknown levels", func(t *testing.T) {
		assert.Equal(t, InfoLevel, ParseLevel("verbose"))
		assert.Equal(t, InfoLevel, ParseLevel(""))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text records to the configured output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

		logger.Info("test message")

		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("Should write JSON records when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true, TimeFormat: "15:04:05"})

		logger.Info("test message", "post_id", 7)

		output := buf.String()
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, `"post_id":7`)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(output), "{"))
	})

	t.Run("Should fall back to default config when nil", func(t *testing.T) {
		require.NotNil(t, NewLogger(nil))
	})
}

func TestLogger_With(t *testing.T) {
	t.Run("Should carry additional fields on derived loggers", func(t *testing.T) {
		var buf bytes.Buffer
		base := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

		base.With("component", "store", "driver", "sqlite").Info("opened")

		output := buf.String()
		assert.Contains(t, output, "component")
		assert.Contains(t, output, "store")
		assert.Contains(t, output, "sqlite")
		assert.Contains(t, output, "opened")
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Run("Should respect log level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("Should disable all logging when DisabledLevel is used", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: DisabledLevel, Output: &buf, TimeFormat: "15:04:05"})

		logger.Error("error message")

		assert.Empty(t, buf.String())
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Run("Should provide correct default configuration", func(t *testing.T) {
		config := DefaultConfig()

		assert.Equal(t, InfoLevel, config.Level)
		assert.Equal(t, os.Stdout, config.Output)
		assert.False(t, config.JSON)
	})

	t.Run("Should provide a silent test configuration", func(t *testing.T) {
		config := TestConfig()

		assert.Equal(t, DisabledLevel, config.Level)
		assert.Equal(t, io.Discard, config.Output)
	})
}
