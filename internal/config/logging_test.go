package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug lowercase", "debug", slog.LevelDebug},
		{"debug uppercase", "DEBUG", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "ERROR", slog.LevelError},
		{"empty string defaults to info", "", slog.LevelInfo},
		{"whitespace defaults to info", "  ", slog.LevelInfo},
		{"invalid defaults to info", "loud", slog.LevelInfo},
		{"surrounding whitespace trimmed", " DEBUG ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug from env", "DEBUG", slog.LevelDebug},
		{"error from env", "ERROR", slog.LevelError},
		{"default when empty", "", slog.LevelInfo},
		{"default when invalid", "INVALID", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envValue)
			assert.Equal(t, tt.expected, GetLogLevel())
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")

	assert.NotNil(t, NewLogger(true), "stdio mode")
	assert.NotNil(t, NewLogger(false), "http mode")
}

func TestNewTextLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")

	var buf bytes.Buffer
	logger := NewTextLogger(&buf)

	logger.Debug("debug message")
	logger.Info("info message")

	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
}

func TestNewTestLogger(t *testing.T) {
	t.Run("explicit level wins", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewTestLogger(&buf, "ERROR")

		logger.Debug("debug message")
		logger.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "error message")
	})

	t.Run("empty level falls back to env", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "DEBUG")

		var buf bytes.Buffer
		logger := NewTestLogger(&buf, "")

		logger.Debug("debug message")
		assert.Contains(t, buf.String(), "debug message")
	})
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		logLevel string
		logged   map[string]bool
	}{
		{"DEBUG", map[string]bool{"debug": true, "info": true, "warn": true, "error": true}},
		{"INFO", map[string]bool{"debug": false, "info": true, "warn": true, "error": true}},
		{"WARN", map[string]bool{"debug": false, "info": false, "warn": true, "error": true}},
		{"ERROR", map[string]bool{"debug": false, "info": false, "warn": false, "error": true}},
	}

	for _, tt := range tests {
		t.Run("level "+tt.logLevel, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)

			var buf bytes.Buffer
			logger := NewTextLogger(&buf)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			output := buf.String()
			for level, want := range tt.logged {
				message := level + " message"
				if want {
					assert.Contains(t, output, message)
				} else {
					assert.NotContains(t, output, message)
				}
			}
		})
	}
}
