package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_WritesToFile(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "guardstack.log")

	require.NoError(t, setupLogging("info", logPath))
	slog.Info("hello world")
	slog.Debug("not shown")

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "INFO: hello world")
	assert.NotContains(t, string(data), "not shown")
}

func TestSetupLogging_RejectsUnknownLevel(t *testing.T) {
	err := setupLogging("verbose", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debug, info, warn, error")
}

func TestSimpleHandler_FormatsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&simpleHandler{level: slog.LevelDebug, writer: &buf})

	logger.Warn("stack validation failed", "type", "int64", "violation", "buffer destroyed")

	assert.Equal(t, "WARN: stack validation failed (type='int64' violation='buffer destroyed')\n", buf.String())
}
