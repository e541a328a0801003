package logging

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestFileHandler_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vibedove.log")
	logger := slog.New(NewFileHandler(path, slog.LevelInfo))

	logger.Info("task started", "taskID", "abc1234", "error", errors.New("boom"))
	logger.Info("plain message")

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	parts := strings.SplitN(lines[0], " ", 3)
	require.Len(t, parts, 3)
	assert.True(t, strings.HasSuffix(parts[0], "Z"), "timestamp should be UTC ISO: %s", parts[0])
	assert.Equal(t, "INFO", parts[1])
	assert.Equal(t, `task started {"error":"boom","taskID":"abc1234"}`, parts[2])

	assert.True(t, strings.HasSuffix(lines[1], " INFO plain message"))
}

func TestFileHandler_LevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibedove.log")
	logger := slog.New(NewFileHandler(path, slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " WARN shown")
}

func TestFileHandler_WithAttrsAndGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibedove.log")
	logger := slog.New(NewFileHandler(path, slog.LevelDebug)).
		With("op", "start").
		WithGroup("git").
		With("dir", "/repo")

	logger.Debug("running", "args", "branch x")

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], ` DEBUG running {"git":{"args":"branch x","dir":"/repo"},"op":"start"}`), lines[0])
}

func TestFileHandler_WriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// parent "directory" is a regular file, so the write must fail quietly
	logger := slog.New(NewFileHandler(filepath.Join(blocker, "vibedove.log"), slog.LevelInfo))

	assert.NotPanics(t, func() { logger.Error("lost") })
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "debug")
	assert.Equal(t, slog.LevelDebug, LevelFromEnv())
}
