package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLogFile(t *testing.T, dir string) []map[string]any {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := NewLogger(Options{Env: "test", Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Debug("debug detail", zap.Int("position_id", 10))
	logger.Info("allocation finished", zap.Int("created", 2))
	_ = logger.Sync()

	assert.Contains(t, console.String(), "allocation finished")
	assert.NotContains(t, console.String(), "debug detail", "console logs Info and above")

	entries := readLogFile(t, dir)
	require.Len(t, entries, 2)
	assert.Equal(t, "debug detail", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["env"])
	assert.Contains(t, entries[1], "timestamp")
	assert.EqualValues(t, 2, entries[1]["created"])
}

func TestNewLogger_Verbose(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := NewLogger(Options{Env: "test", Dir: dir, Console: &console, Verbose: true})
	require.NoError(t, err)

	logger.Debug("debug detail")
	_ = logger.Sync()

	assert.Contains(t, console.String(), "debug detail")
}
