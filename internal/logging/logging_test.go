package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestInit_WritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "logs", "handla.log")
	closer, err := Init(Options{Level: "warn", File: path})
	require.NoError(t, err)

	slog.Info("hidden")
	slog.Warn("shown", "list_id", "abc")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "list_id=abc")
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestInit_RejectsBadLevel(t *testing.T) {
	_, err := Init(Options{Level: "loud"})
	assert.Error(t, err)
}
