package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cheer.log")

	log, closer, err := New("info", path)
	require.NoError(t, err)
	log.Debug().Msg("hidden")
	log.Warn().Str("component", "quote").Msg("fetch failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "quote", entry["component"])
	assert.Equal(t, "cheer", entry["app"])
}

func TestNewWithoutFileDiscards(t *testing.T) {
	log, closer, err := New("debug", "")
	require.NoError(t, err)
	assert.NotPanics(t, func() { log.Info().Msg("nowhere") })
	assert.NoError(t, closer.Close())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := Console("info", &buf)
	require.NoError(t, err)

	log.Info().Str("model", "dragon.glb").Msg("loaded")
	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "dragon.glb")
}
