package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "warn", Format: "json"})
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept", "form", "f1")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "f1", line["form"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	logger := New(&bytes.Buffer{}, Config{Level: "chatty"})
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}
