package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", time.UTC)

	logger.Debug("hidden")
	logger.Info("db_migration_skip", "component", "database")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "db_migration_skip", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.NotEmpty(t, line["ts"])
	assert.NotContains(t, line, "time")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
}
