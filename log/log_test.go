package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/vizquery/log"
)

func TestProductionLogsJSONWithAttributes(t *testing.T) {
	var output bytes.Buffer
	log.Init(&output, slog.LevelInfo, true)

	log.Info("query processed", "requestId", "abc12345", "rows", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(output.Bytes(), &record))
	assert.Equal(t, "query processed", record["msg"])
	assert.Equal(t, "abc12345", record["requestId"])
	assert.EqualValues(t, 3, record["rows"])
}

func TestErrorWrapsMessage(t *testing.T) {
	var output bytes.Buffer
	log.Init(&output, slog.LevelInfo, true)

	log.Error(errors.New("connection refused"), "failed to run query")

	var record map[string]any
	require.NoError(t, json.Unmarshal(output.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Contains(t, record["msg"], "failed to run query")
	assert.Contains(t, record["msg"], "connection refused")
}

func TestLevelFiltersDebug(t *testing.T) {
	var output bytes.Buffer
	log.Init(&output, log.ParseLevel("warn"), false)

	log.Debug("compiled query")
	log.Info("query processed")

	assert.Empty(t, output.String())
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("nonsense"))
}

func TestInfofFormatsMessage(t *testing.T) {
	var output bytes.Buffer
	log.Init(&output, slog.LevelInfo, true)

	log.Infof("listening on port %s", "8000")

	var record map[string]any
	require.NoError(t, json.Unmarshal(output.Bytes(), &record))
	assert.Equal(t, "listening on port 8000", record["msg"])
}
